package l200geom

import (
	"fmt"

	"go.uber.org/zap"
)

// topPlateZ is the global Z coordinate of the top face of the array top
// plate; all internal z values are offsets against it.
const topPlateZ = 1950.0

// Vector3 is a Cartesian position in mm, GDML axes.
type Vector3 struct {
	X, Y, Z float64
}

// Rotation is an extrinsic x/y/z rotation in radians, GDML axes.
type Rotation struct {
	X, Y, Z float64
}

// DetectorKind classifies an active detector volume for remage.
type DetectorKind string

const (
	DetectorKindGermanium    DetectorKind = "germanium"
	DetectorKindOptical      DetectorKind = "optical"
	DetectorKindScintillator DetectorKind = "scintillator"
)

// DetectorInfo marks a placed volume as an active detector.
type DetectorInfo struct {
	Kind DetectorKind
	UID  int
}

// RGBA is a visualization color attribute.
type RGBA [4]float64

// PlacedVolume is one resolved geometry placement. It is created once during
// the build, is immutable afterwards, and is consumed in order by the
// external GDML exporter. Name is unique across the whole geometry.
type PlacedVolume struct {
	Name     string
	Position Vector3
	Rotation Rotation
	// Assembly is the parent assembly tag; empty for the implicit
	// cryostat/argon volumes.
	Assembly Assembly
	// Detector is non-nil for active detector volumes (HPGe diodes, SiPMs).
	Detector *DetectorInfo
	// Color is the optional visualization attribute for the macro writer.
	Color *RGBA
}

// BuildOption adjusts the placement build.
type BuildOption func(*builder)

// WithLogger attaches a logger to the build; the default is a no-op logger.
func WithLogger(log *zap.Logger) BuildOption {
	return func(b *builder) {
		if log != nil {
			b.log = log
		}
	}
}

// builder accumulates placements and enforces name uniqueness.
type builder struct {
	cfg  *Config
	meta *Metadata
	log  *zap.Logger

	volumes []PlacedVolume
	names   map[string]bool
}

// place appends one placement, rejecting duplicate names.
func (b *builder) place(pv PlacedVolume) error {
	if b.names[pv.Name] {
		return fmt.Errorf("%w: %q", ErrDuplicateName, pv.Name)
	}
	b.names[pv.Name] = true
	b.volumes = append(b.volumes, pv)
	return nil
}

// Build resolves the full placement list for the given configuration and
// hardware metadata. The cryostat and liquid argon volume are always placed;
// the remaining assemblies follow the resolved selection in deterministic
// order (strings, calibration, top, wlsr, fibers). Skipped assemblies
// produce no placements and no side effects.
//
// If cfg.PublicGeom is set, the embedded sample metadata replaces meta.
//
// Build runs strictly sequentially with no shared mutable state; all
// returned placements are immutable. Errors abort the build without partial
// output.
func Build(cfg *Config, meta *Metadata, opts ...BuildOption) ([]PlacedVolume, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuration is nil", ErrConfig)
	}
	if cfg.PublicGeom {
		meta = SampleMetadata()
	}
	if meta == nil {
		return nil, fmt.Errorf("%w: hardware metadata is required", ErrConfig)
	}

	b := &builder{
		cfg:   cfg,
		meta:  meta,
		log:   zap.NewNop(),
		names: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(b)
	}

	if err := b.placeCryostat(); err != nil {
		return nil, err
	}

	for _, assembly := range cfg.SelectedAssemblies() {
		var err error
		switch assembly {
		case AssemblyStrings:
			err = b.placeHPGeStrings()
		case AssemblyCalibration:
			err = b.placeCalibration()
		case AssemblyTop:
			err = b.placeTopPlate()
		case AssemblyWLSR:
			err = b.placeWLSR()
		case AssemblyFibers:
			err = b.placeFiberModules()
		}
		if err != nil {
			return nil, err
		}
	}

	b.log.Info("geometry build complete",
		zap.Int("volumes", len(b.volumes)),
		zap.Strings("assemblies", cfg.Assemblies))

	return b.volumes, nil
}

// placeCryostat emits the implicit steel cryostat and liquid argon volumes.
// These are not selectable and always come first so that the output stream
// forms a complete mother-volume sequence.
func (b *builder) placeCryostat() error {
	if err := b.place(PlacedVolume{
		Name:  "cryostat",
		Color: &RGBA{0.6, 0.6, 0.6, 0.1},
	}); err != nil {
		return err
	}
	return b.place(PlacedVolume{
		Name:  "lar",
		Color: &RGBA{0, 0, 0, 0},
	})
}
