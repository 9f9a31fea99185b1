package l200geom

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// FiberModel selects the fiber shroud granularity.
type FiberModel string

const (
	// FiberModelDetailed builds one volume set per physical fiber.
	FiberModelDetailed FiberModel = "detailed"
	// FiberModelSegmented groups fibers into coarse per-module segments. It
	// trades fidelity for build/render speed and must not be used for
	// optical-physics runs.
	FiberModelSegmented FiberModel = "segmented"
)

// PMTConfigName selects the watertank PMT population handled by the external
// tank builder.
type PMTConfigName string

const (
	PMTConfigLEGEND200 PMTConfigName = "LEGEND200"
	PMTConfigGERDA     PMTConfigName = "GERDA"
)

// SourceSpec describes one calibration source in a SIS slot.
type SourceSpec struct {
	// Isotope is the bare source name, e.g. "Th228".
	Isotope string
	// HasCopperCap is set by a trailing "+Cu" on the source spec string.
	HasCopperCap bool
}

// SISTube is the resolved configuration of one calibration tube. Sources
// holds exactly 4 slots, index 0 at the top. A nil slot is empty; the
// tantalum absorber is present in every slot regardless.
type SISTube struct {
	Z       float64
	Sources [sisSlotCount]*SourceSpec
}

// ExtraSource is an optional additional source placement. Position is a
// Cartesian 3-vector in the internal frame (z relative to the top plate
// face).
type ExtraSource struct {
	Position   [3]float64
	NameSuffix string
	Source     SourceSpec
}

// CuAbsorber holds the copper source-cap dimensions in mm.
type CuAbsorber struct {
	Height      float64
	InnerHeight float64
	InnerRadius float64
	OuterRadius float64
}

// Config is the fully resolved geometry configuration (the merge result of
// defaults, config file and CLI overrides). It owns all subsystem
// sub-configs; placements derived from it never mutate it.
type Config struct {
	Assemblies   []string
	FiberModules FiberModel
	PMTConfig    PMTConfigName
	PublicGeom   bool
	SIS          map[int]*SISTube
	ExtraSource  *ExtraSource
	CuAbsorber   CuAbsorber

	// selected is the resolved assembly set, filled by Merge.
	selected map[Assembly]bool
}

// Selected reports whether the given assembly is active.
func (c *Config) Selected(a Assembly) bool {
	return c.selected[a]
}

// SelectedAssemblies returns the active assembly tags in deterministic order.
func (c *Config) SelectedAssemblies() []Assembly {
	var out []Assembly
	for _, a := range definedAssemblies {
		if c.selected[a] {
			out = append(out, a)
		}
	}
	return out
}

// DefaultConfig returns the documented default configuration: all assemblies,
// segmented fibers, LEGEND-200 PMT population, private metadata, no
// calibration sources.
func DefaultConfig() Config {
	var tags []string
	for _, a := range DefaultAssemblies() {
		tags = append(tags, string(a))
	}
	return Config{
		Assemblies:   tags,
		FiberModules: FiberModelSegmented,
		PMTConfig:    PMTConfigLEGEND200,
		CuAbsorber: CuAbsorber{
			Height:      17,
			InnerHeight: 14,
			InnerRadius: 6.5,
			OuterRadius: 8,
		},
	}
}

// FileConfig mirrors the structure of a geometry config file. Scalar fields
// are pointers so that a merged value can distinguish "set in the file" from
// "absent"; absent fields fall back to the default (or are overridden by the
// CLI regardless).
type FileConfig struct {
	Assemblies   []string                  `yaml:"assemblies"`
	FiberModules *string                   `yaml:"fiber_modules"`
	PMTConfig    *string                   `yaml:"pmt_config"`
	PublicGeom   *bool                     `yaml:"public_geom"`
	SIS          map[string]*SISTubeFile   `yaml:"sis"`
	ExtraSource  *ExtraSourceFile          `yaml:"extra_source"`
	CuAbsorber   *CuAbsorberFile           `yaml:"cu_absorber"`
}

// SISTubeFile is the file-level form of one SIS tube entry. The whole entry
// may be null in the file, in which case the tube is absent.
type SISTubeFile struct {
	SISZ    *float64  `yaml:"sis_z"`
	Sources []*string `yaml:"sources"`
}

// ExtraSourceFile is the file-level form of the optional extra source.
type ExtraSourceFile struct {
	PositionMM []float64 `yaml:"position_mm"`
	NameSuffix string    `yaml:"name_suffix"`
	SourceSpec string    `yaml:"source_spec"`
}

// CuAbsorberFile is the file-level form of the copper cap dimensions.
type CuAbsorberFile struct {
	Height      *float64 `yaml:"height"`
	InnerHeight *float64 `yaml:"inner_height"`
	InnerRadius *float64 `yaml:"inner_radius"`
	OuterRadius *float64 `yaml:"outer_radius"`
}

// CLIOverrides carries the geometry-relevant command line values. Nil/empty
// fields are treated as unset; a set field always wins over the config file.
type CLIOverrides struct {
	Assemblies   []string
	FiberModules string
	PMTConfig    string
	PublicGeom   *bool
}

// knownConfigKeys is the accepted top-level key set of a config file.
var knownConfigKeys = map[string]bool{
	"assemblies":    true,
	"fiber_modules": true,
	"pmt_config":    true,
	"public_geom":   true,
	"sis":           true,
	"extra_source":  true,
	"cu_absorber":   true,
}

// LoadConfigFile reads a geometry config file in YAML, JSON or TOML format.
// The format is derived from the file extension, falling back to content
// detection. Unknown top-level keys fail with ErrConfig so that typos do not
// silently produce a default geometry.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(data)
	}

	raw := make(map[string]any)
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: failed to parse YAML config file %q: %v", ErrConfig, path, err)
		}
	case "json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: failed to parse JSON config file %q: %v", ErrConfig, path, err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: failed to parse TOML config file %q: %v", ErrConfig, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: unable to determine config format of %q", ErrConfig, path)
	}

	for key := range raw {
		if !knownConfigKeys[key] {
			return nil, fmt.Errorf("%w: unknown config key %q in %q", ErrConfig, key, path)
		}
	}

	var fc FileConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &fc,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create config decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: failed to decode config file %q: %v", ErrConfig, path, err)
	}

	return &fc, nil
}

// detectFileFormat determines the config format from the file extension.
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".toml", ".tml":
		return "toml"
	default:
		return ""
	}
}

// detectFormatFromContent attempts parse-based detection. JSON is checked
// first (strict), then YAML (a JSON superset), then TOML.
func detectFormatFromContent(data []byte) string {
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return "json"
	}
	var yamlTest any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}
	var tomlTest any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return "toml"
	}
	return ""
}

// Merge combines defaults, an optional config file and CLI overrides into a
// validated Config. For scalar options a CLI value always overrides the file
// value, which overrides the default. For the assemblies list, the winning
// supplied list either replaces the default set or, when its first entry
// carries a '+'/'-' prefix, is applied as modifiers against the default set.
//
// Merge is a pure function: it has no side effects beyond producing the
// result, and all ErrConfig conditions surface here, before any placement
// work starts.
func Merge(defaults Config, file *FileConfig, cli CLIOverrides) (*Config, error) {
	out := defaults
	out.SIS = nil
	out.selected = nil

	// Assemblies: CLI list > file list > default, modifiers applied against
	// the default list.
	requested := defaults.Assemblies
	if file != nil && file.Assemblies != nil {
		requested = file.Assemblies
	}
	if cli.Assemblies != nil {
		requested = cli.Assemblies
	}
	selected, err := ResolveAssemblies(requested)
	if err != nil {
		return nil, err
	}
	out.selected = selected
	out.Assemblies = nil
	for _, a := range out.SelectedAssemblies() {
		out.Assemblies = append(out.Assemblies, string(a))
	}

	// Scalar precedence.
	if file != nil && file.FiberModules != nil {
		out.FiberModules = FiberModel(*file.FiberModules)
	}
	if cli.FiberModules != "" {
		out.FiberModules = FiberModel(cli.FiberModules)
	}
	if out.FiberModules != FiberModelDetailed && out.FiberModules != FiberModelSegmented {
		return nil, fmt.Errorf("%w: invalid fiber_modules value %q", ErrConfig, out.FiberModules)
	}

	if file != nil && file.PMTConfig != nil {
		out.PMTConfig = PMTConfigName(*file.PMTConfig)
	}
	if cli.PMTConfig != "" {
		out.PMTConfig = PMTConfigName(cli.PMTConfig)
	}
	if out.PMTConfig != PMTConfigLEGEND200 && out.PMTConfig != PMTConfigGERDA {
		return nil, fmt.Errorf("%w: invalid pmt_config value %q", ErrConfig, out.PMTConfig)
	}

	if file != nil && file.PublicGeom != nil {
		out.PublicGeom = *file.PublicGeom
	}
	if cli.PublicGeom != nil {
		out.PublicGeom = *cli.PublicGeom
	}

	// Copper cap dimensions: per-field file override.
	if file != nil && file.CuAbsorber != nil {
		if file.CuAbsorber.Height != nil {
			out.CuAbsorber.Height = *file.CuAbsorber.Height
		}
		if file.CuAbsorber.InnerHeight != nil {
			out.CuAbsorber.InnerHeight = *file.CuAbsorber.InnerHeight
		}
		if file.CuAbsorber.InnerRadius != nil {
			out.CuAbsorber.InnerRadius = *file.CuAbsorber.InnerRadius
		}
		if file.CuAbsorber.OuterRadius != nil {
			out.CuAbsorber.OuterRadius = *file.CuAbsorber.OuterRadius
		}
	}

	needsCap := false

	// SIS tubes.
	if file != nil && len(file.SIS) > 0 {
		out.SIS = make(map[int]*SISTube)
		for key, tube := range file.SIS {
			num, err := strconv.Atoi(key)
			if err != nil || num < 1 || num > sisTubeCount {
				return nil, fmt.Errorf("%w: invalid SIS tube number %q", ErrConfig, key)
			}
			if tube == nil {
				continue // tube explicitly absent
			}
			resolved, err := resolveSISTube(num, tube)
			if err != nil {
				return nil, err
			}
			if resolved == nil {
				continue
			}
			for _, src := range resolved.Sources {
				if src != nil && src.HasCopperCap {
					needsCap = true
				}
			}
			out.SIS[num] = resolved
		}
	}

	// Extra source.
	if file != nil && file.ExtraSource != nil {
		es := file.ExtraSource
		if len(es.PositionMM) != 3 {
			return nil, fmt.Errorf("%w: extra_source.position_mm must have 3 components, got %d",
				ErrConfig, len(es.PositionMM))
		}
		if es.SourceSpec == "" {
			return nil, fmt.Errorf("%w: extra_source.source_spec is required", ErrConfig)
		}
		spec := parseSourceSpec(es.SourceSpec)
		if spec.HasCopperCap {
			needsCap = true
		}
		out.ExtraSource = &ExtraSource{
			Position:   [3]float64{es.PositionMM[0], es.PositionMM[1], es.PositionMM[2]},
			NameSuffix: es.NameSuffix,
			Source:     spec,
		}
	}

	// Only structural self-intersection of the cap against the absorber is
	// checked here; overlap against the rest of the geometry is delegated to
	// the Geant4/remage overlap checker.
	if needsCap {
		cu := out.CuAbsorber
		if cu.InnerHeight >= cu.Height {
			return nil, fmt.Errorf("%w: cu_absorber.inner_height (%g) must be smaller than height (%g)",
				ErrConfig, cu.InnerHeight, cu.Height)
		}
		if cu.InnerRadius >= cu.OuterRadius {
			return nil, fmt.Errorf("%w: cu_absorber.inner_radius (%g) must be smaller than outer_radius (%g)",
				ErrConfig, cu.InnerRadius, cu.OuterRadius)
		}
	}

	return &out, nil
}

// resolveSISTube validates one tube entry and expands it into the fixed
// 4-slot form. A tube with neither reading nor sources resolves to nil.
func resolveSISTube(num int, tube *SISTubeFile) (*SISTube, error) {
	if len(tube.Sources) > sisSlotCount {
		return nil, fmt.Errorf("%w: SIS tube %d has %d source slots, at most %d allowed",
			ErrConfig, num, len(tube.Sources), sisSlotCount)
	}

	var resolved SISTube
	hasSource := false
	for i, src := range tube.Sources {
		if src == nil || *src == "" {
			continue
		}
		spec := parseSourceSpec(*src)
		resolved.Sources[i] = &spec
		hasSource = true
	}

	if tube.SISZ == nil {
		if hasSource {
			return nil, fmt.Errorf("%w: SIS tube %d has sources but no sis_z reading", ErrConfig, num)
		}
		return nil, nil
	}
	resolved.Z = *tube.SISZ
	return &resolved, nil
}

// parseSourceSpec splits a source spec string like "Th228+Cu" into isotope
// and copper-cap flag.
func parseSourceSpec(spec string) SourceSpec {
	if isotope, ok := strings.CutSuffix(spec, "+Cu"); ok {
		return SourceSpec{Isotope: isotope, HasCopperCap: true}
	}
	return SourceSpec{Isotope: spec}
}

// SISTubeNumbers returns the configured tube numbers in ascending order.
func (c *Config) SISTubeNumbers() []int {
	var nums []int
	for num := range c.SIS {
		nums = append(nums, num)
	}
	sort.Ints(nums)
	return nums
}
