package l200geom

import (
	"fmt"
	"math"
)

// Fiber shroud constants, in mm. The fiber modules are specified in the
// right-handed output frame directly and do not go through ToCartesian.
const (
	fiberDim        = 1.0
	sipmHeight      = 1.0
	sipmGap         = 0.05
	innerBarrelR    = 269.0 / 2
	innerBarrelLen  = 1400.0
	innerBarrelMods = 9
	innerBarrelZ    = 1250.0
	outerBarrelR    = 590.0 / 2
	outerBarrelLen  = 1900.0
	outerBarrelMods = 20
	outerBarrelZ    = 1000.0
	fibersPerModule = 90
)

var fiberColor = RGBA{0, 1, 0, 1}

// fiberFactory produces the placements of one barrel (inner or outer).
type fiberFactory struct {
	radius        float64
	length        float64
	moduleCount   int
	zDisplacement float64
}

var (
	innerBarrelFactory = fiberFactory{innerBarrelR, innerBarrelLen, innerBarrelMods, innerBarrelZ}
	outerBarrelFactory = fiberFactory{outerBarrelR, outerBarrelLen, outerBarrelMods, outerBarrelZ}
)

// placeFiberModules places every fiber module from the metadata, either as
// single fibers (detailed) or as one coarse segment per module (segmented).
func (b *builder) placeFiberModules() error {
	detailed := b.cfg.FiberModules == FiberModelDetailed

	for i := range b.meta.Fibers {
		mod := &b.meta.Fibers[i]
		var factory *fiberFactory
		switch mod.Barrel {
		case "inner":
			factory = &innerBarrelFactory
		case "outer":
			factory = &outerBarrelFactory
		default:
			return fmt.Errorf("%w: fiber module %s has unknown barrel %q", ErrConfig, mod.Name, mod.Barrel)
		}
		if mod.ModuleNum < 0 || mod.ModuleNum >= factory.moduleCount {
			return fmt.Errorf("%w: fiber module %s has module number %d outside the %s barrel (%d modules)",
				ErrConfig, mod.Name, mod.ModuleNum, mod.Barrel, factory.moduleCount)
		}
		if err := factory.createModule(b, mod, detailed); err != nil {
			return err
		}
	}
	return nil
}

func (f *fiberFactory) createModule(b *builder, mod *FiberModule, detailed bool) error {
	segment := 2 * math.Pi / float64(f.moduleCount)
	startAngle := segment * float64(mod.ModuleNum)

	if detailed {
		for n := 0; n < fibersPerModule; n++ {
			th := startAngle + segment/fibersPerModule*(float64(n)+0.5)
			x := f.radius * math.Cos(th)
			y := f.radius * math.Sin(th)
			name := fmt.Sprintf("fiber_%s_%d", mod.Name, n)
			if err := f.placeFiberUnit(b, name, Vector3{x, y, f.zDisplacement}, Rotation{Z: -th}); err != nil {
				return err
			}
		}
	} else {
		name := fmt.Sprintf("fiber_%s_s", mod.Name)
		pos := Vector3{0, 0, f.zDisplacement}
		if err := f.placeFiberUnit(b, name, pos, Rotation{Z: -startAngle}); err != nil {
			return err
		}
	}

	if err := f.placeSiPM(b, mod, true); err != nil {
		return err
	}
	return f.placeSiPM(b, mod, false)
}

// placeFiberUnit emits the four nested volumes of one fiber unit: the TPB
// coating and, inside it, outer cladding, inner cladding and core.
func (f *fiberFactory) placeFiberUnit(b *builder, name string, pos Vector3, rot Rotation) error {
	coat := fiberColor
	if err := b.place(PlacedVolume{
		Name:     name,
		Position: pos,
		Rotation: rot,
		Assembly: AssemblyFibers,
		Color:    &coat,
	}); err != nil {
		return err
	}
	for _, layer := range []string{"cl2", "cl1", "core"} {
		if err := b.place(PlacedVolume{
			Name:     name + "_" + layer,
			Position: pos,
			Rotation: rot,
			Assembly: AssemblyFibers,
		}); err != nil {
			return err
		}
	}
	return nil
}

// placeSiPM emits the SiPM detector arc and its copper wrap at one end of a
// module. The volume name is the readout channel name from the metadata.
func (f *fiberFactory) placeSiPM(b *builder, mod *FiberModule, isTop bool) error {
	channel := mod.BottomSiPM
	if isTop {
		channel = mod.TopSiPM
	}
	if channel.Name == "" {
		return fmt.Errorf("%w: fiber module %s has no %s readout channel",
			ErrConfig, mod.Name, map[bool]string{true: "top", false: "bottom"}[isTop])
	}

	z := f.length/2 + sipmHeight/2 + sipmGap
	if !isTop {
		z = -z
	}
	z += f.zDisplacement

	startAngle := 2 * math.Pi / float64(f.moduleCount) * float64(mod.ModuleNum)
	if err := b.place(PlacedVolume{
		Name:     channel.Name,
		Position: Vector3{0, 0, z},
		Rotation: Rotation{Z: -startAngle},
		Assembly: AssemblyFibers,
		Detector: &DetectorInfo{Kind: DetectorKindOptical, UID: channel.RawID},
	}); err != nil {
		return err
	}

	wrap := copperColor
	return b.place(PlacedVolume{
		Name:     channel.Name + "_wrap",
		Position: Vector3{0, 0, z},
		Rotation: Rotation{Z: -startAngle},
		Assembly: AssemblyFibers,
		Color:    &wrap,
	})
}
