package l200geom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fibersOnly(t *testing.T, model FiberModel, meta *Metadata) ([]PlacedVolume, error) {
	t.Helper()
	cfg, err := Merge(DefaultConfig(), nil, CLIOverrides{
		Assemblies:   []string{"fibers"},
		FiberModules: string(model),
	})
	require.NoError(t, err)
	return Build(cfg, meta)
}

func TestPlaceFiberModules(t *testing.T) {
	t.Run("Segmented", func(t *testing.T) {
		vols, err := fibersOnly(t, FiberModelSegmented, SampleMetadata())
		require.NoError(t, err)
		names := volumeNames(vols)

		// One coarse unit per module: coating plus three nested layers.
		assert.Contains(t, names, "fiber_OB010011_s")
		assert.Contains(t, names, "fiber_OB010011_s_cl2")
		assert.Contains(t, names, "fiber_OB010011_s_cl1")
		assert.Contains(t, names, "fiber_OB010011_s_core")
		assert.Contains(t, names, "fiber_IB010011_s")

		// Each of the 3 sample modules: 4 fiber volumes + 2 SiPMs + 2 wraps.
		count := 0
		for _, pv := range vols {
			if pv.Assembly == AssemblyFibers {
				count++
			}
		}
		assert.Equal(t, 3*8, count)
	})

	t.Run("Detailed", func(t *testing.T) {
		vols, err := fibersOnly(t, FiberModelDetailed, SampleMetadata())
		require.NoError(t, err)
		names := volumeNames(vols)

		assert.Contains(t, names, "fiber_OB010011_0")
		assert.Contains(t, names, "fiber_OB010011_89_core")
		assert.NotContains(t, names, "fiber_OB010011_s")

		// 90 fibers of 4 volumes each plus the readout per module.
		count := 0
		for _, pv := range vols {
			if pv.Assembly == AssemblyFibers {
				count++
			}
		}
		assert.Equal(t, 3*(90*4+4), count)
	})

	t.Run("SiPMChannels", func(t *testing.T) {
		vols, err := fibersOnly(t, FiberModelSegmented, SampleMetadata())
		require.NoError(t, err)

		top := findVolume(t, vols, "S001")
		require.NotNil(t, top.Detector)
		assert.Equal(t, DetectorKindOptical, top.Detector.Kind)
		assert.Equal(t, 1051600, top.Detector.UID)

		bottom := findVolume(t, vols, "S002")
		assert.Less(t, bottom.Position.Z, top.Position.Z)
		assert.Contains(t, volumeNames(vols), "S001_wrap")

		// Outer barrel: half length 950 above the 1000 mm displacement.
		assert.InDelta(t, 1000+950+0.5+0.05, top.Position.Z, 1e-9)
		assert.InDelta(t, 1000-950-0.5-0.05, bottom.Position.Z, 1e-9)
	})

	t.Run("BarrelRadii", func(t *testing.T) {
		vols, err := fibersOnly(t, FiberModelDetailed, SampleMetadata())
		require.NoError(t, err)
		for _, pv := range vols {
			if !strings.HasPrefix(pv.Name, "fiber_OB") || strings.Contains(pv.Name, "_cl") ||
				strings.HasSuffix(pv.Name, "_core") {
				continue
			}
			r := pv.Position.X*pv.Position.X + pv.Position.Y*pv.Position.Y
			assert.InDelta(t, 295.0*295.0, r, 1e-6, "volume %s", pv.Name)
		}
	})

	t.Run("UnknownBarrel", func(t *testing.T) {
		meta := SampleMetadata()
		meta.Fibers[0].Barrel = "middle"
		_, err := fibersOnly(t, FiberModelSegmented, meta)
		require.ErrorIs(t, err, ErrConfig)
	})

	t.Run("ModuleNumOutOfRange", func(t *testing.T) {
		meta := SampleMetadata()
		meta.Fibers[2].ModuleNum = 9 // inner barrel has 9 modules, 0-8
		_, err := fibersOnly(t, FiberModelSegmented, meta)
		require.ErrorIs(t, err, ErrConfig)
	})

	t.Run("MissingChannel", func(t *testing.T) {
		meta := SampleMetadata()
		meta.Fibers[1].BottomSiPM = SiPMChannel{}
		_, err := fibersOnly(t, FiberModelSegmented, meta)
		require.ErrorIs(t, err, ErrConfig)
	})
}
