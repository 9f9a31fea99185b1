package l200geom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSample merges the given inputs over the defaults and builds against
// the embedded sample metadata.
func buildSample(t *testing.T, file *FileConfig, cli CLIOverrides) []PlacedVolume {
	t.Helper()
	cfg, err := Merge(DefaultConfig(), file, cli)
	require.NoError(t, err)
	vols, err := Build(cfg, SampleMetadata())
	require.NoError(t, err)
	return vols
}

func volumeNames(vols []PlacedVolume) []string {
	names := make([]string, len(vols))
	for i, pv := range vols {
		names[i] = pv.Name
	}
	return names
}

func findVolume(t *testing.T, vols []PlacedVolume, name string) PlacedVolume {
	t.Helper()
	for _, pv := range vols {
		if pv.Name == name {
			return pv
		}
	}
	t.Fatalf("no volume named %q", name)
	return PlacedVolume{}
}

func TestBuild(t *testing.T) {
	t.Run("FullGeometry", func(t *testing.T) {
		vols := buildSample(t, nil, CLIOverrides{})
		require.NotEmpty(t, vols)

		// The implicit mother volumes always come first.
		assert.Equal(t, "cryostat", vols[0].Name)
		assert.Equal(t, "lar", vols[1].Name)

		seen := make(map[string]bool)
		for _, pv := range vols {
			assert.False(t, seen[pv.Name], "duplicate volume name %q", pv.Name)
			seen[pv.Name] = true
		}

		// One representative per assembly.
		assert.Contains(t, seen, "B99000A")
		assert.Contains(t, seen, "calibration_tube_1")
		assert.Contains(t, seen, "top_plate")
		assert.Contains(t, seen, "wlsr_tpb")
		assert.Contains(t, seen, "fiber_OB010011_s")
	})

	t.Run("AssemblyOrder", func(t *testing.T) {
		vols := buildSample(t, nil, CLIOverrides{})
		order := map[Assembly]int{
			AssemblyStrings:     1,
			AssemblyCalibration: 2,
			AssemblyTop:         3,
			AssemblyWLSR:        4,
			AssemblyFibers:      5,
		}
		last := 0
		for _, pv := range vols {
			if pv.Assembly == "" {
				continue
			}
			rank := order[pv.Assembly]
			assert.GreaterOrEqual(t, rank, last, "volume %q out of assembly order", pv.Name)
			last = rank
		}
	})

	t.Run("SkippedAssembliesEmitNothing", func(t *testing.T) {
		vols := buildSample(t, nil, CLIOverrides{Assemblies: []string{"wlsr"}})
		want := []string{"cryostat", "lar", "wlsr_outer", "wlsr_ttx", "wlsr_tpb"}
		assert.Empty(t, cmp.Diff(want, volumeNames(vols)))
		for _, pv := range vols {
			assert.Nil(t, pv.Detector)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		first := buildSample(t, nil, CLIOverrides{})
		second := buildSample(t, nil, CLIOverrides{})
		assert.Empty(t, cmp.Diff(first, second))
	})

	t.Run("PublicGeomIgnoresMetadata", func(t *testing.T) {
		cfg, err := Merge(DefaultConfig(), &FileConfig{PublicGeom: boolPtr(true)}, CLIOverrides{})
		require.NoError(t, err)
		// Passed-in metadata is replaced by the sample set.
		vols, err := Build(cfg, &Metadata{})
		require.NoError(t, err)
		names := volumeNames(vols)
		assert.Contains(t, names, "B99000A")
	})

	t.Run("NilMetadata", func(t *testing.T) {
		cfg, err := Merge(DefaultConfig(), nil, CLIOverrides{})
		require.NoError(t, err)
		_, err = Build(cfg, nil)
		require.ErrorIs(t, err, ErrConfig)
	})

	t.Run("NilConfig", func(t *testing.T) {
		_, err := Build(nil, SampleMetadata())
		require.ErrorIs(t, err, ErrConfig)
	})
}
