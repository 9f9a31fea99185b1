package l200geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stringsOnly builds just the HPGe string assembly against the given
// metadata.
func stringsOnly(t *testing.T, meta *Metadata) ([]PlacedVolume, error) {
	t.Helper()
	cfg, err := Merge(DefaultConfig(), nil, CLIOverrides{Assemblies: []string{"strings"}})
	require.NoError(t, err)
	return Build(cfg, meta)
}

func TestPlaceHPGeStrings(t *testing.T) {
	t.Run("DetectorStacking", func(t *testing.T) {
		vols, err := stringsOnly(t, SampleMetadata())
		require.NoError(t, err)

		// String 1 sits at angle 0, radius 110: warm north, on +X.
		// Both units have 100 mm warm rods, contracted by 0.997 in the argon.
		top := findVolume(t, vols, "B99000A")
		assert.InDelta(t, 110.0, top.Position.X, 1e-9)
		assert.InDelta(t, 0.0, top.Position.Y, 1e-9)
		assert.InDelta(t, 1950-422.11-99.7+3.7+0.75+4.0, top.Position.Z, 1e-9)

		second := findVolume(t, vols, "B99001A")
		assert.InDelta(t, top.Position.Z-99.7, second.Position.Z, 1e-9)

		require.NotNil(t, top.Detector)
		assert.Equal(t, DetectorKindGermanium, top.Detector.Kind)
		assert.Equal(t, 1104000, top.Detector.UID)
	})

	t.Run("PENPlates", func(t *testing.T) {
		vols, err := stringsOnly(t, SampleMetadata())
		require.NoError(t, err)

		det := findVolume(t, vols, "B99000A")
		pen := findVolume(t, vols, "pen_B99000A")
		assert.InDelta(t, det.Position.Z-4.0, pen.Position.Z, 1e-9)

		// Only the PPC detector carries the additional top ring.
		names := volumeNames(vols)
		assert.Contains(t, names, "pen_top_P99000A")
		assert.NotContains(t, names, "pen_top_B99000A")
		assert.NotContains(t, names, "pen_top_V99000A")
	})

	t.Run("SupportHardware", func(t *testing.T) {
		vols, err := stringsOnly(t, SampleMetadata())
		require.NoError(t, err)
		names := volumeNames(vols)

		assert.Contains(t, names, "minishroud_string_1")
		assert.Contains(t, names, "hpge_support_copper_string_support_structure_string_1")
		for i := 0; i < 3; i++ {
			assert.Contains(t, names,
				"hpge_support_copper_string_1_cu_rod_"+string(rune('0'+i)))
		}

		// The minishroud is centered on the rod span, shifted up to clear the
		// plate. String 1 total cold rod length is 199.4 mm.
		ms := findVolume(t, vols, "minishroud_string_1")
		assert.InDelta(t, 1950-422.11-(199.4+6)/2+0.1, ms.Position.Z, 1e-9)

		support := findVolume(t, vols, "hpge_support_copper_string_support_structure_string_1")
		assert.InDelta(t, 1950-422.11+12, support.Position.Z, 1e-9)
	})

	t.Run("TristarRemap", func(t *testing.T) {
		vols, err := stringsOnly(t, SampleMetadata())
		require.NoError(t, err)
		names := volumeNames(vols)

		// The tristar follows the slot-1 baseplate. String 2 starts with an
		// Ortec ICPC on a medium plate, which uses the Ortec variant.
		assert.Contains(t, names, "hpge_support_copper_tristar_medium_string_1")
		assert.Contains(t, names, "hpge_support_copper_tristar_medium_ortec_string_2")
		assert.Contains(t, names, "hpge_support_copper_tristar_large_string_7")
	})

	t.Run("DuplicateSlot", func(t *testing.T) {
		meta := SampleMetadata()
		meta.Detectors = append(meta.Detectors, HPGeDetector{
			Name: "B99009A", Type: DetectorBEGe, Manufacturer: "Canberra",
			RawID: 1104009, String: 1, Position: 1,
			HeightMM: 30, Baseplate: BaseplateMedium, RodLengthMM: 100,
		})
		_, err := stringsOnly(t, meta)
		require.ErrorIs(t, err, ErrDuplicateName)
		assert.Contains(t, err.Error(), "slot 1")
	})

	t.Run("SparseString", func(t *testing.T) {
		meta := SampleMetadata()
		for i := range meta.Detectors {
			if meta.Detectors[i].Name == "B99001A" {
				meta.Detectors[i].Position = 4
			}
		}
		_, err := stringsOnly(t, meta)
		require.ErrorIs(t, err, ErrConfig)
	})

	t.Run("MissingStringMetadata", func(t *testing.T) {
		meta := SampleMetadata()
		delete(meta.Strings, 7)
		_, err := stringsOnly(t, meta)
		require.ErrorIs(t, err, ErrConfig)
	})

	t.Run("RodsOutsideMinishroud", func(t *testing.T) {
		meta := SampleMetadata()
		s1 := meta.Strings[1]
		s1.RodRadiusMM = s1.MinishroudRadiusMM
		meta.Strings[1] = s1
		_, err := stringsOnly(t, meta)
		require.ErrorIs(t, err, ErrConfig)
	})

	t.Run("MinishroudDelta", func(t *testing.T) {
		// String 7 carries the -200 mm shroud length correction in the sample
		// metadata. Its single unit has a 150 mm warm rod.
		vols, err := stringsOnly(t, SampleMetadata())
		require.NoError(t, err)
		ms := findVolume(t, vols, "minishroud_string_7")
		rods := 150 * warmToColdFactor
		assert.InDelta(t, 1950-422.11-(rods+6-200)/2+0.1, ms.Position.Z, 1e-9)
	})
}
