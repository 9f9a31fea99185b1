package l200geom

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
)

// Geometry constants of the string assembly, all in mm. Offsets are taken
// from the CAD model; the rod contraction factor converts the warm rod
// length to its length in liquid argon.
const (
	warmToColdFactor = 0.997
	stringTopOffset  = 422.11 // top of the topmost detector unit, below the plate face
	penThickness     = 1.5
	penAboveBottom   = 3.7 // PEN plate bottom face above the unit bottom
	detAbovePen      = 4.0 // detector bottom face above the PEN plate center
	shroudExtra      = 6.0
	shroudZShift     = 0.1 // avoids overlap of shroud wall and plate
	supportZOffset   = 12.0
	rodExtraLength   = 3.5 // the copper rods extend past the last unit
)

var penColors = map[BaseplateSize]RGBA{
	BaseplateSmall:       {1, 0, 0, 1},
	BaseplateMedium:      {0, 1, 0, 1},
	BaseplateMediumOrtec: {1, 0, 1, 1},
	BaseplateLarge:       {0, 0, 1, 1},
	BaseplateXLarge:      {1, 1, 0, 1},
	BaseplatePPCSmall:    {1, 0, 0, 1},
}

var (
	copperColor   = RGBA{0.72, 0.45, 0.2, 1}
	detectorColor = RGBA{0, 1, 1, 1}
	shroudColor   = RGBA{1, 0.86, 0.86, 0.2}
)

// placeHPGeStrings groups the channel map by string and places every string
// with all its support hardware.
func (b *builder) placeHPGeStrings() error {
	stringSlots := make(map[int]map[int]*HPGeDetector)
	for i := range b.meta.Detectors {
		det := &b.meta.Detectors[i]
		slots, ok := stringSlots[det.String]
		if !ok {
			slots = make(map[int]*HPGeDetector)
			stringSlots[det.String] = slots
		}
		if other, taken := slots[det.Position]; taken {
			return fmt.Errorf("%w: detectors %s and %s share string %d slot %d",
				ErrDuplicateName, other.Name, det.Name, det.String, det.Position)
		}
		slots[det.Position] = det
	}

	stringIDs := make([]int, 0, len(stringSlots))
	for id := range stringSlots {
		stringIDs = append(stringIDs, id)
	}
	sort.Ints(stringIDs)

	for _, id := range stringIDs {
		if err := b.placeHPGeString(id, stringSlots[id]); err != nil {
			return err
		}
	}
	return nil
}

// placeHPGeString places a single string: detector units with their PEN
// plates, the nylon minishroud, and the copper support structure.
func (b *builder) placeHPGeString(stringID int, slots map[int]*HPGeDetector) error {
	stringMeta, ok := b.meta.Strings[stringID]
	if !ok {
		return fmt.Errorf("%w: no string metadata for string %d", ErrConfig, stringID)
	}

	angleRad := stringMeta.AngleDeg * math.Pi / 180
	// rotation angle for anything oriented with the string.
	stringRot := -math.Pi + angleRad

	// zTop is the internal z of the topmost detector unit's upper edge.
	zTop := -stringTopOffset

	maxSlot := 0
	for slot := range slots {
		if slot > maxSlot {
			maxSlot = slot
		}
	}

	// Deliberately walk slots 1..max: sparse strings with unpopulated slots
	// that are not at the end are not supported.
	totalRodLength := 0.0
	for slot := 1; slot <= maxSlot; slot++ {
		det, ok := slots[slot]
		if !ok {
			return fmt.Errorf("%w: string %d has no detector in slot %d (sparse strings are not supported)",
				ErrConfig, stringID, slot)
		}
		if det.RodLengthMM <= 0 {
			return fmt.Errorf("%w: detector %s has no rod length", ErrConfig, det.Name)
		}

		totalRodLength += det.RodLengthMM * warmToColdFactor

		zUnitBottom := zTop - totalRodLength
		zPen := zUnitBottom + penAboveBottom + penThickness/2
		zDet := zPen + detAbovePen

		x, y, z := ToCartesian(stringMeta.AngleDeg, stringMeta.RadiusMM, zDet, topPlateZ)
		detColor := detectorColor
		if err := b.place(PlacedVolume{
			Name:     det.Name,
			Position: Vector3{x, y, z},
			Assembly: AssemblyStrings,
			Detector: &DetectorInfo{Kind: DetectorKindGermanium, UID: det.RawID},
			Color:    &detColor,
		}); err != nil {
			return err
		}

		size, err := effectiveBaseplate(det)
		if err != nil {
			return err
		}
		penColor := penColors[size]
		x, y, z = ToCartesian(stringMeta.AngleDeg, stringMeta.RadiusMM, zPen, topPlateZ)
		if err := b.place(PlacedVolume{
			Name:     "pen_" + det.Name,
			Position: Vector3{x, y, z},
			Rotation: Rotation{Z: stringRot},
			Assembly: AssemblyStrings,
			Color:    &penColor,
		}); err != nil {
			return err
		}

		// PPC detectors carry an additional PEN ring above the crystal.
		if det.Type == DetectorPPC {
			topColor := penColors[BaseplatePPCSmall]
			x, y, z = ToCartesian(stringMeta.AngleDeg, stringMeta.RadiusMM,
				zDet+det.HeightMM+penThickness/2, topPlateZ)
			if err := b.place(PlacedVolume{
				Name:     "pen_top_" + det.Name,
				Position: Vector3{x, y, z},
				Rotation: Rotation{Z: stringRot},
				Assembly: AssemblyStrings,
				Color:    &topColor,
			}); err != nil {
				return err
			}
		}
	}

	b.log.Debug("placed string detectors",
		zap.Int("string", stringID),
		zap.Int("units", maxSlot),
		zap.Float64("rod_length", totalRodLength))

	// Nylon minishroud around the whole string.
	shroudLength := totalRodLength + shroudExtra + stringMeta.MinishroudDeltaLengthMM
	msColor := shroudColor
	x, y, z := ToCartesian(stringMeta.AngleDeg, stringMeta.RadiusMM,
		zTop-shroudLength/2+shroudZShift, topPlateZ)
	if err := b.place(PlacedVolume{
		Name:     fmt.Sprintf("minishroud_string_%d", stringID),
		Position: Vector3{x, y, z},
		Assembly: AssemblyStrings,
		Color:    &msColor,
	}); err != nil {
		return err
	}

	// Copper tripod support and tristar plate at the string top.
	support := copperColor
	x, y, z = ToCartesian(stringMeta.AngleDeg, stringMeta.RadiusMM, zTop+supportZOffset, topPlateZ)
	if err := b.place(PlacedVolume{
		Name:     fmt.Sprintf("hpge_support_copper_string_support_structure_string_%d", stringID),
		Position: Vector3{x, y, z},
		Rotation: Rotation{Z: 30*math.Pi/180 + stringRot},
		Assembly: AssemblyStrings,
		Color:    &support,
	}); err != nil {
		return err
	}

	tristarSize, err := effectiveBaseplate(slots[1])
	if err != nil {
		return err
	}
	if err := b.place(PlacedVolume{
		Name:     fmt.Sprintf("hpge_support_copper_tristar_%s_string_%d", tristarSize, stringID),
		Position: Vector3{x, y, z},
		Rotation: Rotation{Z: stringRot},
		Assembly: AssemblyStrings,
		Color:    &support,
	}); err != nil {
		return err
	}

	// Three copper rods on the rod-radius circle. The rod circle must stay
	// inside the minishroud wall.
	rodRadius := stringMeta.RodRadiusMM
	if rodRadius >= stringMeta.MinishroudRadiusMM-0.75 {
		return fmt.Errorf("%w: string %d rod radius %g does not fit inside minishroud radius %g",
			ErrConfig, stringID, rodRadius, stringMeta.MinishroudRadiusMM)
	}
	rodLength := totalRodLength + rodExtraLength
	xs, ys, _ := ToCartesian(stringMeta.AngleDeg, stringMeta.RadiusMM, 0, 0)
	for i := 0; i < 3; i++ {
		th := (-30 - float64(i)*120) * math.Pi / 180
		dx := rodRadius * math.Sin(stringRot+th)
		dy := rodRadius * math.Cos(stringRot+th)
		rod := copperColor
		if err := b.place(PlacedVolume{
			Name:     fmt.Sprintf("hpge_support_copper_string_%d_cu_rod_%d", stringID, i),
			Position: Vector3{xs + dx, ys + dy, zTop - rodLength/2 + topPlateZ},
			Assembly: AssemblyStrings,
			Color:    &rod,
		}); err != nil {
			return err
		}
	}

	return nil
}
