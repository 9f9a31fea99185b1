package l200geom

import (
	"fmt"

	"go.uber.org/zap"
)

// Calibration system constants, all in mm. Tube positions are from the CAD
// model; the tube length is a rough estimate from MaGe.
const (
	sisTubeCount   = 4
	sisSlotCount   = 4
	sisTubeRadius  = 155.0
	sisTubeLength  = 1400.0
	sisSlotPitch   = 100.0  // vertical spacing between source slots
	sisZFullyUp    = 8250.0 // raw reading with the top slot at the plate face
)

// sisTubePhiDeg is the azimuth of each tube (index 0 = tube 1), measured in
// the internal clockwise convention.
var sisTubePhiDeg = [sisTubeCount]float64{158.57, 261.43, 338.57, 81.43}

var (
	tantalumColor = RGBA{0.5, 0.5, 0.55, 1}
	sourceColor   = RGBA{1, 0.2, 0.2, 1}
)

// placeCalibration places the four calibration tubes, the per-slot tantalum
// absorbers and the configured sources.
func (b *builder) placeCalibration() error {
	for i := 0; i < sisTubeCount; i++ {
		msColor := shroudColor
		x, y, z := ToCartesian(sisTubePhiDeg[i], sisTubeRadius, -sisTubeLength/2, topPlateZ)
		if err := b.place(PlacedVolume{
			Name:     fmt.Sprintf("calibration_tube_%d", i+1),
			Position: Vector3{x, y, z},
			Assembly: AssemblyCalibration,
			Color:    &msColor,
		}); err != nil {
			return err
		}
	}

	for _, tubeNum := range b.cfg.SISTubeNumbers() {
		if err := b.placeSISTube(tubeNum, b.cfg.SIS[tubeNum]); err != nil {
			return err
		}
	}

	if b.cfg.ExtraSource != nil {
		if err := b.placeExtraSource(b.cfg.ExtraSource); err != nil {
			return err
		}
	}
	return nil
}

// placeSISTube places the 4-slot source chain of one tube. The tantalum
// absorber is present in every slot; a source, when configured, sits nested
// inside its absorber, optionally wrapped in a copper cap.
func (b *builder) placeSISTube(tubeNum int, tube *SISTube) error {
	phi := sisTubePhiDeg[tubeNum-1]

	// The raw sis_z reading grows as the chain is lowered; the top slot sits
	// at the plate face for the fully-raised reading.
	zSlot0 := sisZFullyUp - tube.Z

	for slot := 0; slot < sisSlotCount; slot++ {
		zInternal := zSlot0 - float64(slot)*sisSlotPitch
		x, y, z := ToCartesian(phi, sisTubeRadius, zInternal, topPlateZ)

		taColor := tantalumColor
		if err := b.place(PlacedVolume{
			Name:     fmt.Sprintf("calibration_ta_absorber_sis%d_%d", tubeNum, slot),
			Position: Vector3{x, y, z},
			Assembly: AssemblyCalibration,
			Color:    &taColor,
		}); err != nil {
			return err
		}

		src := tube.Sources[slot]
		if src == nil {
			continue
		}

		srcColor := sourceColor
		if err := b.place(PlacedVolume{
			Name:     fmt.Sprintf("source_inner_sis%d_source%d", tubeNum, slot),
			Position: Vector3{x, y, z},
			Assembly: AssemblyCalibration,
			Color:    &srcColor,
		}); err != nil {
			return err
		}
		b.log.Debug("placed calibration source",
			zap.Int("tube", tubeNum),
			zap.Int("slot", slot),
			zap.String("isotope", src.Isotope))

		if src.HasCopperCap {
			capColor := copperColor
			if err := b.place(PlacedVolume{
				Name:     fmt.Sprintf("source_cu_cap_sis%d_source%d", tubeNum, slot),
				Position: Vector3{x, y, z},
				Assembly: AssemblyCalibration,
				Color:    &capColor,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// placeExtraSource places the optional additional source. Its position is
// already Cartesian in the internal frame, so only the z0 shift applies.
func (b *builder) placeExtraSource(es *ExtraSource) error {
	pos := Vector3{es.Position[0], es.Position[1], es.Position[2] + topPlateZ}

	srcColor := sourceColor
	if err := b.place(PlacedVolume{
		Name:     "source_inner" + es.NameSuffix,
		Position: pos,
		Assembly: AssemblyCalibration,
		Color:    &srcColor,
	}); err != nil {
		return err
	}

	if es.Source.HasCopperCap {
		capColor := copperColor
		if err := b.place(PlacedVolume{
			Name:     "source_cu_cap" + es.NameSuffix,
			Position: pos,
			Assembly: AssemblyCalibration,
			Color:    &capColor,
		}); err != nil {
			return err
		}
	}
	return nil
}
