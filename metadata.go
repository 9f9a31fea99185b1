package l200geom

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DetectorType is the HPGe detector geometry class.
type DetectorType string

const (
	DetectorBEGe DetectorType = "bege"
	DetectorPPC  DetectorType = "ppc"
	DetectorICPC DetectorType = "icpc"
	DetectorCoax DetectorType = "coax"
)

// HPGeDetector is the already-parsed channel-map entry of one germanium
// detector. The core consumes these as input; it does not read metadata
// files itself.
type HPGeDetector struct {
	Name         string        `yaml:"name"`
	Type         DetectorType  `yaml:"type"`
	Manufacturer string        `yaml:"manufacturer"`
	RawID        int           `yaml:"rawid"`
	String       int           `yaml:"string"`
	Position     int           `yaml:"position"` // slot in string, 1 = topmost
	HeightMM     float64       `yaml:"height_in_mm"`
	Baseplate    BaseplateSize `yaml:"baseplate"`
	// RodLengthMM is the warm length of the unit's support rod segment; it is
	// scaled by the thermal contraction factor before stacking.
	RodLengthMM float64 `yaml:"rodlength_in_mm"`
}

// StringMeta describes the spatial position of one HPGe string.
type StringMeta struct {
	RadiusMM           float64 `yaml:"radius_in_mm"`
	AngleDeg           float64 `yaml:"angle_in_deg"`
	MinishroudRadiusMM float64 `yaml:"minishroud_radius_in_mm"`
	RodRadiusMM        float64 `yaml:"rod_radius_in_mm"`
	// MinishroudDeltaLengthMM corrects the shroud length for strings with
	// missing special detectors.
	MinishroudDeltaLengthMM float64 `yaml:"minishroud_delta_length_in_mm"`
}

// SiPMChannel is one fiber-module readout channel.
type SiPMChannel struct {
	Name  string `yaml:"name"`
	RawID int    `yaml:"rawid"`
}

// FiberModule is the already-parsed description of one fiber shroud module.
type FiberModule struct {
	Name string `yaml:"name"`
	// Barrel is "inner" or "outer".
	Barrel string `yaml:"barrel"`
	// ModuleNum is the azimuthal module index within its barrel.
	ModuleNum int `yaml:"module_num"`
	// TPBThicknessNM is the wavelength-shifter coating thickness. It varies
	// slightly between modules.
	TPBThicknessNM float64     `yaml:"tpb_thickness_in_nm"`
	TopSiPM        SiPMChannel `yaml:"top"`
	BottomSiPM     SiPMChannel `yaml:"bottom"`
}

// Metadata bundles all per-detector and per-string hardware metadata the
// placement resolver consumes.
type Metadata struct {
	Detectors []HPGeDetector     `yaml:"detectors"`
	Strings   map[int]StringMeta `yaml:"strings"`
	Fibers    []FiberModule      `yaml:"fibers"`
}

// sampleMetadata is a small public stand-in for the real (collaboration
// internal) hardware metadata, used when public_geom is requested. The
// detector dimensions are round dummy values, not real hardware.
const sampleMetadata = `
strings:
  1:
    radius_in_mm: 110
    angle_in_deg: 0
    minishroud_radius_in_mm: 44
    rod_radius_in_mm: 36
  2:
    radius_in_mm: 110
    angle_in_deg: 120
    minishroud_radius_in_mm: 44
    rod_radius_in_mm: 36
  7:
    radius_in_mm: 220
    angle_in_deg: 210
    minishroud_radius_in_mm: 49
    rod_radius_in_mm: 40
detectors:
  - {name: B99000A, type: bege, manufacturer: Canberra, rawid: 1104000, string: 1, position: 1, height_in_mm: 30, baseplate: medium, rodlength_in_mm: 100}
  - {name: B99001A, type: bege, manufacturer: Canberra, rawid: 1104001, string: 1, position: 2, height_in_mm: 30, baseplate: medium, rodlength_in_mm: 100}
  - {name: V99000A, type: icpc, manufacturer: Ortec, rawid: 1105000, string: 2, position: 1, height_in_mm: 80, baseplate: medium, rodlength_in_mm: 140}
  - {name: P99000A, type: ppc, manufacturer: ORTEC, rawid: 1106000, string: 2, position: 2, height_in_mm: 45, baseplate: small, rodlength_in_mm: 110}
  - {name: C99000A, type: coax, manufacturer: Canberra, rawid: 1107000, string: 7, position: 1, height_in_mm: 90, baseplate: large, rodlength_in_mm: 150}
fibers:
  - {name: OB010011, barrel: outer, module_num: 0, tpb_thickness_in_nm: 1000, top: {name: S001, rawid: 1051600}, bottom: {name: S002, rawid: 1051601}}
  - {name: OB030031, barrel: outer, module_num: 1, tpb_thickness_in_nm: 1000, top: {name: S003, rawid: 1051602}, bottom: {name: S004, rawid: 1051603}}
  - {name: IB010011, barrel: inner, module_num: 0, tpb_thickness_in_nm: 1000, top: {name: S005, rawid: 1051604}, bottom: {name: S006, rawid: 1051605}}
`

// SampleMetadata returns the embedded public sample metadata used for
// public_geom builds and tests. The string-7 minishroud length correction
// for the missing special detectors is already applied.
func SampleMetadata() *Metadata {
	var meta Metadata
	if err := yaml.Unmarshal([]byte(sampleMetadata), &meta); err != nil {
		// The sample is a compile-time constant; failing to parse it is a
		// programming error, not an input defect.
		panic(fmt.Sprintf("embedded sample metadata is invalid: %v", err))
	}

	s7 := meta.Strings[7]
	s7.MinishroudDeltaLengthMM = -200
	meta.Strings[7] = s7

	return &meta
}
