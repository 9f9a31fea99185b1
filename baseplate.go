package l200geom

import "fmt"

// BaseplateSize is the PEN baseplate size category of a detector unit.
type BaseplateSize string

const (
	BaseplateSmall       BaseplateSize = "small"
	BaseplateMedium      BaseplateSize = "medium"
	BaseplateMediumOrtec BaseplateSize = "medium_ortec"
	BaseplateLarge       BaseplateSize = "large"
	BaseplateXLarge      BaseplateSize = "xlarge"
	BaseplatePPCSmall    BaseplateSize = "ppc_small"
)

var validBaseplates = map[BaseplateSize]bool{
	BaseplateSmall:       true,
	BaseplateMedium:      true,
	BaseplateMediumOrtec: true,
	BaseplateLarge:       true,
	BaseplateXLarge:      true,
	BaseplatePPCSmall:    true,
}

type baseplateKey struct {
	size         BaseplateSize
	detType      DetectorType
	manufacturer string
}

// baseplateRemap is the explicit size-category decision table. Many Ortec
// ICPC detectors carry a modified medium plate.
var baseplateRemap = map[baseplateKey]BaseplateSize{
	{BaseplateMedium, DetectorICPC, "Ortec"}: BaseplateMediumOrtec,
}

// effectiveBaseplate returns the size category to use for a detector unit,
// applying the remap table before any lookup of plate or tristar geometry.
func effectiveBaseplate(det *HPGeDetector) (BaseplateSize, error) {
	if !validBaseplates[det.Baseplate] {
		return "", fmt.Errorf("%w: detector %s has invalid baseplate size %q",
			ErrConfig, det.Name, det.Baseplate)
	}
	key := baseplateKey{det.Baseplate, det.Type, det.Manufacturer}
	if remapped, ok := baseplateRemap[key]; ok {
		return remapped, nil
	}
	return det.Baseplate, nil
}
