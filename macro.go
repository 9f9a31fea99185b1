package l200geom

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// WriteDetectorMacro writes a Geant4 macro registering every active detector
// volume for use with remage. Lines have the form
//
//	/RMG/Geometry/RegisterDetector <Type> <name> <uid>
//
// A volume name appearing twice is registered only once.
func WriteDetectorMacro(volumes []PlacedVolume, w io.Writer) error {
	written := make(map[string]bool)
	for _, pv := range volumes {
		if pv.Detector == nil || written[pv.Name] {
			continue
		}
		written[pv.Name] = true
		kind := strings.ToUpper(string(pv.Detector.Kind)[:1]) + string(pv.Detector.Kind)[1:]
		if _, err := fmt.Fprintf(w, "/RMG/Geometry/RegisterDetector %s %s %d\n",
			kind, pv.Name, pv.Detector.UID); err != nil {
			return err
		}
	}
	return nil
}

// WriteVisMacro writes a Geant4 macro assigning visualization colors to all
// placed volumes that carry a color attribute.
func WriteVisMacro(volumes []PlacedVolume, w io.Writer) error {
	for _, pv := range volumes {
		if pv.Color == nil {
			continue
		}
		c := *pv.Color
		if _, err := fmt.Fprintf(w, "/vis/geometry/set/colour %s 0 %g %g %g %g\n",
			pv.Name, c[0], c[1], c[2], c[3]); err != nil {
			return err
		}
	}
	return nil
}

// WriteDetectorMacroFile is WriteDetectorMacro writing to a file.
func WriteDetectorMacroFile(volumes []PlacedVolume, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create detector macro file %q: %w", path, err)
	}
	defer f.Close()
	if err := WriteDetectorMacro(volumes, f); err != nil {
		return err
	}
	return f.Close()
}

// WriteVisMacroFile is WriteVisMacro writing to a file.
func WriteVisMacroFile(volumes []PlacedVolume, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create vis macro file %q: %w", path, err)
	}
	defer f.Close()
	if err := WriteVisMacro(volumes, f); err != nil {
		return err
	}
	return f.Close()
}
