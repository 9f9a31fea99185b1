package l200geom

import (
	"fmt"
	"strings"
)

// Assembly identifies one selectable top-level group of geometry volumes.
// The cryostat and liquid argon volume are always built and have no tag.
type Assembly string

const (
	AssemblyStrings     Assembly = "strings"
	AssemblyCalibration Assembly = "calibration"
	AssemblyTop         Assembly = "top"
	AssemblyWLSR        Assembly = "wlsr"
	AssemblyFibers      Assembly = "fibers"
)

// definedAssemblies is the fixed tag table; resolution never accepts a tag
// outside of it.
var definedAssemblies = []Assembly{
	AssemblyStrings,
	AssemblyCalibration,
	AssemblyTop,
	AssemblyWLSR,
	AssemblyFibers,
}

// DefaultAssemblies returns the default assembly selection. All defined
// assemblies, including the fiber shroud, are built by default.
func DefaultAssemblies() []Assembly {
	out := make([]Assembly, len(definedAssemblies))
	copy(out, definedAssemblies)
	return out
}

func isDefinedAssembly(tag Assembly) bool {
	for _, a := range definedAssemblies {
		if a == tag {
			return true
		}
	}
	return false
}

// ResolveAssemblies resolves a requested assembly list into the set of
// active assembly tags.
//
// A nil or empty request selects the defaults. If the first entry starts
// with '+' or '-', the whole list is interpreted as modifiers applied
// incrementally against the default set; otherwise the list replaces the
// default set entirely. Mixing the two forms in one list, or referencing an
// unknown tag, fails with ErrConfig.
//
// Resolution is idempotent and order-independent for explicit lists;
// modifier lists are applied left to right.
func ResolveAssemblies(requested []string) (map[Assembly]bool, error) {
	selected := make(map[Assembly]bool)

	if len(requested) == 0 {
		for _, a := range DefaultAssemblies() {
			selected[a] = true
		}
		return selected, nil
	}

	modifierForm := strings.HasPrefix(requested[0], "+") || strings.HasPrefix(requested[0], "-")

	if modifierForm {
		for _, a := range DefaultAssemblies() {
			selected[a] = true
		}
		for _, entry := range requested {
			if len(entry) < 2 || (entry[0] != '+' && entry[0] != '-') {
				return nil, fmt.Errorf("%w: assembly list mixes modifier and explicit entries (%q)", ErrConfig, entry)
			}
			tag := Assembly(entry[1:])
			if !isDefinedAssembly(tag) {
				return nil, fmt.Errorf("%w: unknown assembly tag %q", ErrConfig, entry[1:])
			}
			if entry[0] == '+' {
				selected[tag] = true
			} else {
				delete(selected, tag)
			}
		}
		return selected, nil
	}

	for _, entry := range requested {
		if strings.HasPrefix(entry, "+") || strings.HasPrefix(entry, "-") {
			return nil, fmt.Errorf("%w: assembly list mixes explicit and modifier entries (%q)", ErrConfig, entry)
		}
		tag := Assembly(entry)
		if !isDefinedAssembly(tag) {
			return nil, fmt.Errorf("%w: unknown assembly tag %q", ErrConfig, entry)
		}
		selected[tag] = true
	}
	return selected, nil
}
