// Package l200geom resolves the parameterized LEGEND-200 detector geometry
// into an ordered list of placed volumes for an external GDML writer.
//
// The pipeline is a pure, single-threaded transform:
//
//  1. Configuration merge: defaults, a YAML/JSON/TOML config file, and CLI
//     overrides are combined with explicit precedence (CLI over file over
//     default). List-valued options support +/- modifier entries applied
//     against the default list.
//  2. Assembly selection: the requested subset of geometry assemblies
//     (strings, calibration, top, wlsr, fibers) is resolved; the cryostat and
//     liquid argon volume are always included and are not selectable.
//  3. Placement resolution: every entity of every active assembly is turned
//     into an immutable PlacedVolume carrying a unique, convention-compliant
//     name and its global transform in GDML coordinates.
//
// Internal positions use a left-handed cylindrical convention: phi is
// measured clockwise from the warm-north reference direction (string 11),
// z = 0 is the top face of the array top plate, and z grows upward.
// ToCartesian converts this to the right-handed Cartesian GDML frame.
//
// All errors are permanent input defects. Configuration problems are reported
// as ErrConfig before any placement is produced; a would-be name collision is
// reported as ErrDuplicateName. There are no retries and no partial output.
package l200geom
