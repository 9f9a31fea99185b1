package l200geom

import "errors"

var (
	// ErrConfig marks a malformed or inconsistent geometry configuration:
	// an unknown assembly tag, a mixed modifier/explicit assembly list, a
	// missing required field for an active assembly, or copper-cap dimensions
	// that cannot enclose a source. It is always raised before any placement
	// is produced.
	ErrConfig = errors.New("invalid geometry configuration")

	// ErrDuplicateName marks two resolved volumes that would share a name.
	// It indicates a configuration or metadata inconsistency, e.g. a detector
	// assigned to two string slots.
	ErrDuplicateName = errors.New("duplicate volume name")

	// ErrConfigNotFound is returned when the requested config file does not
	// exist.
	ErrConfigNotFound = errors.New("config file not found")
)
