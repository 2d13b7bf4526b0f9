// Package loader implements the mapping sources that feed the validation
// engine: a CSV source for spreadsheet exports and a SQLite source for the
// metadata database. Both yield the same ordered flat record sequence; all
// I/O happens here, before the engine runs, so the engine itself never
// blocks.
package loader

import (
	"errors"
	"strings"
)

// ErrMappingNotFound is returned when a source holds no records for the
// requested mapping name. Callers surface this on the engine's
// processing-error channel, never as a validation finding.
var ErrMappingNotFound = errors.New("mapping not found")

// parseBool reads the loose boolean cells that spreadsheet exports
// produce. ok is false when the cell does not look like a boolean at all;
// the caller then applies its field default.
func parseBool(cell string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "true", "1", "yes", "y", "t":
		return true, true
	case "false", "0", "no", "n", "f":
		return false, true
	default:
		return false, false
	}
}
