package validation

import (
	"fmt"
	"strings"
)

// MissingColumnsError is returned when a table lacks required columns.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// Hint returns advice for the submitter.
func (e *MissingColumnsError) Hint() string {
	return "Check the column headers for spelling errors; names must match the template exactly."
}

// CheckSchema returns a *MissingColumnsError listing the required columns
// absent from actual, in required order, or nil.
func CheckSchema(actual, required []string) error {
	present := make(map[string]struct{}, len(actual))
	for _, col := range actual {
		present[col] = struct{}{}
	}

	var missing []string
	for _, col := range required {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}
