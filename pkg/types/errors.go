package types

import "fmt"

// ValidationError describes a schema violation in an externally produced
// document (advocate argument, judge ruling, rubric). Validation failures are
// fatal to a trial: the pipeline never coerces malformed output.
type ValidationError struct {
	Field   string // Which field failed
	Message string // What rule it broke
	Index   int    // Element index for list fields, 0 otherwise
}

func (e *ValidationError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("validation failed on %s[%d]: %s", e.Field, e.Index, e.Message)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}
