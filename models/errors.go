package models

import "fmt"

// ValidationError reports input that failed an entity's construction rules.
// Construction never silently corrects bad input; only documented defaults
// (missing id, missing source) are filled in.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Entity, e.Field, e.Reason)
}
