package models

import "fmt"

// InvalidInputError reports malformed or out-of-range request data. The
// offending field is always named; values are never silently coerced except
// for the documented defaults applied during normalization.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: field %s: %s", e.Field, e.Reason)
}

// NewInvalidInput builds an InvalidInputError for the given field.
func NewInvalidInput(field, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Reason: reason}
}
