package domain

import (
	"errors"
	"fmt"
)

// ErrUnsupportedTaxYear is wrapped by the ValidationError returned when no rate
// table is registered for the requested year.
var ErrUnsupportedTaxYear = errors.New("unsupported tax year")

// ValidationError reports hard-invalid input. No result is produced when a
// calculator returns one.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewUnsupportedTaxYear builds the error returned for an unknown rate table year.
func NewUnsupportedTaxYear(year int) *ValidationError {
	return &ValidationError{
		Field:  "tax_year",
		Value:  year,
		Reason: "no rate table is configured for this year",
		Err:    ErrUnsupportedTaxYear,
	}
}

// IsValidationError reports whether err (or anything it wraps) is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
