package simdata

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("simdata: validation failed")
	// ErrConfiguration indicates the data instance is not wired to a usable survey.
	ErrConfiguration = errors.New("simdata: configuration error")
	// ErrNoSurvey indicates an operation that needs a survey ran without one.
	ErrNoSurvey = fmt.Errorf("%w: a survey must be attached to address data by source and receiver", ErrConfiguration)
	// ErrInconsistentSurvey indicates the receiver datum counts walked by the
	// index map do not cover [0, survey nD) exactly.
	ErrInconsistentSurvey = fmt.Errorf("%w: survey receivers do not cover the data vector", ErrConfiguration)
	// ErrUnknownKey indicates a (source, receiver) pair absent from the index map.
	ErrUnknownKey = errors.New("simdata: unknown source/receiver pair")
	// ErrUnknownField indicates a field name the data instance does not carry.
	ErrUnknownField = errors.New("simdata: unknown field")
	// ErrState indicates uncertainty was requested while neither
	// standard_deviation nor noise_floor is set.
	ErrState = errors.New("simdata: standard_deviation and/or noise_floor must be set before asking for uncertainties; alternatively set the uncertainty directly")
	// ErrDeprecated is returned by FromVector.
	ErrDeprecated = errors.New("simdata: FromVector has been deprecated; use the index map to address data by source and receiver")
)

// ValidationError reports an assignment whose length does not match the data
// vector, or a ranged write whose values do not fit the target range.
type ValidationError struct {
	Field string
	Got   int
	Want  int
	// Range is set for writes addressed to a sub-range of the field.
	Range *Range
	// Reason replaces the length message when the failure is not a length
	// mismatch.
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Reason != "" {
		return fmt.Sprintf("simdata: %s: %s", e.Field, e.Reason)
	}
	if e.Range != nil {
		return fmt.Sprintf("simdata: %s[%d:%d] expects %d values, got %d", e.Field, e.Range.Begin, e.Range.End, e.Want, e.Got)
	}
	return fmt.Sprintf("simdata: %s must have the same length as the number of data; got len %d, survey expects nD = %d", e.Field, e.Got, e.Want)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// validateLength is the single length check behind every field assignment.
func validateLength(field Field, got, want int) error {
	if got == want {
		return nil
	}
	return &ValidationError{Field: string(field), Got: got, Want: want}
}
