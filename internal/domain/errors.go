package domain

import "fmt"

// ValidationError marks malformed input to a calculation. It is surfaced
// immediately to the caller and never retried internally.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a named field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// DivisionGuardError is returned when a derived rate would divide by zero
// (zero daily consumption, zero mean). Callers substitute a sentinel instead
// of propagating NaN or Inf.
type DivisionGuardError struct {
	Operation string
}

func (e *DivisionGuardError) Error() string {
	return fmt.Sprintf("%s: division by zero guarded", e.Operation)
}

// DataIntegrityWarning records a non-fatal inconsistency in externally
// sourced fields. It does not abort a calculation; the resolver falls back
// to safe defaults and the warning is logged for observability.
type DataIntegrityWarning struct {
	ProductCode string
	Field       string
	Message     string
}

func (w *DataIntegrityWarning) Error() string {
	return fmt.Sprintf("data integrity warning for %s (%s): %s", w.ProductCode, w.Field, w.Message)
}
