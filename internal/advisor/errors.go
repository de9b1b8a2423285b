package advisor

import "fmt"

// ValidationError is the only error kind raised by this package. It is always
// returned synchronously from the computation that detected the bad input;
// callers decide whether to skip the record, surface a message, or abort.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErrorf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
