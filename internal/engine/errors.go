package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrLifecycleViolation is returned when execute/skip hits an
	// occurrence that is no longer PENDING.
	ErrLifecycleViolation = errors.New("occurrence already resolved")
)

// ValidationError reports malformed input to a constructor or operation.
// It is raised before any mutation takes place.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Msg)
}

func validationf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
