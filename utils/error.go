package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

// ValidationError is a recoverable, user-facing failure (locked line edits,
// missing required header fields, duplicate keys). Callers surface the
// message and keep the draft intact.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
