package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the posting or source looked up does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput means a caller-supplied value failed validation.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError names the field that failed so handlers can report it
// without leaking the rest of the record.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
