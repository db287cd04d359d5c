package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record or image id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrValidation marks missing or malformed input.
	ErrValidation = errors.New("validation failed")
)

// RuleViolation is a rejected update: the record left status new, or the patch
// tried to change a submitter identity field.
type RuleViolation struct {
	Field  string
	Reason string
}

func (e *RuleViolation) Error() string {
	return e.Reason
}

// PersistenceError wraps a failure of the underlying database. The
// transaction it happened in has already been rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Invalid wraps ErrValidation with a human readable reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
