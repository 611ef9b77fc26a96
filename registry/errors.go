package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateUsername is returned when the username is already registered.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrNotFound is returned when a referenced mod or user does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrFileTooLarge is returned when an uploaded file exceeds MaxModFileSize.
	ErrFileTooLarge = errors.New("file too large")
)

// ValidationError reports a precondition failure on a single input field,
// so callers can tell the user which field is at fault.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StorageError wraps an underlying store failure. The full detail is for
// logs; user-facing surfaces should render it generically.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
