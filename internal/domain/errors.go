package domain

import (
	"errors"
	"fmt"
)

// Kind is the stable, machine readable name of an error category. It is
// exposed to API clients alongside a human readable message.
type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindInternal     Kind = "internal_error"
)

// Sentinel errors for each Kind. Services wrap these with context using %w.
var (
	// ErrValidation is returned for malformed or out of range input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when a uniqueness rule would be violated.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized is returned for missing, invalid or expired credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when an authenticated account may not proceed.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when a resource is absent, including resources
	// owned by someone else.
	ErrNotFound = errors.New("not found")

	// ErrInternal is returned for unexpected failures and collaborator
	// inconsistencies.
	ErrInternal = errors.New("internal error")
)

// ValidationError describes a single invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap makes every ValidationError match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// KindOf reports the category of err. Unknown errors are internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}
