package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskpilot-api/internal/domain"
	"github.com/phrazzld/taskpilot-api/internal/store"
)

// Common service errors. Each wraps a domain kind so callers can classify
// them with domain.KindOf.
var (
	// ErrTaskNotFound indicates that no task with the id belongs to the
	// caller. Tasks owned by someone else are reported the same way.
	ErrTaskNotFound = fmt.Errorf("%w: task not found", domain.ErrNotFound)

	// ErrEmptyBulkSelection is returned when a bulk update names no tasks.
	ErrEmptyBulkSelection = domain.NewValidationError("task_ids", "at least one task id is required")
)

// ServiceError wraps an unexpected failure with the operation that hit it.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "list_tasks", "update_task")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError. Known store conditions are
// returned as their domain sentinel instead of being wrapped.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, domain.ErrValidation):
		return err
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
