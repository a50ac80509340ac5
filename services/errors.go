package services

import "fmt"

// The service error taxonomy. Handlers map these onto HTTP statuses;
// anything else surfaces as a generic server failure.

// ValidationError rejects malformed input before any persistence access.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a referenced entity as absent. Terminal for the
// operation.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// PermissionError marks a caller without rights on the target board.
// Surfaced distinctly so clients can redirect rather than retry.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string { return e.Message }

// ConflictError marks a business-rule violation against current state, e.g.
// a duplicate label color or accepting an invitation twice.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }
