// Package services provides the application operations over definitions,
// projects and decisions, plus the standardized error taxonomy the HTTP
// layer maps onto status codes.
package services

import (
	"errors"
	"fmt"

	"github.com/stagegate/stagegate/pkg/lock"
	"github.com/stagegate/stagegate/pkg/models"
	"github.com/stagegate/stagegate/pkg/persistence"
)

// Business logic errors. Validation errors map to 400, conflicts to 409.
var (
	// Validation errors (400 Bad Request).
	ErrNameRequired     = errors.New("definition name is required")
	ErrDocumentRequired = errors.New("process document is required")
	ErrInvalidTarget    = errors.New("decision target is not reachable from the current position")
	ErrUnknownGroup     = errors.New("unknown workflow group")

	// Business logic conflicts (409 Conflict).
	ErrProjectCompleted  = errors.New("project already reached the end of its workflow")
	ErrNoReadyCheckpoint = errors.New("project has no checkpoint awaiting a decision")
	ErrVersionArchived   = errors.New("cannot modify an archived definition")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrDocumentRequired) ||
		errors.Is(err, ErrInvalidTarget) ||
		errors.Is(err, ErrUnknownGroup) ||
		errors.Is(err, models.ErrUnknownAction) ||
		errors.Is(err, models.ErrTargetRequired) ||
		errors.Is(err, models.ErrReasonRequired)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrProjectCompleted) ||
		errors.Is(err, ErrNoReadyCheckpoint) ||
		errors.Is(err, ErrVersionArchived) ||
		errors.Is(err, lock.ErrAlreadyLocked) ||
		errors.Is(err, persistence.ErrConcurrentModification) ||
		errors.Is(err, persistence.ErrDuplicateName) ||
		errors.Is(err, persistence.ErrDefinitionInUse)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, persistence.ErrDefinitionNotFound) ||
		errors.Is(err, persistence.ErrVersionNotFound) ||
		errors.Is(err, persistence.ErrNoActiveVersion) ||
		errors.Is(err, persistence.ErrProjectNotFound) ||
		errors.Is(err, persistence.ErrExecutionStateNotFound)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
