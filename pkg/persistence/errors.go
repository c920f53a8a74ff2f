// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrDefinitionNotFound indicates a process definition was not found.
	ErrDefinitionNotFound = errors.New("process definition not found")

	// ErrVersionNotFound indicates a definition version was not found.
	ErrVersionNotFound = errors.New("definition version not found")

	// ErrNoActiveVersion indicates a definition has no published version.
	ErrNoActiveVersion = errors.New("definition has no active version")

	// ErrDuplicateName indicates a definition with the same name exists.
	ErrDuplicateName = errors.New("definition name already taken")

	// ErrDefinitionInUse indicates projects still reference the definition.
	ErrDefinitionInUse = errors.New("definition is referenced by projects")

	// ErrProjectNotFound indicates a project was not found.
	ErrProjectNotFound = errors.New("project not found")

	// ErrExecutionStateNotFound indicates no execution state exists for a project.
	ErrExecutionStateNotFound = errors.New("execution state not found")

	// ErrConcurrentModification indicates a lost optimistic revision check.
	// The caller should reload and retry.
	ErrConcurrentModification = errors.New("execution state was modified concurrently")
)

// DefinitionError wraps definition-related errors with operation context.
type DefinitionError struct {
	Op           string
	DefinitionID string
	Err          error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("%s operation failed for definition %s: %v", e.Op, e.DefinitionID, e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

func (e *DefinitionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewDefinitionError creates a new definition error with context.
func NewDefinitionError(op, definitionID string, err error) *DefinitionError {
	return &DefinitionError{Op: op, DefinitionID: definitionID, Err: err}
}

// ProjectError wraps project-related errors with operation context.
type ProjectError struct {
	Op        string
	ProjectID string
	Err       error
}

func (e *ProjectError) Error() string {
	return fmt.Sprintf("%s operation failed for project %s: %v", e.Op, e.ProjectID, e.Err)
}

func (e *ProjectError) Unwrap() error {
	return e.Err
}

func (e *ProjectError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewProjectError creates a new project error with context.
func NewProjectError(op, projectID string, err error) *ProjectError {
	return &ProjectError{Op: op, ProjectID: projectID, Err: err}
}

// IsDefinitionNotFound checks if an error indicates a missing definition.
func IsDefinitionNotFound(err error) bool {
	return errors.Is(err, ErrDefinitionNotFound)
}

// IsVersionNotFound checks if an error indicates a missing version.
func IsVersionNotFound(err error) bool {
	return errors.Is(err, ErrVersionNotFound)
}

// IsNoActiveVersion checks if an error indicates a definition without a
// published version.
func IsNoActiveVersion(err error) bool {
	return errors.Is(err, ErrNoActiveVersion)
}

// IsDuplicateName checks if an error indicates a name collision.
func IsDuplicateName(err error) bool {
	return errors.Is(err, ErrDuplicateName)
}

// IsDefinitionInUse checks if an error indicates a definition still
// referenced by projects.
func IsDefinitionInUse(err error) bool {
	return errors.Is(err, ErrDefinitionInUse)
}

// IsProjectNotFound checks if an error indicates a missing project.
func IsProjectNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound)
}

// IsConcurrentModification checks if an error indicates a lost revision
// check; the operation is retryable.
func IsConcurrentModification(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}
