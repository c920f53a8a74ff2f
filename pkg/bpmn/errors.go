package bpmn

import (
	"errors"
	"strings"
)

// ErrInvalidDefinition is the sentinel all compilation failures match via
// errors.Is.
var ErrInvalidDefinition = errors.New("invalid process definition")

// InvalidDefinitionError carries the full list of syntax and reference
// problems found while compiling a process document. Problems are never
// silently dropped; callers surface the whole list.
type InvalidDefinitionError struct {
	Problems []string
}

func (e *InvalidDefinitionError) Error() string {
	if len(e.Problems) == 0 {
		return "invalid process definition"
	}

	return "invalid process definition: " + strings.Join(e.Problems, "; ")
}

func (e *InvalidDefinitionError) Is(target error) bool {
	return target == ErrInvalidDefinition
}

// IsInvalidDefinition checks if an error indicates a document that failed
// compilation.
func IsInvalidDefinition(err error) bool {
	return errors.Is(err, ErrInvalidDefinition)
}
