package bpmn

import (
	"errors"
	"fmt"
)

// ValidationResult is the outcome of validating a document without creating
// an execution cursor.
type ValidationResult struct {
	Valid      bool     `json:"valid"`
	Errors     []string `json:"errors"`
	ProcessIDs []string `json:"process_ids"`
	Warnings   []string `json:"warnings"`
}

// Validate performs compilation checks on a document and reports the process
// ids it discovered. When processID is non-empty it additionally verifies
// that process exists and compiles. Validate never returns an error: all
// failures land in the result.
func Validate(document, processID string) ValidationResult {
	result := ValidationResult{
		Valid:      true,
		Errors:     []string{},
		ProcessIDs: []string{},
		Warnings:   []string{},
	}

	defs, problems := parseDocument(document)
	if defs == nil {
		result.Valid = false
		result.Errors = append(result.Errors, problems...)

		return result
	}

	for i := range defs.Processes {
		if id := defs.Processes[i].ID; id != "" {
			result.ProcessIDs = append(result.ProcessIDs, id)
		}

		if len(defs.Processes[i].EndEvents) == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"process %q has no end event", defs.Processes[i].ID))
		}
	}

	root := processID
	if root == "" {
		if len(result.ProcessIDs) == 0 {
			result.Valid = false
			result.Errors = append(result.Errors, "document contains no process with an id")

			return result
		}

		root = result.ProcessIDs[0]
	}

	if _, err := Compile(document, root); err != nil {
		result.Valid = false

		var invalid *InvalidDefinitionError
		if errors.As(err, &invalid) {
			result.Errors = append(result.Errors, invalid.Problems...)
		} else {
			result.Errors = append(result.Errors, err.Error())
		}
	}

	return result
}
