// Package models defines the core domain models for human-approval workflow execution.
package models

import "time"

// DefinitionStatus represents the lifecycle state of a process definition.
type DefinitionStatus string

const (
	DefinitionStatusDraft     DefinitionStatus = "draft"     // Editable, never instantiated
	DefinitionStatusPublished DefinitionStatus = "published" // Has an active version
	DefinitionStatusArchived  DefinitionStatus = "archived"  // Retired, kept for history
)

// ProcessDefinition is the named container for one approval process. The
// process document itself lives on its versions; the definition carries the
// stable process id used to locate the root process inside each document.
type ProcessDefinition struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"        validate:"required,min=1,max=255"`
	Description string           `json:"description"`
	ProcessID   string           `json:"process_id"  validate:"required,min=1,max=255"`
	Status      DefinitionStatus `json:"status"      validate:"required"`
	CreatedBy   string           `json:"created_by"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// DefinitionVersion is an immutable snapshot of a process document. Version
// numbers are per definition, monotonically increasing from 1. At most one
// version per definition is active at any time.
type DefinitionVersion struct {
	ID           string    `json:"id"`
	DefinitionID string    `json:"definition_id" validate:"required"`
	Version      int       `json:"version"       validate:"required,min=1"`
	Document     string    `json:"document"      validate:"required"`
	ChangeNotes  string    `json:"change_notes"`
	IsActive     bool      `json:"is_active"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}
