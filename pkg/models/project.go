package models

import "time"

// ProjectStatus represents the lifecycle state of a project instance.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// Project is the unit of work traversing a workflow. CurrentGroup and
// CurrentItem are denormalized from the execution state for cheap queries and
// must always agree with it; the serialized state is the source of truth.
type Project struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"        validate:"required,min=1,max=255"`
	Description      string        `json:"description"`
	CurrentGroup     string        `json:"current_group,omitempty"`
	CurrentItem      string        `json:"current_item,omitempty"`
	ExecutionStateID string        `json:"execution_state_id,omitempty"`
	DefinitionID     string        `json:"definition_id,omitempty"`
	VersionID        string        `json:"version_id,omitempty"`
	Status           ProjectStatus `json:"status"      validate:"required"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// ExecutionStateStatus represents the state of a serialized execution cursor.
type ExecutionStateStatus string

const (
	ExecutionStateRunning   ExecutionStateStatus = "running"
	ExecutionStateCompleted ExecutionStateStatus = "completed"
)

// ExecutionState holds the durable serialized execution cursor for exactly one
// project. Snapshot is opaque to everything except the engine codec.
// Revision implements the optimistic check that serializes concurrent
// decisions against the same project.
type ExecutionState struct {
	ID            string               `json:"id"`
	ProjectID     string               `json:"project_id" validate:"required"`
	Snapshot      []byte               `json:"snapshot"   validate:"required"`
	CurrentTaskID string               `json:"current_task_id,omitempty"`
	Status        ExecutionStateStatus `json:"status"     validate:"required"`
	Revision      int64                `json:"revision"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}
