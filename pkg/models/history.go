package models

import "time"

// HistoryEntry is an append-only audit record of one workflow transition.
// Entries are never mutated or deleted.
type HistoryEntry struct {
	ID               string    `json:"id"`
	ProjectID        string    `json:"project_id" validate:"required"`
	FromGroup        string    `json:"from_group,omitempty"`
	ToGroup          string    `json:"to_group,omitempty"`
	Action           string    `json:"action"     validate:"required"`
	Reason           string    `json:"reason,omitempty"`
	DecisionMakerID  string    `json:"decision_maker_id"`
	DecisionMaker    string    `json:"decision_maker_name"`
	CreatedAt        time.Time `json:"created_at"`
}

// Comment is a free-text note attached to a project at a specific workflow
// group. Comments never drive transitions.
type Comment struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id" validate:"required"`
	Group     string    `json:"workflow_group" validate:"required"`
	Item      string    `json:"workflow_item,omitempty"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content" validate:"required,min=1"`
	CreatedAt time.Time `json:"created_at"`
}
