// Package events defines event types and structures for workflow lifecycle notifications.
package events

import (
	"time"
)

type EventType string

// Kafka topic for workflow lifecycle events.
const Topic = "stagegate.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Project lifecycle events.
	ProjectCreatedEvent   EventType = "project.created"
	ProjectCompletedEvent EventType = "project.completed"
	DecisionMadeEvent     EventType = "project.decision"

	// Definition lifecycle events.
	VersionPublishedEvent EventType = "definition.version.published"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	ProjectID string         `json:"project_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ProjectCreated is published when a project is instantiated on the active
// version of a definition.
type ProjectCreated struct {
	BaseEvent

	DefinitionID  string `json:"definition_id"`
	VersionID     string `json:"version_id"`
	InitialGroup  string `json:"initial_group"`
	InitialItem   string `json:"initial_item"`
	CurrentTaskID string `json:"current_task_id"`
}

func (p ProjectCreated) GetType() EventType {
	return ProjectCreatedEvent
}

// DecisionMade is published after a decision commits, carrying the transition
// it caused.
type DecisionMade struct {
	BaseEvent

	Action          string `json:"action"`
	FromGroup       string `json:"from_group"`
	FromItem        string `json:"from_item,omitempty"`
	ToGroup         string `json:"to_group"`
	ToItem          string `json:"to_item,omitempty"`
	Reason          string `json:"reason,omitempty"`
	DecisionMakerID string `json:"decision_maker_id,omitempty"`
}

func (d DecisionMade) GetType() EventType {
	return DecisionMadeEvent
}

// ProjectCompleted is published when a project reaches the terminal position.
type ProjectCompleted struct {
	BaseEvent

	FinalAction string        `json:"final_action"`
	Duration    time.Duration `json:"duration"`
}

func (p ProjectCompleted) GetType() EventType {
	return ProjectCompletedEvent
}

// VersionPublished is published when a definition version becomes the active
// one.
type VersionPublished struct {
	BaseEvent

	DefinitionID string `json:"definition_id"`
	VersionID    string `json:"version_id"`
	Version      int    `json:"version"`
}

func (v VersionPublished) GetType() EventType {
	return VersionPublishedEvent
}
