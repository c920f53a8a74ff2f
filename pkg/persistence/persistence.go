// Package persistence provides the data storage abstraction for definitions,
// projects, execution states, history and comments.
package persistence

import (
	"context"

	"github.com/stagegate/stagegate/pkg/models"
)

type Persistence interface {
	Definitions() DefinitionRepository
	Projects() ProjectRepository
	ExecutionStates() ExecutionStateRepository
	History() HistoryRepository
	Comments() CommentRepository

	// SaveDecision commits the outcome of one decision atomically: the
	// project's denormalized position, the new serialized execution state,
	// and the appended history record all land together or not at all. The
	// execution state write carries an optimistic revision check; a losing
	// concurrent writer gets ErrConcurrentModification and nothing is
	// persisted.
	SaveDecision(ctx context.Context, project *models.Project, state *models.ExecutionState, entry *models.HistoryEntry) error

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// DefinitionRepository owns process definitions and their versions.
type DefinitionRepository interface {
	Create(ctx context.Context, def *models.ProcessDefinition) error
	GetByID(ctx context.Context, id string) (*models.ProcessDefinition, error)
	GetByName(ctx context.Context, name string) (*models.ProcessDefinition, error)
	List(ctx context.Context) ([]*models.ProcessDefinition, error)
	Update(ctx context.Context, def *models.ProcessDefinition) error
	Delete(ctx context.Context, id string) error

	CreateVersion(ctx context.Context, version *models.DefinitionVersion) error
	Versions(ctx context.Context, definitionID string) ([]*models.DefinitionVersion, error)
	VersionByNumber(ctx context.Context, definitionID string, number int) (*models.DefinitionVersion, error)
	ActiveVersion(ctx context.Context, definitionID string) (*models.DefinitionVersion, error)
	NextVersionNumber(ctx context.Context, definitionID string) (int, error)

	// Activate deactivates every sibling version and activates the target in
	// one atomic step, upholding the at-most-one-active invariant under
	// concurrent publish calls. It also marks the definition published.
	Activate(ctx context.Context, definitionID, versionID string) error
}

// ProjectRepository owns project instances.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	CountByDefinition(ctx context.Context, definitionID string) (int, error)
}

// ExecutionStateRepository owns the serialized execution cursors.
type ExecutionStateRepository interface {
	Create(ctx context.Context, state *models.ExecutionState) error
	GetByProjectID(ctx context.Context, projectID string) (*models.ExecutionState, error)
}

// HistoryRepository is append-only.
type HistoryRepository interface {
	Append(ctx context.Context, entry *models.HistoryEntry) error
	ListByProject(ctx context.Context, projectID string) ([]*models.HistoryEntry, error)
}

// CommentRepository owns step comments. An empty group lists all comments.
type CommentRepository interface {
	Add(ctx context.Context, comment *models.Comment) error
	ListByProject(ctx context.Context, projectID, group string) ([]*models.Comment, error)
	CountByProject(ctx context.Context, projectID string) (int, error)
}
