// Package postgresql provides PostgreSQL persistence for definitions,
// projects and workflow execution state.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/stagegate/stagegate/pkg/models"
	"github.com/stagegate/stagegate/pkg/persistence"
	"github.com/stagegate/stagegate/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db             *sql.DB
	logger         *slog.Logger
	definitionRepo *DefinitionRepository
	projectRepo    *ProjectRepository
	stateRepo      *ExecutionStateRepository
	historyRepo    *HistoryRepository
	commentRepo    *CommentRepository
}

// NewPersistence creates a new PostgreSQL persistence layer and runs pending
// migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:             database,
		logger:         logger,
		definitionRepo: &DefinitionRepository{db: database, logger: logger},
		projectRepo:    &ProjectRepository{db: database, logger: logger},
		stateRepo:      &ExecutionStateRepository{db: database},
		historyRepo:    &HistoryRepository{db: database, logger: logger},
		commentRepo:    &CommentRepository{db: database, logger: logger},
	}, nil
}

func (p *Persistence) Definitions() persistence.DefinitionRepository { return p.definitionRepo }

func (p *Persistence) Projects() persistence.ProjectRepository { return p.projectRepo }

func (p *Persistence) ExecutionStates() persistence.ExecutionStateRepository { return p.stateRepo }

func (p *Persistence) History() persistence.HistoryRepository { return p.historyRepo }

func (p *Persistence) Comments() persistence.CommentRepository { return p.commentRepo }

// SaveDecision persists the outcome of one decision atomically: the advanced
// execution state, the denormalized project position and the audit entry
// commit together or not at all. The revision check rejects a state written
// over a newer one.
func (p *Persistence) SaveDecision(ctx context.Context, project *models.Project, state *models.ExecutionState, entry *models.HistoryEntry) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var storedRevision int64

	err = tx.QueryRowContext(ctx,
		"SELECT revision FROM execution_states WHERE project_id = $1 FOR UPDATE",
		state.ProjectID,
	).Scan(&storedRevision)
	if err != nil {
		return fmt.Errorf("failed to lock execution state: %w", err)
	}

	if storedRevision != state.Revision {
		err = persistence.NewProjectError("SaveDecision", project.ID, persistence.ErrConcurrentModification)

		return err
	}

	state.Revision++

	_, err = tx.ExecContext(ctx, `
		UPDATE execution_states
		SET snapshot = $1, current_task_id = $2, status = $3, revision = $4, updated_at = $5
		WHERE project_id = $6
	`, state.Snapshot, state.CurrentTaskID, state.Status, state.Revision, state.UpdatedAt, state.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to update execution state: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE projects
		SET current_group = $1, current_item = $2, status = $3, updated_at = $4
		WHERE id = $5
	`, project.CurrentGroup, project.CurrentItem, project.Status, project.UpdatedAt, project.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workflow_history
			(id, project_id, from_group, to_group, action, reason, decision_maker_id, decision_maker_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, entry.ID, entry.ProjectID, entry.FromGroup, entry.ToGroup, entry.Action,
		entry.Reason, entry.DecisionMakerID, entry.DecisionMaker, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
