package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stagegate/stagegate/pkg/models"
	"github.com/stagegate/stagegate/pkg/persistence"
)

// ExecutionStateRepository handles serialized execution cursor rows.
type ExecutionStateRepository struct {
	db *sql.DB
}

func (r *ExecutionStateRepository) Create(ctx context.Context, state *models.ExecutionState) error {
	query := `
		INSERT INTO execution_states
			(id, project_id, snapshot, current_task_id, status, revision, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		state.ID, state.ProjectID, state.Snapshot,
		nullable(state.CurrentTaskID), state.Status, state.Revision,
		state.CreatedAt, state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert execution state: %w", err)
	}

	return nil
}

func (r *ExecutionStateRepository) GetByProjectID(ctx context.Context, projectID string) (*models.ExecutionState, error) {
	query := `
		SELECT
			id
		  , project_id
		  , snapshot
		  , current_task_id
		  , status
		  , revision
		  , created_at
		  , updated_at
		FROM execution_states
		WHERE project_id = $1
	`

	var (
		state         models.ExecutionState
		currentTaskID sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, projectID).Scan(
		&state.ID,
		&state.ProjectID,
		&state.Snapshot,
		&currentTaskID,
		&state.Status,
		&state.Revision,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewProjectError("GetByProjectID", projectID, persistence.ErrExecutionStateNotFound)
		}

		return nil, fmt.Errorf("failed to scan execution state: %w", err)
	}

	state.CurrentTaskID = currentTaskID.String

	return &state, nil
}
