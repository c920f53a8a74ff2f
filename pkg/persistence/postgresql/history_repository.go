package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/stagegate/stagegate/pkg/models"
)

// HistoryRepository handles append-only workflow history rows.
type HistoryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *HistoryRepository) Append(ctx context.Context, entry *models.HistoryEntry) error {
	query := `
		INSERT INTO workflow_history
			(id, project_id, from_group, to_group, action, reason, decision_maker_id, decision_maker_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.ProjectID, entry.FromGroup, entry.ToGroup, entry.Action,
		entry.Reason, entry.DecisionMakerID, entry.DecisionMaker, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	return nil
}

func (r *HistoryRepository) ListByProject(ctx context.Context, projectID string) ([]*models.HistoryEntry, error) {
	query := `
		SELECT
			id
		  , project_id
		  , from_group
		  , to_group
		  , action
		  , reason
		  , decision_maker_id
		  , decision_maker_name
		  , created_at
		FROM workflow_history
		WHERE project_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	entries := make([]*models.HistoryEntry, 0)

	for rows.Next() {
		var (
			entry models.HistoryEntry

			fromGroup, toGroup, reason, makerID, makerName sql.NullString
		)

		err := rows.Scan(
			&entry.ID,
			&entry.ProjectID,
			&fromGroup,
			&toGroup,
			&entry.Action,
			&reason,
			&makerID,
			&makerName,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		entry.FromGroup = fromGroup.String
		entry.ToGroup = toGroup.String
		entry.Reason = reason.String
		entry.DecisionMakerID = makerID.String
		entry.DecisionMaker = makerName.String

		entries = append(entries, &entry)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return entries, nil
}
