package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/stagegate/stagegate/pkg/models"
)

// CommentRepository handles project comment rows.
type CommentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *CommentRepository) Add(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO project_comments
			(id, project_id, workflow_group, workflow_item, user_id, user_name, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.ProjectID, comment.Group, nullable(comment.Item),
		comment.UserID, comment.UserName, comment.Content, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}

	return nil
}

func (r *CommentRepository) ListByProject(ctx context.Context, projectID, group string) ([]*models.Comment, error) {
	query := `
		SELECT
			id
		  , project_id
		  , workflow_group
		  , workflow_item
		  , user_id
		  , user_name
		  , content
		  , created_at
		FROM project_comments
		WHERE project_id = $1
		  AND ($2 = '' OR workflow_group = $2)
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID, group)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	comments := make([]*models.Comment, 0)

	for rows.Next() {
		var (
			comment models.Comment
			item    sql.NullString
		)

		err := rows.Scan(
			&comment.ID,
			&comment.ProjectID,
			&comment.Group,
			&item,
			&comment.UserID,
			&comment.UserName,
			&comment.Content,
			&comment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}

		comment.Item = item.String

		comments = append(comments, &comment)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}

func (r *CommentRepository) CountByProject(ctx context.Context, projectID string) (int, error) {
	var count int

	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM project_comments WHERE project_id = $1", projectID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}

	return count, nil
}
