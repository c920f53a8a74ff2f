package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stagegate/stagegate/pkg/models"
	"github.com/stagegate/stagegate/pkg/persistence"
)

// ProjectRepository handles project rows.
type ProjectRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects
			(id, name, description, current_group, current_item, execution_state_id, definition_id, version_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		project.ID, project.Name, project.Description,
		nullable(project.CurrentGroup), nullable(project.CurrentItem),
		nullable(project.ExecutionStateID), nullable(project.DefinitionID), nullable(project.VersionID),
		project.Status, project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := projectSelect + ` WHERE id = $1`

	project, err := r.scanProject(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewProjectError("GetByID", id, persistence.ErrProjectNotFound)
		}

		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	return project, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]*models.Project, error) {
	query := projectSelect + ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	projects := make([]*models.Project, 0)

	for rows.Next() {
		project, err := r.scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}

		projects = append(projects, project)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET name = $1, description = $2, current_group = $3, current_item = $4,
			execution_state_id = $5, status = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := r.db.ExecContext(ctx, query,
		project.Name, project.Description,
		nullable(project.CurrentGroup), nullable(project.CurrentItem),
		nullable(project.ExecutionStateID), project.Status, project.UpdatedAt, project.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewProjectError("Update", project.ID, persistence.ErrProjectNotFound)
	}

	return nil
}

func (r *ProjectRepository) CountByDefinition(ctx context.Context, definitionID string) (int, error) {
	var count int

	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM projects WHERE definition_id = $1", definitionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}

	return count, nil
}

const projectSelect = `
	SELECT
		id
	  , name
	  , description
	  , current_group
	  , current_item
	  , execution_state_id
	  , definition_id
	  , version_id
	  , status
	  , created_at
	  , updated_at
	FROM projects
`

func (r *ProjectRepository) scanProject(scanner interface {
	Scan(dest ...any) error
}) (*models.Project, error) {
	var (
		project models.Project

		currentGroup, currentItem, stateID, definitionID, versionID sql.NullString
	)

	err := scanner.Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&currentGroup,
		&currentItem,
		&stateID,
		&definitionID,
		&versionID,
		&project.Status,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	project.CurrentGroup = currentGroup.String
	project.CurrentItem = currentItem.String
	project.ExecutionStateID = stateID.String
	project.DefinitionID = definitionID.String
	project.VersionID = versionID.String

	return &project, nil
}

// nullable maps the empty string to SQL NULL so UUID columns accept it.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
