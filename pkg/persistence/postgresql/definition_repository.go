package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/stagegate/stagegate/pkg/models"
	"github.com/stagegate/stagegate/pkg/persistence"
)

const uniqueViolation = "23505"

// DefinitionRepository handles process definition and version rows.
type DefinitionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *DefinitionRepository) Create(ctx context.Context, def *models.ProcessDefinition) error {
	query := `
		INSERT INTO process_definitions (id, name, description, process_id, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		def.ID, def.Name, def.Description, def.ProcessID, def.Status,
		def.CreatedBy, def.CreatedAt, def.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return persistence.NewDefinitionError("Create", def.ID, persistence.ErrDuplicateName)
		}

		return fmt.Errorf("failed to insert definition: %w", err)
	}

	return nil
}

func (r *DefinitionRepository) GetByID(ctx context.Context, id string) (*models.ProcessDefinition, error) {
	query := definitionSelect + ` WHERE id = $1`

	def, err := r.scanDefinition(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewDefinitionError("GetByID", id, persistence.ErrDefinitionNotFound)
		}

		return nil, fmt.Errorf("failed to scan definition: %w", err)
	}

	return def, nil
}

func (r *DefinitionRepository) GetByName(ctx context.Context, name string) (*models.ProcessDefinition, error) {
	query := definitionSelect + ` WHERE name = $1`

	def, err := r.scanDefinition(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewDefinitionError("GetByName", name, persistence.ErrDefinitionNotFound)
		}

		return nil, fmt.Errorf("failed to scan definition: %w", err)
	}

	return def, nil
}

func (r *DefinitionRepository) List(ctx context.Context) ([]*models.ProcessDefinition, error) {
	query := definitionSelect + ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query definitions: %w", err)
	}

	defer r.closeRows(ctx, rows)

	definitions := make([]*models.ProcessDefinition, 0)

	for rows.Next() {
		def, err := r.scanDefinition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan definition: %w", err)
		}

		definitions = append(definitions, def)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating definitions: %w", err)
	}

	return definitions, nil
}

func (r *DefinitionRepository) Update(ctx context.Context, def *models.ProcessDefinition) error {
	query := `
		UPDATE process_definitions
		SET name = $1, description = $2, process_id = $3, status = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.ExecContext(ctx, query,
		def.Name, def.Description, def.ProcessID, def.Status, def.UpdatedAt, def.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return persistence.NewDefinitionError("Update", def.ID, persistence.ErrDuplicateName)
		}

		return fmt.Errorf("failed to update definition: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewDefinitionError("Update", def.ID, persistence.ErrDefinitionNotFound)
	}

	return nil
}

func (r *DefinitionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM process_definitions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete definition: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewDefinitionError("Delete", id, persistence.ErrDefinitionNotFound)
	}

	return nil
}

func (r *DefinitionRepository) CreateVersion(ctx context.Context, version *models.DefinitionVersion) error {
	query := `
		INSERT INTO definition_versions (id, definition_id, version, document, change_notes, is_active, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		version.ID, version.DefinitionID, version.Version, version.Document,
		version.ChangeNotes, version.IsActive, version.CreatedBy, version.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert definition version: %w", err)
	}

	return nil
}

func (r *DefinitionRepository) Versions(ctx context.Context, definitionID string) ([]*models.DefinitionVersion, error) {
	query := versionSelect + ` WHERE definition_id = $1 ORDER BY version DESC`

	rows, err := r.db.QueryContext(ctx, query, definitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query definition versions: %w", err)
	}

	defer r.closeRows(ctx, rows)

	versions := make([]*models.DefinitionVersion, 0)

	for rows.Next() {
		version, err := r.scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan definition version: %w", err)
		}

		versions = append(versions, version)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating definition versions: %w", err)
	}

	return versions, nil
}

func (r *DefinitionRepository) VersionByNumber(ctx context.Context, definitionID string, number int) (*models.DefinitionVersion, error) {
	query := versionSelect + ` WHERE definition_id = $1 AND version = $2`

	version, err := r.scanVersion(r.db.QueryRowContext(ctx, query, definitionID, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewDefinitionError("VersionByNumber", definitionID, persistence.ErrVersionNotFound)
		}

		return nil, fmt.Errorf("failed to scan definition version: %w", err)
	}

	return version, nil
}

func (r *DefinitionRepository) ActiveVersion(ctx context.Context, definitionID string) (*models.DefinitionVersion, error) {
	query := versionSelect + ` WHERE definition_id = $1 AND is_active`

	version, err := r.scanVersion(r.db.QueryRowContext(ctx, query, definitionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewDefinitionError("ActiveVersion", definitionID, persistence.ErrNoActiveVersion)
		}

		return nil, fmt.Errorf("failed to scan definition version: %w", err)
	}

	return version, nil
}

func (r *DefinitionRepository) NextVersionNumber(ctx context.Context, definitionID string) (int, error) {
	var next int

	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) + 1 FROM definition_versions WHERE definition_id = $1",
		definitionID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to query next version number: %w", err)
	}

	return next, nil
}

// Activate makes exactly one version of a definition active. Deactivating the
// siblings and activating the target happen in one transaction so the single
// active version invariant holds at every commit point.
func (r *DefinitionRepository) Activate(ctx context.Context, definitionID, versionID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		"UPDATE definition_versions SET is_active = FALSE WHERE definition_id = $1 AND is_active",
		definitionID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate versions: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		"UPDATE definition_versions SET is_active = TRUE WHERE id = $1 AND definition_id = $2",
		versionID, definitionID,
	)
	if err != nil {
		return fmt.Errorf("failed to activate version: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		err = persistence.NewDefinitionError("Activate", definitionID, persistence.ErrVersionNotFound)

		return err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE process_definitions SET status = $1, updated_at = NOW() WHERE id = $2",
		models.DefinitionStatusPublished, definitionID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark definition published: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const definitionSelect = `
	SELECT
		id
	  , name
	  , description
	  , process_id
	  , status
	  , created_by
	  , created_at
	  , updated_at
	FROM process_definitions
`

const versionSelect = `
	SELECT
		id
	  , definition_id
	  , version
	  , document
	  , change_notes
	  , is_active
	  , created_by
	  , created_at
	FROM definition_versions
`

func (r *DefinitionRepository) scanDefinition(scanner interface {
	Scan(dest ...any) error
}) (*models.ProcessDefinition, error) {
	var def models.ProcessDefinition

	err := scanner.Scan(
		&def.ID,
		&def.Name,
		&def.Description,
		&def.ProcessID,
		&def.Status,
		&def.CreatedBy,
		&def.CreatedAt,
		&def.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &def, nil
}

func (r *DefinitionRepository) scanVersion(scanner interface {
	Scan(dest ...any) error
}) (*models.DefinitionVersion, error) {
	var version models.DefinitionVersion

	err := scanner.Scan(
		&version.ID,
		&version.DefinitionID,
		&version.Version,
		&version.Document,
		&version.ChangeNotes,
		&version.IsActive,
		&version.CreatedBy,
		&version.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &version, nil
}

func (r *DefinitionRepository) closeRows(ctx context.Context, rows *sql.Rows) {
	err := rows.Close()
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
