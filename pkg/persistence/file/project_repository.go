package file

import (
	"context"
	"errors"
	"os"
	"sort"
	"time"

	"github.com/stagegate/stagegate/pkg/models"
	"github.com/stagegate/stagegate/pkg/persistence"
)

// ProjectRepository stores projects one file each.
type ProjectRepository struct {
	p *Persistence
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	return r.p.writeJSON(r.p.projectPath(project.ID), project)
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	return r.getByIDLocked(id)
}

func (r *ProjectRepository) getByIDLocked(id string) (*models.Project, error) {
	var project models.Project
	if err := r.p.readJSON(r.p.projectPath(id), &project); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewProjectError("GetByID", id, persistence.ErrProjectNotFound)
		}

		return nil, err
	}

	return &project, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]*models.Project, error) {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	paths, err := r.p.listJSON("projects")
	if err != nil {
		return nil, err
	}

	projects := make([]*models.Project, 0, len(paths))

	for _, path := range paths {
		var project models.Project
		if err := r.p.readJSON(path, &project); err != nil {
			return nil, err
		}

		projects = append(projects, &project)
	}

	sort.Slice(projects, func(i, j int) bool { return projects[i].CreatedAt.After(projects[j].CreatedAt) })

	return projects, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if _, err := r.getByIDLocked(project.ID); err != nil {
		return err
	}

	project.UpdatedAt = time.Now()

	return r.p.writeJSON(r.p.projectPath(project.ID), project)
}

func (r *ProjectRepository) CountByDefinition(ctx context.Context, definitionID string) (int, error) {
	projects, err := r.List(ctx)
	if err != nil {
		return 0, err
	}

	count := 0

	for _, project := range projects {
		if project.DefinitionID == definitionID {
			count++
		}
	}

	return count, nil
}

// ExecutionStateRepository stores one state file per project.
type ExecutionStateRepository struct {
	p *Persistence
}

func (r *ExecutionStateRepository) Create(ctx context.Context, state *models.ExecutionState) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	return r.p.writeJSON(r.p.statePath(state.ProjectID), state)
}

func (r *ExecutionStateRepository) GetByProjectID(ctx context.Context, projectID string) (*models.ExecutionState, error) {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	var state models.ExecutionState
	if err := r.p.readJSON(r.p.statePath(projectID), &state); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewProjectError("GetByProjectID", projectID, persistence.ErrExecutionStateNotFound)
		}

		return nil, err
	}

	return &state, nil
}

// HistoryRepository appends to one file per project.
type HistoryRepository struct {
	p *Persistence
}

func (r *HistoryRepository) Append(ctx context.Context, entry *models.HistoryEntry) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	return r.appendLocked(entry)
}

func (r *HistoryRepository) appendLocked(entry *models.HistoryEntry) error {
	var entries []*models.HistoryEntry

	err := r.p.readJSON(r.p.historyPath(entry.ProjectID), &entries)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	entries = append(entries, entry)

	return r.p.writeJSON(r.p.historyPath(entry.ProjectID), entries)
}

func (r *HistoryRepository) ListByProject(ctx context.Context, projectID string) ([]*models.HistoryEntry, error) {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	var entries []*models.HistoryEntry

	err := r.p.readJSON(r.p.historyPath(projectID), &entries)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })

	return entries, nil
}

// CommentRepository appends to one file per project.
type CommentRepository struct {
	p *Persistence
}

func (r *CommentRepository) Add(ctx context.Context, comment *models.Comment) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	var comments []*models.Comment

	err := r.p.readJSON(r.p.commentsPath(comment.ProjectID), &comments)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	comments = append(comments, comment)

	return r.p.writeJSON(r.p.commentsPath(comment.ProjectID), comments)
}

func (r *CommentRepository) ListByProject(ctx context.Context, projectID, group string) ([]*models.Comment, error) {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	var comments []*models.Comment

	err := r.p.readJSON(r.p.commentsPath(projectID), &comments)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if group != "" {
		filtered := comments[:0]

		for _, comment := range comments {
			if comment.Group == group {
				filtered = append(filtered, comment)
			}
		}

		comments = filtered
	}

	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.After(comments[j].CreatedAt) })

	return comments, nil
}

func (r *CommentRepository) CountByProject(ctx context.Context, projectID string) (int, error) {
	comments, err := r.ListByProject(ctx, projectID, "")
	if err != nil {
		return 0, err
	}

	return len(comments), nil
}
