// Package file provides file-based persistence for development and tests.
// All operations serialize through one mutex; a single process owns the root
// directory.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/stagegate/stagegate/pkg/models"
	"github.com/stagegate/stagegate/pkg/persistence"
)

// Persistence implements persistence.Persistence on the file system.
type Persistence struct {
	root string
	mu   sync.Mutex

	definitionRepo *DefinitionRepository
	projectRepo    *ProjectRepository
	stateRepo      *ExecutionStateRepository
	historyRepo    *HistoryRepository
	commentRepo    *CommentRepository
}

// NewPersistence creates a file persistence layer rooted at the given
// directory, creating it when missing.
func NewPersistence(root string) (*Persistence, error) {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	for _, dir := range []string{"definitions", "versions", "projects", "states", "history", "comments"} {
		if err := os.MkdirAll(filepath.Join(cleanRoot, dir), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", dir, err)
		}
	}

	p := &Persistence{root: cleanRoot}
	p.definitionRepo = &DefinitionRepository{p: p}
	p.projectRepo = &ProjectRepository{p: p}
	p.stateRepo = &ExecutionStateRepository{p: p}
	p.historyRepo = &HistoryRepository{p: p}
	p.commentRepo = &CommentRepository{p: p}

	return p, nil
}

func (p *Persistence) Definitions() persistence.DefinitionRepository { return p.definitionRepo }

func (p *Persistence) Projects() persistence.ProjectRepository { return p.projectRepo }

func (p *Persistence) ExecutionStates() persistence.ExecutionStateRepository { return p.stateRepo }

func (p *Persistence) History() persistence.HistoryRepository { return p.historyRepo }

func (p *Persistence) Comments() persistence.CommentRepository { return p.commentRepo }

// SaveDecision writes project, state and history under one lock. The state
// write checks the optimistic revision before anything is touched.
func (p *Persistence) SaveDecision(ctx context.Context, project *models.Project, state *models.ExecutionState, entry *models.HistoryEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var stored models.ExecutionState
	if err := p.readJSON(p.statePath(state.ProjectID), &stored); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return persistence.NewProjectError("SaveDecision", project.ID, persistence.ErrExecutionStateNotFound)
		}

		return err
	}

	if stored.Revision != state.Revision {
		return persistence.NewProjectError("SaveDecision", project.ID, persistence.ErrConcurrentModification)
	}

	state.Revision++

	if err := p.writeJSON(p.statePath(state.ProjectID), state); err != nil {
		return err
	}

	if err := p.writeJSON(p.projectPath(project.ID), project); err != nil {
		return err
	}

	return p.historyRepo.appendLocked(entry)
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close is a no-op for file persistence.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

func (p *Persistence) definitionPath(id string) string {
	return filepath.Join(p.root, "definitions", id+".json")
}

func (p *Persistence) versionsPath(definitionID string) string {
	return filepath.Join(p.root, "versions", definitionID+".json")
}

func (p *Persistence) projectPath(id string) string {
	return filepath.Join(p.root, "projects", id+".json")
}

func (p *Persistence) statePath(projectID string) string {
	return filepath.Join(p.root, "states", projectID+".json")
}

func (p *Persistence) historyPath(projectID string) string {
	return filepath.Join(p.root, "history", projectID+".json")
}

func (p *Persistence) commentsPath(projectID string) string {
	return filepath.Join(p.root, "comments", projectID+".json")
}

func (p *Persistence) readJSON(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return nil
}

func (p *Persistence) writeJSON(path string, in any) error {
	raw, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func (p *Persistence) listJSON(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(p.root, dir))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	paths := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		paths = append(paths, filepath.Join(p.root, dir, entry.Name()))
	}

	return paths, nil
}
