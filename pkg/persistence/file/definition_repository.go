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

// DefinitionRepository stores definitions one file each and all versions of a
// definition in a single file, which makes activation a one-file atomic write.
type DefinitionRepository struct {
	p *Persistence
}

func (r *DefinitionRepository) Create(ctx context.Context, def *models.ProcessDefinition) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if existing, _ := r.getByNameLocked(def.Name); existing != nil {
		return persistence.NewDefinitionError("Create", def.ID, persistence.ErrDuplicateName)
	}

	return r.p.writeJSON(r.p.definitionPath(def.ID), def)
}

func (r *DefinitionRepository) GetByID(ctx context.Context, id string) (*models.ProcessDefinition, error) {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	return r.getByIDLocked(id)
}

func (r *DefinitionRepository) getByIDLocked(id string) (*models.ProcessDefinition, error) {
	var def models.ProcessDefinition
	if err := r.p.readJSON(r.p.definitionPath(id), &def); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewDefinitionError("GetByID", id, persistence.ErrDefinitionNotFound)
		}

		return nil, err
	}

	return &def, nil
}

func (r *DefinitionRepository) GetByName(ctx context.Context, name string) (*models.ProcessDefinition, error) {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	def, err := r.getByNameLocked(name)
	if err != nil {
		return nil, err
	}

	if def == nil {
		return nil, persistence.NewDefinitionError("GetByName", name, persistence.ErrDefinitionNotFound)
	}

	return def, nil
}

func (r *DefinitionRepository) getByNameLocked(name string) (*models.ProcessDefinition, error) {
	defs, err := r.listLocked()
	if err != nil {
		return nil, err
	}

	for _, def := range defs {
		if def.Name == name {
			return def, nil
		}
	}

	return nil, nil
}

func (r *DefinitionRepository) List(ctx context.Context) ([]*models.ProcessDefinition, error) {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	return r.listLocked()
}

func (r *DefinitionRepository) listLocked() ([]*models.ProcessDefinition, error) {
	paths, err := r.p.listJSON("definitions")
	if err != nil {
		return nil, err
	}

	defs := make([]*models.ProcessDefinition, 0, len(paths))

	for _, path := range paths {
		var def models.ProcessDefinition
		if err := r.p.readJSON(path, &def); err != nil {
			return nil, err
		}

		defs = append(defs, &def)
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })

	return defs, nil
}

func (r *DefinitionRepository) Update(ctx context.Context, def *models.ProcessDefinition) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if _, err := r.getByIDLocked(def.ID); err != nil {
		return err
	}

	if other, _ := r.getByNameLocked(def.Name); other != nil && other.ID != def.ID {
		return persistence.NewDefinitionError("Update", def.ID, persistence.ErrDuplicateName)
	}

	def.UpdatedAt = time.Now()

	return r.p.writeJSON(r.p.definitionPath(def.ID), def)
}

func (r *DefinitionRepository) Delete(ctx context.Context, id string) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if _, err := r.getByIDLocked(id); err != nil {
		return err
	}

	if err := os.Remove(r.p.definitionPath(id)); err != nil {
		return err
	}

	// Versions go with the definition.
	if err := os.Remove(r.p.versionsPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}

func (r *DefinitionRepository) CreateVersion(ctx context.Context, version *models.DefinitionVersion) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	versions, err := r.versionsLocked(version.DefinitionID)
	if err != nil {
		return err
	}

	versions = append(versions, version)

	return r.p.writeJSON(r.p.versionsPath(version.DefinitionID), versions)
}

func (r *DefinitionRepository) Versions(ctx context.Context, definitionID string) ([]*models.DefinitionVersion, error) {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	versions, err := r.versionsLocked(definitionID)
	if err != nil {
		return nil, err
	}

	sort.Slice(versions, func(i, j int) bool { return versions[i].Version > versions[j].Version })

	return versions, nil
}

func (r *DefinitionRepository) versionsLocked(definitionID string) ([]*models.DefinitionVersion, error) {
	var versions []*models.DefinitionVersion

	err := r.p.readJSON(r.p.versionsPath(definitionID), &versions)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	return versions, nil
}

func (r *DefinitionRepository) VersionByNumber(ctx context.Context, definitionID string, number int) (*models.DefinitionVersion, error) {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	versions, err := r.versionsLocked(definitionID)
	if err != nil {
		return nil, err
	}

	for _, version := range versions {
		if version.Version == number {
			return version, nil
		}
	}

	return nil, persistence.NewDefinitionError("VersionByNumber", definitionID, persistence.ErrVersionNotFound)
}

func (r *DefinitionRepository) ActiveVersion(ctx context.Context, definitionID string) (*models.DefinitionVersion, error) {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	versions, err := r.versionsLocked(definitionID)
	if err != nil {
		return nil, err
	}

	for _, version := range versions {
		if version.IsActive {
			return version, nil
		}
	}

	return nil, persistence.NewDefinitionError("ActiveVersion", definitionID, persistence.ErrNoActiveVersion)
}

func (r *DefinitionRepository) NextVersionNumber(ctx context.Context, definitionID string) (int, error) {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	versions, err := r.versionsLocked(definitionID)
	if err != nil {
		return 0, err
	}

	next := 1
	for _, version := range versions {
		if version.Version >= next {
			next = version.Version + 1
		}
	}

	return next, nil
}

func (r *DefinitionRepository) Activate(ctx context.Context, definitionID, versionID string) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	def, err := r.getByIDLocked(definitionID)
	if err != nil {
		return err
	}

	versions, err := r.versionsLocked(definitionID)
	if err != nil {
		return err
	}

	found := false

	for _, version := range versions {
		version.IsActive = version.ID == versionID
		if version.IsActive {
			found = true
		}
	}

	if !found {
		return persistence.NewDefinitionError("Activate", definitionID, persistence.ErrVersionNotFound)
	}

	if err := r.p.writeJSON(r.p.versionsPath(definitionID), versions); err != nil {
		return err
	}

	def.Status = models.DefinitionStatusPublished
	def.UpdatedAt = time.Now()

	return r.p.writeJSON(r.p.definitionPath(definitionID), def)
}
