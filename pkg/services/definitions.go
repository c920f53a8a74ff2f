package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stagegate/stagegate/pkg/bpmn"
	"github.com/stagegate/stagegate/pkg/eventbus"
	"github.com/stagegate/stagegate/pkg/events"
	"github.com/stagegate/stagegate/pkg/models"
	"github.com/stagegate/stagegate/pkg/persistence"
)

// Definitions manages process definitions and their version lifecycle.
type Definitions struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventPublisher
}

// NewDefinitions creates a new definition service.
func NewDefinitions(persistence persistence.Persistence, eventBus eventbus.EventPublisher) *Definitions {
	return &Definitions{
		persistence: persistence,
		eventBus:    eventBus,
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Definitions) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// CreateDefinitionRequest carries the fields needed to create a definition
// with its initial version.
type CreateDefinitionRequest struct {
	Name        string
	Description string
	ProcessID   string
	Document    string
	ChangeNotes string
	CreatedBy   string
}

// Create registers a new definition in draft status with version 1 holding
// the document. The version starts inactive; projects cannot be instantiated
// until a version is published.
func (s *Definitions) Create(ctx context.Context, req CreateDefinitionRequest) (*models.ProcessDefinition, *models.DefinitionVersion, error) {
	if req.Name == "" {
		return nil, nil, ErrNameRequired
	}

	if req.Document == "" {
		return nil, nil, ErrDocumentRequired
	}

	processID := req.ProcessID

	result := bpmn.Validate(req.Document, processID)
	if !result.Valid {
		return nil, nil, &bpmn.InvalidDefinitionError{Problems: result.Errors}
	}

	if processID == "" {
		processID = result.ProcessIDs[0]
	}

	now := time.Now().UTC()

	def := &models.ProcessDefinition{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		ProcessID:   processID,
		Status:      models.DefinitionStatusDraft,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.persistence.Definitions().Create(ctx, def)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create definition: %w", err)
	}

	version := &models.DefinitionVersion{
		ID:           uuid.New().String(),
		DefinitionID: def.ID,
		Version:      1,
		Document:     req.Document,
		ChangeNotes:  req.ChangeNotes,
		IsActive:     false,
		CreatedBy:    req.CreatedBy,
		CreatedAt:    now,
	}

	err = s.persistence.Definitions().CreateVersion(ctx, version)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create initial version: %w", err)
	}

	return def, version, nil
}

// FetchByID retrieves a definition by its ID.
func (s *Definitions) FetchByID(ctx context.Context, id string) (*models.ProcessDefinition, error) {
	return s.persistence.Definitions().GetByID(ctx, id)
}

// List retrieves all definitions.
func (s *Definitions) List(ctx context.Context) ([]*models.ProcessDefinition, error) {
	return s.persistence.Definitions().List(ctx)
}

// UpdateDefinitionRequest carries the mutable metadata of a definition.
type UpdateDefinitionRequest struct {
	Name        string
	Description string
}

// Update modifies the metadata of a definition. The process documents
// themselves are immutable; changing behavior means creating a new version.
func (s *Definitions) Update(ctx context.Context, id string, req UpdateDefinitionRequest) (*models.ProcessDefinition, error) {
	def, err := s.persistence.Definitions().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if def.Status == models.DefinitionStatusArchived {
		return nil, ErrVersionArchived
	}

	if req.Name != "" {
		def.Name = req.Name
	}

	if req.Description != "" {
		def.Description = req.Description
	}

	def.UpdatedAt = time.Now().UTC()

	err = s.persistence.Definitions().Update(ctx, def)
	if err != nil {
		return nil, err
	}

	return def, nil
}

// Delete removes a definition and its versions. A definition referenced by
// any project is kept and the call fails with a conflict.
func (s *Definitions) Delete(ctx context.Context, id string) error {
	if _, err := s.persistence.Definitions().GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.persistence.Projects().CountByDefinition(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count projects: %w", err)
	}

	if count > 0 {
		return persistence.NewDefinitionError("Delete", id, persistence.ErrDefinitionInUse)
	}

	return s.persistence.Definitions().Delete(ctx, id)
}

// CreateVersionRequest carries the fields for adding a version to an existing
// definition.
type CreateVersionRequest struct {
	Document    string
	ChangeNotes string
	CreatedBy   string
	Publish     bool
}

// CreateVersion adds a new immutable version holding the document. With
// Publish set the new version becomes active immediately; otherwise the
// currently active version keeps serving new projects.
func (s *Definitions) CreateVersion(ctx context.Context, definitionID string, req CreateVersionRequest) (*models.DefinitionVersion, error) {
	if req.Document == "" {
		return nil, ErrDocumentRequired
	}

	def, err := s.persistence.Definitions().GetByID(ctx, definitionID)
	if err != nil {
		return nil, err
	}

	if def.Status == models.DefinitionStatusArchived {
		return nil, ErrVersionArchived
	}

	result := bpmn.Validate(req.Document, def.ProcessID)
	if !result.Valid {
		return nil, &bpmn.InvalidDefinitionError{Problems: result.Errors}
	}

	number, err := s.persistence.Definitions().NextVersionNumber(ctx, definitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate version number: %w", err)
	}

	version := &models.DefinitionVersion{
		ID:           uuid.New().String(),
		DefinitionID: definitionID,
		Version:      number,
		Document:     req.Document,
		ChangeNotes:  req.ChangeNotes,
		IsActive:     false,
		CreatedBy:    req.CreatedBy,
		CreatedAt:    time.Now().UTC(),
	}

	err = s.persistence.Definitions().CreateVersion(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("failed to create version: %w", err)
	}

	if req.Publish {
		err = s.activate(ctx, def, version)
		if err != nil {
			return nil, err
		}

		version.IsActive = true
	}

	return version, nil
}

// Versions lists all versions of a definition, newest first.
func (s *Definitions) Versions(ctx context.Context, definitionID string) ([]*models.DefinitionVersion, error) {
	if _, err := s.persistence.Definitions().GetByID(ctx, definitionID); err != nil {
		return nil, err
	}

	return s.persistence.Definitions().Versions(ctx, definitionID)
}

// ActiveVersion returns the version currently serving new projects.
func (s *Definitions) ActiveVersion(ctx context.Context, definitionID string) (*models.DefinitionVersion, error) {
	return s.persistence.Definitions().ActiveVersion(ctx, definitionID)
}

// Publish makes the given version number the single active version of the
// definition. Running projects keep the version they started on.
func (s *Definitions) Publish(ctx context.Context, definitionID string, number int) (*models.DefinitionVersion, error) {
	def, err := s.persistence.Definitions().GetByID(ctx, definitionID)
	if err != nil {
		return nil, err
	}

	version, err := s.persistence.Definitions().VersionByNumber(ctx, definitionID, number)
	if err != nil {
		return nil, err
	}

	err = s.activate(ctx, def, version)
	if err != nil {
		return nil, err
	}

	version.IsActive = true

	return version, nil
}

// Rollback restores the behavior of an older version by copying its document
// into a brand new version and activating that. Version numbers stay
// monotonic and history is never rewritten.
func (s *Definitions) Rollback(ctx context.Context, definitionID string, number int, createdBy string) (*models.DefinitionVersion, error) {
	def, err := s.persistence.Definitions().GetByID(ctx, definitionID)
	if err != nil {
		return nil, err
	}

	source, err := s.persistence.Definitions().VersionByNumber(ctx, definitionID, number)
	if err != nil {
		return nil, err
	}

	next, err := s.persistence.Definitions().NextVersionNumber(ctx, definitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate version number: %w", err)
	}

	version := &models.DefinitionVersion{
		ID:           uuid.New().String(),
		DefinitionID: definitionID,
		Version:      next,
		Document:     source.Document,
		ChangeNotes:  fmt.Sprintf("Rollback to version %d", number),
		IsActive:     false,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now().UTC(),
	}

	err = s.persistence.Definitions().CreateVersion(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("failed to create rollback version: %w", err)
	}

	err = s.activate(ctx, def, version)
	if err != nil {
		return nil, err
	}

	version.IsActive = true

	return version, nil
}

// ValidateDocument checks a document without persisting anything.
func (s *Definitions) ValidateDocument(_ context.Context, document, processID string) bpmn.ValidationResult {
	return bpmn.Validate(document, processID)
}

func (s *Definitions) activate(ctx context.Context, def *models.ProcessDefinition, version *models.DefinitionVersion) error {
	err := s.persistence.Definitions().Activate(ctx, def.ID, version.ID)
	if err != nil {
		return fmt.Errorf("failed to activate version: %w", err)
	}

	if s.eventBus != nil {
		event := events.VersionPublished{
			BaseEvent: events.BaseEvent{
				ID:        uuid.New().String(),
				Type:      events.VersionPublishedEvent,
				Timestamp: time.Now().UTC(),
			},
			DefinitionID: def.ID,
			VersionID:    version.ID,
			Version:      version.Version,
		}

		_ = s.eventBus.Publish(ctx, def.ID, event)
	}

	return nil
}
