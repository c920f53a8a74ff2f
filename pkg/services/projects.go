package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stagegate/stagegate/pkg/engine"
	"github.com/stagegate/stagegate/pkg/eventbus"
	"github.com/stagegate/stagegate/pkg/events"
	"github.com/stagegate/stagegate/pkg/lock"
	"github.com/stagegate/stagegate/pkg/models"
	"github.com/stagegate/stagegate/pkg/otelhelper"
	"github.com/stagegate/stagegate/pkg/persistence"
	"github.com/stagegate/stagegate/pkg/position"
)

// HistoryActionStart is the action recorded when a project is instantiated.
const HistoryActionStart = "start"

// Projects manages project instances and decision processing.
type Projects struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventPublisher
	locker      lock.ProjectLocker
	codec       *engine.Codec
	tracer      trace.Tracer
}

// NewProjects creates a new project service.
func NewProjects(persistence persistence.Persistence, eventBus eventbus.EventPublisher, locker lock.ProjectLocker) (*Projects, error) {
	codec, err := engine.NewCodec()
	if err != nil {
		return nil, err
	}

	return &Projects{
		persistence: persistence,
		eventBus:    eventBus,
		locker:      locker,
		codec:       codec,
		tracer:      otel.Tracer("stagegate.services.projects"),
	}, nil
}

// InstantiateRequest carries the fields to start a project on a definition.
type InstantiateRequest struct {
	Name         string
	Description  string
	DefinitionID string
	CreatedBy    string
}

// Instantiate starts a new project on the active version of a definition and
// advances it to its first checkpoint. The version is pinned at creation;
// later publishes never move a running project.
func (s *Projects) Instantiate(ctx context.Context, req InstantiateRequest) (*models.Project, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "projects.instantiate",
		attribute.String(otelhelper.DefinitionIDKey, req.DefinitionID),
	)
	defer span.End()

	if req.Name == "" {
		return nil, ErrNameRequired
	}

	def, err := s.persistence.Definitions().GetByID(ctx, req.DefinitionID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	version, err := s.persistence.Definitions().ActiveVersion(ctx, req.DefinitionID)
	if err != nil {
		return nil, err
	}

	cur, err := engine.New(version.Document, def.ProcessID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize execution: %w", err)
	}

	err = cur.Advance()
	if err != nil {
		return nil, fmt.Errorf("failed to advance to first checkpoint: %w", err)
	}

	pos, taskID := s.position(cur)
	span.SetAttributes(
		attribute.String(otelhelper.GroupKey, pos.Group),
		attribute.String(otelhelper.TaskIDKey, taskID),
	)

	snapshot, err := s.codec.Encode(cur)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	project := &models.Project{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Description:  req.Description,
		CurrentGroup: pos.Group,
		CurrentItem:  pos.Item,
		DefinitionID: def.ID,
		VersionID:    version.ID,
		Status:       models.ProjectStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	state := &models.ExecutionState{
		ID:            uuid.New().String(),
		ProjectID:     project.ID,
		Snapshot:      snapshot,
		CurrentTaskID: taskID,
		Status:        models.ExecutionStateRunning,
		Revision:      0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	project.ExecutionStateID = state.ID

	err = s.persistence.Projects().Create(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	err = s.persistence.ExecutionStates().Create(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to create execution state: %w", err)
	}

	entry := &models.HistoryEntry{
		ID:              uuid.New().String(),
		ProjectID:       project.ID,
		ToGroup:         pos.Group,
		Action:          HistoryActionStart,
		DecisionMakerID: req.CreatedBy,
		CreatedAt:       now,
	}

	err = s.persistence.History().Append(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to record start entry: %w", err)
	}

	if s.eventBus != nil {
		event := events.ProjectCreated{
			BaseEvent: events.BaseEvent{
				ID:        uuid.New().String(),
				Type:      events.ProjectCreatedEvent,
				Timestamp: now,
				ProjectID: project.ID,
			},
			DefinitionID:  def.ID,
			VersionID:     version.ID,
			InitialGroup:  pos.Group,
			InitialItem:   pos.Item,
			CurrentTaskID: taskID,
		}

		_ = s.eventBus.Publish(ctx, project.ID, event)
	}

	return project, nil
}

// FetchByID retrieves a project by its ID.
func (s *Projects) FetchByID(ctx context.Context, id string) (*models.Project, error) {
	return s.persistence.Projects().GetByID(ctx, id)
}

// List retrieves all projects.
func (s *Projects) List(ctx context.Context) ([]*models.Project, error) {
	return s.persistence.Projects().List(ctx)
}

// DecideRequest carries one decision against a project's ready checkpoint.
type DecideRequest struct {
	Action            string
	TargetGroup       string
	TargetItem        string
	Reason            string
	DecisionMakerID   string
	DecisionMakerName string
}

// DecideResult reports the transition a committed decision caused.
type DecideResult struct {
	Project   *models.Project
	FromGroup string
	FromItem  string
	ToGroup   string
	ToItem    string
	Completed bool
}

// Decide resolves the ready checkpoint of a project. The whole round-trip is
// serialized per project: decode the stored cursor, apply the decision,
// advance to the next checkpoint or completion, and commit the new state
// together with its audit entry. Exactly one history entry is written per
// accepted decision.
func (s *Projects) Decide(ctx context.Context, projectID string, req DecideRequest) (*DecideResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "projects.decide",
		attribute.String(otelhelper.ProjectIDKey, projectID),
		attribute.String(otelhelper.ActionKey, req.Action),
	)
	defer span.End()

	decision, err := models.ParseDecision(req.Action, req.TargetGroup, req.TargetItem, req.Reason)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	release, err := s.locker.Acquire(ctx, projectID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}
	defer release()

	project, err := s.persistence.Projects().GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if project.Status != models.ProjectStatusActive {
		return nil, ErrProjectCompleted
	}

	state, err := s.persistence.ExecutionStates().GetByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	cur, err := s.codec.Decode(state.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to restore execution state: %w", err)
	}

	taskID, ready := cur.ReadyTaskID()
	if !ready {
		return nil, ErrNoReadyCheckpoint
	}

	from, ok := position.Parse(taskID)
	if !ok {
		return nil, fmt.Errorf("checkpoint %q does not map to a workflow position", taskID)
	}

	err = s.validateTarget(decision, from)
	if err != nil {
		return nil, err
	}

	err = cur.CompleteCheckpoint(decision.TaskData())
	if err != nil {
		return nil, fmt.Errorf("failed to complete checkpoint: %w", err)
	}

	err = cur.Advance()
	if err != nil {
		return nil, fmt.Errorf("failed to advance workflow: %w", err)
	}

	to, nextTaskID := s.position(cur)

	snapshot, err := s.codec.Encode(cur)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	state.Snapshot = snapshot
	state.CurrentTaskID = nextTaskID
	state.UpdatedAt = now

	project.CurrentGroup = to.Group
	project.CurrentItem = to.Item
	project.UpdatedAt = now

	if cur.Completed() {
		state.Status = models.ExecutionStateCompleted
		project.Status = models.ProjectStatusCompleted
	}

	entry := &models.HistoryEntry{
		ID:              uuid.New().String(),
		ProjectID:       project.ID,
		FromGroup:       from.Group,
		ToGroup:         to.Group,
		Action:          string(decision.Action()),
		Reason:          models.Reason(decision),
		DecisionMakerID: req.DecisionMakerID,
		DecisionMaker:   req.DecisionMakerName,
		CreatedAt:       now,
	}

	err = s.persistence.SaveDecision(ctx, project, state, entry)
	if err != nil {
		otelhelper.SetError(span, err,
			attribute.String(otelhelper.GroupKey, from.Group),
		)

		return nil, err
	}

	span.SetAttributes(
		attribute.String(otelhelper.GroupKey, to.Group),
		attribute.String(otelhelper.ItemKey, to.Item),
	)

	s.publishDecision(ctx, project, decision, req, from, to, now)

	return &DecideResult{
		Project:   project,
		FromGroup: from.Group,
		FromItem:  from.Item,
		ToGroup:   to.Group,
		ToItem:    to.Item,
		Completed: cur.Completed(),
	}, nil
}

// AvailableTransitions reports which decisions are legal from the project's
// current group.
func (s *Projects) AvailableTransitions(ctx context.Context, projectID string) (position.AvailableTransitions, error) {
	project, err := s.persistence.Projects().GetByID(ctx, projectID)
	if err != nil {
		return position.AvailableTransitions{}, err
	}

	return position.Transitions(project.CurrentGroup), nil
}

// History lists the audit trail of a project, newest first.
func (s *Projects) History(ctx context.Context, projectID string) ([]*models.HistoryEntry, error) {
	if _, err := s.persistence.Projects().GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	return s.persistence.History().ListByProject(ctx, projectID)
}

// AddCommentRequest carries a free-text note for a project.
type AddCommentRequest struct {
	Group    string
	Item     string
	UserID   string
	UserName string
	Content  string
}

// AddComment attaches a note to a project at a workflow group. Comments are
// annotations only and never move the workflow.
func (s *Projects) AddComment(ctx context.Context, projectID string, req AddCommentRequest) (*models.Comment, error) {
	project, err := s.persistence.Projects().GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	group := req.Group
	if group == "" {
		group = project.CurrentGroup
	}

	if _, ok := position.Step(group); !ok {
		return nil, ErrUnknownGroup
	}

	comment := &models.Comment{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Group:     group,
		Item:      req.Item,
		UserID:    req.UserID,
		UserName:  req.UserName,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	}

	err = s.persistence.Comments().Add(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	return comment, nil
}

// Comments lists a project's comments, optionally filtered by group.
func (s *Projects) Comments(ctx context.Context, projectID, group string) ([]*models.Comment, error) {
	if _, err := s.persistence.Projects().GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	return s.persistence.Comments().ListByProject(ctx, projectID, group)
}

// position maps the cursor to its (group, item) address. A completed cursor
// normalizes to the terminal position.
func (s *Projects) position(cur *engine.Cursor) (models.Position, string) {
	if cur.Completed() {
		return models.TerminalPosition(), ""
	}

	taskID, ok := cur.ReadyTaskID()
	if !ok {
		return models.Position{}, ""
	}

	pos, ok := position.Parse(taskID)
	if !ok {
		return models.Position{}, taskID
	}

	return pos, taskID
}

// validateTarget checks decision targets against the static transition rules
// before the engine sees the decision.
func (s *Projects) validateTarget(decision models.Decision, from models.Position) error {
	switch d := decision.(type) {
	case models.SendBack:
		if d.TargetGroup != "" {
			if _, ok := position.Step(d.TargetGroup); !ok {
				return ErrUnknownGroup
			}

			if !position.ValidSendBackTarget(from.Group, d.TargetGroup) {
				return NewValidationError("Decide", "INVALID_SEND_BACK_TARGET",
					fmt.Sprintf("cannot send back from %s to %s", from.Group, d.TargetGroup), ErrInvalidTarget)
			}

			return nil
		}

		if !position.ValidItemTarget(from.Group, d.TargetItem) {
			return NewValidationError("Decide", "INVALID_SEND_BACK_TARGET",
				fmt.Sprintf("item %s does not exist in %s", d.TargetItem, from.Group), ErrInvalidTarget)
		}

		return nil

	case models.SkipTo:
		if _, ok := position.Step(d.TargetGroup); !ok {
			return ErrUnknownGroup
		}

		if !position.ValidSkipTarget(from.Group, d.TargetGroup) {
			return NewValidationError("Decide", "INVALID_SKIP_TARGET",
				fmt.Sprintf("cannot skip from %s to %s", from.Group, d.TargetGroup), ErrInvalidTarget)
		}

		return nil

	default:
		return nil
	}
}

func (s *Projects) publishDecision(ctx context.Context, project *models.Project, decision models.Decision, req DecideRequest, from, to models.Position, now time.Time) {
	if s.eventBus == nil {
		return
	}

	event := events.DecisionMade{
		BaseEvent: events.BaseEvent{
			ID:        uuid.New().String(),
			Type:      events.DecisionMadeEvent,
			Timestamp: now,
			ProjectID: project.ID,
		},
		Action:          string(decision.Action()),
		FromGroup:       from.Group,
		FromItem:        from.Item,
		ToGroup:         to.Group,
		ToItem:          to.Item,
		Reason:          models.Reason(decision),
		DecisionMakerID: req.DecisionMakerID,
	}

	_ = s.eventBus.Publish(ctx, project.ID, event)

	if project.Status == models.ProjectStatusCompleted {
		completed := events.ProjectCompleted{
			BaseEvent: events.BaseEvent{
				ID:        uuid.New().String(),
				Type:      events.ProjectCompletedEvent,
				Timestamp: now,
				ProjectID: project.ID,
			},
			FinalAction: string(decision.Action()),
			Duration:    now.Sub(project.CreatedAt),
		}

		_ = s.eventBus.Publish(ctx, project.ID, completed)
	}
}
