package file

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegate/stagegate/pkg/models"
	"github.com/stagegate/stagegate/pkg/persistence"
	"github.com/stagegate/stagegate/pkg/testutil"
)

func TestProjectRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)

	project := testutil.CreateTestProject()
	require.NoError(t, p.Projects().Create(ctx, project))

	got, err := p.Projects().GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.Name, got.Name)
	assert.Equal(t, "WFG1", got.CurrentGroup)
}

func TestProjectRepository_GetMissing(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)

	_, err := p.Projects().GetByID(ctx, "missing")
	assert.True(t, persistence.IsProjectNotFound(err))
}

func TestProjectRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)

	older := testutil.CreateTestProject(func(pr *models.Project) {
		pr.CreatedAt = time.Now().UTC().Add(-time.Hour)
	})
	newer := testutil.CreateTestProject()

	require.NoError(t, p.Projects().Create(ctx, older))
	require.NoError(t, p.Projects().Create(ctx, newer))

	projects, err := p.Projects().List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, newer.ID, projects[0].ID)
}

func TestProjectRepository_UpdateMissing(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)

	err := p.Projects().Update(ctx, testutil.CreateTestProject())
	assert.True(t, persistence.IsProjectNotFound(err))
}

func TestProjectRepository_CountByDefinition(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)

	definitionID := uuid.New().String()

	for range 2 {
		project := testutil.CreateTestProject(func(pr *models.Project) {
			pr.DefinitionID = definitionID
		})
		require.NoError(t, p.Projects().Create(ctx, project))
	}

	require.NoError(t, p.Projects().Create(ctx, testutil.CreateTestProject()))

	count, err := p.Projects().CountByDefinition(ctx, definitionID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestExecutionStateRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)

	state := &models.ExecutionState{
		ID:        uuid.New().String(),
		ProjectID: uuid.New().String(),
		Snapshot:  []byte(`{"format_version":1}`),
		Status:    models.ExecutionStateRunning,
	}
	require.NoError(t, p.ExecutionStates().Create(ctx, state))

	got, err := p.ExecutionStates().GetByProjectID(ctx, state.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, state.Snapshot, got.Snapshot)
	assert.Equal(t, int64(0), got.Revision)
}

func TestExecutionStateRepository_GetMissing(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)

	_, err := p.ExecutionStates().GetByProjectID(ctx, "missing")
	assert.ErrorIs(t, err, persistence.ErrExecutionStateNotFound)
}

func TestHistoryRepository_AppendAndList(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)

	projectID := uuid.New().String()
	now := time.Now().UTC()

	first := &models.HistoryEntry{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Action:    "start",
		ToGroup:   "WFG1",
		CreatedAt: now.Add(-time.Minute),
	}
	second := &models.HistoryEntry{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Action:    "approve",
		FromGroup: "WFG1",
		ToGroup:   "WFG2",
		CreatedAt: now,
	}

	require.NoError(t, p.History().Append(ctx, first))
	require.NoError(t, p.History().Append(ctx, second))

	entries, err := p.History().ListByProject(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "approve", entries[0].Action)
	assert.Equal(t, "start", entries[1].Action)
}

func TestCommentRepository_AddListAndFilter(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)

	projectID := uuid.New().String()

	for _, group := range []string{"WFG1", "WFG1", "WFG2"} {
		comment := &models.Comment{
			ID:        uuid.New().String(),
			ProjectID: projectID,
			Group:     group,
			Content:   "note",
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, p.Comments().Add(ctx, comment))
	}

	all, err := p.Comments().ListByProject(ctx, projectID, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := p.Comments().ListByProject(ctx, projectID, "WFG1")
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	count, err := p.Comments().CountByProject(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
