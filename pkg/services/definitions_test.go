package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegate/stagegate/pkg/bpmn"
	"github.com/stagegate/stagegate/pkg/models"
	"github.com/stagegate/stagegate/pkg/persistence"
	"github.com/stagegate/stagegate/pkg/persistence/file"
	"github.com/stagegate/stagegate/pkg/testutil"
)

func newDefinitionService(t *testing.T) *Definitions {
	t.Helper()

	p, err := file.NewPersistence(t.TempDir())
	require.NoError(t, err)

	return NewDefinitions(p, nil)
}

func createRequest() CreateDefinitionRequest {
	return CreateDefinitionRequest{
		Name:      "Design Approval",
		ProcessID: testutil.ApprovalProcessID,
		Document:  testutil.ApprovalDocument,
		CreatedBy: "user-1",
	}
}

func TestDefinitions_Create(t *testing.T) {
	ctx := context.Background()
	svc := newDefinitionService(t)

	def, version, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	assert.Equal(t, models.DefinitionStatusDraft, def.Status)
	assert.Equal(t, testutil.ApprovalProcessID, def.ProcessID)
	assert.Equal(t, 1, version.Version)
	assert.False(t, version.IsActive)

	// Nothing serves new projects until a version is published.
	_, err = svc.ActiveVersion(ctx, def.ID)
	assert.True(t, persistence.IsNoActiveVersion(err))
}

func TestDefinitions_CreateDefaultsProcessID(t *testing.T) {
	ctx := context.Background()
	svc := newDefinitionService(t)

	req := createRequest()
	req.ProcessID = ""

	def, _, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, testutil.ApprovalProcessID, def.ProcessID)
}

func TestDefinitions_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newDefinitionService(t)

	req := createRequest()
	req.Name = ""
	_, _, err := svc.Create(ctx, req)
	assert.True(t, IsValidationError(err))

	req = createRequest()
	req.Document = ""
	_, _, err = svc.Create(ctx, req)
	assert.True(t, IsValidationError(err))
}

func TestDefinitions_CreateInvalidDocument(t *testing.T) {
	ctx := context.Background()
	svc := newDefinitionService(t)

	req := createRequest()
	req.Document = "<definitions></definitions>"

	_, _, err := svc.Create(ctx, req)
	require.Error(t, err)

	var invalid *bpmn.InvalidDefinitionError
	require.ErrorAs(t, err, &invalid)
	assert.NotEmpty(t, invalid.Problems)
}

func TestDefinitions_CreateDuplicateName(t *testing.T) {
	ctx := context.Background()
	svc := newDefinitionService(t)

	_, _, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	_, _, err = svc.Create(ctx, createRequest())
	assert.True(t, IsConflictError(err))
}

func TestDefinitions_Update(t *testing.T) {
	ctx := context.Background()
	svc := newDefinitionService(t)

	def, _, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, def.ID, UpdateDefinitionRequest{Name: "Renamed", Description: "New purpose"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "New purpose", updated.Description)
}

func TestDefinitions_UpdateArchived(t *testing.T) {
	ctx := context.Background()
	svc := newDefinitionService(t)

	def, _, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	def.Status = models.DefinitionStatusArchived
	require.NoError(t, svc.persistence.Definitions().Update(ctx, def))

	_, err = svc.Update(ctx, def.ID, UpdateDefinitionRequest{Name: "Renamed"})
	assert.True(t, IsConflictError(err))
}

func TestDefinitions_DeleteInUse(t *testing.T) {
	ctx := context.Background()
	svc := newDefinitionService(t)

	def, _, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	project := testutil.CreateTestProject(func(p *models.Project) {
		p.DefinitionID = def.ID
	})
	require.NoError(t, svc.persistence.Projects().Create(ctx, project))

	err = svc.Delete(ctx, def.ID)
	assert.True(t, IsConflictError(err))
	assert.True(t, persistence.IsDefinitionInUse(err))
}

func TestDefinitions_Delete(t *testing.T) {
	ctx := context.Background()
	svc := newDefinitionService(t)

	def, _, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, def.ID))

	_, err = svc.FetchByID(ctx, def.ID)
	assert.True(t, IsNotFoundError(err))
}

func TestDefinitions_CreateVersionUnpublished(t *testing.T) {
	ctx := context.Background()
	svc := newDefinitionService(t)

	def, _, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	_, err = svc.Publish(ctx, def.ID, 1)
	require.NoError(t, err)

	version, err := svc.CreateVersion(ctx, def.ID, CreateVersionRequest{
		Document:    testutil.ApprovalDocument,
		ChangeNotes: "tighten review gates",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, version.Version)
	assert.False(t, version.IsActive)

	// Version 1 keeps serving until the new one is published.
	active, err := svc.ActiveVersion(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, active.Version)
}

func TestDefinitions_CreateVersionWithPublish(t *testing.T) {
	ctx := context.Background()
	svc := newDefinitionService(t)

	def, _, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	version, err := svc.CreateVersion(ctx, def.ID, CreateVersionRequest{
		Document: testutil.ApprovalDocument,
		Publish:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, version.Version)
	assert.True(t, version.IsActive)

	active, err := svc.ActiveVersion(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, active.Version)

	got, err := svc.FetchByID(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefinitionStatusPublished, got.Status)
}

func TestDefinitions_CreateVersionInvalidDocument(t *testing.T) {
	ctx := context.Background()
	svc := newDefinitionService(t)

	def, _, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	_, err = svc.CreateVersion(ctx, def.ID, CreateVersionRequest{Document: "<definitions></definitions>"})

	var invalid *bpmn.InvalidDefinitionError
	assert.ErrorAs(t, err, &invalid)
}

func TestDefinitions_PublishKeepsOneActive(t *testing.T) {
	ctx := context.Background()
	svc := newDefinitionService(t)

	def, _, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	_, err = svc.CreateVersion(ctx, def.ID, CreateVersionRequest{Document: testutil.ApprovalDocument})
	require.NoError(t, err)

	_, err = svc.Publish(ctx, def.ID, 1)
	require.NoError(t, err)

	_, err = svc.Publish(ctx, def.ID, 2)
	require.NoError(t, err)

	versions, err := svc.Versions(ctx, def.ID)
	require.NoError(t, err)

	activeCount := 0

	for _, version := range versions {
		if version.IsActive {
			activeCount++
			assert.Equal(t, 2, version.Version)
		}
	}

	assert.Equal(t, 1, activeCount)
}

func TestDefinitions_PublishUnknownVersion(t *testing.T) {
	ctx := context.Background()
	svc := newDefinitionService(t)

	def, _, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	_, err = svc.Publish(ctx, def.ID, 9)
	assert.True(t, persistence.IsVersionNotFound(err))
}

func TestDefinitions_RollbackCopiesIntoNewVersion(t *testing.T) {
	ctx := context.Background()
	svc := newDefinitionService(t)

	def, _, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	_, err = svc.CreateVersion(ctx, def.ID, CreateVersionRequest{
		Document: testutil.ApprovalDocument,
		Publish:  true,
	})
	require.NoError(t, err)

	version, err := svc.Rollback(ctx, def.ID, 1, "user-2")
	require.NoError(t, err)

	assert.Equal(t, 3, version.Version)
	assert.True(t, version.IsActive)
	assert.Equal(t, testutil.ApprovalDocument, version.Document)
	assert.Equal(t, "Rollback to version 1", version.ChangeNotes)
	assert.Equal(t, "user-2", version.CreatedBy)

	active, err := svc.ActiveVersion(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, active.Version)
}

func TestDefinitions_ValidateDocument(t *testing.T) {
	svc := newDefinitionService(t)

	result := svc.ValidateDocument(context.Background(), testutil.ApprovalDocument, "")
	assert.True(t, result.Valid)

	result = svc.ValidateDocument(context.Background(), "not xml at all <", "")
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestDefinitions_HealthCheck(t *testing.T) {
	svc := newDefinitionService(t)

	message, healthy := svc.HealthCheck(context.Background())
	assert.True(t, healthy)
	assert.Contains(t, message, "healthy")
}
