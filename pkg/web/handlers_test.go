package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegate/stagegate/pkg/lock"
	"github.com/stagegate/stagegate/pkg/persistence/file"
	"github.com/stagegate/stagegate/pkg/services"
	"github.com/stagegate/stagegate/pkg/testutil"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	p, err := file.NewPersistence(t.TempDir())
	require.NoError(t, err)

	definitionService := services.NewDefinitions(p, nil)

	projectService, err := services.NewProjects(p, nil, lock.NewMemoryLocker())
	require.NoError(t, err)

	handlers := NewAPIHandlers(definitionService, projectService, validator.New())

	app := fiber.New()

	definitions := app.Group("/workflow-definitions")
	definitions.Get("/", handlers.GetDefinitions)
	definitions.Post("/", handlers.CreateDefinition)
	definitions.Post("/validate", handlers.ValidateDocument)
	definitions.Get("/:id", handlers.GetDefinition)
	definitions.Patch("/:id", handlers.UpdateDefinition)
	definitions.Delete("/:id", handlers.DeleteDefinition)
	definitions.Post("/:id/versions", handlers.CreateVersion)
	definitions.Get("/:id/versions", handlers.GetVersions)
	definitions.Get("/:id/versions/active", handlers.GetActiveVersion)
	definitions.Post("/:id/versions/:number/publish", handlers.PublishVersion)
	definitions.Post("/:id/versions/:number/rollback", handlers.RollbackVersion)

	projects := app.Group("/projects")
	projects.Get("/", handlers.GetProjects)
	projects.Post("/", handlers.CreateProject)
	projects.Get("/:id", handlers.GetProject)
	projects.Post("/:id/decisions", handlers.Decide)
	projects.Get("/:id/transitions", handlers.GetTransitions)
	projects.Get("/:id/history", handlers.GetHistory)
	projects.Post("/:id/comments", handlers.AddComment)
	projects.Get("/:id/comments", handlers.GetComments)

	steps := app.Group("/workflow-steps")
	steps.Get("/", handlers.GetWorkflowSteps)
	steps.Get("/:group", handlers.GetWorkflowStep)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()

	status, raw := doRawRequest(t, app, method, path, body)

	if len(raw) == 0 {
		return status, nil
	}

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)

	return status, decoded
}

func doListRequest(t *testing.T, app *fiber.App, path string) (int, []any) {
	t.Helper()

	status, raw := doRawRequest(t, app, http.MethodGet, path, nil)

	var decoded []any
	require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)

	return status, decoded
}

func doRawRequest(t *testing.T, app *fiber.App, method, path string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, raw
}

func createDefinition(t *testing.T, app *fiber.App) string {
	t.Helper()

	status, body := doRequest(t, app, http.MethodPost, "/workflow-definitions", CreateDefinitionRequest{
		Name:     "Design Approval",
		Document: testutil.ApprovalDocument,
	})
	require.Equal(t, http.StatusCreated, status)

	definition, ok := body["definition"].(map[string]any)
	require.True(t, ok)

	id, ok := definition["id"].(string)
	require.True(t, ok)

	return id
}

func publishDefinition(t *testing.T, app *fiber.App) string {
	t.Helper()

	id := createDefinition(t, app)

	status, _ := doRequest(t, app, http.MethodPost, "/workflow-definitions/"+id+"/versions/1/publish", nil)
	require.Equal(t, http.StatusOK, status)

	return id
}

func createProject(t *testing.T, app *fiber.App) string {
	t.Helper()

	definitionID := publishDefinition(t, app)

	status, body := doRequest(t, app, http.MethodPost, "/projects", CreateProjectRequest{
		Name:         "Riverside Tower",
		DefinitionID: definitionID,
	})
	require.Equal(t, http.StatusCreated, status)

	id, ok := body["id"].(string)
	require.True(t, ok)

	return id
}

func TestCreateDefinition(t *testing.T) {
	app := newTestApp(t)

	status, body := doRequest(t, app, http.MethodPost, "/workflow-definitions", CreateDefinitionRequest{
		Name:     "Design Approval",
		Document: testutil.ApprovalDocument,
	})

	require.Equal(t, http.StatusCreated, status)

	definition := body["definition"].(map[string]any)
	assert.Equal(t, "draft", definition["status"])
	assert.Equal(t, testutil.ApprovalProcessID, definition["process_id"])

	version := body["version"].(map[string]any)
	assert.Equal(t, float64(1), version["version"])
	assert.Equal(t, false, version["is_active"])
}

func TestCreateDefinition_MissingName(t *testing.T) {
	app := newTestApp(t)

	status, _ := doRequest(t, app, http.MethodPost, "/workflow-definitions", CreateDefinitionRequest{
		Document: testutil.ApprovalDocument,
	})

	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCreateDefinition_InvalidDocument(t *testing.T) {
	app := newTestApp(t)

	status, body := doRequest(t, app, http.MethodPost, "/workflow-definitions", CreateDefinitionRequest{
		Name:     "Broken",
		Document: "<definitions></definitions>",
	})

	require.Equal(t, http.StatusUnprocessableEntity, status)
	problems, ok := body["errors"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, problems)
}

func TestCreateDefinition_DuplicateName(t *testing.T) {
	app := newTestApp(t)
	createDefinition(t, app)

	status, _ := doRequest(t, app, http.MethodPost, "/workflow-definitions", CreateDefinitionRequest{
		Name:     "Design Approval",
		Document: testutil.ApprovalDocument,
	})

	assert.Equal(t, http.StatusConflict, status)
}

func TestGetDefinition_NotFound(t *testing.T) {
	app := newTestApp(t)

	status, _ := doRequest(t, app, http.MethodGet, "/workflow-definitions/missing", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGetDefinitions(t *testing.T) {
	app := newTestApp(t)
	createDefinition(t, app)

	status, list := doListRequest(t, app, "/workflow-definitions/")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list, 1)
}

func TestUpdateDefinition(t *testing.T) {
	app := newTestApp(t)
	id := createDefinition(t, app)

	name := "Renamed"

	status, body := doRequest(t, app, http.MethodPatch, "/workflow-definitions/"+id, UpdateDefinitionRequest{
		Name: &name,
	})

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Renamed", body["name"])
}

func TestDeleteDefinition(t *testing.T) {
	app := newTestApp(t)
	id := createDefinition(t, app)

	status, _ := doRequest(t, app, http.MethodDelete, "/workflow-definitions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = doRequest(t, app, http.MethodGet, "/workflow-definitions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteDefinition_InUse(t *testing.T) {
	app := newTestApp(t)
	projectID := createProject(t, app)

	status, body := doRequest(t, app, http.MethodGet, "/projects/"+projectID, nil)
	require.Equal(t, http.StatusOK, status)

	definitionID := body["definition_id"].(string)

	status, _ = doRequest(t, app, http.MethodDelete, "/workflow-definitions/"+definitionID, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestValidateDocument(t *testing.T) {
	app := newTestApp(t)

	status, body := doRequest(t, app, http.MethodPost, "/workflow-definitions/validate", ValidateDocumentRequest{
		Document: testutil.ApprovalDocument,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["valid"])

	status, body = doRequest(t, app, http.MethodPost, "/workflow-definitions/validate", ValidateDocumentRequest{
		Document: "<definitions></definitions>",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["valid"])
}

func TestVersionLifecycle(t *testing.T) {
	app := newTestApp(t)
	id := publishDefinition(t, app)

	status, body := doRequest(t, app, http.MethodPost, "/workflow-definitions/"+id+"/versions", CreateVersionRequest{
		Document:    testutil.ApprovalDocument,
		ChangeNotes: "tighten review gates",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(2), body["version"])
	assert.Equal(t, false, body["is_active"])

	status, body = doRequest(t, app, http.MethodGet, "/workflow-definitions/"+id+"/versions/active", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["version"])

	status, body = doRequest(t, app, http.MethodPost, "/workflow-definitions/"+id+"/versions/2/publish", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["is_active"])

	status, list := doListRequest(t, app, "/workflow-definitions/"+id+"/versions")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list, 2)
}

func TestPublishVersion_BadNumber(t *testing.T) {
	app := newTestApp(t)
	id := createDefinition(t, app)

	status, _ := doRequest(t, app, http.MethodPost, "/workflow-definitions/"+id+"/versions/0/publish", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doRequest(t, app, http.MethodPost, "/workflow-definitions/"+id+"/versions/two/publish", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRollbackVersion(t *testing.T) {
	app := newTestApp(t)
	id := publishDefinition(t, app)

	status, _ := doRequest(t, app, http.MethodPost, "/workflow-definitions/"+id+"/versions", CreateVersionRequest{
		Document: testutil.ApprovalDocument,
		Publish:  true,
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := doRequest(t, app, http.MethodPost, "/workflow-definitions/"+id+"/versions/1/rollback", RollbackRequest{
		CreatedBy: "user-2",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(3), body["version"])
	assert.Equal(t, true, body["is_active"])
	assert.Equal(t, "Rollback to version 1", body["change_notes"])
}

func TestCreateProject(t *testing.T) {
	app := newTestApp(t)
	definitionID := publishDefinition(t, app)

	status, body := doRequest(t, app, http.MethodPost, "/projects", CreateProjectRequest{
		Name:         "Riverside Tower",
		DefinitionID: definitionID,
	})

	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "active", body["status"])
	assert.Equal(t, "WFG1", body["current_group"])
	assert.Equal(t, "WFI1", body["current_item"])
}

func TestCreateProject_NoActiveVersion(t *testing.T) {
	app := newTestApp(t)
	definitionID := createDefinition(t, app)

	status, _ := doRequest(t, app, http.MethodPost, "/projects", CreateProjectRequest{
		Name:         "Riverside Tower",
		DefinitionID: definitionID,
	})

	assert.Equal(t, http.StatusNotFound, status)
}

func TestDecide_Approve(t *testing.T) {
	app := newTestApp(t)
	projectID := createProject(t, app)

	status, body := doRequest(t, app, http.MethodPost, "/projects/"+projectID+"/decisions", DecisionRequest{
		Action: "approve",
	})

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "approve", body["action"])
	assert.Equal(t, "WFG1", body["from_group"])
	assert.Equal(t, "WFI1", body["from_item"])
	assert.Equal(t, "WFG1", body["current_group"])
	assert.Equal(t, "WFI2", body["current_item"])
	assert.Equal(t, false, body["completed"])
}

func TestDecide_InvalidAction(t *testing.T) {
	app := newTestApp(t)
	projectID := createProject(t, app)

	status, _ := doRequest(t, app, http.MethodPost, "/projects/"+projectID+"/decisions", DecisionRequest{
		Action: "reject",
	})

	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDecide_CompletedProjectConflicts(t *testing.T) {
	app := newTestApp(t)
	projectID := createProject(t, app)

	status, body := doRequest(t, app, http.MethodPost, "/projects/"+projectID+"/decisions", DecisionRequest{
		Action:      "skip_to",
		TargetGroup: "WFG3",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "WFG3", body["current_group"])

	status, body = doRequest(t, app, http.MethodPost, "/projects/"+projectID+"/decisions", DecisionRequest{
		Action: "approve",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["completed"])

	status, _ = doRequest(t, app, http.MethodPost, "/projects/"+projectID+"/decisions", DecisionRequest{
		Action: "approve",
	})
	assert.Equal(t, http.StatusConflict, status)
}

func TestGetTransitions(t *testing.T) {
	app := newTestApp(t)
	projectID := createProject(t, app)

	status, body := doRequest(t, app, http.MethodGet, "/projects/"+projectID+"/transitions", nil)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["can_approve"])
	assert.Equal(t, false, body["can_send_back"])
	assert.Equal(t, true, body["can_skip_to"])
}

func TestGetHistory(t *testing.T) {
	app := newTestApp(t)
	projectID := createProject(t, app)

	status, _ := doRequest(t, app, http.MethodPost, "/projects/"+projectID+"/decisions", DecisionRequest{
		Action: "approve",
	})
	require.Equal(t, http.StatusOK, status)

	status, raw := doRawRequest(t, app, http.MethodGet, "/projects/"+projectID+"/history", nil)
	require.Equal(t, http.StatusOK, status)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(raw, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "approve", entries[0]["action"])
	assert.Equal(t, "start", entries[1]["action"])
}

func TestComments(t *testing.T) {
	app := newTestApp(t)
	projectID := createProject(t, app)

	status, body := doRequest(t, app, http.MethodPost, "/projects/"+projectID+"/comments", AddCommentRequest{
		Content: "waiting on the structural report",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "WFG1", body["workflow_group"])

	status, _ = doRequest(t, app, http.MethodPost, "/projects/"+projectID+"/comments", AddCommentRequest{
		Group:   "WFG2",
		Content: "flag for the design team",
	})
	require.Equal(t, http.StatusCreated, status)

	status, list := doListRequest(t, app, "/projects/"+projectID+"/comments")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list, 2)

	status, list = doListRequest(t, app, "/projects/"+projectID+"/comments?workflow_group=WFG2")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list, 1)
}

func TestAddComment_MissingContent(t *testing.T) {
	app := newTestApp(t)
	projectID := createProject(t, app)

	status, _ := doRequest(t, app, http.MethodPost, "/projects/"+projectID+"/comments", AddCommentRequest{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestWorkflowSteps(t *testing.T) {
	app := newTestApp(t)

	status, list := doListRequest(t, app, "/workflow-steps/")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list, 4)

	status, body := doRequest(t, app, http.MethodGet, "/workflow-steps/WFG2", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Schematic Design", body["name"])

	status, _ = doRequest(t, app, http.MethodGet, "/workflow-steps/WFG9", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)

	status, body := doRequest(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
}
