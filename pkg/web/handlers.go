// Package web provides HTTP handlers and REST API endpoints for workflow management.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/stagegate/stagegate/pkg/position"
	"github.com/stagegate/stagegate/pkg/services"
)

type APIHandlers struct {
	definitionService *services.Definitions
	projectService    *services.Projects
	validator         *validator.Validate
}

func NewAPIHandlers(
	definitionService *services.Definitions,
	projectService *services.Projects,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		definitionService: definitionService,
		projectService:    projectService,
		validator:         validator,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.definitionService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Stagegate API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Stagegate API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// Definitions

func (h *APIHandlers) CreateDefinition(c fiber.Ctx) error {
	var req CreateDefinitionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	def, version, err := h.definitionService.Create(c.Context(), services.CreateDefinitionRequest{
		Name:        req.Name,
		Description: req.Description,
		ProcessID:   req.ProcessID,
		Document:    req.Document,
		ChangeNotes: req.ChangeNotes,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"definition": def,
		"version":    version,
	})
}

func (h *APIHandlers) GetDefinitions(c fiber.Ctx) error {
	definitions, err := h.definitionService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(definitions)
}

func (h *APIHandlers) GetDefinition(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Definition ID is required")
	}

	def, err := h.definitionService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(def)
}

func (h *APIHandlers) UpdateDefinition(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Definition ID is required")
	}

	var req UpdateDefinitionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	update := services.UpdateDefinitionRequest{}
	if req.Name != nil {
		update.Name = *req.Name
	}

	if req.Description != nil {
		update.Description = *req.Description
	}

	def, err := h.definitionService.Update(c.Context(), id, update)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(def)
}

func (h *APIHandlers) DeleteDefinition(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Definition ID is required")
	}

	err := h.definitionService.Delete(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ValidateDocument(c fiber.Ctx) error {
	var req ValidateDocumentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result := h.definitionService.ValidateDocument(c.Context(), req.Document, req.ProcessID)

	return c.JSON(result)
}

// Versions

func (h *APIHandlers) CreateVersion(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Definition ID is required")
	}

	var req CreateVersionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	version, err := h.definitionService.CreateVersion(c.Context(), id, services.CreateVersionRequest{
		Document:    req.Document,
		ChangeNotes: req.ChangeNotes,
		CreatedBy:   req.CreatedBy,
		Publish:     req.Publish,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(version)
}

func (h *APIHandlers) GetVersions(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Definition ID is required")
	}

	versions, err := h.definitionService.Versions(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(versions)
}

func (h *APIHandlers) GetActiveVersion(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Definition ID is required")
	}

	version, err := h.definitionService.ActiveVersion(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(version)
}

func (h *APIHandlers) PublishVersion(c fiber.Ctx) error {
	id := c.Params("id")

	number, err := strconv.Atoi(c.Params("number"))
	if err != nil || number < 1 {
		return badRequest(c, "Version number must be a positive integer")
	}

	version, err := h.definitionService.Publish(c.Context(), id, number)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(version)
}

func (h *APIHandlers) RollbackVersion(c fiber.Ctx) error {
	id := c.Params("id")

	number, err := strconv.Atoi(c.Params("number"))
	if err != nil || number < 1 {
		return badRequest(c, "Version number must be a positive integer")
	}

	var req RollbackRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	version, err := h.definitionService.Rollback(c.Context(), id, number, req.CreatedBy)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(version)
}

// Projects

func (h *APIHandlers) CreateProject(c fiber.Ctx) error {
	var req CreateProjectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	project, err := h.projectService.Instantiate(c.Context(), services.InstantiateRequest{
		Name:         req.Name,
		Description:  req.Description,
		DefinitionID: req.DefinitionID,
		CreatedBy:    req.CreatedBy,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(project)
}

func (h *APIHandlers) GetProjects(c fiber.Ctx) error {
	projects, err := h.projectService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(projects)
}

func (h *APIHandlers) GetProject(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Project ID is required")
	}

	project, err := h.projectService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(project)
}

func (h *APIHandlers) Decide(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Project ID is required")
	}

	var req DecisionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.projectService.Decide(c.Context(), id, services.DecideRequest{
		Action:            req.Action,
		TargetGroup:       req.TargetGroup,
		TargetItem:        req.TargetItem,
		Reason:            req.Reason,
		DecisionMakerID:   req.DecisionMakerID,
		DecisionMakerName: req.DecisionMakerName,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(DecisionResponse{
		ProjectID:    result.Project.ID,
		Action:       req.Action,
		FromGroup:    result.FromGroup,
		FromItem:     result.FromItem,
		CurrentGroup: result.ToGroup,
		CurrentItem:  result.ToItem,
		Completed:    result.Completed,
	})
}

func (h *APIHandlers) GetTransitions(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Project ID is required")
	}

	transitions, err := h.projectService.AvailableTransitions(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(transitions)
}

func (h *APIHandlers) GetHistory(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Project ID is required")
	}

	entries, err := h.projectService.History(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(entries)
}

func (h *APIHandlers) AddComment(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Project ID is required")
	}

	var req AddCommentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	comment, err := h.projectService.AddComment(c.Context(), id, services.AddCommentRequest{
		Group:    req.Group,
		Item:     req.Item,
		UserID:   req.UserID,
		UserName: req.UserName,
		Content:  req.Content,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *APIHandlers) GetComments(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Project ID is required")
	}

	comments, err := h.projectService.Comments(c.Context(), id, c.Query("workflow_group"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(comments)
}

// Workflow step directory

func (h *APIHandlers) GetWorkflowSteps(c fiber.Ctx) error {
	return c.JSON(position.Steps())
}

func (h *APIHandlers) GetWorkflowStep(c fiber.Ctx) error {
	group := c.Params("group")

	step, ok := position.Step(group)
	if !ok {
		return notFound(c, "Workflow group not found")
	}

	return c.JSON(step)
}
