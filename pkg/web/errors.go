package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/stagegate/stagegate/pkg/bpmn"
	"github.com/stagegate/stagegate/pkg/persistence"
	"github.com/stagegate/stagegate/pkg/services"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// invalidDefinition reports a document that failed compilation, listing every
// problem found rather than just the first.
func invalidDefinition(c fiber.Ctx, invalid *bpmn.InvalidDefinitionError) error {
	problem := problems.NewStatusProblem(422).
		WithInstance(c.Path()).
		WithType("invalid_definition").
		WithDetail(invalid.Error())

	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"type":     problem.Type,
		"title":    problem.Title,
		"status":   problem.Status,
		"detail":   problem.Detail,
		"instance": problem.Instance,
		"errors":   invalid.Problems,
	})
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	var invalid *bpmn.InvalidDefinitionError

	switch {
	case errors.As(err, &invalid):
		return invalidDefinition(c, invalid)

	case services.IsValidationError(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case services.IsConflictError(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case persistence.IsDefinitionNotFound(err):
		return notFound(c, "process definition not found")

	case persistence.IsVersionNotFound(err):
		return notFound(c, "definition version not found")

	case persistence.IsNoActiveVersion(err):
		return notFound(c, "definition has no active version")

	case persistence.IsProjectNotFound(err):
		return notFound(c, "project not found")

	case services.IsNotFoundError(err):
		return notFound(c, err.Error())

	default:
		return internalError(c, err)
	}
}
