// Package main provides the Stagegate API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/stagegate/stagegate/pkg/eventbus"
	"github.com/stagegate/stagegate/pkg/lock"
	"github.com/stagegate/stagegate/pkg/persistence"
	"github.com/stagegate/stagegate/pkg/services"
	"github.com/stagegate/stagegate/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	locker      lock.ProjectLocker
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	locker lock.ProjectLocker,
) (*API, error) {
	return &API{
		logger:      logger,
		persistence: persistence,
		eventBus:    eventBus,
		locker:      locker,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

func (a *API) App() (*fiber.App, error) {
	definitionService := services.NewDefinitions(a.persistence, a.eventBus)

	projectService, err := services.NewProjects(a.persistence, a.eventBus, a.locker)
	if err != nil {
		return nil, err
	}

	handlers := web.NewAPIHandlers(definitionService, projectService, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Stagegate API")
	})

	d := app.Group("/workflow-definitions")
	d.Get("/", handlers.GetDefinitions)
	d.Post("/", handlers.CreateDefinition)
	d.Post("/validate", handlers.ValidateDocument)
	d.Get("/:id", handlers.GetDefinition)
	d.Patch("/:id", handlers.UpdateDefinition)
	d.Delete("/:id", handlers.DeleteDefinition)
	d.Post("/:id/versions", handlers.CreateVersion)
	d.Get("/:id/versions", handlers.GetVersions)
	d.Get("/:id/versions/active", handlers.GetActiveVersion)
	d.Post("/:id/versions/:number/publish", handlers.PublishVersion)
	d.Post("/:id/versions/:number/rollback", handlers.RollbackVersion)

	p := app.Group("/projects")
	p.Get("/", handlers.GetProjects)
	p.Post("/", handlers.CreateProject)
	p.Get("/:id", handlers.GetProject)
	p.Post("/:id/decisions", handlers.Decide)
	p.Get("/:id/transitions", handlers.GetTransitions)
	p.Get("/:id/history", handlers.GetHistory)
	p.Post("/:id/comments", handlers.AddComment)
	p.Get("/:id/comments", handlers.GetComments)

	s := app.Group("/workflow-steps")
	s.Get("/", handlers.GetWorkflowSteps)
	s.Get("/:group", handlers.GetWorkflowStep)

	app.Get("/health", handlers.HealthCheck)

	return app, nil
}

func (a *API) Start(port int) error {
	app, err := a.App()
	if err != nil {
		return err
	}

	return app.Listen(":" + strconv.Itoa(port))
}
