package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/config"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/handler"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/middleware"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	TaskHandler       *handler.TaskHandler
	SubmissionHandler *handler.SubmissionHandler
	StatisticsHandler *handler.StatisticsHandler
	TrackerHandler    *handler.TrackerHandler
	DashboardHandler  *handler.DashboardHandler
	SessionAuth       fiber.Handler
	AdminSession      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	sessionAuth := deps.SessionAuth
	if sessionAuth == nil {
		sessionAuth = func(c *fiber.Ctx) error { return c.Next() }
	}
	adminSession := deps.AdminSession
	if adminSession == nil {
		adminSession = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Code Lab
	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		deps.AuthHandler.RegisterPublic(auth)
		deps.AuthHandler.RegisterProtected(auth.Group("", sessionAuth))
	}

	if deps.TaskHandler != nil {
		tasks := api.Group("/tasks")
		deps.TaskHandler.RegisterShared(tasks)
		deps.TaskHandler.Register(tasks.Group("", sessionAuth), middleware.RequireRole(models.RoleTeacher))
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", sessionAuth)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.StatisticsHandler != nil {
		statistics := api.Group("/statistics", sessionAuth, middleware.RequireRole(models.RoleTeacher))
		deps.StatisticsHandler.Register(statistics)
	}

	// Ejercicios Didácticos
	if deps.TrackerHandler != nil {
		tracker := api.Group("/ejercicios")
		deps.TrackerHandler.Register(tracker)
	}

	if deps.DashboardHandler != nil {
		dashboard := app.Group("/dashboard")
		deps.DashboardHandler.RegisterPublic(dashboard)
		deps.DashboardHandler.RegisterProtected(dashboard.Group("", adminSession))
	}
}
