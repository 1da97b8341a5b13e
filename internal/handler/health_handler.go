package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/config"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/utils"
)

// HealthResponse is the payload served at /health, consumed by uptime checks
// for both the grading API and the dashboard.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Uptime      string    `json:"uptime"`
}

// HealthCheck returns a handler reporting liveness and process uptime.
func HealthCheck(cfg config.Config) fiber.Handler {
	started := time.Now()

	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Uptime:      time.Since(started).Round(time.Second).String(),
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
