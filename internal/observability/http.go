package observability

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves the Prometheus scrape endpoint. Collector
// registration happens here so mounting /metrics is all a caller needs to do.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	scrape := adaptor.HTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		return scrape(c)
	}
}
