package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/ortelius/scec-spog/metrics"
)

// NewApp creates the fiber app with middleware and all routes registered.
// A nil m disables request metrics and the /metrics route.
func NewApp(h *Handler, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:     "scec-spog API v1.0",
		ReadTimeout: time.Second * 60,
	})

	// Middleware
	app.Use(fiberrecover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	if m != nil {
		app.Use(m.Middleware())
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
		})
	})

	// API routes
	api := app.Group("/api/v1")
	api.Get("/package/search", h.SearchPackages)
	api.Get("/package", h.GetPackage)

	return app
}
