package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports whether the service and its datastore are usable.
type HealthHandler struct {
	ping func() error
}

// NewHealthHandler creates a HealthHandler that probes the datastore with ping.
func NewHealthHandler(ping func() error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// RegisterRoutes registers the health route with the Fiber app.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth answers 200 when the datastore responds and 503 otherwise.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	status, database, code := "healthy", "up", fiber.StatusOK
	if err := h.ping(); err != nil {
		log.Printf("Health check failed: %v", err)
		status, database, code = "unhealthy", "down", fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"time":     time.Now().Format(time.RFC3339),
		"database": database,
	})
}
