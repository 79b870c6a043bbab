package handlers

import (
	"catalog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GreetingText is the body of the plain greeting endpoint.
const GreetingText = "Hello from Fiber REST"

// GreetingHandler serves the greeting endpoints.
type GreetingHandler struct{}

// NewGreetingHandler creates a new GreetingHandler.
func NewGreetingHandler() *GreetingHandler {
	return &GreetingHandler{}
}

// RegisterRoutes registers the greeting routes with the Fiber app.
func (h *GreetingHandler) RegisterRoutes(router fiber.Router) {
	greetingRoutes := router.Group("/hello")
	greetingRoutes.Get("/", h.HandleHello)
	greetingRoutes.Get("/:name", h.HandleGreeting)
}

// HandleHello answers with a static plain-text greeting.
func (h *GreetingHandler) HandleHello(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(GreetingText)
}

// HandleGreeting greets the caller by the name given in the path.
func (h *GreetingHandler) HandleGreeting(c *fiber.Ctx) error {
	return c.JSON(models.NewGreeting(c.Params("name")))
}
