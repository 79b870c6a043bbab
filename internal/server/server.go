package server

import (
	"catalog/internal/database"
	"catalog/internal/handlers"
	"catalog/internal/metrics"
	"catalog/internal/middleware"
	"catalog/internal/repositories"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// Options configures the HTTP application.
type Options struct {
	AppName string
	// Publisher receives product events; nil disables them.
	Publisher services.EventPublisher
	// Metrics enables request metrics and the /metrics endpoint when set.
	Metrics *metrics.Recorder
	// AccessLog enables the request logger middleware.
	AccessLog bool
}

// NewApp wires repositories, services and handlers on top of db and returns
// the Fiber application serving the catalog API.
func NewApp(db *gorm.DB, opts Options) *fiber.App {
	productRepo := repositories.NewGORMProductRepository(db)
	productService := services.NewProductService(productRepo, opts.Publisher)

	productHandler := handlers.NewProductHandler(productService)
	greetingHandler := handlers.NewGreetingHandler()
	healthHandler := handlers.NewHealthHandler(func() error { return database.Ping(db) })

	app := fiber.New(fiber.Config{
		AppName: opts.AppName,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New())
	if opts.Metrics != nil {
		app.Use(middleware.RequestMetrics(opts.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(opts.Metrics.Handler()))
	}

	healthHandler.RegisterRoutes(app)
	greetingHandler.RegisterRoutes(app)
	productHandler.RegisterRoutes(app.Group("/api"))

	return app
}
