package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
	"gorm.io/gorm"

	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/metrics"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/server"
	"catalog/internal/services"
	"catalog/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Database ---
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if cfg.SeedDemoData {
		seedProducts(db)
	}

	opts := server.Options{
		AppName:   cfg.AppName,
		AccessLog: true,
	}
	if cfg.MetricsEnabled {
		opts.Metrics = metrics.NewRecorder()
	}

	// --- Initialize RabbitMQ Client ---
	// Events are optional: without RABBITMQ_URL the service runs with a no-op publisher.
	if cfg.EventsEnabled() {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.RabbitMQExchange,
		})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		opts.Publisher = mqClient

		if cfg.RabbitMQAuditQueue != "" {
			if err := mqClient.ConsumeProductEvents(cfg.RabbitMQAuditQueue, logProductEvent); err != nil {
				log.Printf("Failed to start product event consumer: %v", err)
			}
		}
	}

	app := server.NewApp(db, opts)

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	// RabbitMQ and the database pool are closed by the deferred calls above.
	log.Println("Server gracefully stopped")
}

// logProductEvent writes every consumed product event to the log. Malformed
// messages are acknowledged as well, since redelivery cannot fix them.
func logProductEvent(msg amqp.Delivery) error {
	event, err := rabbitmq.DecodeProductEvent(msg)
	if err != nil {
		log.Printf("Discarding product event (Tag: %d): %v", msg.DeliveryTag, err)
		return nil
	}
	log.Printf("Product event %s: %s (%s)", event.Type, event.Product.ID, event.Product.Name)
	return nil
}

// seedProducts populates an empty catalog with a few demo products.
func seedProducts(db *gorm.DB) {
	repo := repositories.NewGORMProductRepository(db)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	if err != nil {
		log.Printf("Error checking catalog before seeding: %v", err)
		return
	}
	if count > 0 {
		return
	}

	products := []models.Product{
		{Name: "Laptop", Description: "High performance laptop", Price: decimal.RequireFromString("1200.00"), Quantity: intPtr(10)},
		{Name: "Keyboard", Description: "Mechanical keyboard", Price: decimal.RequireFromString("75.00"), Quantity: intPtr(25)},
		{Name: "Mouse", Description: "Ergonomic wireless mouse", Price: decimal.RequireFromString("25.00"), Quantity: intPtr(0)},
	}

	service := services.NewProductService(repo, nil)
	for i := range products {
		if err := service.CreateProduct(ctx, &products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
		} else {
			log.Printf("Seeded product: %s (ID: %s)", products[i].Name, products[i].ID)
		}
	}
}

func intPtr(v int) *int {
	return &v
}
