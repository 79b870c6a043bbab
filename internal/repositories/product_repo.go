package repositories

import (
	"context"

	"catalog/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for product data access.
// Lookups report absence as a nil product and a nil error.
type ProductRepository interface {
	ListAll(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByName(ctx context.Context, fragment string) ([]models.Product, error)
	FindAvailable(ctx context.Context) ([]models.Product, error)
	FindByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, product *models.Product) error

	// Transaction runs fn against a repository bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(repo ProductRepository) error) error
}
