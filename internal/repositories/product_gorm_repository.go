package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func (r *GORMProductRepository) list(ctx context.Context, query interface{}, args ...interface{}) ([]models.Product, error) {
	products := make([]models.Product, 0)
	tx := r.db.WithContext(ctx).Order("created_at, id")
	if query != nil {
		tx = tx.Where(query, args...)
	}
	if err := tx.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListAll retrieves all products from the database.
func (r *GORMProductRepository) ListAll(ctx context.Context) ([]models.Product, error) {
	products, err := r.list(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// FindByID retrieves a single product by its ID. A missing product yields (nil, nil).
func (r *GORMProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// FindByName returns the products whose name contains fragment, ignoring case.
func (r *GORMProductRepository) FindByName(ctx context.Context, fragment string) ([]models.Product, error) {
	pattern := "%" + likeEscaper.Replace(fragment) + "%"
	products, err := r.list(ctx, `LOWER(name) LIKE LOWER(?) ESCAPE '\'`, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search products by name %q: %w", fragment, err)
	}
	return products, nil
}

// FindAvailable returns the products that have at least one unit in stock.
func (r *GORMProductRepository) FindAvailable(ctx context.Context) ([]models.Product, error) {
	products, err := r.list(ctx, "quantity > ?", 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get available products: %w", err)
	}
	return products, nil
}

// FindByPriceRange returns the products priced within [minPrice, maxPrice].
func (r *GORMProductRepository) FindByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal) ([]models.Product, error) {
	products, err := r.list(ctx, "price >= ? AND price <= ?", minPrice, maxPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to get products priced between %s and %s: %w", minPrice, maxPrice, err)
	}
	return products, nil
}

// Count returns the total number of products.
func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// Create creates a new product in the database, assigning its ID.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes every mutable column of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(product).
		Select("name", "description", "price", "quantity", "updated_at").
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for update: %w", product.ID, gorm.ErrRecordNotFound)
	}
	return nil
}

// Delete removes a product from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", product.ID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for deletion: %w", product.ID, gorm.ErrRecordNotFound)
	}
	return nil
}

// Transaction runs fn inside a database transaction.
func (r *GORMProductRepository) Transaction(ctx context.Context, fn func(repo ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMProductRepository(tx))
	})
}
