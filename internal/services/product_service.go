package services

import (
	"context"
	"errors"
	"log"
	"time"

	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrProductNotFound is returned when the referenced product does not exist.
var ErrProductNotFound = errors.New("product not found")

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	now       func() time.Time
}

// NewProductService creates a new ProductService. A nil publisher disables events.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source used to stamp products.
func (s *ProductService) SetClock(now func() time.Time) {
	s.now = now
}

// timestamp returns the current time at the precision every supported datastore keeps.
func (s *ProductService) timestamp() time.Time {
	return s.now().Truncate(time.Microsecond)
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// SearchProducts returns the products whose name contains name.
// An empty name matches every product.
func (s *ProductService) SearchProducts(ctx context.Context, name string) ([]models.Product, error) {
	if name == "" {
		return s.repo.ListAll(ctx)
	}
	return s.repo.FindByName(ctx, name)
}

// GetAvailableProducts returns the products currently in stock.
func (s *ProductService) GetAvailableProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.FindAvailable(ctx)
}

// GetProductsByPriceRange returns the products priced within [minPrice, maxPrice].
func (s *ProductService) GetProductsByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal) ([]models.Product, error) {
	return s.repo.FindByPriceRange(ctx, minPrice, maxPrice)
}

// CountProducts returns the number of stored products.
func (s *ProductService) CountProducts(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// CreateProduct persists a new product. The ID and both timestamps are
// assigned here; values supplied by the caller are discarded.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	now := s.timestamp()
	product.ID = uuid.Nil
	product.CreatedAt = now
	product.UpdatedAt = now

	err := s.repo.Transaction(ctx, func(repo repositories.ProductRepository) error {
		return repo.Create(ctx, product)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, models.EventProductCreated, product)
	return nil
}

// UpdateProduct overwrites the mutable fields of the product identified by id
// and refreshes its UpdatedAt timestamp.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, changes *models.Product) (*models.Product, error) {
	var updated *models.Product

	err := s.repo.Transaction(ctx, func(repo repositories.ProductRepository) error {
		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrProductNotFound
		}

		existing.Apply(changes)
		now := s.timestamp()
		if !now.After(existing.UpdatedAt) {
			// UpdatedAt must move forward even when the clock has not.
			now = existing.UpdatedAt.Add(time.Microsecond)
		}
		existing.UpdatedAt = now

		if err := repo.Update(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, models.EventProductUpdated, updated)
	return updated, nil
}

// DeleteProduct removes the product identified by id.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	var deleted *models.Product

	err := s.repo.Transaction(ctx, func(repo repositories.ProductRepository) error {
		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrProductNotFound
		}
		if err := repo.Delete(ctx, existing); err != nil {
			return err
		}
		deleted = existing
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, models.EventProductDeleted, deleted)
	return nil
}

// publish is best effort: the mutation is already committed.
func (s *ProductService) publish(ctx context.Context, eventType string, product *models.Product) {
	event := models.ProductEvent{
		Type:       eventType,
		Product:    *product,
		OccurredAt: s.now(),
	}
	if err := s.publisher.PublishProductEvent(ctx, event); err != nil {
		log.Printf("Error publishing %s for product %s: %v", eventType, product.ID, err)
	}
}
