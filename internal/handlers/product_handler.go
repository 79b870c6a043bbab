package handlers

import (
	"errors"
	"log"
	"strconv"

	"catalog/internal/models"
	"catalog/internal/services"
	"catalog/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bounds applied by the price-range endpoint when the query omits them.
const (
	DefaultMinPrice = "0"
	DefaultMaxPrice = "999999"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
// Fixed paths are registered before /:id so they are not captured by it.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/search", h.HandleSearchProducts)
	productRoutes.Get("/available", h.HandleGetAvailableProducts)
	productRoutes.Get("/price-range", h.HandleGetProductsByPriceRange)
	productRoutes.Get("/count", h.HandleCountProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return serverError(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return productNotFound(c)
	}

	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return productNotFound(c)
		}
		return serverError(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

// HandleSearchProducts returns the products whose name contains the name
// query parameter. Without it every product is returned.
func (h *ProductHandler) HandleSearchProducts(c *fiber.Ctx) error {
	products, err := h.service.SearchProducts(c.UserContext(), c.Query("name"))
	if err != nil {
		return serverError(c, "Could not search products", err)
	}
	return c.JSON(products)
}

// HandleGetAvailableProducts returns the products that are in stock.
func (h *ProductHandler) HandleGetAvailableProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAvailableProducts(c.UserContext())
	if err != nil {
		return serverError(c, "Could not retrieve available products", err)
	}
	return c.JSON(products)
}

// HandleGetProductsByPriceRange returns the products priced within [minPrice, maxPrice].
func (h *ProductHandler) HandleGetProductsByPriceRange(c *fiber.Ctx) error {
	minPrice, err := decimal.NewFromString(c.Query("min", DefaultMinPrice))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid min price",
			"error":   err.Error(),
		})
	}
	maxPrice, err := decimal.NewFromString(c.Query("max", DefaultMaxPrice))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid max price",
			"error":   err.Error(),
		})
	}

	products, err := h.service.GetProductsByPriceRange(c.UserContext(), minPrice, maxPrice)
	if err != nil {
		return serverError(c, "Could not retrieve products by price range", err)
	}
	return c.JSON(products)
}

// HandleCountProducts returns the number of products as plain text.
func (h *ProductHandler) HandleCountProducts(c *fiber.Ctx) error {
	count, err := h.service.CountProducts(c.UserContext())
	if err != nil {
		return serverError(c, "Could not count products", err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(strconv.FormatInt(count, 10))
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	product, problem := decodeProduct(c)
	if problem != nil {
		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	if err := h.service.CreateProduct(c.UserContext(), product); err != nil {
		return serverError(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct overwrites the mutable fields of an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return productNotFound(c)
	}

	changes, problem := decodeProduct(c)
	if problem != nil {
		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), id, changes)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return productNotFound(c)
		}
		return serverError(c, "Could not update product", err)
	}
	return c.JSON(updated)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return productNotFound(c)
	}

	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return productNotFound(c)
		}
		return serverError(c, "Could not delete product", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseID reads the id path parameter. A malformed id cannot match any
// product, so callers answer it with 404.
func parseID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// decodeProduct parses and validates the request body. A non-nil map is the
// body of the 400 response describing why the request was rejected.
func decodeProduct(c *fiber.Ctx) (*models.Product, fiber.Map) {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return nil, fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		}
	}

	if errs := validator.ValidateStruct(&product); len(errs) > 0 {
		return nil, fiber.Map{
			"message": "Validation failed",
			"errors":  validator.Messages(errs),
		}
	}
	return &product, nil
}

func productNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Product not found",
	})
}

func serverError(c *fiber.Ctx, message string, err error) error {
	log.Printf("%s: %v", message, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
