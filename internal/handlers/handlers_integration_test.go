package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"catalog/internal/handlers"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupApp sets up a Fiber app for testing with a private in-memory SQLite database.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	app, _ := setupAppWithDB(t)
	return app
}

// setupAppWithDB is setupApp that also hands back the connection pool.
func setupAppWithDB(t *testing.T) (*fiber.App, *sql.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to connect to in-memory database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Product{}), "failed to auto-migrate database")

	productRepo := repositories.NewGORMProductRepository(db)
	productService := services.NewProductService(productRepo, nil)

	app := fiber.New()
	handlers.NewGreetingHandler().RegisterRoutes(app)
	handlers.NewProductHandler(productService).RegisterRoutes(app.Group("/api"))
	handlers.NewHealthHandler(sqlDB.Ping).RegisterRoutes(app)

	return app, sqlDB
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func doRequest(t *testing.T, app *fiber.App, method, target string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewReader([]byte(b))
		default:
			payload, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(payload)
		}
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func createProduct(t *testing.T, app *fiber.App, name string, price float64, quantity int) models.Product {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/products", map[string]interface{}{
		"name":     name,
		"price":    price,
		"quantity": quantity,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	decode(t, resp, &created)
	return created
}

func productNames(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestGreetingEndpoints(t *testing.T) {
	app := setupApp(t)

	resp := doRequest(t, app, http.MethodGet, "/hello", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	assert.Equal(t, handlers.GreetingText, readBody(t, resp))

	resp = doRequest(t, app, http.MethodGet, "/hello/Ada", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	var greeting models.Greeting
	decode(t, resp, &greeting)
	assert.Equal(t, "Hello Ada!", greeting.Message)
}

func TestProductLifecycle(t *testing.T) {
	app := setupApp(t)

	// --- Test POST /api/products ---
	resp := doRequest(t, app, http.MethodPost, "/api/products", `{"name":"Pen","price":1.50,"quantity":10}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	decode(t, resp, &created)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "Pen", created.Name)
	assert.True(t, decimal.RequireFromString("1.50").Equal(created.Price))
	assert.Equal(t, 10, *created.Quantity)
	assert.False(t, created.CreatedAt.IsZero())
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	// --- Test GET /api/products/:id ---
	resp = doRequest(t, app, http.MethodGet, "/api/products/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Product
	decode(t, resp, &fetched)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, created.Name, fetched.Name)
	assert.True(t, created.Price.Equal(fetched.Price))
	assert.Equal(t, *created.Quantity, *fetched.Quantity)
	assert.True(t, created.CreatedAt.Equal(fetched.CreatedAt))
	assert.True(t, created.UpdatedAt.Equal(fetched.UpdatedAt))

	// --- Test PUT /api/products/:id ---
	time.Sleep(2 * time.Millisecond)
	resp = doRequest(t, app, http.MethodPut, "/api/products/"+created.ID.String(), map[string]interface{}{
		"name":        "Gel Pen",
		"description": "Smooth black ink",
		"price":       2.25,
		"quantity":    0,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Product
	decode(t, resp, &updated)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Gel Pen", updated.Name)
	assert.Equal(t, "Smooth black ink", updated.Description)
	assert.True(t, decimal.RequireFromString("2.25").Equal(updated.Price))
	assert.Equal(t, 0, *updated.Quantity)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	// --- Test DELETE /api/products/:id ---
	resp = doRequest(t, app, http.MethodDelete, "/api/products/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, readBody(t, resp))

	// Verify deletion
	resp = doRequest(t, app, http.MethodGet, "/api/products/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Product not found"}`, readBody(t, resp))
}

func TestProductNotFound(t *testing.T) {
	app := setupApp(t)
	missing := "/api/products/" + uuid.NewString()
	valid := map[string]interface{}{"name": "Pen", "price": 1.5, "quantity": 1}

	tests := []struct {
		name   string
		method string
		target string
		body   interface{}
	}{
		{"get unknown id", http.MethodGet, missing, nil},
		{"get malformed id", http.MethodGet, "/api/products/not-a-uuid", nil},
		{"update unknown id", http.MethodPut, missing, valid},
		{"delete unknown id", http.MethodDelete, missing, nil},
		{"delete malformed id", http.MethodDelete, "/api/products/42", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			assert.JSONEq(t, `{"error":"Product not found"}`, readBody(t, resp))
		})
	}
}

func TestCreateProductValidation(t *testing.T) {
	app := setupApp(t)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing name", `{"price":1.5,"quantity":1}`, "name"},
		{"blank name", `{"name":"   ","price":1.5,"quantity":1}`, "name"},
		{"zero price", `{"name":"Pen","price":0,"quantity":1}`, "price"},
		{"negative price", `{"name":"Pen","price":-2,"quantity":1}`, "price"},
		{"missing quantity", `{"name":"Pen","price":1.5}`, "quantity"},
		{"price below a cent", `{"name":"Pen","price":0.001,"quantity":1}`, "price"},
		{"price with three decimals", `{"name":"Pen","price":1.555,"quantity":1}`, "price"},
		{"price overflows column", `{"name":"Pen","price":100000000,"quantity":1}`, "price"},
		{"description too long", fmt.Sprintf(`{"name":"Pen","price":1.5,"quantity":1,"description":%q}`, string(bytes.Repeat([]byte("x"), 1001))), "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, http.MethodPost, "/api/products", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body struct {
				Message string            `json:"message"`
				Errors  map[string]string `json:"errors"`
			}
			decode(t, resp, &body)
			assert.Equal(t, "Validation failed", body.Message)
			assert.Contains(t, body.Errors, tt.field)
		})
	}

	resp := doRequest(t, app, http.MethodPost, "/api/products", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/products/count", nil)
	assert.Equal(t, "0", readBody(t, resp))
}

func TestUpdateProductValidation(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, "Pen", 1.5, 10)

	resp := doRequest(t, app, http.MethodPut, "/api/products/"+created.ID.String(), `{"name":"Pen","price":-1,"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/products/"+created.ID.String(), nil)
	var fetched models.Product
	decode(t, resp, &fetched)
	assert.True(t, decimal.RequireFromString("1.5").Equal(fetched.Price))
}

func TestCreateProductIgnoresClientManagedFields(t *testing.T) {
	app := setupApp(t)
	clientID := uuid.NewString()

	resp := doRequest(t, app, http.MethodPost, "/api/products", map[string]interface{}{
		"id":        clientID,
		"name":      "Pen",
		"price":     1.5,
		"quantity":  1,
		"createdAt": "2001-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	decode(t, resp, &created)
	assert.NotEqual(t, clientID, created.ID.String())
	assert.True(t, created.CreatedAt.After(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestListAndSearchProducts(t *testing.T) {
	app := setupApp(t)

	// An empty catalog lists as an empty array.
	resp := doRequest(t, app, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, readBody(t, resp))

	createProduct(t, app, "Fountain Pen", 12.0, 3)
	createProduct(t, app, "Pencil", 0.8, 0)
	createProduct(t, app, "Notebook", 4.25, 7)

	var all []models.Product
	resp = doRequest(t, app, http.MethodGet, "/api/products", nil)
	decode(t, resp, &all)
	assert.Len(t, all, 3)

	var found []models.Product
	resp = doRequest(t, app, http.MethodGet, "/api/products/search?name=pEn", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &found)
	assert.ElementsMatch(t, []string{"Fountain Pen", "Pencil"}, productNames(found))

	for _, target := range []string{"/api/products/search", "/api/products/search?name="} {
		var everything []models.Product
		resp = doRequest(t, app, http.MethodGet, target, nil)
		decode(t, resp, &everything)
		assert.ElementsMatch(t, productNames(all), productNames(everything), target)
	}

	var available []models.Product
	resp = doRequest(t, app, http.MethodGet, "/api/products/available", nil)
	decode(t, resp, &available)
	assert.ElementsMatch(t, []string{"Fountain Pen", "Notebook"}, productNames(available))
}

func TestPriceRange(t *testing.T) {
	app := setupApp(t)
	createProduct(t, app, "Cheap", 0.99, 1)
	createProduct(t, app, "Low", 1.00, 1)
	createProduct(t, app, "High", 10.00, 1)
	createProduct(t, app, "Premium", 10.01, 1)

	var inRange []models.Product
	resp := doRequest(t, app, http.MethodGet, "/api/products/price-range?min=1&max=10", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &inRange)
	assert.ElementsMatch(t, []string{"Low", "High"}, productNames(inRange))

	var defaults []models.Product
	resp = doRequest(t, app, http.MethodGet, "/api/products/price-range", nil)
	decode(t, resp, &defaults)
	assert.Len(t, defaults, 4)

	var fromMin []models.Product
	resp = doRequest(t, app, http.MethodGet, "/api/products/price-range?min=10.00", nil)
	decode(t, resp, &fromMin)
	assert.ElementsMatch(t, []string{"High", "Premium"}, productNames(fromMin))

	resp = doRequest(t, app, http.MethodGet, "/api/products/price-range?min=cheap", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCountProducts(t *testing.T) {
	app := setupApp(t)

	resp := doRequest(t, app, http.MethodGet, "/api/products/count", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	assert.Equal(t, "0", readBody(t, resp))

	createProduct(t, app, "Pen", 1.5, 10)
	createProduct(t, app, "Ruler", 2, 0)

	resp = doRequest(t, app, http.MethodGet, "/api/products/count", nil)
	assert.Equal(t, "2", readBody(t, resp))
}

func TestHealthEndpoint(t *testing.T) {
	app := setupApp(t)

	resp := doRequest(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "up", body["database"])
}

func TestHealthEndpointDatabaseDown(t *testing.T) {
	app := fiber.New()
	handlers.NewHealthHandler(func() error { return fmt.Errorf("connection refused") }).RegisterRoutes(app)

	resp := doRequest(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "down", body["database"])
}

func TestProductPriceKeepsTwoDecimals(t *testing.T) {
	app := setupApp(t)

	resp := doRequest(t, app, http.MethodPost, "/api/products", `{"name":"Pen","price":99999999.99,"quantity":1}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	decode(t, resp, &created)

	resp = doRequest(t, app, http.MethodGet, "/api/products/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Product
	decode(t, resp, &fetched)
	assert.True(t, created.Price.Equal(fetched.Price), "created %s, fetched %s", created.Price, fetched.Price)

	resp = doRequest(t, app, http.MethodPut, "/api/products/"+created.ID.String(), `{"name":"Pen","price":2.345,"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDatastoreFailures(t *testing.T) {
	app, sqlDB := setupAppWithDB(t)
	created := createProduct(t, app, "Pen", 1.5, 1)
	require.NoError(t, sqlDB.Close())

	tests := []struct {
		name    string
		method  string
		target  string
		body    interface{}
		message string
	}{
		{"list", http.MethodGet, "/api/products", nil, "Could not retrieve products"},
		{"get", http.MethodGet, "/api/products/" + created.ID.String(), nil, "Could not retrieve product"},
		{"search", http.MethodGet, "/api/products/search?name=pen", nil, "Could not search products"},
		{"count", http.MethodGet, "/api/products/count", nil, "Could not count products"},
		{"create", http.MethodPost, "/api/products", `{"name":"Pen","price":1.5,"quantity":1}`, "Could not create product"},
		{"update", http.MethodPut, "/api/products/" + created.ID.String(), `{"name":"Pen","price":1.5,"quantity":1}`, "Could not update product"},
		{"delete", http.MethodDelete, "/api/products/" + created.ID.String(), nil, "Could not delete product"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

			var body map[string]string
			decode(t, resp, &body)
			assert.Equal(t, tt.message, body["message"])
			assert.NotEmpty(t, body["error"])
		})
	}
}
