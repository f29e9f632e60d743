package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"storefront/internal/cart"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/validation"
	"storefront/pkg/mailer"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outbox struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (o *outbox) Send(_ context.Context, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return o.err
}

type testEnv struct {
	app      *fiber.App
	auth     *services.AuthService
	products repositories.ProductRepository
	outbox   *outbox
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	productRepo := repositories.NewGORMProductRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	authService := services.NewAuthService(userRepo, "test_jwt_secret")
	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, userRepo, nil)
	cartService := services.NewCartService(cart.NewMemoryStorage(), productRepo)
	box := &outbox{}
	contactService := services.NewContactService(box, "support@example.com")

	validate := validation.New()
	authRequired := middleware.AuthRequired(authService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService, validate).RegisterRoutes(apiV1)
	handlers.NewProductHandler(productService, validate).RegisterRoutes(apiV1, authRequired)
	handlers.NewCartHandler(cartService, validate).RegisterRoutes(apiV1, authRequired)
	handlers.NewOrderHandler(orderService, validate).RegisterRoutes(apiV1, authRequired)
	handlers.NewContactHandler(contactService, validate).RegisterRoutes(apiV1)

	seedProductsForTest(t, productRepo)
	require.NoError(t, authService.EnsureAdmin("admin", "admin@example.com", "adminpass"))

	return &testEnv{app: app, auth: authService, products: productRepo, outbox: box}
}

// seedProductsForTest populates the product repository for tests.
func seedProductsForTest(t *testing.T, repo repositories.ProductRepository) {
	t.Helper()
	products := []models.Product{
		{Name: "Test Laptop", Description: "For testing purposes", Price: decimal.NewFromInt(1000), Stock: 5},
		{Name: "Test Mug", Description: "Another test item", Price: decimal.RequireFromString("12.50"), Stock: 10},
	}
	for i := range products {
		require.NoError(t, repo.Create(&products[i]))
	}
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, body)
	return body["token"].(string)
}

func (e *testEnv) customer(t *testing.T, username string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, status, body)
	return e.login(t, username, "password123")
}

func (e *testEnv) productID(t *testing.T, name string) string {
	t.Helper()
	all, err := e.products.GetAll()
	require.NoError(t, err)
	for _, p := range all {
		if p.Name == name {
			return p.ID
		}
	}
	t.Fatalf("product %s not seeded", name)
	return ""
}

func shippingInfo() map[string]string {
	return map[string]string{
		"full_name": "Jane Doe",
		"email":     "jane@example.com",
		"phone":     "5551234567",
		"address":   "1 Main St",
		"city":      "Springfield",
		"state":     "IL",
		"zip_code":  "12345",
		"country":   "US",
	}
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env := setupApp(t)

	user := map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
	}
	status, body := env.do(t, http.MethodPost, "/api/v1/auth/register", "", user)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "User registered successfully", body["message"])
	registered := body["user"].(map[string]interface{})
	assert.NotContains(t, registered, "password")
	assert.Equal(t, models.RoleUser, registered["role"])

	status, _ = env.do(t, http.MethodPost, "/api/v1/auth/register", "", user)
	assert.Equal(t, http.StatusConflict, status)

	status, body = env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", body["message"])

	token := env.login(t, "testuser", "password123")
	claims, err := env.auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "testuser", claims["username"])
	assert.Equal(t, models.RoleUser, claims["role"])

	status, _ = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "testuser", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestProductEndpoints(t *testing.T) {
	env := setupApp(t)
	admin := env.login(t, "admin", "adminpass")
	user := env.customer(t, "shopper")

	// Catalog reads are public
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var products []models.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	resp.Body.Close()
	assert.Len(t, products, 2)

	newProduct := map[string]interface{}{
		"name":        "Smartphone",
		"description": "Latest model smartphone",
		"price":       "799.99",
		"stock":       50,
	}
	status, _ := env.do(t, http.MethodPost, "/api/v1/products", "", newProduct)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = env.do(t, http.MethodPost, "/api/v1/products", user, newProduct)
	assert.Equal(t, http.StatusForbidden, status)

	status, created := env.do(t, http.MethodPost, "/api/v1/products", admin, newProduct)
	require.Equal(t, http.StatusCreated, status, created)
	id := created["id"].(string)
	assert.NotEmpty(t, id)
	assert.Equal(t, "799.99", created["price"])

	status, _ = env.do(t, http.MethodPost, "/api/v1/products", admin, map[string]interface{}{"name": "Freebie", "price": "0"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, fetched := env.do(t, http.MethodGet, "/api/v1/products/"+id, "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Smartphone", fetched["name"])

	status, updated := env.do(t, http.MethodPut, "/api/v1/products/"+id, admin, map[string]interface{}{
		"name":  "Smartphone Pro",
		"price": "899.99",
		"stock": 45,
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Smartphone Pro", updated["name"])

	status, _ = env.do(t, http.MethodDelete, "/api/v1/products/"+id, admin, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = env.do(t, http.MethodGet, "/api/v1/products/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCartEndpoints(t *testing.T) {
	env := setupApp(t)
	user := env.customer(t, "shopper")
	mug := env.productID(t, "Test Mug")

	status, _ := env.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := env.do(t, http.MethodPost, "/api/v1/cart/items", user, map[string]interface{}{"product_id": mug, "quantity": 2})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(2), body["count"])
	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, "25", summary["subtotal"])
	assert.Equal(t, "32.5", summary["total"])

	status, _ = env.do(t, http.MethodPut, "/api/v1/cart/items/"+mug, user, map[string]int{"quantity": 100})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = env.do(t, http.MethodPut, "/api/v1/cart/items/unknown", user, map[string]int{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, status)

	status, body = env.do(t, http.MethodPut, "/api/v1/cart/items/"+mug, user, map[string]int{"quantity": 5})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(5), body["count"])

	status, body = env.do(t, http.MethodDelete, "/api/v1/cart/items/"+mug, user, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["count"])

	status, _ = env.do(t, http.MethodPost, "/api/v1/cart/items", user, map[string]interface{}{"product_id": mug})
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodDelete, "/api/v1/cart", user, nil)
	assert.Equal(t, http.StatusNoContent, status)
	_, body = env.do(t, http.MethodGet, "/api/v1/cart", user, nil)
	assert.Equal(t, float64(0), body["count"])
}

func TestOrderLifecycle(t *testing.T) {
	env := setupApp(t)
	admin := env.login(t, "admin", "adminpass")
	jane := env.customer(t, "jane")
	bob := env.customer(t, "bob")
	mug := env.productID(t, "Test Mug")

	order := map[string]interface{}{
		"order_items":   []map[string]interface{}{{"product_id": mug, "quantity": 2, "price": "12.50"}},
		"shipping_info": shippingInfo(),
		"total_price":   "32.50",
	}

	status, _ := env.do(t, http.MethodPost, "/api/v1/order/new", "", order)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := env.do(t, http.MethodPost, "/api/v1/order/new", jane, map[string]interface{}{
		"order_items":   []map[string]interface{}{{"product_id": mug, "quantity": 2}},
		"shipping_info": shippingInfo(),
		"total_price":   "1.00",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "does not match")

	badShipping := shippingInfo()
	badShipping["phone"] = "12345"
	status, body = env.do(t, http.MethodPost, "/api/v1/order/new", jane, map[string]interface{}{
		"order_items":   []map[string]interface{}{{"product_id": mug, "quantity": 2}},
		"shipping_info": badShipping,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "Phone")

	status, body = env.do(t, http.MethodPost, "/api/v1/order/new", jane, order)
	require.Equal(t, http.StatusCreated, status, body)
	created := body["order"].(map[string]interface{})
	id := created["id"].(string)
	assert.Equal(t, "Processing", created["order_status"])
	assert.Equal(t, "32.5", created["total_price"])

	_, body = env.do(t, http.MethodGet, "/api/v1/order/me", jane, nil)
	assert.Len(t, body["orders"], 1)
	_, body = env.do(t, http.MethodGet, "/api/v1/order/me", bob, nil)
	assert.Len(t, body["orders"], 0)

	status, _ = env.do(t, http.MethodGet, "/api/v1/order/"+id, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(t, http.MethodGet, "/api/v1/order/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodGet, "/api/v1/order/does-not-exist", jane, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodGet, "/api/v1/order", jane, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, body = env.do(t, http.MethodGet, "/api/v1/order", admin, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["orders"], 1)

	status, _ = env.do(t, http.MethodDelete, "/api/v1/order/"+id, jane, nil)
	assert.Equal(t, http.StatusBadRequest, status, "processing orders cannot be deleted")

	status, _ = env.do(t, http.MethodPut, "/api/v1/order/"+id+"/status", jane, map[string]string{"status": "Shipped"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(t, http.MethodPut, "/api/v1/order/"+id+"/status", admin, map[string]string{"status": "Delivered"})
	assert.Equal(t, http.StatusBadRequest, status)
	status, body = env.do(t, http.MethodPut, "/api/v1/order/"+id+"/status", admin, map[string]string{"status": "Shipped"})
	require.Equal(t, http.StatusOK, status, body)

	status, _ = env.do(t, http.MethodPut, "/api/v1/order/"+id+"/cancel", jane, nil)
	assert.Equal(t, http.StatusBadRequest, status, "shipped orders cannot be cancelled")

	status, _ = env.do(t, http.MethodPut, "/api/v1/order/"+id+"/status", admin, map[string]string{"status": "Delivered"})
	assert.Equal(t, http.StatusOK, status)

	status, body = env.do(t, http.MethodGet, "/api/v1/order/stats/overview", admin, nil)
	require.Equal(t, http.StatusOK, status)
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["total_orders"])
	assert.Equal(t, "32.5", stats["total_revenue"])
	assert.Equal(t, float64(3), stats["total_users"])
	assert.Equal(t, float64(2), stats["total_products"])

	status, _ = env.do(t, http.MethodDelete, "/api/v1/order/"+id, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(t, http.MethodDelete, "/api/v1/order/"+id, jane, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestOrderCancelRestoresStock(t *testing.T) {
	env := setupApp(t)
	jane := env.customer(t, "jane")
	laptop := env.productID(t, "Test Laptop")

	status, body := env.do(t, http.MethodPost, "/api/v1/order/new", jane, map[string]interface{}{
		"order_items":   []map[string]interface{}{{"product_id": laptop, "quantity": 5}},
		"shipping_info": shippingInfo(),
	})
	require.Equal(t, http.StatusCreated, status, body)
	id := body["order"].(map[string]interface{})["id"].(string)

	status, body = env.do(t, http.MethodPost, "/api/v1/order/new", jane, map[string]interface{}{
		"order_items":   []map[string]interface{}{{"product_id": laptop, "quantity": 1}},
		"shipping_info": shippingInfo(),
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "insufficient stock")

	status, body = env.do(t, http.MethodPut, "/api/v1/order/"+id+"/cancel", jane, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Cancelled", body["order"].(map[string]interface{})["order_status"])

	p, err := env.products.GetByID(laptop)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
}

func TestContactEndpoint(t *testing.T) {
	env := setupApp(t)
	form := map[string]string{
		"name":    "Jane",
		"email":   "jane@example.com",
		"subject": "Question",
		"message": "Hello",
	}

	status, body := env.do(t, http.MethodPost, "/api/v1/contact", "", form)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Len(t, env.outbox.sent, 2)

	status, body = env.do(t, http.MethodPost, "/api/v1/contact", "", map[string]string{"name": "Jane", "email": "nope"})
	assert.Equal(t, http.StatusBadRequest, status)
	errs := body["errors"].(map[string]interface{})
	assert.Contains(t, errs, "Email")
	assert.Contains(t, errs, "Subject")
	assert.Contains(t, errs, "Message")

	env.outbox.err = errors.New("smtp down")
	status, _ = env.do(t, http.MethodPost, "/api/v1/contact", "", form)
	assert.Equal(t, http.StatusInternalServerError, status)
}
