package storefront

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/pricing"

	"github.com/shopspring/decimal"
)

// ErrOrderNotDeletable is returned without contacting the server when an order is not yet
// Delivered or Cancelled.
var ErrOrderNotDeletable = errors.New("only delivered or cancelled orders can be deleted")

func orderPath(id string, suffix string) string {
	return "/order/" + url.PathEscape(id) + suffix
}

// Register creates a customer account.
func (c *Client) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/register", false, map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/login", false, map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return "", err
	}
	c.token = resp.Token
	return resp.Token, nil
}

// Products lists the catalog.
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/products", false, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches one catalog entry.
func (c *Client) Product(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), false, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

type orderResponse struct {
	Order models.Order `json:"order"`
}

type ordersResponse struct {
	Orders []models.Order `json:"orders"`
}

// CreateOrder places an order. The server re-prices it and rejects a disagreeing total.
func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, "/order/new", true, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

// MyOrders lists the caller's orders, newest first.
func (c *Client) MyOrders(ctx context.Context) ([]models.Order, error) {
	var resp ordersResponse
	if err := c.do(ctx, http.MethodGet, "/order/me", true, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

// Order fetches one order.
func (c *Client) Order(ctx context.Context, id string) (*models.Order, error) {
	var resp orderResponse
	if err := c.do(ctx, http.MethodGet, orderPath(id, ""), true, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

// CancelOrder cancels an order that is still Processing.
func (c *Client) CancelOrder(ctx context.Context, id string) (*models.Order, error) {
	var resp orderResponse
	if err := c.do(ctx, http.MethodPut, orderPath(id, "/cancel"), true, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

// DeleteOrder deletes a Delivered or Cancelled order. Other orders are refused locally.
func (c *Client) DeleteOrder(ctx context.Context, order models.Order) error {
	if !order.OrderStatus.Deletable() {
		return fmt.Errorf("order %s is %s: %w", order.ID, order.OrderStatus, ErrOrderNotDeletable)
	}
	return c.do(ctx, http.MethodDelete, orderPath(order.ID, ""), true, nil, nil)
}

// AllOrders lists every order. Admin only.
func (c *Client) AllOrders(ctx context.Context) ([]models.Order, error) {
	var resp ordersResponse
	if err := c.do(ctx, http.MethodGet, "/order", true, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

// UpdateOrderStatus moves an order along its fulfillment lifecycle. Admin only.
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	var resp orderResponse
	err := c.do(ctx, http.MethodPut, orderPath(id, "/status"), true, map[string]models.OrderStatus{"status": status}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

// Stats fetches the admin dashboard overview.
func (c *Client) Stats(ctx context.Context) (*models.OrderStats, error) {
	var resp struct {
		Stats models.OrderStats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/order/stats/overview", true, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Stats, nil
}

// PublishableKey fetches the key payments are confirmed with.
func (c *Client) PublishableKey(ctx context.Context) (string, error) {
	var resp struct {
		PublishableKey string `json:"publishableKey"`
	}
	if err := c.do(ctx, http.MethodGet, "/payment/config", false, nil, &resp); err != nil {
		return "", err
	}
	return resp.PublishableKey, nil
}

// CreatePaymentIntent asks the server for a payment intent covering amount and returns its
// client secret.
func (c *Client) CreatePaymentIntent(ctx context.Context, orderID string, amount decimal.Decimal) (string, error) {
	var resp struct {
		Success      bool   `json:"success"`
		ClientSecret string `json:"clientSecret"`
	}
	err := c.do(ctx, http.MethodPost, "/payment/create-payment-intent", true, map[string]interface{}{
		"orderId": orderID,
		"amount":  amount,
	}, &resp)
	if err != nil {
		return "", err
	}
	if !resp.Success || resp.ClientSecret == "" {
		return "", &APIError{StatusCode: http.StatusOK, Message: "payment intent response had no client secret"}
	}
	return resp.ClientSecret, nil
}

// UpdatePaymentStatus reports a payment outcome for an order.
func (c *Client) UpdatePaymentStatus(ctx context.Context, orderID string, status models.PaymentStatus) error {
	return c.do(ctx, http.MethodPut, "/payment/update-status/"+url.PathEscape(orderID), true,
		map[string]models.PaymentStatus{"paymentStatus": status}, nil)
}

// Contact submits the contact form.
func (c *Client) Contact(ctx context.Context, req models.ContactRequest) error {
	return c.do(ctx, http.MethodPost, "/contact", false, req, nil)
}

// Cart is the server-side cart of the logged-in user.
type Cart struct {
	Items   []cart.Item     `json:"items"`
	Count   int             `json:"count"`
	Summary pricing.Summary `json:"summary"`
}

// Cart fetches the server-side cart.
func (c *Client) Cart(ctx context.Context) (*Cart, error) {
	var resp Cart
	if err := c.do(ctx, http.MethodGet, "/cart", true, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddToCart adds qty units of a catalog product.
func (c *Client) AddToCart(ctx context.Context, productID string, qty int) (*Cart, error) {
	var resp Cart
	err := c.do(ctx, http.MethodPost, "/cart/items", true, map[string]interface{}{
		"product_id": productID,
		"quantity":   qty,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetCartQuantity replaces the quantity of a cart line.
func (c *Client) SetCartQuantity(ctx context.Context, productID string, qty int) (*Cart, error) {
	var resp Cart
	err := c.do(ctx, http.MethodPut, "/cart/items/"+url.PathEscape(productID), true, map[string]int{"quantity": qty}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoveFromCart drops a cart line.
func (c *Client) RemoveFromCart(ctx context.Context, productID string) (*Cart, error) {
	var resp Cart
	if err := c.do(ctx, http.MethodDelete, "/cart/items/"+url.PathEscape(productID), true, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearCart empties the server-side cart.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cart", true, nil, nil)
}
