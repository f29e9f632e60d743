package services

import (
	"context"
	"fmt"

	"storefront/internal/gateway"
	"storefront/internal/models"
	"storefront/internal/pricing"

	"github.com/shopspring/decimal"
)

// PaymentGateway creates and looks up payment intents with the card processor.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, req gateway.IntentRequest) (*gateway.Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*gateway.Intent, error)
}

// PaymentService creates payment intents for orders and records their outcome.
type PaymentService struct {
	orders         *OrderService
	gateway        PaymentGateway
	publishableKey string
	currency       string
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(orders *OrderService, gw PaymentGateway, publishableKey, currency string) *PaymentService {
	if currency == "" {
		currency = "usd"
	}
	return &PaymentService{
		orders:         orders,
		gateway:        gw,
		publishableKey: publishableKey,
		currency:       currency,
	}
}

// PublishableKey is the key clients confirm payments with.
func (s *PaymentService) PublishableKey() string {
	return s.publishableKey
}

// CreatePaymentIntent creates an intent charging the total of one of the caller's orders.
// amount must equal the order total.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, userID, orderID string, amount decimal.Decimal) (*gateway.Intent, error) {
	order, err := s.orders.GetOrder(orderID, userID, false)
	if err != nil {
		return nil, err
	}
	if order.OrderStatus == models.OrderStatusCancelled {
		return nil, fmt.Errorf("order %s is cancelled: %w", orderID, ErrOrderNotPayable)
	}
	if order.PaymentStatus == models.PaymentStatusSucceeded {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrAlreadyPaid)
	}
	if !amount.Equal(order.TotalPrice) {
		return nil, fmt.Errorf("got %s, order total is %s: %w", amount.StringFixed(2), order.TotalPrice.StringFixed(2), ErrAmountMismatch)
	}

	intent, err := s.gateway.CreateIntent(ctx, gateway.IntentRequest{
		OrderID:      order.ID,
		Amount:       pricing.ToCents(order.TotalPrice),
		Currency:     s.currency,
		ReceiptEmail: order.ShippingInfo.Email,
	})
	if err != nil {
		return nil, err
	}
	if err := s.orders.AttachPaymentIntent(order, intent.ID); err != nil {
		return nil, err
	}
	return intent, nil
}

// UpdatePaymentStatus records the payment outcome reported by the client. A succeeded or
// processing claim is only accepted when the order's payment intent at the processor has that
// status, belongs to the order and charges its total.
func (s *PaymentService) UpdatePaymentStatus(ctx context.Context, userID string, admin bool, orderID string, status models.PaymentStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%q: %w", status, ErrInvalidPaymentStatus)
	}
	order, err := s.orders.GetOrder(orderID, userID, admin)
	if err != nil {
		return nil, err
	}
	if status == models.PaymentStatusSucceeded || status == models.PaymentStatusProcessing {
		if err := s.verifyIntent(ctx, order, status); err != nil {
			return nil, err
		}
	}
	return s.orders.recordPaymentStatus(order, status)
}

func (s *PaymentService) verifyIntent(ctx context.Context, order *models.Order, status models.PaymentStatus) error {
	if order.PaymentIntentID == "" {
		return fmt.Errorf("order %s has no payment intent: %w", order.ID, ErrPaymentNotVerified)
	}
	intent, err := s.gateway.RetrieveIntent(ctx, order.PaymentIntentID)
	if err != nil {
		return err
	}
	switch {
	case intent.OrderID != order.ID:
		return fmt.Errorf("intent %s belongs to order %q: %w", intent.ID, intent.OrderID, ErrPaymentNotVerified)
	case intent.Amount != pricing.ToCents(order.TotalPrice):
		return fmt.Errorf("intent %s charges %d, order total is %s: %w", intent.ID, intent.Amount, order.TotalPrice.StringFixed(2), ErrPaymentNotVerified)
	case intent.Status != string(status):
		return fmt.Errorf("intent %s is %s, not %s: %w", intent.ID, intent.Status, status, ErrPaymentNotVerified)
	}
	return nil
}
