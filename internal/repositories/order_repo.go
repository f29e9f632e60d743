package repositories

import (
	"time"

	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByUserID(userID string) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
	// TransitionStatus moves an order from one fulfillment status to another, stamping
	// DeliveredAt with at when the target is Delivered. It fails with ErrConflict if the order
	// is no longer in status from.
	TransitionStatus(id string, from, to models.OrderStatus, at time.Time) error
	// SetPaymentStatus records a payment status. Once an order has succeeded, only succeeded
	// can be written again (ErrConflict otherwise). PaidAt is set to at on the first success.
	SetPaymentStatus(id string, status models.PaymentStatus, at time.Time) error
	SetPaymentIntent(id, intentID string) error
	Delete(id string) error
	// Stats fills the order-derived part of the dashboard overview with the given number of
	// most recent orders.
	Stats(recent int) (*models.OrderStats, error)
}
