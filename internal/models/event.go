package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order event types published to the broker.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusUpdated = "order.status_updated"
	EventOrderCancelled     = "order.cancelled"
	EventPaymentUpdated     = "payment.updated"
)

// OrderEvent is the message published whenever an order changes.
type OrderEvent struct {
	Type          string          `json:"type"`
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id"`
	Email         string          `json:"email"`
	FullName      string          `json:"full_name"`
	OrderStatus   OrderStatus     `json:"order_status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Total         decimal.Decimal `json:"total"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewOrderEvent builds an event of the given type from the current state of order.
func NewOrderEvent(eventType string, order *Order) OrderEvent {
	return OrderEvent{
		Type:          eventType,
		OrderID:       order.ID,
		UserID:        order.UserID,
		Email:         order.ShippingInfo.Email,
		FullName:      order.ShippingInfo.FullName,
		OrderStatus:   order.OrderStatus,
		PaymentStatus: order.PaymentStatus,
		Total:         order.TotalPrice,
		OccurredAt:    time.Now(),
	}
}
