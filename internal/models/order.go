package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfillment-lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further fulfillment transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Deletable reports whether an order in this status may be deleted by its owner.
func (s OrderStatus) Deletable() bool {
	return s.IsTerminal()
}

// Cancellable reports whether the owner may still cancel the order.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusProcessing
}

// CanTransitionTo reports whether an admin may move an order from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// PaymentStatus mirrors the card processor's payment intent status onto an order.
type PaymentStatus string

const (
	PaymentStatusPending               PaymentStatus = "pending"
	PaymentStatusProcessing            PaymentStatus = "processing"
	PaymentStatusRequiresPaymentMethod PaymentStatus = "requires_payment_method"
	PaymentStatusSucceeded             PaymentStatus = "succeeded"
	PaymentStatusFailed                PaymentStatus = "failed"
	PaymentStatusCanceled              PaymentStatus = "canceled"
)

// Valid reports whether s is one of the known payment statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusRequiresPaymentMethod,
		PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusCanceled:
		return true
	}
	return false
}

// OrderItem represents a single line item within an order, with its price captured at order time.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Title     string          `json:"title"`
	Image     string          `json:"image"`
}

// LinePrice is the unit price the item was ordered at.
func (i OrderItem) LinePrice() decimal.Decimal { return i.Price }

// LineQuantity is the number of units ordered.
func (i OrderItem) LineQuantity() int { return i.Quantity }

// Address is a postal address used for shipping and billing.
type Address struct {
	Address string `json:"address" yaml:"address" validate:"required,notblank"`
	City    string `json:"city" yaml:"city" validate:"required,notblank"`
	State   string `json:"state" yaml:"state" validate:"required,notblank"`
	ZipCode string `json:"zip_code" yaml:"zip_code" validate:"required,zipcode"`
	Country string `json:"country" yaml:"country" validate:"required,notblank"`
}

// ShippingInfo is the recipient and destination of an order.
type ShippingInfo struct {
	FullName string `json:"full_name" yaml:"full_name" validate:"required,notblank"`
	Email    string `json:"email" yaml:"email" validate:"required,email"`
	Phone    string `json:"phone" yaml:"phone" validate:"required,phone"`
	Address  `yaml:",inline"`
}

// Order represents a customer order.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"user_id" gorm:"index;type:varchar(36)"`
	OrderItems      []OrderItem     `json:"order_items" gorm:"serializer:json;type:text"`
	ShippingInfo    ShippingInfo    `json:"shipping_info" gorm:"serializer:json;type:text"`
	ItemsPrice      decimal.Decimal `json:"items_price" gorm:"type:decimal(12,2)"`
	TaxPrice        decimal.Decimal `json:"tax_price" gorm:"type:decimal(12,2)"`
	ShippingPrice   decimal.Decimal `json:"shipping_price" gorm:"type:decimal(12,2)"`
	TotalPrice      decimal.Decimal `json:"total_price" gorm:"type:decimal(12,2)"`
	OrderStatus     OrderStatus     `json:"order_status" gorm:"index;type:varchar(20)"`
	PaymentStatus   PaymentStatus   `json:"payment_status" gorm:"type:varchar(32)"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty" gorm:"type:varchar(64)"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItemInput is a line item as submitted by the checkout flow.
type OrderItemInput struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"min=1,max=99"`
	Price     decimal.Decimal `json:"price"`
	Title     string          `json:"title"`
	Image     string          `json:"image"`
}

// CreateOrderRequest is the body of POST /order/new.
// The price fields are the client's own computation; the server re-prices and rejects a mismatch.
type CreateOrderRequest struct {
	OrderItems    []OrderItemInput `json:"order_items" validate:"required,min=1,dive"`
	ShippingInfo  ShippingInfo     `json:"shipping_info"`
	ItemsPrice    decimal.Decimal  `json:"items_price"`
	TaxPrice      decimal.Decimal  `json:"tax_price"`
	ShippingPrice decimal.Decimal  `json:"shipping_price"`
	TotalPrice    decimal.Decimal  `json:"total_price"`
}

// OrderStats is the admin dashboard overview.
type OrderStats struct {
	TotalOrders    int64                 `json:"total_orders"`
	TotalRevenue   decimal.Decimal       `json:"total_revenue"`
	OrdersByStatus map[OrderStatus]int64 `json:"orders_by_status"`
	TotalUsers     int64                 `json:"total_users"`
	TotalProducts  int64                 `json:"total_products"`
	RecentOrders   []Order               `json:"recent_orders"`
}
