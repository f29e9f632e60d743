package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryOrderRepository is an in-memory implementation of OrderRepository.
type MemoryOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMemoryOrderRepository creates a new instance of MemoryOrderRepository.
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[string]models.Order),
	}
}

func (r *MemoryOrderRepository) sorted(keep func(models.Order) bool) []models.Order {
	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if keep(order) {
			orderList = append(orderList, order)
		}
	}
	sort.Slice(orderList, func(i, j int) bool {
		return orderList[i].CreatedAt.After(orderList[j].CreatedAt)
	})
	return orderList
}

// GetAll returns all orders, newest first.
func (r *MemoryOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted(func(models.Order) bool { return true }), nil
}

// GetByUserID returns the orders of one user, newest first.
func (r *MemoryOrderRepository) GetByUserID(userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted(func(o models.Order) bool { return o.UserID == userID }), nil
}

// GetByID returns an order by its ID.
func (r *MemoryOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s %w", id, ErrNotFound)
	}
	return &order, nil
}

// Create adds a new order.
func (r *MemoryOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	r.orders[order.ID] = *order
	return nil
}

// TransitionStatus changes the status of an order that is still in status from.
func (r *MemoryOrderRepository) TransitionStatus(id string, from, to models.OrderStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s %w", id, ErrNotFound)
	}
	if order.OrderStatus != from {
		return fmt.Errorf("order with ID %s: %w", id, ErrConflict)
	}
	order.OrderStatus = to
	if to == models.OrderStatusDelivered {
		order.DeliveredAt = &at
	}
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// SetPaymentStatus records a payment status; a succeeded order only accepts succeeded.
func (r *MemoryOrderRepository) SetPaymentStatus(id string, status models.PaymentStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s %w", id, ErrNotFound)
	}
	if order.PaymentStatus == models.PaymentStatusSucceeded && status != models.PaymentStatusSucceeded {
		return fmt.Errorf("order with ID %s: %w", id, ErrConflict)
	}
	order.PaymentStatus = status
	if status == models.PaymentStatusSucceeded && order.PaidAt == nil {
		order.PaidAt = &at
	}
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// SetPaymentIntent stores the payment intent id of an order.
func (r *MemoryOrderRepository) SetPaymentIntent(id, intentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s %w", id, ErrNotFound)
	}
	order.PaymentIntentID = intentID
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// Delete removes an order.
func (r *MemoryOrderRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return fmt.Errorf("order with ID %s %w", id, ErrNotFound)
	}
	delete(r.orders, id)
	return nil
}

// Stats aggregates order counts and revenue. Cancelled orders do not count towards revenue.
func (r *MemoryOrderRepository) Stats(recent int) (*models.OrderStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &models.OrderStats{
		TotalOrders:    int64(len(r.orders)),
		TotalRevenue:   decimal.Zero,
		OrdersByStatus: make(map[models.OrderStatus]int64),
	}
	for _, order := range r.orders {
		stats.OrdersByStatus[order.OrderStatus]++
		if order.OrderStatus != models.OrderStatusCancelled {
			stats.TotalRevenue = stats.TotalRevenue.Add(order.TotalPrice)
		}
	}

	all := r.sorted(func(models.Order) bool { return true })
	if len(all) > recent {
		all = all[:recent]
	}
	stats.RecentOrders = all
	return stats, nil
}
