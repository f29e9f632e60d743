package repositories

import (
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves every order, newest first.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	orders := make([]models.Order, 0)
	if err := r.db.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByUserID retrieves the orders placed by one user, newest first.
func (r *GORMOrderRepository) GetByUserID(userID string) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	if err := r.db.Where("user_id = ?", userID).Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// Create inserts a new order, assigning an ID when none is set.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// TransitionStatus updates order_status only where it still holds the expected value.
func (r *GORMOrderRepository) TransitionStatus(id string, from, to models.OrderStatus, at time.Time) error {
	changes := map[string]any{"order_status": to}
	if to == models.OrderStatusDelivered {
		changes["delivered_at"] = at
	}
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND order_status = ?", id, from).
		Updates(changes)
	if res.Error != nil {
		return fmt.Errorf("failed to update order status: %w", res.Error)
	}
	return r.checkAffected(id, res.RowsAffected)
}

// SetPaymentStatus writes payment_status, keeping the first paid_at.
func (r *GORMOrderRepository) SetPaymentStatus(id string, status models.PaymentStatus, at time.Time) error {
	q := r.db.Model(&models.Order{}).Where("id = ?", id)
	changes := map[string]any{"payment_status": status}
	if status == models.PaymentStatusSucceeded {
		changes["paid_at"] = gorm.Expr("COALESCE(paid_at, ?)", at)
	} else {
		q = q.Where("payment_status <> ?", models.PaymentStatusSucceeded)
	}
	res := q.Updates(changes)
	if res.Error != nil {
		return fmt.Errorf("failed to update payment status: %w", res.Error)
	}
	return r.checkAffected(id, res.RowsAffected)
}

// SetPaymentIntent stores the id of the payment intent created for an order.
func (r *GORMOrderRepository) SetPaymentIntent(id, intentID string) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Update("payment_intent_id", intentID)
	if res.Error != nil {
		return fmt.Errorf("failed to set payment intent: %w", res.Error)
	}
	return r.checkAffected(id, res.RowsAffected)
}

// checkAffected tells a missing order apart from one whose guard no longer matched.
func (r *GORMOrderRepository) checkAffected(id string, affected int64) error {
	if affected > 0 {
		return nil
	}
	var count int64
	if err := r.db.Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check order %s: %w", id, err)
	}
	if count == 0 {
		return fmt.Errorf("order with ID %s %w", id, ErrNotFound)
	}
	return fmt.Errorf("order with ID %s: %w", id, ErrConflict)
}

// Delete removes an order by its ID.
func (r *GORMOrderRepository) Delete(id string) error {
	res := r.db.Delete(&models.Order{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s %w", id, ErrNotFound)
	}
	return nil
}

// Stats aggregates order counts and revenue. Cancelled orders do not count towards revenue.
func (r *GORMOrderRepository) Stats(recent int) (*models.OrderStats, error) {
	stats := &models.OrderStats{
		OrdersByStatus: make(map[models.OrderStatus]int64),
	}

	if err := r.db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var rows []struct {
		OrderStatus models.OrderStatus
		Count       int64
	}
	if err := r.db.Model(&models.Order{}).
		Select("order_status, count(*) as count").
		Group("order_status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	for _, row := range rows {
		stats.OrdersByStatus[row.OrderStatus] = row.Count
	}

	var revenue decimal.Decimal
	if err := r.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_price), 0)").
		Where("order_status <> ?", models.OrderStatusCancelled).
		Row().Scan(&revenue); err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	stats.TotalRevenue = revenue.Round(2)

	if err := r.db.Order("created_at desc").Limit(recent).Find(&stats.RecentOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent orders: %w", err)
	}
	return stats, nil
}
