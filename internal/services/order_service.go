package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
)

// RecentOrdersLimit is how many orders the stats overview lists.
const RecentOrdersLimit = 5

// EventPublisher delivers order events to interested consumers.
type EventPublisher interface {
	PublishOrderEvent(event models.OrderEvent) error
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	publisher   EventPublisher
}

// NewOrderService creates a new OrderService. publisher may be nil, in which case no events are sent.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, userRepo repositories.UserRepository, publisher EventPublisher) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// CreateOrder prices the requested items from the catalog, reserves their stock and stores the
// order in Processing state. A client-computed total that disagrees with the catalog is rejected.
func (s *OrderService) CreateOrder(userID string, req models.CreateOrderRequest) (*models.Order, error) {
	if len(req.OrderItems) == 0 {
		return nil, ErrEmptyOrder
	}

	items := make([]models.OrderItem, 0, len(req.OrderItems))
	for _, in := range req.OrderItems {
		product, err := s.productRepo.GetByID(in.ProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("product %s: %w", in.ProductID, ErrProductNotFound)
			}
			return nil, err
		}
		if product.Stock < in.Quantity {
			return nil, fmt.Errorf("%s (requested: %d, available: %d): %w", product.Name, in.Quantity, product.Stock, ErrInsufficientStock)
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Quantity:  in.Quantity,
			Price:     product.Price,
			Title:     product.Name,
			Image:     product.Image,
		})
	}

	summary := pricing.Summarize(items)
	if !req.TotalPrice.IsZero() && !req.TotalPrice.Equal(summary.Total) {
		return nil, fmt.Errorf("submitted %s, expected %s: %w", req.TotalPrice.StringFixed(2), summary.Total.StringFixed(2), ErrTotalMismatch)
	}

	if err := s.reserveStock(items); err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:        userID,
		OrderItems:    items,
		ShippingInfo:  req.ShippingInfo,
		ItemsPrice:    summary.Subtotal,
		TaxPrice:      summary.Tax,
		ShippingPrice: summary.Shipping,
		TotalPrice:    summary.Total,
		OrderStatus:   models.OrderStatusProcessing,
		PaymentStatus: models.PaymentStatusPending,
	}
	if err := s.orderRepo.Create(order); err != nil {
		s.releaseStock(items)
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	s.publish(models.EventOrderCreated, order)
	return order, nil
}

// reserveStock decrements stock for every item, undoing earlier decrements if one fails.
func (s *OrderService) reserveStock(items []models.OrderItem) error {
	for i, item := range items {
		err := s.productRepo.AdjustStock(item.ProductID, -item.Quantity)
		if err == nil {
			continue
		}
		s.releaseStock(items[:i])
		switch {
		case errors.Is(err, repositories.ErrOutOfStock):
			return fmt.Errorf("%s: %w", item.Title, ErrInsufficientStock)
		case errors.Is(err, repositories.ErrNotFound):
			return fmt.Errorf("product %s: %w", item.ProductID, ErrProductNotFound)
		}
		return fmt.Errorf("failed to reserve stock: %w", err)
	}
	return nil
}

func (s *OrderService) releaseStock(items []models.OrderItem) {
	for _, item := range items {
		if err := s.productRepo.AdjustStock(item.ProductID, item.Quantity); err != nil {
			log.Printf("Warning: failed to restore stock for product %s: %v", item.ProductID, err)
		}
	}
}

// GetMyOrders lists the orders placed by a user, newest first.
func (s *OrderService) GetMyOrders(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(userID)
}

// GetAllOrders lists every order, newest first.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrder returns an order visible to the caller: its owner, or any admin.
func (s *OrderService) GetOrder(id, userID string, admin bool) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrOrderNotFound)
		}
		return nil, err
	}
	if !admin && order.UserID != userID {
		return nil, ErrForbidden
	}
	return order, nil
}

// CancelOrder cancels one of the caller's orders while it is still Processing and returns its
// items to stock. Stock is returned only by the request whose cancellation took effect.
func (s *OrderService) CancelOrder(id, userID string) (*models.Order, error) {
	order, err := s.GetOrder(id, userID, false)
	if err != nil {
		return nil, err
	}
	if !order.OrderStatus.Cancellable() {
		return nil, fmt.Errorf("order %s is %s: %w", id, order.OrderStatus, ErrNotCancellable)
	}

	if err := s.orderRepo.TransitionStatus(id, order.OrderStatus, models.OrderStatusCancelled, time.Now()); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, fmt.Errorf("order %s changed while cancelling: %w", id, ErrNotCancellable)
		}
		return nil, fmt.Errorf("failed to cancel order %s: %w", id, err)
	}
	order.OrderStatus = models.OrderStatusCancelled
	s.releaseStock(order.OrderItems)

	s.publish(models.EventOrderCancelled, order)
	return order, nil
}

// DeleteOrder removes one of the caller's orders. Only Delivered or Cancelled orders can be deleted.
func (s *OrderService) DeleteOrder(id, userID string) error {
	order, err := s.GetOrder(id, userID, false)
	if err != nil {
		return err
	}
	if !order.OrderStatus.Deletable() {
		return fmt.Errorf("order %s is %s: %w", id, order.OrderStatus, ErrNotDeletable)
	}
	if err := s.orderRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete order %s: %w", id, err)
	}
	return nil
}

// UpdateOrderStatus moves an order along its fulfillment lifecycle.
func (s *OrderService) UpdateOrderStatus(id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}
	order, err := s.GetOrder(id, "", true)
	if err != nil {
		return nil, err
	}
	if !order.OrderStatus.CanTransitionTo(status) {
		return nil, fmt.Errorf("%s to %s: %w", order.OrderStatus, status, ErrIllegalTransition)
	}

	now := time.Now()
	if err := s.orderRepo.TransitionStatus(id, order.OrderStatus, status, now); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, fmt.Errorf("order %s changed from %s: %w", id, order.OrderStatus, ErrIllegalTransition)
		}
		return nil, fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	order.OrderStatus = status
	if status == models.OrderStatusDelivered {
		order.DeliveredAt = &now
	}
	if status == models.OrderStatusCancelled {
		s.releaseStock(order.OrderItems)
		s.publish(models.EventOrderCancelled, order)
		return order, nil
	}

	s.publish(models.EventOrderStatusUpdated, order)
	return order, nil
}

// AttachPaymentIntent records the payment intent created for an order.
func (s *OrderService) AttachPaymentIntent(order *models.Order, intentID string) error {
	if err := s.orderRepo.SetPaymentIntent(order.ID, intentID); err != nil {
		return fmt.Errorf("failed to attach payment intent to order %s: %w", order.ID, err)
	}
	order.PaymentIntentID = intentID
	return nil
}

// recordPaymentStatus stores a payment outcome the caller has already checked. A succeeded
// payment is never downgraded.
func (s *OrderService) recordPaymentStatus(order *models.Order, status models.PaymentStatus) (*models.Order, error) {
	if order.PaymentStatus == models.PaymentStatusSucceeded && status != models.PaymentStatusSucceeded {
		return nil, fmt.Errorf("order %s: %w", order.ID, ErrAlreadyPaid)
	}

	now := time.Now()
	if err := s.orderRepo.SetPaymentStatus(order.ID, status, now); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, fmt.Errorf("order %s: %w", order.ID, ErrAlreadyPaid)
		}
		return nil, fmt.Errorf("failed to update payment status for order %s: %w", order.ID, err)
	}
	order.PaymentStatus = status
	if status == models.PaymentStatusSucceeded && order.PaidAt == nil {
		order.PaidAt = &now
	}

	s.publish(models.EventPaymentUpdated, order)
	return order, nil
}

// Stats builds the admin dashboard overview.
func (s *OrderService) Stats() (*models.OrderStats, error) {
	stats, err := s.orderRepo.Stats(RecentOrdersLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to compute order stats: %w", err)
	}
	if stats.TotalUsers, err = s.userRepo.Count(); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if stats.TotalProducts, err = s.productRepo.Count(); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	return stats, nil
}

func (s *OrderService) publish(eventType string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderEvent(models.NewOrderEvent(eventType, order)); err != nil {
		log.Printf("Warning: Failed to publish %s event for order %s: %v", eventType, order.ID, err)
		return
	}
	log.Printf("Successfully published %s event for order %s", eventType, order.ID)
}
