package repositories_test

import (
	"testing"
	"time"

	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newOrder(userID string, status models.OrderStatus, total int64) *models.Order {
	return &models.Order{
		UserID: userID,
		OrderItems: []models.OrderItem{
			{ProductID: "p1", Quantity: 2, Price: decimal.NewFromInt(20), Title: "Mug"},
		},
		ShippingInfo: models.ShippingInfo{
			FullName: "Ada Lovelace",
			Email:    "ada@example.com",
			Phone:    "5551234567",
			Address:  models.Address{Address: "1 Main St", City: "Town", State: "ST", ZipCode: "12345", Country: "US"},
		},
		ItemsPrice:    decimal.NewFromInt(total),
		TotalPrice:    decimal.NewFromInt(total),
		OrderStatus:   status,
		PaymentStatus: models.PaymentStatusPending,
	}
}

func TestGORMOrderRepository_CreateAndGet(t *testing.T) {
	repo := repositories.NewGORMOrderRepository(setupDB(t))

	order := newOrder("u1", models.OrderStatusProcessing, 49)
	require.NoError(t, repo.Create(order))
	assert.NotEmpty(t, order.ID)

	fetched, err := repo.GetByID(order.ID)
	require.NoError(t, err)
	require.Len(t, fetched.OrderItems, 1)
	assert.Equal(t, "Mug", fetched.OrderItems[0].Title)
	assert.True(t, decimal.NewFromInt(20).Equal(fetched.OrderItems[0].Price))
	assert.Equal(t, "12345", fetched.ShippingInfo.ZipCode)
	assert.True(t, decimal.NewFromInt(49).Equal(fetched.TotalPrice))

	_, err = repo.GetByID("missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMOrderRepository_UpdateAndDelete(t *testing.T) {
	repo := repositories.NewGORMOrderRepository(setupDB(t))

	order := newOrder("u1", models.OrderStatusProcessing, 49)
	require.NoError(t, repo.Create(order))

	now := time.Now()
	require.NoError(t, repo.TransitionStatus(order.ID, models.OrderStatusProcessing, models.OrderStatusShipped, now))
	require.NoError(t, repo.TransitionStatus(order.ID, models.OrderStatusShipped, models.OrderStatusDelivered, now))

	fetched, err := repo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, fetched.OrderStatus)
	assert.NotNil(t, fetched.DeliveredAt)
	assert.Equal(t, "Ada Lovelace", fetched.ShippingInfo.FullName)

	require.NoError(t, repo.Delete(order.ID))
	assert.ErrorIs(t, repo.Delete(order.ID), repositories.ErrNotFound)
}

func TestGORMOrderRepository_TransitionStatusIsConditional(t *testing.T) {
	repo := repositories.NewGORMOrderRepository(setupDB(t))
	order := newOrder("u1", models.OrderStatusProcessing, 49)
	require.NoError(t, repo.Create(order))
	now := time.Now()

	require.NoError(t, repo.TransitionStatus(order.ID, models.OrderStatusProcessing, models.OrderStatusCancelled, now))
	err := repo.TransitionStatus(order.ID, models.OrderStatusProcessing, models.OrderStatusCancelled, now)
	assert.ErrorIs(t, err, repositories.ErrConflict)
	err = repo.TransitionStatus(order.ID, models.OrderStatusProcessing, models.OrderStatusShipped, now)
	assert.ErrorIs(t, err, repositories.ErrConflict)

	err = repo.TransitionStatus("missing", models.OrderStatusProcessing, models.OrderStatusShipped, now)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	fetched, err := repo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, fetched.OrderStatus)
	assert.Nil(t, fetched.DeliveredAt)
}

func TestGORMOrderRepository_PaymentColumns(t *testing.T) {
	repo := repositories.NewGORMOrderRepository(setupDB(t))
	order := newOrder("u1", models.OrderStatusProcessing, 49)
	require.NoError(t, repo.Create(order))

	require.NoError(t, repo.SetPaymentIntent(order.ID, "pi_1"))
	require.NoError(t, repo.SetPaymentStatus(order.ID, models.PaymentStatusProcessing, time.Now()))

	first := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, repo.SetPaymentStatus(order.ID, models.PaymentStatusSucceeded, first))
	require.NoError(t, repo.SetPaymentStatus(order.ID, models.PaymentStatusSucceeded, time.Now()))

	err := repo.SetPaymentStatus(order.ID, models.PaymentStatusFailed, time.Now())
	assert.ErrorIs(t, err, repositories.ErrConflict)
	assert.ErrorIs(t, repo.SetPaymentIntent("missing", "pi_2"), repositories.ErrNotFound)

	fetched, err := repo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_1", fetched.PaymentIntentID)
	assert.Equal(t, models.PaymentStatusSucceeded, fetched.PaymentStatus)
	require.NotNil(t, fetched.PaidAt)
	assert.WithinDuration(t, first, *fetched.PaidAt, time.Second)
	assert.Equal(t, models.OrderStatusProcessing, fetched.OrderStatus)
}

func TestMemoryOrderRepository_ConditionalUpdates(t *testing.T) {
	repo := repositories.NewMemoryOrderRepository()
	order := newOrder("u1", models.OrderStatusProcessing, 49)
	require.NoError(t, repo.Create(order))
	now := time.Now()

	require.NoError(t, repo.TransitionStatus(order.ID, models.OrderStatusProcessing, models.OrderStatusCancelled, now))
	assert.ErrorIs(t, repo.TransitionStatus(order.ID, models.OrderStatusProcessing, models.OrderStatusCancelled, now), repositories.ErrConflict)

	require.NoError(t, repo.SetPaymentStatus(order.ID, models.PaymentStatusSucceeded, now))
	assert.ErrorIs(t, repo.SetPaymentStatus(order.ID, models.PaymentStatusFailed, now), repositories.ErrConflict)
	assert.ErrorIs(t, repo.SetPaymentStatus("missing", models.PaymentStatusFailed, now), repositories.ErrNotFound)
}

func TestGORMOrderRepository_GetByUserIDAndStats(t *testing.T) {
	repo := repositories.NewGORMOrderRepository(setupDB(t))

	require.NoError(t, repo.Create(newOrder("u1", models.OrderStatusProcessing, 49)))
	require.NoError(t, repo.Create(newOrder("u1", models.OrderStatusDelivered, 88)))
	require.NoError(t, repo.Create(newOrder("u2", models.OrderStatusCancelled, 100)))

	mine, err := repo.GetByUserID("u1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	stats, err := repo.Stats(2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, "137", stats.TotalRevenue.String())
	assert.Equal(t, int64(1), stats.OrdersByStatus[models.OrderStatusCancelled])
	assert.Equal(t, int64(1), stats.OrdersByStatus[models.OrderStatusProcessing])
	assert.Len(t, stats.RecentOrders, 2)
}

func TestGORMProductRepository_AdjustStock(t *testing.T) {
	repo := repositories.NewGORMProductRepository(setupDB(t))

	product := &models.Product{Name: "Keyboard", Price: decimal.NewFromInt(75), Stock: 3}
	require.NoError(t, repo.Create(product))

	require.NoError(t, repo.AdjustStock(product.ID, -2))
	fetched, err := repo.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.Stock)

	assert.ErrorIs(t, repo.AdjustStock(product.ID, -2), repositories.ErrOutOfStock)
	assert.ErrorIs(t, repo.AdjustStock("missing", 1), repositories.ErrNotFound)

	n, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryOrderRepository_Stats(t *testing.T) {
	repo := repositories.NewMemoryOrderRepository()

	require.NoError(t, repo.Create(newOrder("u1", models.OrderStatusProcessing, 49)))
	require.NoError(t, repo.Create(newOrder("u2", models.OrderStatusCancelled, 100)))

	stats, err := repo.Stats(5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalOrders)
	assert.Equal(t, "49", stats.TotalRevenue.String())
	assert.Len(t, stats.RecentOrders, 2)
}
