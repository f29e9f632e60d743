package services_test

import (
	"context"
	"testing"

	"storefront/internal/gateway"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateIntent(ctx context.Context, req gateway.IntentRequest) (*gateway.Intent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Intent), args.Error(1)
}

func (m *MockPaymentGateway) RetrieveIntent(ctx context.Context, id string) (*gateway.Intent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Intent), args.Error(1)
}

// withIntent attaches pi_1 to the order and has the gateway report it as intent.
func withIntent(t *testing.T, f *orderFixture, gw *MockPaymentGateway, order *models.Order, intent gateway.Intent) {
	t.Helper()
	require.NoError(t, f.orders.SetPaymentIntent(order.ID, "pi_1"))
	intent.ID = "pi_1"
	gw.On("RetrieveIntent", mock.Anything, "pi_1").Return(&intent, nil)
}

func TestPaymentService_CreatePaymentIntent(t *testing.T) {
	f := newOrderFixture(t)
	order := f.place(t, "u1")
	gw := new(MockPaymentGateway)
	service := services.NewPaymentService(f.service, gw, "pk_test", "")

	gw.On("CreateIntent", mock.Anything, gateway.IntentRequest{
		OrderID:      order.ID,
		Amount:       3250,
		Currency:     "usd",
		ReceiptEmail: "jane@example.com",
	}).Return(&gateway.Intent{ID: "pi_1", ClientSecret: "pi_1_secret_x"}, nil).Once()

	intent, err := service.CreatePaymentIntent(context.Background(), "u1", order.ID, decimal.RequireFromString("32.50"))
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret_x", intent.ClientSecret)
	gw.AssertExpectations(t)

	stored, err := f.orders.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_1", stored.PaymentIntentID)
	assert.Equal(t, "pk_test", service.PublishableKey())
}

func TestPaymentService_CreatePaymentIntentRejections(t *testing.T) {
	f := newOrderFixture(t)
	order := f.place(t, "u1")
	gw := new(MockPaymentGateway)
	service := services.NewPaymentService(f.service, gw, "pk_test", "usd")
	ctx := context.Background()
	total := decimal.RequireFromString("32.50")

	_, err := service.CreatePaymentIntent(ctx, "u1", order.ID, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, services.ErrAmountMismatch)

	_, err = service.CreatePaymentIntent(ctx, "u2", order.ID, total)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = service.CreatePaymentIntent(ctx, "u1", "missing", total)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)

	withIntent(t, f, gw, order, gateway.Intent{Status: "succeeded", OrderID: order.ID, Amount: 3250})
	_, err = service.UpdatePaymentStatus(ctx, "u1", false, order.ID, models.PaymentStatusSucceeded)
	require.NoError(t, err)
	_, err = service.CreatePaymentIntent(ctx, "u1", order.ID, total)
	assert.ErrorIs(t, err, services.ErrAlreadyPaid)

	other := f.place(t, "u1")
	_, err = f.service.CancelOrder(other.ID, "u1")
	require.NoError(t, err)
	_, err = service.CreatePaymentIntent(ctx, "u1", other.ID, total)
	assert.ErrorIs(t, err, services.ErrOrderNotPayable)

	gw.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
}

func TestPaymentService_GatewayError(t *testing.T) {
	f := newOrderFixture(t)
	order := f.place(t, "u1")
	gw := new(MockPaymentGateway)
	service := services.NewPaymentService(f.service, gw, "pk_test", "usd")

	gw.On("CreateIntent", mock.Anything, mock.Anything).Return(nil, gateway.ErrUnavailable).Once()

	_, err := service.CreatePaymentIntent(context.Background(), "u1", order.ID, decimal.RequireFromString("32.5"))
	assert.ErrorIs(t, err, gateway.ErrUnavailable)

	stored, err := f.orders.GetByID(order.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.PaymentIntentID)
}

func TestPaymentService_UpdatePaymentStatus(t *testing.T) {
	f := newOrderFixture(t)
	order := f.place(t, "u1")
	gw := new(MockPaymentGateway)
	service := services.NewPaymentService(f.service, gw, "pk_test", "usd")
	ctx := context.Background()
	withIntent(t, f, gw, order, gateway.Intent{Status: "succeeded", OrderID: order.ID, Amount: 3250})

	_, err := service.UpdatePaymentStatus(ctx, "u1", false, order.ID, "paid")
	assert.ErrorIs(t, err, services.ErrInvalidPaymentStatus)

	_, err = service.UpdatePaymentStatus(ctx, "u2", false, order.ID, models.PaymentStatusSucceeded)
	assert.ErrorIs(t, err, services.ErrForbidden)

	paid, err := service.UpdatePaymentStatus(ctx, "u1", false, order.ID, models.PaymentStatusSucceeded)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSucceeded, paid.PaymentStatus)
	require.NotNil(t, paid.PaidAt)
	assert.Contains(t, f.publisher.types(), models.EventPaymentUpdated)

	_, err = service.UpdatePaymentStatus(ctx, "u1", false, order.ID, models.PaymentStatusFailed)
	assert.ErrorIs(t, err, services.ErrAlreadyPaid)

	stored, err := f.orders.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSucceeded, stored.PaymentStatus)
	assert.True(t, stored.PaidAt.Equal(*paid.PaidAt))
}

func TestPaymentService_UpdatePaymentStatusChecksProcessor(t *testing.T) {
	tests := []struct {
		name   string
		status models.PaymentStatus
		intent *gateway.Intent // nil: no intent attached
	}{
		{name: "no intent", status: models.PaymentStatusSucceeded},
		{name: "intent not succeeded", status: models.PaymentStatusSucceeded, intent: &gateway.Intent{Status: "requires_payment_method", Amount: 3250}},
		{name: "intent still processing", status: models.PaymentStatusSucceeded, intent: &gateway.Intent{Status: "processing", Amount: 3250}},
		{name: "intent for another order", status: models.PaymentStatusSucceeded, intent: &gateway.Intent{Status: "succeeded", OrderID: "other", Amount: 3250}},
		{name: "intent for another amount", status: models.PaymentStatusSucceeded, intent: &gateway.Intent{Status: "succeeded", Amount: 100}},
		{name: "processing claim on failed intent", status: models.PaymentStatusProcessing, intent: &gateway.Intent{Status: "canceled", Amount: 3250}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(t)
			order := f.place(t, "u1")
			gw := new(MockPaymentGateway)
			service := services.NewPaymentService(f.service, gw, "pk_test", "usd")
			if tt.intent != nil {
				intent := *tt.intent
				if intent.OrderID == "" {
					intent.OrderID = order.ID
				}
				withIntent(t, f, gw, order, intent)
			}

			_, err := service.UpdatePaymentStatus(context.Background(), "u1", false, order.ID, tt.status)
			assert.ErrorIs(t, err, services.ErrPaymentNotVerified)

			stored, err := f.orders.GetByID(order.ID)
			require.NoError(t, err)
			assert.Equal(t, models.PaymentStatusPending, stored.PaymentStatus)
			assert.Nil(t, stored.PaidAt)
		})
	}
}

func TestPaymentService_UpdatePaymentStatusGatewayDown(t *testing.T) {
	f := newOrderFixture(t)
	order := f.place(t, "u1")
	gw := new(MockPaymentGateway)
	service := services.NewPaymentService(f.service, gw, "pk_test", "usd")
	require.NoError(t, f.orders.SetPaymentIntent(order.ID, "pi_1"))
	gw.On("RetrieveIntent", mock.Anything, "pi_1").Return(nil, gateway.ErrUnavailable).Once()

	_, err := service.UpdatePaymentStatus(context.Background(), "u1", false, order.ID, models.PaymentStatusSucceeded)
	assert.ErrorIs(t, err, gateway.ErrUnavailable)
}

func TestPaymentService_FailureNeedsNoLookup(t *testing.T) {
	f := newOrderFixture(t)
	order := f.place(t, "u1")
	gw := new(MockPaymentGateway)
	service := services.NewPaymentService(f.service, gw, "pk_test", "usd")

	failed, err := service.UpdatePaymentStatus(context.Background(), "u1", false, order.ID, models.PaymentStatusFailed)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, failed.PaymentStatus)
	assert.Nil(t, failed.PaidAt)
	gw.AssertNotCalled(t, "RetrieveIntent", mock.Anything, mock.Anything)
}

func TestPaymentService_StaleReadCannotUndoPayment(t *testing.T) {
	f := newOrderFixture(t)
	stale := &staleOrderRepository{MemoryOrderRepository: f.orders, snapshots: map[string]models.Order{}}
	orders := services.NewOrderService(stale, f.products, f.users, nil)
	gw := new(MockPaymentGateway)
	service := services.NewPaymentService(orders, gw, "pk_test", "usd")
	ctx := context.Background()

	order := f.place(t, "u1")
	withIntent(t, f, gw, order, gateway.Intent{Status: "succeeded", OrderID: order.ID, Amount: 3250})

	_, err := service.UpdatePaymentStatus(ctx, "u1", false, order.ID, models.PaymentStatusSucceeded)
	require.NoError(t, err)

	_, err = service.UpdatePaymentStatus(ctx, "u1", false, order.ID, models.PaymentStatusFailed)
	assert.ErrorIs(t, err, services.ErrAlreadyPaid)

	stored, err := f.orders.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSucceeded, stored.PaymentStatus)
}
