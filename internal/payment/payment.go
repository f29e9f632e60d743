// Package payment runs the client side of a card payment for a placed order: obtain a payment
// intent from the server, confirm it with the card processor, then report the outcome back.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"storefront/internal/gateway"
	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrIntentUnavailable = errors.New("could not initialize payment, please try again")
	ErrNotStarted        = errors.New("payment has not been initialized")
)

// IntentAPI is the server side of the payment. *storefront.Client satisfies it.
type IntentAPI interface {
	CreatePaymentIntent(ctx context.Context, orderID string, amount decimal.Decimal) (string, error)
	UpdatePaymentStatus(ctx context.Context, orderID string, status models.PaymentStatus) error
}

// Confirmer confirms an intent with the card processor. *gateway.StripeConfirmer satisfies it.
type Confirmer interface {
	Confirm(ctx context.Context, clientSecret, paymentMethod string, payer gateway.Payer) (*gateway.Intent, error)
}

// Result is a confirmed payment. StatusSync is the outcome of reporting the payment status to
// the server; a non-nil value does not undo the charge.
type Result struct {
	IntentID   string
	Status     models.PaymentStatus
	StatusSync error
}

// Flow pays one order.
type Flow struct {
	api       IntentAPI
	confirmer Confirmer
	orderID   string
	total     decimal.Decimal
	shipping  models.ShippingInfo

	mu           sync.Mutex
	clientSecret string
}

// New prepares the payment of orderID for total. Shipping details are sent as payer details.
func New(api IntentAPI, confirmer Confirmer, orderID string, total decimal.Decimal, shipping models.ShippingInfo) *Flow {
	return &Flow{
		api:       api,
		confirmer: confirmer,
		orderID:   orderID,
		total:     total,
		shipping:  shipping,
	}
}

// Start requests a payment intent for the order.
func (f *Flow) Start(ctx context.Context) error {
	secret, err := f.api.CreatePaymentIntent(ctx, f.orderID, f.total)
	if err != nil {
		log.Printf("Failed to create payment intent for order %s: %v", f.orderID, err)
		return ErrIntentUnavailable
	}

	f.mu.Lock()
	f.clientSecret = secret
	f.mu.Unlock()
	return nil
}

// Started reports whether Start obtained a client secret.
func (f *Flow) Started() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clientSecret != ""
}

// Submit confirms the payment with the given payment method. A processor rejection is returned
// as the processor's *gateway.ProcessorError.
func (f *Flow) Submit(ctx context.Context, paymentMethod string) (*Result, error) {
	f.mu.Lock()
	secret := f.clientSecret
	f.mu.Unlock()
	if secret == "" {
		return nil, ErrNotStarted
	}

	intent, err := f.confirmer.Confirm(ctx, secret, paymentMethod, f.payer())
	if err != nil {
		var procErr *gateway.ProcessorError
		if errors.As(err, &procErr) {
			return nil, procErr
		}
		return nil, fmt.Errorf("confirm payment: %w", err)
	}

	res := &Result{
		IntentID: intent.ID,
		Status:   models.PaymentStatus(intent.Status),
	}
	if err := f.api.UpdatePaymentStatus(ctx, f.orderID, res.Status); err != nil {
		log.Printf("Payment for order %s confirmed but status update failed: %v", f.orderID, err)
		res.StatusSync = err
	}
	return res, nil
}

func (f *Flow) payer() gateway.Payer {
	return gateway.Payer{
		Name:       f.shipping.FullName,
		Email:      f.shipping.Email,
		Phone:      f.shipping.Phone,
		Line1:      f.shipping.Address.Address,
		City:       f.shipping.City,
		State:      f.shipping.State,
		PostalCode: f.shipping.ZipCode,
		Country:    f.shipping.Country,
	}
}
