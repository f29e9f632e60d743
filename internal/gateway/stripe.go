package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// StripeGateway creates and looks up payment intents with the account's secret key.
type StripeGateway struct {
	client  paymentintent.Client
	breaker *gobreaker.CircuitBreaker[*stripe.PaymentIntent]
}

// NewStripeGateway creates a gateway using the given backend (see NewBackend).
func NewStripeGateway(secretKey string, backend stripe.Backend) *StripeGateway {
	return &StripeGateway{
		client: paymentintent.Client{B: backend, Key: secretKey},
		breaker: gobreaker.NewCircuitBreaker[*stripe.PaymentIntent](gobreaker.Settings{
			Name:    "stripe",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			// Declined or invalid requests are answers, not outages.
			IsSuccessful: func(err error) bool {
				var stripeErr *stripe.Error
				if errors.As(err, &stripeErr) {
					return stripeErr.HTTPStatusCode > 0 && stripeErr.HTTPStatusCode < 500
				}
				return err == nil
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Printf("Circuit breaker %s changed from %s to %s", name, from, to)
			},
		}),
	}
}

// CreateIntent creates a payment intent tagged with the order id.
func (g *StripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(req.ReceiptEmail)
	}
	params.AddMetadata("orderId", req.OrderID)
	params.Context = ctx

	pi, err := g.breaker.Execute(func() (*stripe.PaymentIntent, error) {
		return g.client.New(params)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("create payment intent: %w", ErrUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", processorError(err))
	}
	return toIntent(pi), nil
}

// RetrieveIntent fetches the processor's current view of a payment intent.
func (g *StripeGateway) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.breaker.Execute(func() (*stripe.PaymentIntent, error) {
		return g.client.Get(id, params)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("retrieve payment intent %s: %w", id, ErrUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("retrieve payment intent %s: %w", id, processorError(err))
	}
	return toIntent(pi), nil
}
