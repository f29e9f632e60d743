// Package gateway talks to the card processor. The server side creates payment intents with the
// secret key; the client side confirms them with the publishable key and the intent's client secret.
package gateway

import (
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v76"
)

// ErrUnavailable is returned while the circuit breaker refuses calls to the processor.
var ErrUnavailable = errors.New("payment processor unavailable")

// IntentRequest describes the charge a payment intent is created for.
type IntentRequest struct {
	OrderID      string
	Amount       int64 // smallest currency unit
	Currency     string
	ReceiptEmail string
}

// Intent is the processor's view of an in-progress charge.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	OrderID      string // from the intent's orderId metadata
}

// Payer is who the charge is confirmed on behalf of.
type Payer struct {
	Name       string
	Email      string
	Phone      string
	Line1      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// ProcessorError carries the processor's own message for a rejected charge.
type ProcessorError struct {
	Code    string
	Message string
}

func (e *ProcessorError) Error() string {
	return e.Message
}

// NewBackend returns a Stripe API backend. An empty apiURL uses Stripe's public endpoint.
// Retries are disabled: failed calls surface to the caller instead of being replayed.
func NewBackend(apiURL string) stripe.Backend {
	cfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
	}
	if apiURL != "" {
		cfg.URL = stripe.String(apiURL)
	}
	return stripe.GetBackendWithConfig(stripe.APIBackend, cfg)
}

// IntentIDFromSecret extracts the payment intent id from a client secret of the form
// "<intent id>_secret_<token>".
func IntentIDFromSecret(clientSecret string) (string, bool) {
	id, _, ok := strings.Cut(clientSecret, "_secret_")
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func toIntent(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		OrderID:      pi.Metadata["orderId"],
	}
}

func processorError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return &ProcessorError{Code: string(stripeErr.Code), Message: stripeErr.Msg}
	}
	return err
}
