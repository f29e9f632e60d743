package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// ErrInvalidClientSecret is returned for a client secret that does not name a payment intent.
var ErrInvalidClientSecret = errors.New("invalid client secret")

// StripeConfirmer confirms payment intents the way a browser payment element does:
// with the publishable key and the intent's client secret.
type StripeConfirmer struct {
	client paymentintent.Client
}

// NewStripeConfirmer creates a confirmer using the given backend (see NewBackend).
func NewStripeConfirmer(publishableKey string, backend stripe.Backend) *StripeConfirmer {
	return &StripeConfirmer{
		client: paymentintent.Client{B: backend, Key: publishableKey},
	}
}

// Confirm charges the payment method against the intent. The payer is sent as the intent's
// shipping details and receipt email; the payment method keeps its own billing details.
// A rejected charge is returned as a *ProcessorError carrying the processor's message.
func (c *StripeConfirmer) Confirm(ctx context.Context, clientSecret, paymentMethod string, payer Payer) (*Intent, error) {
	id, ok := IntentIDFromSecret(clientSecret)
	if !ok {
		return nil, ErrInvalidClientSecret
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(paymentMethod),
		Shipping: &stripe.ShippingDetailsParams{
			Name:  stripe.String(payer.Name),
			Phone: stripe.String(payer.Phone),
			Address: &stripe.AddressParams{
				Line1:      stripe.String(payer.Line1),
				City:       stripe.String(payer.City),
				State:      stripe.String(payer.State),
				PostalCode: stripe.String(payer.PostalCode),
				Country:    stripe.String(payer.Country),
			},
		},
	}
	if payer.Email != "" {
		params.ReceiptEmail = stripe.String(payer.Email)
	}
	params.AddExtra("client_secret", clientSecret)
	params.Context = ctx

	pi, err := c.client.Confirm(id, params)
	if err != nil {
		return nil, processorError(err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded && pi.Status != stripe.PaymentIntentStatusProcessing {
		return toIntent(pi), &ProcessorError{
			Code:    string(pi.Status),
			Message: fmt.Sprintf("Payment was not completed (status: %s)", pi.Status),
		}
	}
	return toIntent(pi), nil
}
