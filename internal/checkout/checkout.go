// Package checkout drives the three-step checkout form: shipping, billing and review.
// Submitting the review step turns the cart into an order on the server.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/validation"

	"github.com/go-playground/validator/v10"
)

// Step is a position in the checkout form.
type Step int

const (
	StepShipping Step = 1
	StepBilling  Step = 2
	StepReview   Step = 3
)

func (s Step) String() string {
	switch s {
	case StepShipping:
		return "shipping"
	case StepBilling:
		return "billing"
	case StepReview:
		return "review"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

var (
	ErrEmptyCart   = errors.New("your cart is empty")
	ErrInvalidStep = errors.New("please correct the highlighted fields")
	ErrNotOnReview = errors.New("orders can only be placed from the review step")
)

// OrderAPI places orders. *storefront.Client satisfies it.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error)
}

// Billing is the billing step. When SameAsShipping is set the address is taken from shipping.
type Billing struct {
	SameAsShipping bool           `yaml:"same_as_shipping"`
	Address        models.Address `yaml:"address"`
}

// Flow holds the state of one checkout.
type Flow struct {
	cart     *cart.Store
	orders   OrderAPI
	validate *validator.Validate

	mu        sync.Mutex
	step      Step
	shipping  models.ShippingInfo
	billing   Billing
	errors    map[string]string
	submitErr string
}

// New starts a checkout of the given cart on the shipping step.
func New(store *cart.Store, orders OrderAPI) *Flow {
	return &Flow{
		cart:     store,
		orders:   orders,
		validate: validation.New(),
		step:     StepShipping,
		billing:  Billing{SameAsShipping: true},
		errors:   map[string]string{},
	}
}

// Step is the active step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Errors returns the field errors of the last failed Next.
func (f *Flow) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// SubmitError is the server's message from the last failed Submit.
func (f *Flow) SubmitError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitErr
}

// SetShipping replaces the shipping details. They are validated by Next.
func (f *Flow) SetShipping(info models.ShippingInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shipping = info
}

// Shipping returns the shipping details as last set.
func (f *Flow) Shipping() models.ShippingInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shipping
}

// SetBilling replaces the billing choice. A separate address is validated by Next on the billing step.
func (f *Flow) SetBilling(b Billing) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.billing = b
}

// BillingAddress is the address the order is billed to.
func (f *Flow) BillingAddress() models.Address {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.billing.SameAsShipping {
		return f.shipping.Address
	}
	return f.billing.Address
}

// Summary prices the cart being checked out.
func (f *Flow) Summary() pricing.Summary {
	return f.cart.Summary()
}

// Next validates the active step and advances when it is valid.
// On failure the field errors are kept and ErrInvalidStep is returned.
func (f *Flow) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var err error
	switch f.step {
	case StepShipping:
		err = f.validate.Struct(f.shipping)
	case StepBilling:
		if !f.billing.SameAsShipping {
			err = f.validate.Struct(f.billing.Address)
		}
	case StepReview:
		return nil
	}
	if err != nil {
		f.errors = validation.Errors(err)
		return ErrInvalidStep
	}

	f.errors = map[string]string{}
	f.step++
	return nil
}

// Back moves one step back and drops any pending errors.
func (f *Flow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step > StepShipping {
		f.step--
	}
	f.errors = map[string]string{}
	f.submitErr = ""
}

// Submit places the order and clears the cart, returning the server-issued order id.
// A failed request leaves the flow on the review step with SubmitError set; it is not retried.
func (f *Flow) Submit(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepReview {
		return "", ErrNotOnReview
	}
	items := f.cart.Items()
	if len(items) == 0 {
		return "", ErrEmptyCart
	}

	req := buildRequest(items, f.shipping)
	order, err := f.orders.CreateOrder(ctx, req)
	if err == nil && order.ID == "" {
		err = errors.New("server returned an order without an id")
	}
	if err != nil {
		f.submitErr = err.Error()
		return "", fmt.Errorf("create order: %w", err)
	}
	f.submitErr = ""

	if err := f.cart.Clear(ctx); err != nil {
		log.Printf("Order %s placed but cart could not be cleared: %v", order.ID, err)
	}
	return order.ID, nil
}

func buildRequest(items []cart.Item, shipping models.ShippingInfo) models.CreateOrderRequest {
	summary := pricing.Summarize(items)
	req := models.CreateOrderRequest{
		OrderItems:    make([]models.OrderItemInput, 0, len(items)),
		ShippingInfo:  shipping,
		ItemsPrice:    summary.Subtotal,
		TaxPrice:      summary.Tax,
		ShippingPrice: summary.Shipping,
		TotalPrice:    summary.Total,
	}
	for _, it := range items {
		req.OrderItems = append(req.OrderItems, models.OrderItemInput{
			ProductID: it.ID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Title:     it.Name,
			Image:     it.Image,
		})
	}
	return req
}
