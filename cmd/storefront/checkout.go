package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"storefront/internal/checkout"
	"storefront/internal/gateway"
	"storefront/internal/models"
	"storefront/internal/payment"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// checkoutInput is the YAML file passed to the checkout command.
// Billing defaults to the shipping address when omitted.
type checkoutInput struct {
	Shipping models.ShippingInfo `yaml:"shipping"`
	Billing  *checkout.Billing   `yaml:"billing"`
}

func loadCheckoutInput(path string) (*checkoutInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checkout file: %w", err)
	}
	var in checkoutInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parse checkout file: %w", err)
	}
	if in.Billing == nil {
		in.Billing = &checkout.Billing{SameAsShipping: true}
	}
	return &in, nil
}

func (c *cli) checkoutCmd() *cobra.Command {
	var (
		inputPath     string
		paymentMethod string
		processorURL  string
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart and pay for it by card",
		Long: `Walks the cart through shipping, billing and review, places the order and pays it.

The checkout file is YAML:

  shipping:
    full_name: Grace Hopper
    email: grace@example.com
    phone: "5551234567"
    address: 1 Navy Yard
    city: Arlington
    state: VA
    zip_code: "22201"
    country: US
  billing:
    same_as_shipping: true`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			in, err := loadCheckoutInput(inputPath)
			if err != nil {
				return err
			}
			store, err := c.cartStore(ctx)
			if err != nil {
				return err
			}
			api := c.client()

			flow := checkout.New(store, api)
			flow.SetShipping(in.Shipping)
			flow.SetBilling(*in.Billing)
			for flow.Step() != checkout.StepReview {
				step := flow.Step()
				if err := flow.Next(); err != nil {
					return stepError(step, flow.Errors())
				}
			}

			s := flow.Summary()
			c.printf("Placing order: subtotal %s, tax %s, shipping %s, total %s\n",
				s.Subtotal.StringFixed(2), s.Tax.StringFixed(2), s.Shipping.StringFixed(2), s.Total.StringFixed(2))

			orderID, err := flow.Submit(ctx)
			if err != nil {
				if msg := flow.SubmitError(); msg != "" {
					return errors.New(msg)
				}
				return err
			}
			c.printf("Order %s placed\n", orderID)

			order, err := api.Order(ctx, orderID)
			if err != nil {
				return describe(err)
			}
			key, err := api.PublishableKey(ctx)
			if err != nil {
				return describe(err)
			}

			confirmer := gateway.NewStripeConfirmer(key, gateway.NewBackend(processorURL))
			pay := payment.New(api, confirmer, order.ID, order.TotalPrice, order.ShippingInfo)
			if err := pay.Start(ctx); err != nil {
				return err
			}
			res, err := pay.Submit(ctx, paymentMethod)
			if err != nil {
				return fmt.Errorf("payment failed: %w", err)
			}

			c.printf("Payment %s: %s\n", res.IntentID, res.Status)
			if res.StatusSync != nil {
				c.printf("Warning: payment went through but the order was not updated: %v\n", res.StatusSync)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "file", "f", "checkout.yaml", "YAML file with shipping and billing details")
	cmd.Flags().StringVar(&paymentMethod, "payment-method", "pm_card_visa", "Card processor payment method id")
	cmd.Flags().StringVar(&processorURL, "processor-url", "", "Card processor API URL (defaults to Stripe)")
	return cmd
}

func stepError(step checkout.Step, fields map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msg := fmt.Sprintf("%s details are invalid:", step)
	for _, k := range keys {
		msg += "\n  " + fields[k]
	}
	return errors.New(msg)
}
