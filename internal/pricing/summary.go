// Package pricing derives order summaries from line items. The same rules run in the checkout
// flow and on the server, which recomputes every order it accepts.
package pricing

import (
	"github.com/shopspring/decimal"
)

var (
	// TaxRate is applied to the subtotal.
	TaxRate = decimal.RequireFromString("0.10")
	// FreeShippingThreshold is the subtotal above which shipping is free.
	FreeShippingThreshold = decimal.NewFromInt(50)
	// FlatShipping is charged when the subtotal does not exceed FreeShippingThreshold.
	FlatShipping = decimal.NewFromInt(5)
)

// Line is anything that contributes price x quantity to a subtotal.
type Line interface {
	LinePrice() decimal.Decimal
	LineQuantity() int
}

// Summary is the derived cost breakdown of a set of line items.
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// Summarize computes the summary for the given lines.
func Summarize[L Line](lines []L) Summary {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LinePrice().Mul(decimal.NewFromInt(int64(l.LineQuantity()))))
	}
	return FromSubtotal(subtotal)
}

// FromSubtotal computes tax, shipping and total for a subtotal. Amounts are rounded to cents.
func FromSubtotal(subtotal decimal.Decimal) Summary {
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(TaxRate).Round(2)
	shipping := FlatShipping
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	return Summary{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}

// ToCents converts an amount to the smallest currency unit for the card processor.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
