package cart

import "github.com/shopspring/decimal"

// Item is a single product line in a cart.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image"`
	Category string          `json:"category"`
}

// LinePrice is the unit price, for pricing.Summarize.
func (i Item) LinePrice() decimal.Decimal { return i.Price }

// LineQuantity is the number of units, for pricing.Summarize.
func (i Item) LineQuantity() int { return i.Quantity }
