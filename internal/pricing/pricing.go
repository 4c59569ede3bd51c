// Package pricing holds the shipping policy shared by the cart view, the
// checkout payload and the API's order validation, so every caller derives
// the same total from the same subtotal.
package pricing

import "github.com/shopspring/decimal"

var (
	// FreeShippingThreshold is the subtotal from which shipping is free.
	FreeShippingThreshold = decimal.NewFromInt(50)
	// FlatShipping is charged below the threshold.
	FlatShipping = decimal.NewFromInt(5)
)

// ShippingCost returns 0 when subtotal >= 50 and a flat 5 otherwise.
func ShippingCost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FlatShipping
}

// GrandTotal is subtotal plus ShippingCost(subtotal).
func GrandTotal(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Add(ShippingCost(subtotal))
}

// FreeShippingRemaining is how much more must be added to reach free shipping.
func FreeShippingRemaining(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FreeShippingThreshold.Sub(subtotal)
}

type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"envio"`
	Total    decimal.Decimal `json:"total"`
}

func Summarize(subtotal decimal.Decimal) Summary {
	return Summary{
		Subtotal: subtotal,
		Shipping: ShippingCost(subtotal),
		Total:    GrandTotal(subtotal),
	}
}

// FreeShipping reports whether the summary qualifies for free shipping.
func (s Summary) FreeShipping() bool { return s.Shipping.IsZero() }
