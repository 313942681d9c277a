package order

import "github.com/shopspring/decimal"

var (
	taxRate      = decimal.RequireFromString("0.10")
	flatShipping = decimal.RequireFromString("10.00")
)

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// CalculateTotals prices a checkout: 10% tax on the subtotal, rounded to
// cents, plus a flat shipping fee. No discount is applied at creation.
func CalculateTotals(items []Item) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}

	tax := subtotal.Mul(taxRate).Round(2)
	discount := decimal.Zero

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: flatShipping,
		Discount: discount,
		Total:    subtotal.Add(tax).Add(flatShipping).Sub(discount),
	}
}
