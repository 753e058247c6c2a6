package pricing

import (
	"github.com/shopspring/decimal"

	"storefront/internal/money"
)

// Rates is the shipping configuration applied to a cart subtotal.
type Rates struct {
	FreeOver decimal.Decimal
	Flat     decimal.Decimal
}

// Quote is a fully priced cart: subtotal, shipping and grand total,
// all quantized to cents.
type Quote struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Shipping returns the shipping charge for a subtotal. Subtotals at or
// above the free threshold ship for free, everything else pays the flat
// rate.
func (r Rates) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(r.FreeOver) {
		return money.Quantize(decimal.Zero)
	}
	return money.Quantize(r.Flat)
}

// Quote prices a subtotal with shipping applied.
func (r Rates) Quote(subtotal decimal.Decimal) Quote {
	sub := money.Quantize(subtotal)
	ship := r.Shipping(sub)
	return Quote{
		Subtotal: sub,
		Shipping: ship,
		Total:    money.Quantize(sub.Add(ship)),
	}
}
