package payment

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
	"storefront/internal/money"
)

// ErrNotConfigured is returned when a provider is called without credentials.
var ErrNotConfigured = errors.New("payment provider not configured")

// Session is a provider-hosted payment page created for an order. Ref is the
// provider's identifier (checkout session ID, preference ID) and RedirectURL
// is where the customer must be sent to pay.
type Session struct {
	Ref         string
	RedirectURL string
}

// Charge is the order data a provider turns into a payment session.
type Charge struct {
	Order      *models.Order
	Items      []models.OrderItem
	SuccessURL string
	CancelURL  string
}

type lineItem struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// lineItems flattens an order into provider line items. Sized items get the
// size appended to the name, and a "Frete" line is added when shipping is
// charged.
func lineItems(order *models.Order, items []models.OrderItem) []lineItem {
	out := make([]lineItem, 0, len(items)+1)
	for _, it := range items {
		name := it.ProductName
		if it.Size != "" {
			name = fmt.Sprintf("%s (%s)", it.ProductName, it.Size)
		}
		out = append(out, lineItem{
			Name:      name,
			UnitPrice: money.Quantize(it.UnitPrice),
			Quantity:  it.Quantity,
		})
	}
	if shipping := money.Quantize(order.Shipping); shipping.IsPositive() {
		out = append(out, lineItem{Name: "Frete", UnitPrice: shipping, Quantity: 1})
	}
	return out
}
