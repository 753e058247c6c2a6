package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. Orders progress New -> Paying -> Paid -> Packing ->
// Shipped -> Completed; Cancelled is reachable from any non-terminal state.
const (
	OrderStatusNew       = "New"
	OrderStatusPaying    = "Paying"
	OrderStatusPaid      = "Paid"
	OrderStatusPacking   = "Packing"
	OrderStatusShipped   = "Shipped"
	OrderStatusCompleted = "Completed"
	OrderStatusCancelled = "Cancelled"
)

// OrderStatuses is the full set an admin may assign directly.
var OrderStatuses = []string{
	OrderStatusNew,
	OrderStatusPaying,
	OrderStatusPaid,
	OrderStatusPacking,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Payment providers
const (
	ProviderStripe      = "stripe"
	ProviderMercadoPago = "mercadopago"
)

// User is a back-office account. The storefront itself has no shopper accounts.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Setting is one key/value pair of store configuration.
type Setting struct {
	ID    int64  `db:"id" json:"id"`
	Key   string `db:"key" json:"key"`
	Value string `db:"value" json:"value"`
}

// Category groups products in the catalog.
type Category struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	Icon      string    `db:"icon" json:"icon"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Product represents a catalog item. Sizes is a comma-separated list of
// labels; empty means the product is sizeless.
type Product struct {
	ID            int64           `db:"id" json:"id"`
	CategoryID    *int64          `db:"category_id" json:"category_id,omitempty"`
	Name          string          `db:"name" json:"name"`
	Slug          string          `db:"slug" json:"slug"`
	Description   string          `db:"description" json:"description"`
	Price         decimal.Decimal `db:"price" json:"price"`
	Stock         int             `db:"stock" json:"stock"`
	IsActive      bool            `db:"is_active" json:"is_active"`
	Sizes         string          `db:"sizes" json:"sizes"`
	ImageFilename string          `db:"image_filename" json:"image_filename"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// SizeList splits the stored size labels, dropping blanks.
func (p *Product) SizeList() []string {
	if strings.TrimSpace(p.Sizes) == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(p.Sizes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Banner is a homepage promotional banner.
type Banner struct {
	ID            int64     `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Subtitle      string    `db:"subtitle" json:"subtitle"`
	CTAText       string    `db:"cta_text" json:"cta_text"`
	CTALink       string    `db:"cta_link" json:"cta_link"`
	ImageFilename string    `db:"image_filename" json:"image_filename"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Order is a placed order. Monetary fields are quantized to two decimals
// and total = subtotal + shipping exactly.
type Order struct {
	ID              int64           `db:"id" json:"id"`
	Status          string          `db:"status" json:"status"`
	CustomerEmail   string          `db:"customer_email" json:"customer_email"`
	CustomerName    string          `db:"customer_name" json:"customer_name"`
	CustomerPhone   string          `db:"customer_phone" json:"customer_phone"`
	CEP             string          `db:"cep" json:"cep"`
	Address         string          `db:"address" json:"address"`
	Notes           string          `db:"notes" json:"notes"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	Shipping        decimal.Decimal `db:"shipping" json:"shipping"`
	Total           decimal.Decimal `db:"total" json:"total"`
	PaymentProvider string          `db:"payment_provider" json:"payment_provider"`
	PaymentRef      string          `db:"payment_ref" json:"payment_ref"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// OrderItem is a line snapshot taken at checkout time. It stays valid even
// if the product is later edited or removed.
type OrderItem struct {
	ID          int64           `db:"id" json:"id"`
	OrderID     int64           `db:"order_id" json:"order_id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Size        string          `db:"size" json:"size"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	Quantity    int             `db:"quantity" json:"quantity"`
	LineTotal   decimal.Decimal `db:"line_total" json:"line_total"`
}
