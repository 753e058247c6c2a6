package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderCreated        = "ORDER_CREATED"
	EventTypeOrderPaymentStarted = "ORDER_PAYMENT_STARTED"
	EventTypeOrderPaid           = "ORDER_PAID"
	EventTypeOrderCancelled      = "ORDER_CANCELLED"
	EventTypeOrderStatusChanged  = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when checkout materializes an order
type OrderCreatedEvent struct {
	BaseEvent
	OrderID       int64           `json:"order_id"`
	CustomerEmail string          `json:"customer_email"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Shipping      decimal.Decimal `json:"shipping"`
	Total         decimal.Decimal `json:"total"`
	Items         []OrderLineData `json:"items"`
}

// OrderPaymentStartedEvent published when a provider session/preference
// is obtained and the order moves to Paying
type OrderPaymentStartedEvent struct {
	BaseEvent
	OrderID    int64  `json:"order_id"`
	Provider   string `json:"provider"`
	PaymentRef string `json:"payment_ref"`
}

// OrderPaidEvent published when the success callback confirms payment
type OrderPaidEvent struct {
	BaseEvent
	OrderID    int64           `json:"order_id"`
	Provider   string          `json:"provider"`
	PaymentRef string          `json:"payment_ref"`
	Total      decimal.Decimal `json:"total"`
}

// OrderCancelledEvent published when an admin cancels an order
type OrderCancelledEvent struct {
	BaseEvent
	OrderID        int64  `json:"order_id"`
	PreviousStatus string `json:"previous_status"`
}

// OrderStatusChangedEvent published on any admin status overwrite
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID int64  `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// OrderLineData represents one snapshotted line in events
type OrderLineData struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Size      string          `json:"size,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
