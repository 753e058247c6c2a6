// Package service implements the storefront's business operations on top of
// the store, cart, broker, and payment packages. Each service declares the
// narrow store interface it actually needs; *store.Store satisfies all of
// them.
package service

import (
	"context"

	"storefront/internal/models"
)

// EventPublisher publishes order lifecycle events. Publishing is
// best-effort everywhere: callers log failures and carry on.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderPaymentStarted(ctx context.Context, event *models.OrderPaymentStartedEvent) error
	PublishOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error
	PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}
