package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// adminOrderListLimit caps the back-office order list.
const adminOrderListLimit = 300

// OrderStore is the persistence the order service needs.
type OrderStore interface {
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error
	ListOrders(ctx context.Context, status string, limit int) ([]models.Order, error)
}

// OrderService serves order lookups and the back-office status overwrite.
type OrderService struct {
	store          OrderStore
	eventPublisher EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store OrderStore, eventPublisher EventPublisher) *OrderService {
	return &OrderService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// GetOrder retrieves an order with its item snapshots
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, []models.OrderItem, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.store.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// ListOrders returns recent orders, newest first, optionally filtered by
// exact status. The filter is not checked against the known status set; an
// unknown value just matches nothing.
func (s *OrderService) ListOrders(ctx context.Context, status string) ([]models.Order, error) {
	return s.store.ListOrders(ctx, strings.TrimSpace(status), adminOrderListLimit)
}

// SetStatus overwrites an order's status from the back-office. Values
// outside the known set are ignored without error, as is setting the
// current status again.
func (s *OrderService) SetStatus(ctx context.Context, orderID int64, status string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.SetStatus")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	status = strings.TrimSpace(status)
	if !models.ValidOrderStatus(status) || status == order.Status {
		return order, nil
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	previous := order.Status
	order.Status = status
	s.logger.Info("Order status changed",
		zap.Int64("order_id", orderID),
		zap.String("from", previous),
		zap.String("to", status))

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID: orderID,
		From:    previous,
		To:      status,
	}
	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	if status == models.OrderStatusCancelled {
		util.OrdersCancelledTotal.Inc()
		cancelled := &models.OrderCancelledEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderCancelled,
				Timestamp: time.Now(),
			},
			OrderID:        orderID,
			PreviousStatus: previous,
		}
		if err := s.eventPublisher.PublishOrderCancelled(ctx, cancelled); err != nil {
			s.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
		}
	}

	return order, nil
}
