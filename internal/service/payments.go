package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/payment"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnknownProvider is returned for a payment provider name this
// deployment does not know.
var ErrUnknownProvider = errors.New("unknown payment provider")

// PaymentProvider creates hosted payment sessions. Both provider clients in
// internal/payment implement it.
type PaymentProvider interface {
	Configured() bool
	CreateSession(ctx context.Context, charge payment.Charge) (*payment.Session, error)
}

// PaymentStore is the persistence the payment service needs.
type PaymentStore interface {
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	UpdateOrderPayment(ctx context.Context, orderID int64, provider, paymentRef, status string) error
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error
}

// PaymentService hands orders off to external payment providers and records
// the outcome of the redirect flow.
type PaymentService struct {
	store          PaymentStore
	providers      map[string]PaymentProvider
	eventPublisher EventPublisher
	baseURL        string
	logger         *zap.Logger
}

// NewPaymentService creates a new payment service. baseURL is the public
// base the provider redirects back to.
func NewPaymentService(store PaymentStore, providers map[string]PaymentProvider, eventPublisher EventPublisher, baseURL string) *PaymentService {
	return &PaymentService{
		store:          store,
		providers:      providers,
		eventPublisher: eventPublisher,
		baseURL:        strings.TrimRight(baseURL, "/"),
		logger:         util.GetLogger(),
	}
}

// Providers lists the provider names that have credentials configured.
func (s *PaymentService) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for name, p := range s.providers {
		if p.Configured() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// PaymentHandoff is returned when a provider session is created.
type PaymentHandoff struct {
	Provider    string `json:"provider"`
	PaymentRef  string `json:"payment_ref"`
	RedirectURL string `json:"redirect_url"`
}

// Start creates a provider session for the order, records provider and
// reference, and moves the order to Paying. When the provider call fails
// the order is left untouched.
func (s *PaymentService) Start(ctx context.Context, orderID int64, provider string) (*PaymentHandoff, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.Start")
	defer span.End()

	client, ok := s.providers[provider]
	if !ok {
		return nil, ErrUnknownProvider
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	items, err := s.store.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	session, err := client.CreateSession(ctx, payment.Charge{
		Order:      order,
		Items:      items,
		SuccessURL: fmt.Sprintf("%s/api/orders/%d/pay/success", s.baseURL, order.ID),
		CancelURL:  fmt.Sprintf("%s/api/orders/%d/pay/cancel", s.baseURL, order.ID),
	})
	if err != nil {
		util.PaymentFailuresTotal.WithLabelValues(provider).Inc()
		return nil, err
	}

	if err := s.store.UpdateOrderPayment(ctx, order.ID, provider, session.Ref, models.OrderStatusPaying); err != nil {
		return nil, fmt.Errorf("failed to record payment handoff: %w", err)
	}

	util.PaymentRedirectsTotal.WithLabelValues(provider).Inc()
	s.logger.Info("Payment handoff",
		zap.Int64("order_id", order.ID),
		zap.String("provider", provider),
		zap.String("payment_ref", session.Ref))

	event := &models.OrderPaymentStartedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPaymentStarted,
			Timestamp: time.Now(),
		},
		OrderID:    order.ID,
		Provider:   provider,
		PaymentRef: session.Ref,
	}
	if err := s.eventPublisher.PublishOrderPaymentStarted(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPaymentStarted event", zap.Error(err))
	}

	return &PaymentHandoff{
		Provider:    provider,
		PaymentRef:  session.Ref,
		RedirectURL: session.RedirectURL,
	}, nil
}

// ConfirmSuccess marks an order paid when the buyer lands on the success
// URL. The redirect itself is the only confirmation; the session is not
// verified with the provider.
func (s *PaymentService) ConfirmSuccess(ctx context.Context, orderID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.ConfirmSuccess")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, models.OrderStatusPaid); err != nil {
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}
	order.Status = models.OrderStatusPaid

	util.OrdersPaidTotal.Inc()
	s.logger.Info("Order paid",
		zap.Int64("order_id", order.ID),
		zap.String("provider", order.PaymentProvider))

	event := &models.OrderPaidEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPaid,
			Timestamp: time.Now(),
		},
		OrderID:    order.ID,
		Provider:   order.PaymentProvider,
		PaymentRef: order.PaymentRef,
		Total:      order.Total,
	}
	if err := s.eventPublisher.PublishOrderPaid(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPaid event", zap.Error(err))
	}

	return order, nil
}
