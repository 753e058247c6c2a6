package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/money"
	"storefront/internal/pricing"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEmptyCart is returned when checkout is attempted with no cart entries.
var ErrEmptyCart = errors.New("cart is empty")

// CheckoutStore is the persistence checkout needs.
type CheckoutStore interface {
	CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error
}

// CheckoutService turns a session cart into a placed order.
type CheckoutService struct {
	store          CheckoutStore
	cart           *cart.Service
	settings       *SettingsService
	eventPublisher EventPublisher
	logger         *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(store CheckoutStore, cartSvc *cart.Service, settings *SettingsService, eventPublisher EventPublisher) *CheckoutService {
	return &CheckoutService{
		store:          store,
		cart:           cartSvc,
		settings:       settings,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CheckoutRequest carries the customer details for an order. Only the email
// is mandatory.
type CheckoutRequest struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	CEP     string `json:"cep"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate trims every field in place and returns the validation failures.
func (r *CheckoutRequest) Validate() []FieldError {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.CEP = strings.TrimSpace(r.CEP)
	r.Address = strings.TrimSpace(r.Address)
	r.Notes = strings.TrimSpace(r.Notes)

	var fields []FieldError
	if r.Email == "" {
		fields = append(fields, FieldError{Field: "email", Message: "email is required"})
	}
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"email", r.Email, 190},
		{"name", r.Name, 180},
		{"phone", r.Phone, 60},
		{"cep", r.CEP, 20},
		{"address", r.Address, 5000},
		{"notes", r.Notes, 5000},
	} {
		if utf8.RuneCountInString(f.value) > f.max {
			fields = append(fields, FieldError{
				Field:   f.name,
				Message: fmt.Sprintf("must be at most %d characters", f.max),
			})
		}
	}
	return fields
}

// CheckoutResponse is returned after an order is placed.
type CheckoutResponse struct {
	OrderID  int64  `json:"order_id"`
	Status   string `json:"status"`
	TotalBRL string `json:"total_brl"`
}

// Checkout materializes the session cart into an order. Cart lines are
// resolved against the live catalog one last time; lines whose product
// vanished or went inactive are skipped. On success the cart is cleared and
// an OrderCreated event is published best-effort.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string, req *CheckoutRequest) (*CheckoutResponse, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	entries, err := s.cart.Entries(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(entries) == 0 {
		util.OrdersFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	lines, err := s.cart.Lines(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cart: %w", err)
	}

	order, items := buildOrder(req, lines, s.settings.ShippingRates(ctx))

	if err := s.store.CreateOrderWithItems(ctx, order, items); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int("items", len(items)),
		zap.String("total", order.Total.StringFixed(2)))

	if err := s.cart.Clear(ctx, sessionID); err != nil {
		s.logger.Error("Failed to clear cart after checkout",
			zap.Int64("order_id", order.ID), zap.Error(err))
	}

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:       order.ID,
		CustomerEmail: order.CustomerEmail,
		Subtotal:      order.Subtotal,
		Shipping:      order.Shipping,
		Total:         order.Total,
		Items:         eventLines(items),
	}
	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return &CheckoutResponse{
		OrderID:  order.ID,
		Status:   order.Status,
		TotalBRL: money.FormatBRL(order.Total),
	}, nil
}

// buildOrder maps resolved cart lines and customer details onto an order
// and its item snapshots.
func buildOrder(req *CheckoutRequest, lines []cart.Line, rates pricing.Rates) (*models.Order, []models.OrderItem) {
	quote := rates.Quote(cart.Subtotal(lines))

	order := &models.Order{
		Status:        models.OrderStatusNew,
		CustomerEmail: req.Email,
		CustomerName:  req.Name,
		CustomerPhone: req.Phone,
		CEP:           req.CEP,
		Address:       req.Address,
		Notes:         req.Notes,
		Subtotal:      quote.Subtotal,
		Shipping:      quote.Shipping,
		Total:         quote.Total,
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Size:        line.Size,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Qty,
			LineTotal:   line.LineTotal,
		})
	}
	return order, items
}

func eventLines(items []models.OrderItem) []models.OrderLineData {
	out := make([]models.OrderLineData, 0, len(items))
	for _, it := range items {
		out = append(out, models.OrderLineData{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Size:      it.Size,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return out
}
