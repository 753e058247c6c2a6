package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/service"
	"storefront/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memSessions struct {
	carts map[string]map[string]int
}

func newMemSessions() *memSessions {
	return &memSessions{carts: make(map[string]map[string]int)}
}

func (m *memSessions) GetCart(_ context.Context, sessionID string) (map[string]int, error) {
	out := make(map[string]int, len(m.carts[sessionID]))
	for k, v := range m.carts[sessionID] {
		out[k] = v
	}
	return out, nil
}

func (m *memSessions) SaveCart(_ context.Context, sessionID string, entries map[string]int) error {
	cp := make(map[string]int, len(entries))
	for k, v := range entries {
		cp[k] = v
	}
	m.carts[sessionID] = cp
	return nil
}

func (m *memSessions) ClearCart(_ context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

type memCatalog struct {
	products map[int64]models.Product
}

func (m *memCatalog) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (m *memCatalog) ActiveProductsByIDs(_ context.Context, ids []int64) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

type memSettings struct {
	values map[string]string
}

func (m *memSettings) GetSetting(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (m *memSettings) GetAllSettings(_ context.Context) (map[string]string, error) {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func (m *memSettings) UpsertSetting(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

type memCheckoutStore struct {
	orders []*models.Order
	items  [][]models.OrderItem
}

func (m *memCheckoutStore) CreateOrderWithItems(_ context.Context, order *models.Order, items []models.OrderItem) error {
	order.ID = int64(len(m.orders) + 1)
	m.orders = append(m.orders, order)
	m.items = append(m.items, items)
	return nil
}

// memOrderStore backs both the order and the payment service.
type memOrderStore struct {
	orders map[int64]*models.Order
	items  map[int64][]models.OrderItem
	list   []models.Order
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{
		orders: make(map[int64]*models.Order),
		items:  make(map[int64][]models.OrderItem),
	}
}

func (m *memOrderStore) GetOrderByID(_ context.Context, id int64) (*models.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderStore) GetOrderItems(_ context.Context, orderID int64) ([]models.OrderItem, error) {
	return m.items[orderID], nil
}

func (m *memOrderStore) UpdateOrderStatus(_ context.Context, orderID int64, status string) error {
	if o, ok := m.orders[orderID]; ok {
		o.Status = status
	}
	return nil
}

func (m *memOrderStore) UpdateOrderPayment(_ context.Context, orderID int64, provider, paymentRef, status string) error {
	if o, ok := m.orders[orderID]; ok {
		o.PaymentProvider = provider
		o.PaymentRef = paymentRef
		o.Status = status
	}
	return nil
}

func (m *memOrderStore) ListOrders(_ context.Context, _ string, _ int) ([]models.Order, error) {
	return m.list, nil
}

type memAdminStore struct {
	user       *models.User
	products   int
	categories int
	orders     int
	newOrders  int
	recent     []models.Order
}

func (m *memAdminStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if m.user == nil || m.user.Email != email {
		return nil, store.ErrNotFound
	}
	return m.user, nil
}

func (m *memAdminStore) CountProducts(_ context.Context) (int, error)   { return m.products, nil }
func (m *memAdminStore) CountCategories(_ context.Context) (int, error) { return m.categories, nil }
func (m *memAdminStore) CountOrders(_ context.Context) (int, error)     { return m.orders, nil }

func (m *memAdminStore) CountOrdersByStatus(_ context.Context, _ string) (int, error) {
	return m.newOrders, nil
}

func (m *memAdminStore) ListOrders(_ context.Context, _ string, _ int) ([]models.Order, error) {
	return m.recent, nil
}

type nopPublisher struct{}

func (nopPublisher) PublishOrderCreated(context.Context, *models.OrderCreatedEvent) error { return nil }
func (nopPublisher) PublishOrderPaymentStarted(context.Context, *models.OrderPaymentStartedEvent) error {
	return nil
}
func (nopPublisher) PublishOrderPaid(context.Context, *models.OrderPaidEvent) error     { return nil }
func (nopPublisher) PublishOrderCancelled(context.Context, *models.OrderCancelledEvent) error {
	return nil
}
func (nopPublisher) PublishOrderStatusChanged(context.Context, *models.OrderStatusChangedEvent) error {
	return nil
}

type testEnv struct {
	router *gin.Engine

	sessions *memSessions
	checkout *memCheckoutStore
	orders   *memOrderStore
	settings *memSettings
	admin    *memAdminStore
	jwt      *auth.JWTService
}

// newTestEnv wires the full HTTP surface over in-memory stores. The catalog
// admin endpoints stay unwired; they need a live database.
func newTestEnv(t *testing.T, providers map[string]service.PaymentProvider) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions := newMemSessions()
	catalog := &memCatalog{products: map[int64]models.Product{
		1: {ID: 1, Name: "Anel Ouro", Slug: "anel-ouro", Price: decimal.RequireFromString("100.00"), Stock: 5, IsActive: true},
		2: {ID: 2, Name: "Colar Prata", Slug: "colar-prata", Price: decimal.RequireFromString("50.00"), Stock: 3, Sizes: "P,M,G", IsActive: true},
		3: {ID: 3, Name: "Brinco Pérola", Slug: "brinco-perola", Price: decimal.RequireFromString("30.00"), Stock: 0, IsActive: true},
	}}

	settingsStore := &memSettings{values: make(map[string]string)}
	settingsSvc := service.NewSettingsService(settingsStore)
	cartSvc := cart.NewService(sessions, catalog, settingsSvc)

	checkoutStore := &memCheckoutStore{}
	checkoutSvc := service.NewCheckoutService(checkoutStore, cartSvc, settingsSvc, nopPublisher{})

	orderStore := newMemOrderStore()
	ordersSvc := service.NewOrderService(orderStore, nopPublisher{})
	paymentsSvc := service.NewPaymentService(orderStore, providers, nopPublisher{}, "https://loja.example.com")

	hash, err := auth.HashPassword("admin123")
	require.NoError(t, err)
	adminStore := &memAdminStore{
		user: &models.User{ID: 1, Email: "admin@local", PasswordHash: hash, IsAdmin: true},
	}
	adminSvc := service.NewAdminService(adminStore)

	jwtSvc := auth.NewJWTService("test-secret", time.Hour)

	h := NewHandler(nil, cartSvc, checkoutSvc, paymentsSvc, ordersSvc, adminSvc, settingsSvc, jwtSvc)
	router := gin.New()
	h.SetupRoutes(router)

	return &testEnv{
		router:   router,
		sessions: sessions,
		checkout: checkoutStore,
		orders:   orderStore,
		settings: settingsStore,
		admin:    adminStore,
		jwt:      jwtSvc,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func sidCookie(value string) *http.Cookie {
	return &http.Cookie{Name: sessionCookie, Value: value}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	// A labeled sample only shows up after a request has been counted.
	env.do(t, http.MethodGet, "/health", nil)

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "http_requests_total")
}
