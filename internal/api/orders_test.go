package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/payment"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkoutBody() gin.H {
	return gin.H{
		"email":   "cliente@example.com",
		"name":    "Ana Lima",
		"phone":   "31999998888",
		"cep":     "30130-010",
		"address": "Rua das Flores, 100",
	}
}

func TestCheckoutEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.sessions.carts["sess"] = map[string]int{"1:": 2, "2:M": 1}

	rec := env.do(t, http.MethodPost, "/api/checkout", checkoutBody(), sidCookie("sess"))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["order_id"])
	assert.Equal(t, "New", body["status"])
	assert.Equal(t, "R$ 259,90", body["total_brl"])

	require.Len(t, env.checkout.orders, 1)
	assert.Equal(t, "259.90", env.checkout.orders[0].Total.StringFixed(2))
	assert.Empty(t, env.sessions.carts["sess"])
}

func TestCheckoutEndpointValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	env.sessions.carts["sess"] = map[string]int{"1:": 1}

	rec := env.do(t, http.MethodPost, "/api/checkout",
		gin.H{"email": "   "}, sidCookie("sess"))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "validation", body["error"])
	fields := body["fields"].([]any)
	require.Len(t, fields, 1)
	assert.Equal(t, "email", fields[0].(map[string]any)["field"])

	assert.Empty(t, env.checkout.orders)
}

func TestCheckoutEndpointEmptyCart(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/checkout", checkoutBody(), sidCookie("sess"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Seu carrinho está vazio.", decodeBody(t, rec)["error"])
}

func seedOrder(env *testEnv) {
	env.orders.orders[7] = &models.Order{
		ID:            7,
		Status:        models.OrderStatusNew,
		CustomerEmail: "cliente@example.com",
		Subtotal:      decimal.RequireFromString("250.00"),
		Shipping:      decimal.RequireFromString("9.90"),
		Total:         decimal.RequireFromString("259.90"),
	}
	env.orders.items[7] = []models.OrderItem{
		{ProductID: 1, ProductName: "Anel Ouro", UnitPrice: decimal.RequireFromString("100.00"), Quantity: 2, LineTotal: decimal.RequireFromString("200.00")},
	}
}

func TestGetOrderWithProviders(t *testing.T) {
	env := newTestEnv(t, map[string]service.PaymentProvider{
		models.ProviderStripe: payment.NewStripeClient("", "sk_test_local", time.Second),
	})
	seedOrder(env)

	rec := env.do(t, http.MethodGet, "/api/orders/7", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	order := body["order"].(map[string]any)
	assert.Equal(t, float64(7), order["id"])
	assert.Len(t, body["items"].([]any), 1)
	assert.Equal(t, []any{"stripe"}, body["providers"])
}

func TestGetOrderNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/orders/42", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Pedido não encontrado.", decodeBody(t, rec)["error"])
}

func TestStartPaymentEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"cs_test_a1","url":"https://checkout.stripe.test/c/cs_test_a1"}`)
	}))
	defer srv.Close()

	env := newTestEnv(t, map[string]service.PaymentProvider{
		models.ProviderStripe: payment.NewStripeClient(srv.URL, "sk_test_local", time.Second),
	})
	seedOrder(env)

	rec := env.do(t, http.MethodPost, "/api/orders/7/pay/stripe", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "stripe", body["provider"])
	assert.Equal(t, "cs_test_a1", body["payment_ref"])
	assert.Equal(t, "https://checkout.stripe.test/c/cs_test_a1", body["redirect_url"])

	assert.Equal(t, models.OrderStatusPaying, env.orders.orders[7].Status)
	assert.Equal(t, "cs_test_a1", env.orders.orders[7].PaymentRef)
}

func TestStartPaymentUnknownProvider(t *testing.T) {
	env := newTestEnv(t, nil)
	seedOrder(env)

	rec := env.do(t, http.MethodPost, "/api/orders/7/pay/pix", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStartPaymentUnavailable(t *testing.T) {
	env := newTestEnv(t, map[string]service.PaymentProvider{
		models.ProviderStripe: payment.NewStripeClient("", "", time.Second),
	})
	seedOrder(env)

	rec := env.do(t, http.MethodPost, "/api/orders/7/pay/stripe", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "provider_unavailable", decodeBody(t, rec)["error"])
	assert.Equal(t, models.OrderStatusNew, env.orders.orders[7].Status)
}

func TestPaySuccessEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	seedOrder(env)
	env.orders.orders[7].Status = models.OrderStatusPaying

	rec := env.do(t, http.MethodGet, "/api/orders/7/pay/success", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "Pagamento confirmado! Pedido registrado.", body["message"])
	assert.Equal(t, models.OrderStatusPaid, env.orders.orders[7].Status)
}

func TestPayCancelEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	seedOrder(env)
	env.orders.orders[7].Status = models.OrderStatusPaying

	rec := env.do(t, http.MethodGet, "/api/orders/7/pay/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, models.OrderStatusPaying, body["status"])
	assert.Equal(t, models.OrderStatusPaying, env.orders.orders[7].Status)
}
