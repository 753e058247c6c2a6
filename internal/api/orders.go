package api

import (
	"errors"
	"net/http"

	"storefront/internal/payment"
	"storefront/internal/service"
	"storefront/internal/store"

	"github.com/gin-gonic/gin"
)

// postCheckout handles turning the session cart into an order
func (h *Handler) postCheckout(c *gin.Context) {
	var req service.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "fields": fields})
		return
	}

	resp, err := h.checkout.Checkout(c.Request.Context(), sessionID(c), &req)
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Seu carrinho está vazio."})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create order",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// getOrder handles the public order view. It also powers the payment
// selection screen, so the enabled providers ride along.
func (h *Handler) getOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	order, items, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pedido não encontrado."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load order",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":     order,
		"items":     items,
		"providers": h.payments.Providers(),
	})
}

// startPayment handles the handoff of an order to a payment provider
func (h *Handler) startPayment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	handoff, err := h.payments.Start(c.Request.Context(), id, c.Param("provider"))
	switch {
	case errors.Is(err, service.ErrUnknownProvider):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown payment provider"})
		return
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Pedido não encontrado."})
		return
	case errors.Is(err, payment.ErrNotConfigured):
		c.JSON(http.StatusBadGateway, gin.H{"error": "provider_unavailable"})
		return
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": "provider_unavailable", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, handoff)
}

// paySuccess handles the provider redirect after a completed payment
func (h *Handler) paySuccess(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	order, err := h.payments.ConfirmSuccess(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pedido não encontrado."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to confirm payment",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "Pagamento confirmado! Pedido registrado.",
		"order":   order,
	})
}

// payCancel handles the provider redirect after an abandoned payment. The
// order keeps whatever status it had.
func (h *Handler) payCancel(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	order, _, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pedido não encontrado."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load order",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "status": order.Status})
}
