package api

import (
	"errors"
	"net/http"

	"storefront/internal/cart"
	"storefront/internal/util"

	"github.com/gin-gonic/gin"
)

type cartAddRequest struct {
	ProductID int64  `json:"product_id"`
	Qty       int    `json:"qty"`
	Size      string `json:"size"`
}

type cartUpdateRequest struct {
	Key string `json:"key"`
	Qty int    `json:"qty"`
}

type cartKeyRequest struct {
	Key string `json:"key"`
}

// cartSnapshot loads the cart as the storefront presents it
func (h *Handler) cartSnapshot(c *gin.Context) (*cart.Snapshot, bool) {
	snap, err := h.cart.Snapshot(c.Request.Context(), sessionID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load cart",
			"details": err.Error(),
		})
		return nil, false
	}
	return snap, true
}

// getCart handles the cart snapshot request
func (h *Handler) getCart(c *gin.Context) {
	snap, ok := h.cartSnapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snap)
}

// addToCart handles adding a product to the cart
func (h *Handler) addToCart(c *gin.Context) {
	req := cartAddRequest{Qty: 1}
	if !bindJSON(c, &req) {
		return
	}

	err := h.cart.Add(c.Request.Context(), sessionID(c), req.ProductID, req.Size, req.Qty)
	var sizeErr *cart.SizeRequiredError
	switch {
	case errors.As(err, &sizeErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"ok":        false,
			"need_size": true,
			"sizes":     sizeErr.Sizes,
		})
		return
	case errors.Is(err, cart.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Produto não encontrado."})
		return
	case errors.Is(err, cart.ErrOutOfStock):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "Sem estoque."})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":      false,
			"error":   "Failed to update cart",
			"details": err.Error(),
		})
		return
	}

	util.CartOpsTotal.WithLabelValues("add").Inc()

	snap, ok := h.cartSnapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Adicionado ao carrinho!", "cart": snap})
}

// updateCart handles setting the quantity of a cart entry
func (h *Handler) updateCart(c *gin.Context) {
	req := cartUpdateRequest{Qty: 1}
	if !bindJSON(c, &req) {
		return
	}

	err := h.cart.Update(c.Request.Context(), sessionID(c), req.Key, req.Qty)
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Item não encontrado."})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":      false,
			"error":   "Failed to update cart",
			"details": err.Error(),
		})
		return
	}

	util.CartOpsTotal.WithLabelValues("update").Inc()

	snap, ok := h.cartSnapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "cart": snap})
}

// removeFromCart handles dropping a cart entry
func (h *Handler) removeFromCart(c *gin.Context) {
	var req cartKeyRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.cart.Remove(c.Request.Context(), sessionID(c), req.Key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":      false,
			"error":   "Failed to update cart",
			"details": err.Error(),
		})
		return
	}

	util.CartOpsTotal.WithLabelValues("remove").Inc()

	snap, ok := h.cartSnapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "cart": snap})
}

// clearCart handles emptying the cart
func (h *Handler) clearCart(c *gin.Context) {
	if err := h.cart.Clear(c.Request.Context(), sessionID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":      false,
			"error":   "Failed to update cart",
			"details": err.Error(),
		})
		return
	}

	util.CartOpsTotal.WithLabelValues("clear").Inc()

	snap, ok := h.cartSnapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "cart": snap})
}
