package api

import (
	"errors"
	"net/http"

	"storefront/internal/service"
	"storefront/internal/store"

	"github.com/gin-gonic/gin"
)

// adminLogin handles the back-office login and issues the session token
func (h *Handler) adminLogin(c *gin.Context) {
	var req service.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.admin.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou senha inválidos."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to log in",
			"details": err.Error(),
		})
		return
	}

	token, expiresAt, err := h.jwt.GenerateToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to issue token",
			"details": err.Error(),
		})
		return
	}

	c.SetCookie(authCookie, token, int(h.jwt.TokenExpiry().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user,
	})
}

// adminLogout clears the session cookie
func (h *Handler) adminLogout(c *gin.Context) {
	c.SetCookie(authCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Você saiu."})
}

// adminDashboard handles the back-office home screen counts
func (h *Handler) adminDashboard(c *gin.Context) {
	dash, err := h.admin.Dashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load dashboard",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, dash)
}

// getSettings handles reading the store settings, defaults included
func (h *Handler) getSettings(c *gin.Context) {
	all, err := h.settings.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load settings",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": all})
}

// updateSettings handles saving the full settings form
func (h *Handler) updateSettings(c *gin.Context) {
	var in service.SettingsInput
	if !bindJSON(c, &in) {
		return
	}

	if err := h.settings.Update(c.Request.Context(), &in); err != nil {
		if errors.Is(err, service.ErrStoreNameRequired) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "validation",
				"fields": []service.FieldError{{Field: "store_name", Message: "is required"}},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save settings",
			"details": err.Error(),
		})
		return
	}

	all, err := h.settings.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load settings",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Configurações salvas.", "settings": all})
}

// ---- categories ----

func (h *Handler) adminListCategories(c *gin.Context) {
	categories, err := h.catalog.AdminCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list categories",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) adminGetCategory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	category, err := h.catalog.AdminCategory(c.Request.Context(), id)
	if err != nil {
		h.catalogError(c, err, "Categoria não encontrada.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (h *Handler) createCategory(c *gin.Context) {
	var in service.CategoryInput
	if !bindJSON(c, &in) {
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), &in)
	if err != nil {
		h.catalogError(c, err, "Categoria não encontrada.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "message": "Categoria criada.", "category": category})
}

func (h *Handler) updateCategory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.CategoryInput
	if !bindJSON(c, &in) {
		return
	}

	category, err := h.catalog.UpdateCategory(c.Request.Context(), id, &in)
	if err != nil {
		h.catalogError(c, err, "Categoria não encontrada.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Categoria atualizada.", "category": category})
}

func (h *Handler) deleteCategory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		h.catalogError(c, err, "Categoria não encontrada.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Categoria removida."})
}

// ---- products ----

func (h *Handler) adminListProducts(c *gin.Context) {
	products, err := h.catalog.AdminProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list products",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) adminGetProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	product, err := h.catalog.AdminProduct(c.Request.Context(), id)
	if err != nil {
		h.catalogError(c, err, "Produto não encontrado.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *Handler) createProduct(c *gin.Context) {
	var in service.ProductInput
	if !bindJSON(c, &in) {
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), &in)
	if err != nil {
		h.catalogError(c, err, "Produto não encontrado.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "message": "Produto criado.", "product": product})
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.ProductInput
	if !bindJSON(c, &in) {
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), id, &in)
	if err != nil {
		h.catalogError(c, err, "Produto não encontrado.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Produto atualizado.", "product": product})
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		h.catalogError(c, err, "Produto não encontrado.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Produto removido."})
}

// ---- banners ----

func (h *Handler) adminListBanners(c *gin.Context) {
	banners, err := h.catalog.AdminBanners(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list banners",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"banners": banners})
}

func (h *Handler) adminGetBanner(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	banner, err := h.catalog.AdminBanner(c.Request.Context(), id)
	if err != nil {
		h.catalogError(c, err, "Banner não encontrado.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"banner": banner})
}

func (h *Handler) createBanner(c *gin.Context) {
	var in service.BannerInput
	if !bindJSON(c, &in) {
		return
	}

	banner, err := h.catalog.CreateBanner(c.Request.Context(), &in)
	if err != nil {
		h.catalogError(c, err, "Banner não encontrado.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "message": "Banner criado.", "banner": banner})
}

func (h *Handler) updateBanner(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.BannerInput
	if !bindJSON(c, &in) {
		return
	}

	banner, err := h.catalog.UpdateBanner(c.Request.Context(), id, &in)
	if err != nil {
		h.catalogError(c, err, "Banner não encontrado.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Banner atualizado.", "banner": banner})
}

func (h *Handler) deleteBanner(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteBanner(c.Request.Context(), id); err != nil {
		h.catalogError(c, err, "Banner não encontrado.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Banner removido."})
}

// ---- orders ----

func (h *Handler) adminListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list orders",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) adminGetOrder(c *gin.Context) {
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
	c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
}

type statusRequest struct {
	Status string `json:"status"`
}

// updateOrderStatus overwrites an order's status. Unknown values are
// ignored and the current order is returned either way.
func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orders.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pedido não encontrado."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update order",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "order": order})
}

// catalogError maps catalog service errors onto HTTP responses. notFound is
// the message for a missing entity.
func (h *Handler) catalogError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, service.ErrNameRequired):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation",
			"fields": []service.FieldError{{Field: "name", Message: "is required"}},
		})
	case errors.Is(err, service.ErrNegativePrice):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation",
			"fields": []service.FieldError{{Field: "price", Message: "must be at least 0"}},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save",
			"details": err.Error(),
		})
	}
}
