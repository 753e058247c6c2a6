package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/service"
	"storefront/internal/store"

	"github.com/gin-gonic/gin"
)

// getStore handles the store identity used by every storefront page
func (h *Handler) getStore(c *gin.Context) {
	identity, err := h.settings.Identity(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load store settings",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, identity)
}

// listCategories handles the active category listing
func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list categories",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// listBanners handles the active banner listing
func (h *Handler) listBanners(c *gin.Context) {
	banners, err := h.catalog.Banners(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list banners",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"banners": banners})
}

// listProducts handles the product listing with filter, search and sort
func (h *Handler) listProducts(c *gin.Context) {
	query := service.ProductQuery{
		CategorySlug: strings.TrimSpace(c.Query("cat")),
		Search:       strings.TrimSpace(c.Query("q")),
		Sort:         strings.TrimSpace(c.Query("sort")),
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		query.Limit = limit
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list products",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct handles the product detail page lookup by slug
func (h *Handler) getProduct(c *gin.Context) {
	product, category, err := h.catalog.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produto não encontrado."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load product",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product":  product,
		"category": category,
		"sizes":    product.SizeList(),
	})
}
