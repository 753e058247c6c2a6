package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/service"
	"storefront/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	catalog  *service.CatalogService
	cart     *cart.Service
	checkout *service.CheckoutService
	payments *service.PaymentService
	orders   *service.OrderService
	admin    *service.AdminService
	settings *service.SettingsService
	jwt      *auth.JWTService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog *service.CatalogService,
	cartSvc *cart.Service,
	checkout *service.CheckoutService,
	payments *service.PaymentService,
	orders *service.OrderService,
	admin *service.AdminService,
	settings *service.SettingsService,
	jwt *auth.JWTService,
) *Handler {
	useJSONFieldNames()
	return &Handler{
		catalog:  catalog,
		cart:     cartSvc,
		checkout: checkout,
		payments: payments,
		orders:   orders,
		admin:    admin,
		settings: settings,
		jwt:      jwt,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/store", h.getStore)
		api.GET("/categories", h.listCategories)
		api.GET("/banners", h.listBanners)
		api.GET("/products", h.listProducts)
		api.GET("/products/:slug", h.getProduct)

		api.GET("/orders/:id", h.getOrder)
		api.POST("/orders/:id/pay/:provider", h.startPayment)
		api.GET("/orders/:id/pay/success", h.paySuccess)
		api.GET("/orders/:id/pay/cancel", h.payCancel)

		session := api.Group("")
		session.Use(h.withSession())
		{
			session.GET("/cart", h.getCart)
			session.POST("/cart/add", h.addToCart)
			session.POST("/cart/update", h.updateCart)
			session.POST("/cart/remove", h.removeFromCart)
			session.POST("/cart/clear", h.clearCart)
			session.POST("/checkout", h.postCheckout)
		}
	}

	admin := router.Group("/api/admin")
	{
		admin.POST("/login", h.adminLogin)
		admin.POST("/logout", h.adminLogout)

		protected := admin.Group("")
		protected.Use(h.authRequired(), h.adminOnly())
		{
			protected.GET("/dashboard", h.adminDashboard)

			protected.GET("/settings", h.getSettings)
			protected.PUT("/settings", h.updateSettings)

			protected.GET("/categories", h.adminListCategories)
			protected.POST("/categories", h.createCategory)
			protected.GET("/categories/:id", h.adminGetCategory)
			protected.PUT("/categories/:id", h.updateCategory)
			protected.DELETE("/categories/:id", h.deleteCategory)

			protected.GET("/products", h.adminListProducts)
			protected.POST("/products", h.createProduct)
			protected.GET("/products/:id", h.adminGetProduct)
			protected.PUT("/products/:id", h.updateProduct)
			protected.DELETE("/products/:id", h.deleteProduct)

			protected.GET("/banners", h.adminListBanners)
			protected.POST("/banners", h.createBanner)
			protected.GET("/banners/:id", h.adminGetBanner)
			protected.PUT("/banners/:id", h.updateBanner)
			protected.DELETE("/banners/:id", h.deleteBanner)

			protected.GET("/orders", h.adminListOrders)
			protected.GET("/orders/:id", h.adminGetOrder)
			protected.PUT("/orders/:id/status", h.updateOrderStatus)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// idParam parses the :id route parameter
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}

// bindJSON binds the request body and answers for itself on failure.
// Binding-tag violations come back in the same shape as checkout field
// validation.
func bindJSON(c *gin.Context, v any) bool {
	err := c.ShouldBindJSON(v)
	if err == nil {
		return true
	}
	if fields := fieldErrors(err); len(fields) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "fields": fields})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
	return false
}

var tagNamesOnce sync.Once

// useJSONFieldNames makes binding validation errors report json field names
// instead of Go struct field names.
func useJSONFieldNames() {
	tagNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

func fieldErrors(err error) []service.FieldError {
	var verr validator.ValidationErrors
	if !errors.As(err, &verr) {
		return nil
	}
	out := make([]service.FieldError, 0, len(verr))
	for _, fe := range verr {
		out = append(out, service.FieldError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
		})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	}
	return "is invalid"
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
