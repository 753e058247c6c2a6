package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/config"
	"storefront/internal/api"
	"storefront/internal/auth"
	"storefront/internal/broker"
	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/payment"
	"storefront/internal/redisclient"
	"storefront/internal/service"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront")

	if cfg.Server.Env == "production" && cfg.Auth.JWTSecret == "dev-secret-change-me" {
		log.Fatal("JWT_SECRET must be set in production")
	}

	tp, err := util.InitTracer("storefront", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	adminHash, err := auth.HashPassword(cfg.Auth.AdminPassword)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}
	if err := db.Seed(context.Background(), cfg.Auth.AdminEmail, adminHash, seedDefaults(cfg)); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	cartTTL := time.Duration(cfg.Store.CartTTLHours) * time.Hour
	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cartTTL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	paymentTimeout := time.Duration(cfg.Payment.TimeoutSeconds) * time.Second
	providers := map[string]service.PaymentProvider{
		models.ProviderStripe:      payment.NewStripeClient(cfg.Payment.StripeBaseURL, cfg.Payment.StripeSecretKey, paymentTimeout),
		models.ProviderMercadoPago: payment.NewMercadoPagoClient(cfg.Payment.MPBaseURL, cfg.Payment.MPAccessToken, paymentTimeout),
	}

	settingsService := service.NewSettingsService(db)
	catalogService := service.NewCatalogService(db)
	cartService := cart.NewService(redisClient, db, settingsService)
	checkoutService := service.NewCheckoutService(db, cartService, settingsService, eventPublisher)
	paymentService := service.NewPaymentService(db, providers, eventPublisher, cfg.Server.PublicBaseURL)
	orderService := service.NewOrderService(db, eventPublisher)
	adminService := service.NewAdminService(db)

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(
		catalogService,
		cartService,
		checkoutService,
		paymentService,
		orderService,
		adminService,
		settingsService,
		jwtService,
	)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// seedDefaults merges the store identity env overrides over the built-in
// defaults used when seeding a fresh database.
func seedDefaults(cfg *config.Config) map[string]string {
	defaults := make(map[string]string, len(service.DefaultSettings))
	for k, v := range service.DefaultSettings {
		defaults[k] = v
	}
	if cfg.Store.Name != "" {
		defaults["store_name"] = cfg.Store.Name
	}
	if cfg.Store.ShippingFreeOver != "" {
		defaults["shipping_free_over"] = cfg.Store.ShippingFreeOver
	}
	if cfg.Store.ShippingFlat != "" {
		defaults["shipping_flat"] = cfg.Store.ShippingFlat
	}
	return defaults
}
