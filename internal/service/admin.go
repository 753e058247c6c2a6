package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// dashboardRecentOrders is how many recent orders the dashboard shows.
const dashboardRecentOrders = 10

// ErrInvalidCredentials is returned on a failed login. The reason is never
// detailed to the caller.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AdminStore is the persistence the admin service needs.
type AdminStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CountProducts(ctx context.Context) (int, error)
	CountCategories(ctx context.Context) (int, error)
	CountOrders(ctx context.Context) (int, error)
	CountOrdersByStatus(ctx context.Context, status string) (int, error)
	ListOrders(ctx context.Context, status string, limit int) ([]models.Order, error)
}

// AdminService covers back-office login and the dashboard summary.
type AdminService struct {
	store  AdminStore
	logger *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(store AdminStore) *AdminService {
	return &AdminService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// LoginRequest carries back-office credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,max=190"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// Login verifies credentials and returns the account. The email is
// lowercased before lookup; admin rights are enforced per route, not here.
func (s *AdminService) Login(ctx context.Context, req *LoginRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AdminService.Login")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("Login", zap.String("email", email), zap.Bool("is_admin", user.IsAdmin))
	return user, nil
}

// Dashboard summarizes the back-office home screen.
type Dashboard struct {
	Products   int            `json:"products"`
	Categories int            `json:"categories"`
	Orders     int            `json:"orders"`
	NewOrders  int            `json:"new_orders"`
	Recent     []models.Order `json:"recent"`
}

// Dashboard returns catalog and order counts plus the most recent orders.
func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	products, err := s.store.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	categories, err := s.store.CountCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	orders, err := s.store.CountOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	newOrders, err := s.store.CountOrdersByStatus(ctx, models.OrderStatusNew)
	if err != nil {
		return nil, fmt.Errorf("failed to count new orders: %w", err)
	}
	recent, err := s.store.ListOrders(ctx, "", dashboardRecentOrders)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent orders: %w", err)
	}

	return &Dashboard{
		Products:   products,
		Categories: categories,
		Orders:     orders,
		NewOrders:  newOrders,
		Recent:     recent,
	}, nil
}
