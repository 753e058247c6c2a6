package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/models"
	"storefront/internal/money"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrNameRequired is returned when a catalog form has a blank name.
var ErrNameRequired = errors.New("name is required")

// ErrNegativePrice is returned when a product form carries a negative price.
var ErrNegativePrice = errors.New("price must not be negative")

// CatalogService serves the public catalog and the back-office CRUD for
// categories, products, and banners.
type CatalogService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// ProductQuery carries the public listing filters: category slug, free-text
// search, and sort order (new, price_asc, price_desc).
type ProductQuery struct {
	CategorySlug string
	Search       string
	Sort         string
	Limit        int
}

// ListProducts returns active products for the storefront listing. An
// unknown category slug just drops the category filter.
func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	filter := store.ProductFilter{
		Query:      strings.TrimSpace(q.Search),
		Sort:       strings.TrimSpace(q.Sort),
		ActiveOnly: true,
		Limit:      q.Limit,
	}

	if cat := strings.TrimSpace(q.CategorySlug); cat != "" {
		c, err := s.store.GetCategoryBySlug(ctx, cat)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("failed to resolve category: %w", err)
		}
		if c != nil {
			filter.CategoryID = &c.ID
		}
	}

	return s.store.ListProducts(ctx, filter)
}

// GetProduct returns one active product by slug together with its category.
// The category is nil when the product has none or it was deleted.
func (s *CatalogService) GetProduct(ctx context.Context, productSlug string) (*models.Product, *models.Category, error) {
	p, err := s.store.GetActiveProductBySlug(ctx, productSlug)
	if err != nil {
		return nil, nil, err
	}

	var category *models.Category
	if p.CategoryID != nil {
		c, err := s.store.GetCategoryByID(ctx, *p.CategoryID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, nil, err
		}
		category = c
	}
	return p, category, nil
}

// Categories returns the active categories in their stable menu order.
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListActiveCategories(ctx)
}

// Banners returns the active banners, newest first.
func (s *CatalogService) Banners(ctx context.Context) ([]models.Banner, error) {
	return s.store.ListActiveBanners(ctx)
}

// CategoryInput is the back-office category form.
type CategoryInput struct {
	Name     string `json:"name" binding:"required,max=120"`
	Icon     string `json:"icon" binding:"max=120"`
	IsActive bool   `json:"is_active"`
}

func (in *CategoryInput) apply(c *models.Category) {
	c.Name = strings.TrimSpace(in.Name)
	c.Icon = strings.TrimSpace(in.Icon)
	c.IsActive = in.IsActive
}

// AdminCategories returns every category for the back-office list, newest
// first.
func (s *CatalogService) AdminCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

// AdminCategory returns one category regardless of active state.
func (s *CatalogService) AdminCategory(ctx context.Context, id int64) (*models.Category, error) {
	return s.store.GetCategoryByID(ctx, id)
}

// CreateCategory creates a category with a slug derived from the name,
// deduplicated as base, base-2, base-3, ...
func (s *CatalogService) CreateCategory(ctx context.Context, in *CategoryInput) (*models.Category, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateCategory")
	defer span.End()

	c := &models.Category{}
	in.apply(c)
	if c.Name == "" {
		return nil, ErrNameRequired
	}

	sl, err := uniqueSlug(ctx, slug.Make(c.Name), s.store.CategorySlugExists)
	if err != nil {
		return nil, err
	}
	c.Slug = sl

	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("Category created", zap.Int64("category_id", c.ID), zap.String("slug", c.Slug))
	return c, nil
}

// UpdateCategory overwrites a category's editable fields. The slug never
// changes after creation.
func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, in *CategoryInput) (*models.Category, error) {
	c, err := s.store.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	in.apply(c)
	if c.Name == "" {
		return nil, ErrNameRequired
	}

	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes a category. Its products keep existing with no
// category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.store.GetCategoryByID(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteCategory(ctx, id)
}

// ProductInput is the back-office product form. CategoryID zero means no
// category; Price accepts a JSON number or string.
type ProductInput struct {
	CategoryID    int64           `json:"category_id"`
	Name          string          `json:"name" binding:"required,max=180"`
	Description   string          `json:"description" binding:"max=8000"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock" binding:"min=0"`
	Sizes         string          `json:"sizes" binding:"max=80"`
	IsActive      bool            `json:"is_active"`
	ImageFilename string          `json:"image_filename" binding:"max=255"`
}

// apply copies the form onto a product. A blank image filename keeps the
// existing one, so edits without a new image leave it untouched.
func (in *ProductInput) apply(p *models.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = money.Quantize(in.Price)
	p.Stock = in.Stock
	p.Sizes = strings.TrimSpace(in.Sizes)
	p.IsActive = in.IsActive

	if in.CategoryID > 0 {
		id := in.CategoryID
		p.CategoryID = &id
	} else {
		p.CategoryID = nil
	}
	if f := strings.TrimSpace(in.ImageFilename); f != "" {
		p.ImageFilename = f
	}
}

// AdminProducts returns every product for the back-office list, newest
// first.
func (s *CatalogService) AdminProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.ListProducts(ctx, store.ProductFilter{})
}

// AdminProduct returns one product regardless of active state.
func (s *CatalogService) AdminProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.store.GetProductByID(ctx, id)
}

// CreateProduct creates a product with a slug derived from the name,
// deduplicated the same way as categories.
func (s *CatalogService) CreateProduct(ctx context.Context, in *ProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	if in.Price.IsNegative() {
		return nil, ErrNegativePrice
	}

	p := &models.Product{}
	in.apply(p)
	if p.Name == "" {
		return nil, ErrNameRequired
	}

	sl, err := uniqueSlug(ctx, slug.Make(p.Name), s.store.ProductSlugExists)
	if err != nil {
		return nil, err
	}
	p.Slug = sl

	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created", zap.Int64("product_id", p.ID), zap.String("slug", p.Slug))
	return p, nil
}

// UpdateProduct overwrites a product's editable fields. The slug never
// changes after creation.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, in *ProductInput) (*models.Product, error) {
	if in.Price.IsNegative() {
		return nil, ErrNegativePrice
	}

	p, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	in.apply(p)
	if p.Name == "" {
		return nil, ErrNameRequired
	}

	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return p, nil
}

// DeleteProduct removes a product. Order item snapshots keep their copy of
// its name and price.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := s.store.GetProductByID(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteProduct(ctx, id)
}

// BannerInput is the back-office banner form. Blank call-to-action fields
// fall back to the store defaults.
type BannerInput struct {
	Title         string `json:"title" binding:"max=180"`
	Subtitle      string `json:"subtitle" binding:"max=240"`
	CTAText       string `json:"cta_text" binding:"max=60"`
	CTALink       string `json:"cta_link" binding:"max=240"`
	IsActive      bool   `json:"is_active"`
	ImageFilename string `json:"image_filename" binding:"max=255"`
}

func (in *BannerInput) apply(b *models.Banner) {
	b.Title = strings.TrimSpace(in.Title)
	b.Subtitle = strings.TrimSpace(in.Subtitle)
	b.CTAText = strings.TrimSpace(in.CTAText)
	if b.CTAText == "" {
		b.CTAText = "Comprar agora"
	}
	b.CTALink = strings.TrimSpace(in.CTALink)
	if b.CTALink == "" {
		b.CTALink = "/produtos"
	}
	b.IsActive = in.IsActive
	if f := strings.TrimSpace(in.ImageFilename); f != "" {
		b.ImageFilename = f
	}
}

// AdminBanners returns every banner for the back-office list, newest first.
func (s *CatalogService) AdminBanners(ctx context.Context) ([]models.Banner, error) {
	return s.store.ListBanners(ctx)
}

// AdminBanner returns one banner regardless of active state.
func (s *CatalogService) AdminBanner(ctx context.Context, id int64) (*models.Banner, error) {
	return s.store.GetBannerByID(ctx, id)
}

// CreateBanner creates a homepage banner.
func (s *CatalogService) CreateBanner(ctx context.Context, in *BannerInput) (*models.Banner, error) {
	b := &models.Banner{}
	in.apply(b)

	if err := s.store.CreateBanner(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create banner: %w", err)
	}

	s.logger.Info("Banner created", zap.Int64("banner_id", b.ID))
	return b, nil
}

// UpdateBanner overwrites a banner's editable fields.
func (s *CatalogService) UpdateBanner(ctx context.Context, id int64, in *BannerInput) (*models.Banner, error) {
	b, err := s.store.GetBannerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	in.apply(b)

	if err := s.store.UpdateBanner(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update banner: %w", err)
	}
	return b, nil
}

// DeleteBanner removes a banner.
func (s *CatalogService) DeleteBanner(ctx context.Context, id int64) error {
	if _, err := s.store.GetBannerByID(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteBanner(ctx, id)
}

// uniqueSlug makes base unique against exists by appending -2, -3, ... until
// a free slug is found.
func uniqueSlug(ctx context.Context, base string, exists func(context.Context, string) (bool, error)) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
