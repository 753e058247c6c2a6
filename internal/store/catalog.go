package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"storefront/internal/models"
)

// ProductFilter narrows the result of ListProducts.
type ProductFilter struct {
	CategoryID *int64
	Query      string
	Sort       string
	ActiveOnly bool
	Limit      int
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	err := s.db.GetContext(ctx, &p, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetActiveProductBySlug retrieves an active product by slug
func (s *Store) GetActiveProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var p models.Product
	err := s.db.GetContext(ctx, &p,
		"SELECT * FROM products WHERE slug = $1 AND is_active = TRUE", slug)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ActiveProductsByIDs retrieves the active products among the given IDs
func (s *Store) ActiveProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?) AND is_active = TRUE", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// ListProducts retrieves products matching the filter
func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	query := "SELECT * FROM products"
	var (
		where []string
		args  []interface{}
	)
	if f.ActiveOnly {
		where = append(where, "is_active = TRUE")
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	switch f.Sort {
	case "price_asc":
		query += " ORDER BY price ASC"
	case "price_desc":
		query += " ORDER BY price DESC"
	default:
		query += " ORDER BY created_at DESC"
	}
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var products []models.Product
	err := s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// ProductSlugExists checks if a product slug is already taken
func (s *Store) ProductSlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM products WHERE slug = $1)", slug)
	return exists, err
}

// CreateProduct creates a new product
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (category_id, name, slug, description, price, stock, is_active, sizes, image_filename)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, p, query,
		p.CategoryID, p.Name, p.Slug, p.Description, p.Price, p.Stock, p.IsActive, p.Sizes, p.ImageFilename)
}

// UpdateProduct updates an existing product. The slug is kept as is.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET category_id = $1, name = $2, description = $3, price = $4, stock = $5,
			is_active = $6, sizes = $7, image_filename = $8
		WHERE id = $9`

	_, err := s.db.ExecContext(ctx, query,
		p.CategoryID, p.Name, p.Description, p.Price, p.Stock, p.IsActive, p.Sizes, p.ImageFilename, p.ID)
	return err
}

// DeleteProduct removes a product
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	return err
}

// CountProducts returns the total number of products
func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM products")
	return count, err
}

// ListActiveCategories retrieves active categories in creation order
func (s *Store) ListActiveCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.SelectContext(ctx, &categories,
		"SELECT * FROM categories WHERE is_active = TRUE ORDER BY created_at ASC")
	return categories, err
}

// ListCategories retrieves all categories, newest first
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.SelectContext(ctx, &categories,
		"SELECT * FROM categories ORDER BY created_at DESC")
	return categories, err
}

// GetCategoryByID retrieves a category by ID
func (s *Store) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	err := s.db.GetContext(ctx, &c, "SELECT * FROM categories WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCategoryBySlug retrieves a category by slug
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	err := s.db.GetContext(ctx, &c, "SELECT * FROM categories WHERE slug = $1", slug)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CategorySlugExists checks if a category slug is already taken
func (s *Store) CategorySlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM categories WHERE slug = $1)", slug)
	return exists, err
}

// CreateCategory creates a new category
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (name, slug, icon, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, c, query, c.Name, c.Slug, c.Icon, c.IsActive)
}

// UpdateCategory updates an existing category. The slug is kept as is.
func (s *Store) UpdateCategory(ctx context.Context, c *models.Category) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE categories SET name = $1, icon = $2, is_active = $3 WHERE id = $4",
		c.Name, c.Icon, c.IsActive, c.ID)
	return err
}

// DeleteCategory removes a category. Products keep existing with no category.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	return err
}

// CountCategories returns the total number of categories
func (s *Store) CountCategories(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM categories")
	return count, err
}

// ListActiveBanners retrieves active banners, newest first
func (s *Store) ListActiveBanners(ctx context.Context) ([]models.Banner, error) {
	var banners []models.Banner
	err := s.db.SelectContext(ctx, &banners,
		"SELECT * FROM banners WHERE is_active = TRUE ORDER BY created_at DESC")
	return banners, err
}

// ListBanners retrieves all banners, newest first
func (s *Store) ListBanners(ctx context.Context) ([]models.Banner, error) {
	var banners []models.Banner
	err := s.db.SelectContext(ctx, &banners,
		"SELECT * FROM banners ORDER BY created_at DESC")
	return banners, err
}

// GetBannerByID retrieves a banner by ID
func (s *Store) GetBannerByID(ctx context.Context, id int64) (*models.Banner, error) {
	var b models.Banner
	err := s.db.GetContext(ctx, &b, "SELECT * FROM banners WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBanner creates a new banner
func (s *Store) CreateBanner(ctx context.Context, b *models.Banner) error {
	query := `
		INSERT INTO banners (title, subtitle, cta_text, cta_link, image_filename, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, b, query,
		b.Title, b.Subtitle, b.CTAText, b.CTALink, b.ImageFilename, b.IsActive)
}

// UpdateBanner updates an existing banner
func (s *Store) UpdateBanner(ctx context.Context, b *models.Banner) error {
	query := `
		UPDATE banners
		SET title = $1, subtitle = $2, cta_text = $3, cta_link = $4, image_filename = $5, is_active = $6
		WHERE id = $7`

	_, err := s.db.ExecContext(ctx, query,
		b.Title, b.Subtitle, b.CTAText, b.CTALink, b.ImageFilename, b.IsActive, b.ID)
	return err
}

// DeleteBanner removes a banner
func (s *Store) DeleteBanner(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM banners WHERE id = $1", id)
	return err
}

// CountBanners returns the total number of banners
func (s *Store) CountBanners(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM banners")
	return count, err
}
