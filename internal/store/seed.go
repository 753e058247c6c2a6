package store

import (
	"context"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

// Seed populates an empty database with the admin account, default settings
// and a small demo catalog. Tables that already hold rows are left untouched,
// so calling it on every boot is safe.
func (s *Store) Seed(ctx context.Context, adminEmail, adminPasswordHash string, defaults map[string]string) error {
	users, err := s.CountUsers(ctx)
	if err != nil {
		return err
	}
	if users == 0 {
		admin := &models.User{Email: adminEmail, PasswordHash: adminPasswordHash, IsAdmin: true}
		if err := s.CreateUser(ctx, admin); err != nil {
			return err
		}
	}

	if err := s.EnsureSettings(ctx, defaults); err != nil {
		return err
	}

	categories, err := s.CountCategories(ctx)
	if err != nil {
		return err
	}
	if categories == 0 {
		if err := s.seedCategories(ctx); err != nil {
			return err
		}
	}

	products, err := s.CountProducts(ctx)
	if err != nil {
		return err
	}
	if products == 0 {
		if err := s.seedProducts(ctx); err != nil {
			return err
		}
	}

	banners, err := s.CountBanners(ctx)
	if err != nil {
		return err
	}
	if banners == 0 {
		banner := &models.Banner{
			Title:    "Clássicos em Ouro 18k",
			Subtitle: "Luxo discreto. Linhas limpas. Brilho eterno.",
			CTAText:  "Comprar agora",
			CTALink:  "/produtos",
			IsActive: true,
		}
		if err := s.CreateBanner(ctx, banner); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) seedCategories(ctx context.Context) error {
	seed := []struct {
		name string
		icon string
	}{
		{"Anéis", "ring"},
		{"Alianças", "rings"},
		{"Brincos", "earrings"},
		{"Pulseiras", "bracelet"},
		{"Colares", "necklace"},
		{"Relógios", "watch"},
		{"Pingentes", "pendant"},
		{"Óculos", "glasses"},
	}
	for _, c := range seed {
		category := &models.Category{Name: c.name, Slug: slug.Make(c.name), Icon: c.icon, IsActive: true}
		if err := s.CreateCategory(ctx, category); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) seedProducts(ctx context.Context) error {
	categoryID := func(slugName string) *int64 {
		c, err := s.GetCategoryBySlug(ctx, slugName)
		if err != nil {
			return nil
		}
		return &c.ID
	}

	demo := []models.Product{
		{
			CategoryID:  categoryID("aneis"),
			Name:        "Anel Ouro 18k Solitário",
			Description: "Clássico atemporal em ouro 18k com brilho impecável.",
			Price:       decimal.RequireFromString("799.90"),
			Stock:       10,
		},
		{
			CategoryID:  categoryID("colares"),
			Name:        "Colar Ponto de Luz",
			Description: "Minimalista e sofisticado — perfeito para elevar qualquer look.",
			Price:       decimal.RequireFromString("459.90"),
			Stock:       12,
		},
		{
			CategoryID:  categoryID("brincos"),
			Name:        "Brinco Argola Premium",
			Description: "Acabamento premium e presença marcante.",
			Price:       decimal.RequireFromString("329.90"),
			Stock:       18,
		},
		{
			Name:        "Aliança Clássica 18k",
			Description: "Elegância diária com conforto e durabilidade.",
			Price:       decimal.RequireFromString("1290.00"),
			Stock:       8,
			Sizes:       "14,15,16,17,18,19",
		},
	}
	for i := range demo {
		demo[i].Slug = slug.Make(demo[i].Name)
		demo[i].IsActive = true
		if err := s.CreateProduct(ctx, &demo[i]); err != nil {
			return err
		}
	}
	return nil
}
