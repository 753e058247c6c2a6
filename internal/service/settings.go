package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"storefront/internal/money"
	"storefront/internal/pricing"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultSettings holds the value every known setting starts with. Reads
// fall back here when a key is missing, so a fresh database behaves like a
// configured store.
var DefaultSettings = map[string]string{
	"store_name":         "VÉRACO",
	"store_tagline":      "A elegância que ilumina sua estação.",
	"whatsapp":           "5531999999999",
	"topbar_note":        "Aproveite frete grátis nas compras acima de R$299,90",
	"shipping_free_over": "299.90",
	"shipping_flat":      "9.90",
	"primary_color":      "#111111",
	"accent_color":       "#B08D57",
}

// ErrStoreNameRequired is returned when a settings save leaves the store
// name blank.
var ErrStoreNameRequired = errors.New("store name is required")

// SettingsStore is the persistence the settings service needs.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	GetAllSettings(ctx context.Context) (map[string]string, error)
	UpsertSetting(ctx context.Context, key, value string) error
}

// SettingsService reads and updates store configuration
type SettingsService struct {
	store  SettingsStore
	logger *zap.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(store SettingsStore) *SettingsService {
	return &SettingsService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// Get returns the value stored for key. Missing keys fall back to the
// built-in default; an empty stored value is returned as is.
func (s *SettingsService) Get(ctx context.Context, key string) string {
	v, err := s.store.GetSetting(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("Failed to read setting", zap.String("key", key), zap.Error(err))
		}
		return DefaultSettings[key]
	}
	return v
}

// GetDecimal parses a money-valued setting, falling back to the key's
// default when the stored value does not parse.
func (s *SettingsService) GetDecimal(ctx context.Context, key string) decimal.Decimal {
	return moneySetting(s.Get(ctx, key), key)
}

// ShippingRates returns the current free-shipping threshold and flat rate.
func (s *SettingsService) ShippingRates(ctx context.Context) pricing.Rates {
	return pricing.Rates{
		FreeOver: s.GetDecimal(ctx, "shipping_free_over"),
		Flat:     s.GetDecimal(ctx, "shipping_flat"),
	}
}

// StoreName returns the display name of the store.
func (s *SettingsService) StoreName(ctx context.Context) string {
	return s.Get(ctx, "store_name")
}

// All returns every setting merged over the defaults.
func (s *SettingsService) All(ctx context.Context) (map[string]string, error) {
	stored, err := s.store.GetAllSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	out := make(map[string]string, len(DefaultSettings))
	for k, v := range DefaultSettings {
		out[k] = v
	}
	for k, v := range stored {
		out[k] = v
	}
	return out, nil
}

// SettingsInput is the full settings form. Every known key is written on
// each save; unknown keys are never accepted.
type SettingsInput struct {
	StoreName        string `json:"store_name" binding:"required,max=120"`
	StoreTagline     string `json:"store_tagline" binding:"max=180"`
	WhatsApp         string `json:"whatsapp" binding:"max=40"`
	TopbarNote       string `json:"topbar_note" binding:"max=180"`
	ShippingFreeOver string `json:"shipping_free_over"`
	ShippingFlat     string `json:"shipping_flat"`
	PrimaryColor     string `json:"primary_color" binding:"max=20"`
	AccentColor      string `json:"accent_color" binding:"max=20"`
}

// Update writes the full settings form. Money values are normalized to two
// decimals with unparseable input becoming 0.00, blank colors fall back to
// the defaults, and a blank store name is rejected.
func (s *SettingsService) Update(ctx context.Context, in *SettingsInput) error {
	ctx, span := util.StartSpan(ctx, "SettingsService.Update")
	defer span.End()

	values := map[string]string{
		"store_name":         strings.TrimSpace(in.StoreName),
		"store_tagline":      strings.TrimSpace(in.StoreTagline),
		"whatsapp":           strings.TrimSpace(in.WhatsApp),
		"topbar_note":        strings.TrimSpace(in.TopbarNote),
		"shipping_free_over": normalizeMoney(in.ShippingFreeOver),
		"shipping_flat":      normalizeMoney(in.ShippingFlat),
		"primary_color":      strings.TrimSpace(in.PrimaryColor),
		"accent_color":       strings.TrimSpace(in.AccentColor),
	}
	if values["store_name"] == "" {
		return ErrStoreNameRequired
	}
	if values["primary_color"] == "" {
		values["primary_color"] = DefaultSettings["primary_color"]
	}
	if values["accent_color"] == "" {
		values["accent_color"] = DefaultSettings["accent_color"]
	}

	for key, value := range values {
		if err := s.store.UpsertSetting(ctx, key, value); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}

	s.logger.Info("Settings updated", zap.String("store_name", values["store_name"]))
	return nil
}

// StoreIdentity is the public configuration payload the storefront shell
// renders: branding, topbar note, WhatsApp contact, and shipping display
// values.
type StoreIdentity struct {
	Name         string `json:"name"`
	Tagline      string `json:"tagline"`
	TopbarNote   string `json:"topbar_note"`
	PrimaryColor string `json:"primary_color"`
	AccentColor  string `json:"accent_color"`
	WhatsAppLink string `json:"whatsapp_link"`
	FreeOverBRL  string `json:"free_over_brl"`
	ShippingBRL  string `json:"shipping_brl"`
	Currency     string `json:"currency"`
}

// Identity assembles the public store identity.
func (s *SettingsService) Identity(ctx context.Context) (*StoreIdentity, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	freeOver := moneySetting(all["shipping_free_over"], "shipping_free_over")
	flat := moneySetting(all["shipping_flat"], "shipping_flat")
	message := fmt.Sprintf("Olá! Vim pela loja %s.", all["store_name"])

	return &StoreIdentity{
		Name:         all["store_name"],
		Tagline:      all["store_tagline"],
		TopbarNote:   all["topbar_note"],
		PrimaryColor: all["primary_color"],
		AccentColor:  all["accent_color"],
		WhatsAppLink: WhatsAppLink(all["whatsapp"], message),
		FreeOverBRL:  money.FormatBRL(freeOver),
		ShippingBRL:  money.FormatBRL(flat),
		Currency:     "BRL",
	}, nil
}

var nonDigits = regexp.MustCompile(`\D+`)

// WhatsAppLink builds a wa.me link for a phone number, stripping everything
// but digits from the number.
func WhatsAppLink(phone, message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s",
		nonDigits.ReplaceAllString(phone, ""), url.QueryEscape(message))
}

// moneySetting parses a stored money value, falling back to the key's
// default when it does not parse.
func moneySetting(v, key string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		d, _ = decimal.NewFromString(DefaultSettings[key])
	}
	return d
}

// normalizeMoney renders a money input as a plain two-decimal string.
// Values that do not parse become "0.00".
func normalizeMoney(v string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return "0.00"
	}
	return money.Quantize(d).StringFixed(2)
}
