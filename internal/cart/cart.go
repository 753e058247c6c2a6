package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
	"storefront/internal/money"
	"storefront/internal/pricing"
	"storefront/internal/store"
)

// Quantities are clamped to this per line.
const maxQuantity = 99

var (
	// ErrProductNotFound is returned when the product is missing or inactive.
	ErrProductNotFound = errors.New("product not found")
	// ErrOutOfStock is returned when the product has no stock left.
	ErrOutOfStock = errors.New("out of stock")
	// ErrItemNotFound is returned when the cart has no entry for the key.
	ErrItemNotFound = errors.New("cart item not found")
)

// SizeRequiredError is returned when a sized product is added without a
// valid size choice. Sizes carries the options to present to the customer.
type SizeRequiredError struct {
	Sizes []string
}

func (e *SizeRequiredError) Error() string {
	return "size required"
}

// SessionStore persists cart contents between requests, keyed by session ID.
type SessionStore interface {
	GetCart(ctx context.Context, sessionID string) (map[string]int, error)
	SaveCart(ctx context.Context, sessionID string, entries map[string]int) error
	ClearCart(ctx context.Context, sessionID string) error
}

// Catalog is the product lookup the cart needs.
type Catalog interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	ActiveProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
}

// SettingsReader supplies the store settings a cart snapshot displays.
type SettingsReader interface {
	ShippingRates(ctx context.Context) pricing.Rates
	StoreName(ctx context.Context) string
}

// Service implements the session cart on top of a session store and the
// product catalog. Entries are keyed "<productID>:<SIZE>" and hold only the
// quantity; prices are always resolved fresh from the catalog.
type Service struct {
	sessions SessionStore
	catalog  Catalog
	settings SettingsReader
}

// NewService creates a cart service
func NewService(sessions SessionStore, catalog Catalog, settings SettingsReader) *Service {
	return &Service{sessions: sessions, catalog: catalog, settings: settings}
}

// Key builds the cart entry key for a product and size
func Key(productID int64, size string) string {
	return fmt.Sprintf("%d:%s", productID, strings.ToUpper(strings.TrimSpace(size)))
}

// SplitKey parses a cart entry key back into product ID and size. A
// malformed key yields product ID zero, which never resolves.
func SplitKey(key string) (int64, string) {
	idPart, size, found := strings.Cut(key, ":")
	if !found {
		idPart, size = key, ""
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, ""
	}
	return id, strings.ToUpper(strings.TrimSpace(size))
}

// Line is a cart entry resolved against the catalog.
type Line struct {
	Key       string
	Product   models.Product
	Size      string
	Qty       int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Item is one cart line in the wire snapshot.
type Item struct {
	Key          string `json:"key"`
	ProductID    int64  `json:"product_id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Size         string `json:"size"`
	Qty          int    `json:"qty"`
	UnitPriceBRL string `json:"unit_price_brl"`
	LineTotalBRL string `json:"line_total_brl"`
	ImageURL     string `json:"image_url"`
	Stock        int    `json:"stock"`
}

// Snapshot is the cart as presented to the storefront.
type Snapshot struct {
	Count       int    `json:"count"`
	Items       []Item `json:"items"`
	SubtotalBRL string `json:"subtotal_brl"`
	ShippingBRL string `json:"shipping_brl"`
	TotalBRL    string `json:"total_brl"`
	FreeOverBRL string `json:"free_over_brl"`
	StoreName   string `json:"store_name"`
	Currency    string `json:"currency"`
}

// Add puts qty units of a product into the cart. The quantity is clamped to
// [1, 99] before use and the stored quantity never exceeds current stock.
// Sized products require a size that is one of the product's options.
func (s *Service) Add(ctx context.Context, sessionID string, productID int64, size string, qty int) error {
	if qty < 1 {
		qty = 1
	}
	if qty > maxQuantity {
		qty = maxQuantity
	}
	size = strings.ToUpper(strings.TrimSpace(size))

	p, err := s.catalog.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if !p.IsActive {
		return ErrProductNotFound
	}
	if p.Stock <= 0 {
		return ErrOutOfStock
	}

	if sizes := upperSizes(p.SizeList()); len(sizes) > 0 {
		if size == "" || !containsString(sizes, size) {
			return &SizeRequiredError{Sizes: sizes}
		}
	}

	entries, err := s.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return err
	}

	key := Key(productID, size)
	newQty := entries[key] + qty
	if newQty > p.Stock {
		newQty = p.Stock
	}
	entries[key] = newQty

	return s.sessions.SaveCart(ctx, sessionID, entries)
}

// Update sets the quantity of an existing cart entry. Zero removes the
// entry, anything else is clamped to [0, 99] and then to current stock.
// An entry whose product vanished or went inactive is silently dropped.
func (s *Service) Update(ctx context.Context, sessionID, key string, qty int) error {
	if qty < 0 {
		qty = 0
	}
	if qty > maxQuantity {
		qty = maxQuantity
	}
	key = strings.TrimSpace(key)

	entries, err := s.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return ErrItemNotFound
	}

	productID, _ := SplitKey(key)
	p, err := s.catalog.GetProductByID(ctx, productID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err != nil || !p.IsActive {
		delete(entries, key)
		return s.sessions.SaveCart(ctx, sessionID, entries)
	}

	if qty == 0 {
		delete(entries, key)
	} else {
		if qty > p.Stock {
			qty = p.Stock
		}
		entries[key] = qty
	}

	return s.sessions.SaveCart(ctx, sessionID, entries)
}

// Remove drops a cart entry. Removing a missing key is a no-op.
func (s *Service) Remove(ctx context.Context, sessionID, key string) error {
	entries, err := s.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return err
	}
	delete(entries, strings.TrimSpace(key))
	return s.sessions.SaveCart(ctx, sessionID, entries)
}

// Clear empties the cart
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.sessions.ClearCart(ctx, sessionID)
}

// Entries returns the raw cart content
func (s *Service) Entries(ctx context.Context, sessionID string) (map[string]int, error) {
	return s.sessions.GetCart(ctx, sessionID)
}

// Lines resolves the cart against the catalog. Entries whose product is
// gone or inactive are skipped, not removed.
func (s *Service) Lines(ctx context.Context, sessionID string) ([]Line, error) {
	entries, err := s.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, entries)
}

// Snapshot builds the storefront cart payload: resolved items plus totals
// priced with the current shipping settings.
func (s *Service) Snapshot(ctx context.Context, sessionID string) (*Snapshot, error) {
	entries, err := s.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	lines, err := s.resolve(ctx, entries)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		imageURL := ""
		if l.Product.ImageFilename != "" {
			imageURL = "/uploads/" + l.Product.ImageFilename
		}
		items = append(items, Item{
			Key:          l.Key,
			ProductID:    l.Product.ID,
			Name:         l.Product.Name,
			Slug:         l.Product.Slug,
			Size:         l.Size,
			Qty:          l.Qty,
			UnitPriceBRL: money.FormatBRL(l.UnitPrice),
			LineTotalBRL: money.FormatBRL(l.LineTotal),
			ImageURL:     imageURL,
			Stock:        l.Product.Stock,
		})
	}

	rates := s.settings.ShippingRates(ctx)
	quote := rates.Quote(Subtotal(lines))

	return &Snapshot{
		Count:       countEntries(entries),
		Items:       items,
		SubtotalBRL: money.FormatBRL(quote.Subtotal),
		ShippingBRL: money.FormatBRL(quote.Shipping),
		TotalBRL:    money.FormatBRL(quote.Total),
		FreeOverBRL: money.FormatBRL(rates.FreeOver),
		StoreName:   s.settings.StoreName(ctx),
		Currency:    "BRL",
	}, nil
}

// Subtotal sums the line totals of resolved cart lines.
func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal)
	}
	return money.Quantize(total)
}

func (s *Service) resolve(ctx context.Context, entries map[string]int) ([]Line, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(entries))
	for key := range entries {
		if id, _ := SplitKey(key); id > 0 {
			ids = append(ids, id)
		}
	}
	products, err := s.catalog.ActiveProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]Line, 0, len(entries))
	for _, key := range keys {
		productID, size := SplitKey(key)
		p, ok := byID[productID]
		if !ok {
			continue
		}
		qty := entries[key]
		unit := money.Quantize(p.Price)
		lines = append(lines, Line{
			Key:       key,
			Product:   p,
			Size:      size,
			Qty:       qty,
			UnitPrice: unit,
			LineTotal: unit.Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	return lines, nil
}

func countEntries(entries map[string]int) int {
	n := 0
	for _, qty := range entries {
		n += qty
	}
	return n
}

func upperSizes(sizes []string) []string {
	if len(sizes) == 0 {
		return nil
	}
	upper := make([]string, len(sizes))
	for i, s := range sizes {
		upper[i] = strings.ToUpper(s)
	}
	return upper
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
