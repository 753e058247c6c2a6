package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront/internal/money"
)

// DefaultMercadoPagoBaseURL is the production Mercado Pago API endpoint.
const DefaultMercadoPagoBaseURL = "https://api.mercadopago.com"

// Buyers without an email on the order still need a payer, so the
// preference falls back to this placeholder.
const mpFallbackPayerEmail = "comprador@email.com"

// MercadoPagoClient creates Checkout Pro preferences over the REST API.
type MercadoPagoClient struct {
	baseURL     string
	accessToken string
	client      *http.Client
}

// NewMercadoPagoClient creates a Mercado Pago client. An empty access token
// leaves the client unconfigured; CreateSession then fails with
// ErrNotConfigured.
func NewMercadoPagoClient(baseURL, accessToken string, timeout time.Duration) *MercadoPagoClient {
	if baseURL == "" {
		baseURL = DefaultMercadoPagoBaseURL
	}
	return &MercadoPagoClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		client:      &http.Client{Timeout: timeout},
	}
}

// Configured reports whether credentials are present
func (c *MercadoPagoClient) Configured() bool {
	return c.accessToken != ""
}

type mpItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	CurrencyID string  `json:"currency_id"`
	UnitPrice  float64 `json:"unit_price"`
}

type mpPayer struct {
	Email string `json:"email"`
}

type mpBackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type mpPreference struct {
	Items      []mpItem   `json:"items"`
	Payer      mpPayer    `json:"payer"`
	BackURLs   mpBackURLs `json:"back_urls"`
	AutoReturn string     `json:"auto_return"`
}

// CreateSession creates a Checkout Pro preference and returns its redirect.
// The sandbox init point is used when the live one is absent.
func (c *MercadoPagoClient) CreateSession(ctx context.Context, charge Charge) (*Session, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	items := make([]mpItem, 0, len(charge.Items)+1)
	for _, item := range lineItems(charge.Order, charge.Items) {
		items = append(items, mpItem{
			Title:      item.Name,
			Quantity:   item.Quantity,
			CurrencyID: "BRL",
			UnitPrice:  money.Float(item.UnitPrice),
		})
	}

	payerEmail := charge.Order.CustomerEmail
	if payerEmail == "" {
		payerEmail = mpFallbackPayerEmail
	}

	preference := mpPreference{
		Items: items,
		Payer: mpPayer{Email: payerEmail},
		BackURLs: mpBackURLs{
			Success: charge.SuccessURL,
			Failure: charge.CancelURL,
			Pending: charge.CancelURL,
		},
		AutoReturn: "approved",
	}

	body, err := json.Marshal(preference)
	if err != nil {
		return nil, fmt.Errorf("marshal preference: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/checkout/preferences", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mercadopago request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("mercadopago returned status %d", resp.StatusCode)
	}

	var out struct {
		ID               string `json:"id"`
		InitPoint        string `json:"init_point"`
		SandboxInitPoint string `json:"sandbox_init_point"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode mercadopago response: %w", err)
	}

	redirect := out.InitPoint
	if redirect == "" {
		redirect = out.SandboxInitPoint
	}

	return &Session{Ref: out.ID, RedirectURL: redirect}, nil
}
