package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront/internal/money"
)

// DefaultStripeBaseURL is the production Stripe API endpoint.
const DefaultStripeBaseURL = "https://api.stripe.com"

// StripeClient creates Stripe Checkout sessions over the REST API.
type StripeClient struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

// NewStripeClient creates a Stripe client. An empty secret key leaves the
// client unconfigured; CreateSession then fails with ErrNotConfigured.
func NewStripeClient(baseURL, secretKey string, timeout time.Duration) *StripeClient {
	if baseURL == "" {
		baseURL = DefaultStripeBaseURL
	}
	return &StripeClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
	}
}

// Configured reports whether credentials are present
func (c *StripeClient) Configured() bool {
	return c.secretKey != ""
}

// CreateSession creates a hosted Checkout session in payment mode. Amounts
// are sent in centavos.
func (c *StripeClient) CreateSession(ctx context.Context, charge Charge) (*Session, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", charge.SuccessURL)
	form.Set("cancel_url", charge.CancelURL)
	if charge.Order.CustomerEmail != "" {
		form.Set("customer_email", charge.Order.CustomerEmail)
	}

	for i, item := range lineItems(charge.Order, charge.Items) {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", "brl")
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(money.Cents(item.UnitPrice), 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("stripe returned status %d", resp.StatusCode)
	}

	var out struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode stripe response: %w", err)
	}

	return &Session{Ref: out.ID, RedirectURL: out.URL}, nil
}
