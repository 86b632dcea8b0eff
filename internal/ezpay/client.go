// Package ezpay is a thin wire client for the EZPay+ payment gateway. It
// speaks the gateway's form-encoded protocol and returns its responses
// verbatim; mapping to generic payment results happens in pkg/payment.
package ezpay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
)

// CartItem is one line item in an EZPay cart. Amount is in BBD.
type CartItem struct {
	Code      string  `json:"code"`
	Amount    float64 `json:"amount"`
	Details   string  `json:"details"`
	Reference string  `json:"reference"`
}

// CartRequest creates a payment cart on the gateway.
type CartRequest struct {
	Items           []CartItem
	CustomerEmail   string
	CustomerName    string
	ReferenceNumber string
}

// CartResponse is the raw cart-creation response. On failure the gateway
// returns Error/Code instead of a token.
type CartResponse struct {
	Token string `json:"token"`
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CheckResponse is the raw check_api response. The gateway prefixes every
// field with an underscore.
type CheckResponse struct {
	Reference         string `json:"_reference"`
	Status            string `json:"_status"`
	TransactionNumber string `json:"_transaction_number"`
	Account           string `json:"_ezpay_account"`
	Processor         string `json:"_processor"`
	DateSettled       string `json:"_datesettled"`
	Amount            string `json:"_amount"`
	Details           string `json:"_details"`
	PCode             string `json:"_pcode"`
}

// Client talks to one EZPay+ deployment.
type Client struct {
	baseURL   string
	pluginKey string
	http      *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New returns a client for the gateway at baseURL authenticating with
// pluginKey.
func New(baseURL, pluginKey string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("ezpay: base URL is required")
	}
	if pluginKey == "" {
		return nil, errors.New("ezpay: plugin key is required")
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		pluginKey: pluginKey,
		http:      cleanhttp.DefaultPooledClient(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateCart registers a cart with the gateway and returns the redirect
// token. A gateway-level error payload is returned as an error, never as a
// zero-token success.
func (c *Client) CreateCart(ctx context.Context, req CartRequest) (CartResponse, error) {
	if len(req.Items) == 0 {
		return CartResponse{}, errors.New("ezpay: cart has no items")
	}

	cart, err := json.Marshal(req.Items)
	if err != nil {
		return CartResponse{}, fmt.Errorf("ezpay: encode cart: %w", err)
	}

	form := url.Values{}
	form.Set("ez_cart_array", string(cart))
	form.Set("ez_reference_email", req.CustomerEmail)
	form.Set("ez_reference_name", req.CustomerName)
	form.Set("ez_reference_number", req.ReferenceNumber)
	form.Set("ez_allow_credit", "true")
	form.Set("ez_allow_debit", "true")
	form.Set("ez_allow_payce", "true")

	var out CartResponse
	if err := c.postForm(ctx, "/ezpay_receivecart", form, &out); err != nil {
		return CartResponse{}, err
	}
	if out.Error != "" {
		return CartResponse{}, fmt.Errorf("ezpay: cart rejected: %s (code %s)", out.Error, out.Code)
	}
	if out.Token == "" {
		return CartResponse{}, errors.New("ezpay: cart response missing token")
	}
	return out, nil
}

// Check looks up a transaction by gateway transaction number or by our
// reference number. Exactly one identifier is needed; when both are set the
// transaction number wins, matching the gateway's own precedence.
func (c *Client) Check(ctx context.Context, transactionNumber, reference string) (CheckResponse, error) {
	form := url.Values{}
	switch {
	case transactionNumber != "":
		form.Set("transaction_number", transactionNumber)
	case reference != "":
		form.Set("reference", reference)
	default:
		return CheckResponse{}, errors.New("ezpay: transaction number or reference is required")
	}

	var out CheckResponse
	if err := c.postForm(ctx, "/check_api", form, &out); err != nil {
		return CheckResponse{}, err
	}
	return out, nil
}

// PaymentPageURL is the hosted payment page for a cart token.
func (c *Client) PaymentPageURL(token string) string {
	return c.baseURL + "/payment_page?token=" + url.QueryEscape(token)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("ezpay: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("EZPluginKey", c.pluginKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ezpay: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("ezpay: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ezpay: %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("ezpay: decode %s response: %w", path, err)
	}
	return nil
}
