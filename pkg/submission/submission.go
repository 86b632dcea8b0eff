// Package submission posts completed form payloads to the backing service.
package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/govtech-bb/formflow/pkg/values"
)

// Result is the backend's submission envelope.
type Result struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    *ResultData `json:"data,omitempty"`
}

// ResultData carries submission identifiers and, for paid services, the
// follow-on payment details.
type ResultData struct {
	SubmissionID    string  `json:"submissionId"`
	FormID          string  `json:"formId"`
	Status          string  `json:"status"`
	ProcessedAt     string  `json:"processedAt,omitempty"`
	PaymentRequired bool    `json:"paymentRequired,omitempty"`
	PaymentURL      string  `json:"paymentUrl,omitempty"`
	PaymentToken    string  `json:"paymentToken,omitempty"`
	PaymentID       string  `json:"paymentId,omitempty"`
	Amount          float64 `json:"amount,omitempty"`
	ReferenceNumber string  `json:"referenceNumber,omitempty"`
}

// Client submits forms to one backend deployment.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a submission client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("submission: base URL is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    cleanhttp.DefaultPooledClient(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Submit posts the assembled form state. Timeouts and cancellation are the
// caller's business via ctx; the client itself never retries.
func (c *Client) Submit(ctx context.Context, formID string, payload values.Map) (Result, error) {
	if formID == "" {
		return Result{}, errors.New("submission: form id is required")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("submission: encode payload: %w", err)
	}

	url := c.baseURL + "/forms/" + formID + "/submit"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("submission: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("submission: submit %s: %w", formID, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("submission: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("submission: submit %s returned %d: %s",
			formID, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out Result
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, fmt.Errorf("submission: decode response: %w", err)
	}

	c.logger.Info("form submitted",
		slog.String("form_id", formID),
		slog.Bool("success", out.Success))
	return out, nil
}
