package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"trading-wrapped/internal/domain"
)

// DefaultEndpoint is the production info endpoint.
const DefaultEndpoint = "https://api.hyperliquid.xyz/info"

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// HTTPClient implements Venue against the POST /info endpoint.
type HTTPClient struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithMaxDelay sets maximum retry delay.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.maxDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new venue client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &HTTPClient{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ Venue = (*HTTPClient)(nil)

// UserFills retrieves every perp fill for a wallet, time-aggregated.
func (c *HTTPClient) UserFills(ctx context.Context, address string) ([]*domain.Fill, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	req := map[string]interface{}{
		"type":            "userFills",
		"user":            address,
		"aggregateByTime": true,
	}

	var fills []*domain.Fill
	if err := c.post(ctx, req, &fills); err != nil {
		return nil, fmt.Errorf("fetch user fills: %w", err)
	}
	return fills, nil
}

// UserLedger retrieves all non-funding ledger updates for a wallet.
func (c *HTTPClient) UserLedger(ctx context.Context, address string) ([]*domain.LedgerEntry, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	req := map[string]interface{}{
		"type":      "userNonFundingLedgerUpdates",
		"user":      address,
		"startTime": 0,
	}

	var entries []*domain.LedgerEntry
	if err := c.post(ctx, req, &entries); err != nil {
		return nil, fmt.Errorf("fetch user ledger: %w", err)
	}
	return entries, nil
}

// post performs an info request with retries and exponential backoff.
// A well-formed non-array response body leaves result untouched: the venue
// answers with an object for unknown wallets, which the caller treats as
// empty history.
func (c *HTTPClient) post(ctx context.Context, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		// Handle rate limiting
		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		if !isJSONArray(respBody) {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// isJSONArray reports whether the body's first significant byte opens an
// array.
func isJSONArray(body []byte) bool {
	for _, b := range body {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
