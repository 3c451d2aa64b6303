package prices

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"trading-wrapped/internal/domain"
	"trading-wrapped/internal/lookup"
)

// DefaultStooqEndpoint is the keyless daily-quotes CSV endpoint.
const DefaultStooqEndpoint = "https://stooq.com/q/d/l/"

// stooqSymbols maps internal asset names to Stooq tickers.
var stooqSymbols = map[string]string{
	"spy": "spy.us",
}

// StooqClient fetches daily stock closes as CSV. Stooq needs no API key,
// which is why it backs the S&P 500 comparison instead of the usual
// keyed stock APIs.
type StooqClient struct {
	endpoint string
	client   *http.Client
	now      func() time.Time
}

// StooqOption configures StooqClient.
type StooqOption func(*StooqClient)

// WithStooqHTTPClient sets custom http.Client.
func WithStooqHTTPClient(client *http.Client) StooqOption {
	return func(c *StooqClient) {
		c.client = client
	}
}

// NewStooqClient creates a new Stooq client.
func NewStooqClient(endpoint string, opts ...StooqOption) *StooqClient {
	if endpoint == "" {
		endpoint = DefaultStooqEndpoint
	}
	c := &StooqClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Source = (*StooqClient)(nil)

// DailyPrices fetches daily closes covering the last days calendar days.
// Rows with an unparseable date or close are skipped; weekends and
// holidays are simply absent, which the lookback resolver papers over.
func (c *StooqClient) DailyPrices(ctx context.Context, asset string, days int) (domain.PriceSeries, error) {
	symbol, ok := stooqSymbols[asset]
	if !ok {
		return nil, fmt.Errorf("no stooq symbol for asset %q", asset)
	}

	end := c.now().UTC()
	start := end.AddDate(0, 0, -days)
	url := fmt.Sprintf("%s?s=%s&d1=%s&d2=%s&i=d",
		c.endpoint, symbol, start.Format("20060102"), end.Format("20060102"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch daily quotes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("stooq status %d: %s", resp.StatusCode, string(body))
	}

	return parseStooqCSV(resp.Body)
}

// parseStooqCSV parses Date,Open,High,Low,Close,Volume rows into a series.
func parseStooqCSV(r io.Reader) (domain.PriceSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	series := make(domain.PriceSeries)
	for i, rec := range records {
		if i == 0 || len(rec) < 5 {
			// Header row, or a truncated "No data" response.
			continue
		}
		if _, err := time.Parse(lookup.DayFormat, rec[0]); err != nil {
			continue
		}
		close, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			continue
		}
		series[rec[0]] = close
	}

	return series, nil
}
