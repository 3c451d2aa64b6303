package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"trading-wrapped/internal/domain"
	"trading-wrapped/internal/lookup"
	"trading-wrapped/internal/whatif"
)

// DefaultCoinGeckoEndpoint is the public API base URL.
const DefaultCoinGeckoEndpoint = "https://api.coingecko.com/api/v3"

// coinGeckoIDs maps internal asset names to CoinGecko coin IDs.
var coinGeckoIDs = map[string]string{
	whatif.AssetBtc: "bitcoin",
	whatif.AssetEth: "ethereum",
	whatif.AssetSol: "solana",
}

// CoinGeckoClient fetches daily market charts from the keyless public
// tier. A 429 yields an empty series rather than an error: missing
// reference prices degrade the what-if output, they never fail the run.
type CoinGeckoClient struct {
	endpoint string
	client   *http.Client
}

// CoinGeckoOption configures CoinGeckoClient.
type CoinGeckoOption func(*CoinGeckoClient)

// WithCoinGeckoHTTPClient sets custom http.Client.
func WithCoinGeckoHTTPClient(client *http.Client) CoinGeckoOption {
	return func(c *CoinGeckoClient) {
		c.client = client
	}
}

// NewCoinGeckoClient creates a new CoinGecko client.
func NewCoinGeckoClient(endpoint string, opts ...CoinGeckoOption) *CoinGeckoClient {
	if endpoint == "" {
		endpoint = DefaultCoinGeckoEndpoint
	}
	c := &CoinGeckoClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Source = (*CoinGeckoClient)(nil)

// DailyPrices fetches the market chart for an asset. When a day carries
// several points the last one wins, approximating the daily close.
func (c *CoinGeckoClient) DailyPrices(ctx context.Context, asset string, days int) (domain.PriceSeries, error) {
	id, ok := coinGeckoIDs[asset]
	if !ok {
		return nil, fmt.Errorf("no coingecko id for asset %q", asset)
	}

	url := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d&interval=daily",
		c.endpoint, id, days)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch market chart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return domain.PriceSeries{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coingecko status %d: %s", resp.StatusCode, string(body))
	}

	var chart struct {
		Prices [][2]float64 `json:"prices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("decode market chart: %w", err)
	}

	series := make(domain.PriceSeries, len(chart.Prices))
	for _, point := range chart.Prices {
		day := lookup.Day(int64(point[0]))
		series[day] = point[1]
	}

	return series, nil
}
