// Package prices fetches daily reference price series for the
// counterfactual comparisons: crypto from CoinGecko, the S&P 500 proxy
// from Stooq, both behind a TTL cache.
package prices

import (
	"context"
	"fmt"

	"trading-wrapped/internal/domain"
	"trading-wrapped/internal/whatif"
)

// Source fetches a daily close-price series for an asset covering the
// last days calendar days. Keys are UTC dates in "2006-01-02" form.
type Source interface {
	DailyPrices(ctx context.Context, asset string, days int) (domain.PriceSeries, error)
}

// Router dispatches per-asset: crypto assets go to the CoinGecko source,
// the stock proxy goes to the Stooq source.
type Router struct {
	Crypto Source
	Stock  Source
}

var _ Source = (*Router)(nil)

// DailyPrices routes the request to the source responsible for the asset.
func (r *Router) DailyPrices(ctx context.Context, asset string, days int) (domain.PriceSeries, error) {
	switch asset {
	case whatif.AssetBtc, whatif.AssetEth, whatif.AssetSol:
		return r.Crypto.DailyPrices(ctx, asset, days)
	case whatif.AssetSpy:
		return r.Stock.DailyPrices(ctx, asset, days)
	default:
		return nil, fmt.Errorf("unknown price asset %q", asset)
	}
}
