package prices

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trading-wrapped/internal/domain"
)

// DefaultCacheTTL bounds how long a fetched series is reused before the
// upstream source is asked again.
const DefaultCacheTTL = 24 * time.Hour

type cacheKey struct {
	asset string
	days  int
}

type cacheEntry struct {
	series    domain.PriceSeries
	fetchedAt time.Time
}

// Cache memoizes series from an upstream Source per (asset, days). Only
// successful non-empty fetches are cached, so a rate-limited upstream
// gets retried on the next request instead of pinning an empty series
// for a full TTL.
type Cache struct {
	src Source
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
}

// CacheOption configures Cache.
type CacheOption func(*Cache)

// WithCacheTTL sets the entry lifetime.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithCacheClock sets the time source, for tests.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache wraps src with a TTL cache.
func NewCache(src Source, opts ...CacheOption) *Cache {
	c := &Cache{
		src:     src,
		ttl:     DefaultCacheTTL,
		now:     time.Now,
		entries: make(map[cacheKey]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Source = (*Cache)(nil)

// DailyPrices returns the cached series when fresh, otherwise fetches
// from the upstream source. The returned series is a copy; callers may
// mutate it freely.
func (c *Cache) DailyPrices(ctx context.Context, asset string, days int) (domain.PriceSeries, error) {
	key := cacheKey{asset: asset, days: days}

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		series := copySeries(entry.series)
		c.mu.Unlock()
		return series, nil
	}
	c.mu.Unlock()

	series, err := c.src.DailyPrices(ctx, asset, days)
	if err != nil {
		return nil, fmt.Errorf("fetch %s prices: %w", asset, err)
	}

	if len(series) > 0 {
		c.mu.Lock()
		c.entries[key] = cacheEntry{series: copySeries(series), fetchedAt: c.now()}
		c.mu.Unlock()
	}

	return series, nil
}

func copySeries(series domain.PriceSeries) domain.PriceSeries {
	out := make(domain.PriceSeries, len(series))
	for day, price := range series {
		out[day] = price
	}
	return out
}
