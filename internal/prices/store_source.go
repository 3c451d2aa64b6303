package prices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trading-wrapped/internal/domain"
	"trading-wrapped/internal/lookup"
	"trading-wrapped/internal/storage"
)

// StoreSource reads a daily series out of a PriceStore, serving the
// window covering the last days calendar days. It lets a warmed
// ClickHouse table stand in for the live upstream APIs.
type StoreSource struct {
	store storage.PriceStore
	now   func() time.Time
}

// StoreSourceOption configures StoreSource.
type StoreSourceOption func(*StoreSource)

// WithStoreClock sets the time source, for tests.
func WithStoreClock(now func() time.Time) StoreSourceOption {
	return func(s *StoreSource) {
		s.now = now
	}
}

// NewStoreSource creates a Source backed by a PriceStore.
func NewStoreSource(store storage.PriceStore, opts ...StoreSourceOption) *StoreSource {
	s := &StoreSource{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Source = (*StoreSource)(nil)

// DailyPrices reads the stored series for the window ending today.
func (s *StoreSource) DailyPrices(ctx context.Context, asset string, days int) (domain.PriceSeries, error) {
	end := s.now().UTC()
	start := end.AddDate(0, 0, -days)

	series, err := s.store.GetSeries(ctx, asset, start.Format(lookup.DayFormat), end.Format(lookup.DayFormat))
	if err != nil {
		return nil, fmt.Errorf("read stored %s prices: %w", asset, err)
	}
	return series, nil
}

// Persist writes a fetched series into the store, skipping days already
// present. Best-effort callers treat the returned error as a warning.
func Persist(ctx context.Context, store storage.PriceStore, asset string, series domain.PriceSeries) error {
	if len(series) == 0 {
		return nil
	}

	existing, err := store.GetByAsset(ctx, asset)
	if err != nil {
		return fmt.Errorf("read existing %s prices: %w", asset, err)
	}
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p.Day] = true
	}

	points := make([]*domain.PricePoint, 0, len(series))
	for day, price := range series {
		if seen[day] {
			continue
		}
		points = append(points, &domain.PricePoint{Asset: asset, Day: day, Price: price})
	}
	if len(points) == 0 {
		return nil
	}

	if err := store.InsertBulk(ctx, points); err != nil {
		// A concurrent writer can still race us to the same day.
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil
		}
		return fmt.Errorf("persist %s prices: %w", asset, err)
	}
	return nil
}
