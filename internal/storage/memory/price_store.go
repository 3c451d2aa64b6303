package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"trading-wrapped/internal/domain"
	"trading-wrapped/internal/storage"
)

// PriceStore is an in-memory implementation of storage.PriceStore.
type PriceStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PricePoint // keyed by (asset, day)
}

// NewPriceStore creates a new in-memory daily price store.
func NewPriceStore() *PriceStore {
	return &PriceStore{
		data: make(map[string]*domain.PricePoint),
	}
}

var _ storage.PriceStore = (*PriceStore)(nil)

func priceKey(asset, day string) string {
	return fmt.Sprintf("%s|%s", asset, day)
}

// InsertBulk adds multiple points. Fails entire batch on duplicate (asset, day).
func (s *PriceStore) InsertBulk(_ context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(points))

	for _, p := range points {
		if p == nil || p.Asset == "" || p.Day == "" {
			return storage.ErrInvalidInput
		}
		key := priceKey(p.Asset, p.Day)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		pointCopy := *p
		s.data[priceKey(p.Asset, p.Day)] = &pointCopy
	}

	return nil
}

// GetByAsset retrieves all points for an asset, ordered by day ASC.
func (s *PriceStore) GetByAsset(_ context.Context, asset string) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PricePoint
	for _, p := range s.data {
		if p.Asset == asset {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Day < result[j].Day
	})

	return result, nil
}

// GetSeries retrieves the day-keyed price series for an asset within
// [startDay, endDay] (inclusive).
func (s *PriceStore) GetSeries(_ context.Context, asset, startDay, endDay string) (domain.PriceSeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := make(domain.PriceSeries)
	for _, p := range s.data {
		if p.Asset == asset && p.Day >= startDay && p.Day <= endDay {
			series[p.Day] = p.Price
		}
	}

	return series, nil
}
