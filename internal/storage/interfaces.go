package storage

import (
	"context"

	"trading-wrapped/internal/domain"
)

// SnapshotStore provides access to result_snapshots storage.
type SnapshotStore interface {
	// Insert adds a new snapshot. Returns ErrDuplicateKey if
	// (address, computed_at) exists.
	Insert(ctx context.Context, s *domain.ResultSnapshot) error

	// GetLatest retrieves the most recent snapshot for an address.
	// Returns ErrNotFound if the address has none.
	GetLatest(ctx context.Context, address string) (*domain.ResultSnapshot, error)

	// GetByAddress retrieves all snapshots for an address, ordered by
	// computed_at ASC.
	GetByAddress(ctx context.Context, address string) ([]*domain.ResultSnapshot, error)
}

// PriceStore provides access to daily_prices storage.
type PriceStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate
	// (asset, day).
	InsertBulk(ctx context.Context, points []*domain.PricePoint) error

	// GetByAsset retrieves all points for an asset, ordered by day ASC.
	GetByAsset(ctx context.Context, asset string) ([]*domain.PricePoint, error)

	// GetSeries retrieves the day-keyed price series for an asset within
	// [startDay, endDay] (inclusive, "2006-01-02" keys).
	GetSeries(ctx context.Context, asset, startDay, endDay string) (domain.PriceSeries, error)
}
