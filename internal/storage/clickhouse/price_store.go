package clickhouse

import (
	"context"
	"fmt"

	"trading-wrapped/internal/domain"
	"trading-wrapped/internal/storage"
)

// PriceStore implements storage.PriceStore using ClickHouse. MergeTree does
// not enforce uniqueness, so duplicate detection happens with explicit
// existence checks before insert.
type PriceStore struct {
	conn *Conn
}

// NewPriceStore creates a new PriceStore.
func NewPriceStore(conn *Conn) *PriceStore {
	return &PriceStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceStore = (*PriceStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (asset, day).
func (s *PriceStore) InsertBulk(ctx context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		asset string
		day   string
	}
	seen := make(map[key]struct{})
	for _, p := range points {
		if p == nil || p.Asset == "" || p.Day == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.Asset, p.Day}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, p := range points {
		exists, err := s.exists(ctx, p.Asset, p.Day)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO daily_prices (asset, day, price)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(p.Asset, p.Day, p.Price); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByAsset retrieves all points for an asset, ordered by day ASC.
func (s *PriceStore) GetByAsset(ctx context.Context, asset string) ([]*domain.PricePoint, error) {
	query := `
		SELECT asset, day, price
		FROM daily_prices
		WHERE asset = ?
		ORDER BY day ASC
	`

	rows, err := s.conn.Query(ctx, query, asset)
	if err != nil {
		return nil, fmt.Errorf("query by asset: %w", err)
	}
	defer rows.Close()

	return scanPricePoints(rows)
}

// GetSeries retrieves the day-keyed price series for an asset within
// [startDay, endDay] (inclusive). Day keys are "2006-01-02" strings, so
// lexical comparison matches chronological order.
func (s *PriceStore) GetSeries(ctx context.Context, asset, startDay, endDay string) (domain.PriceSeries, error) {
	query := `
		SELECT asset, day, price
		FROM daily_prices
		WHERE asset = ? AND day >= ? AND day <= ?
		ORDER BY day ASC
	`

	rows, err := s.conn.Query(ctx, query, asset, startDay, endDay)
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	points, err := scanPricePoints(rows)
	if err != nil {
		return nil, err
	}
	return domain.Series(points), nil
}

// exists checks if a point with the given key exists.
func (s *PriceStore) exists(ctx context.Context, asset, day string) (bool, error) {
	query := `
		SELECT count(*) FROM daily_prices
		WHERE asset = ? AND day = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, asset, day).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanPricePoints scans multiple rows.
func scanPricePoints(rows chRows) ([]*domain.PricePoint, error) {
	var points []*domain.PricePoint

	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.Asset, &p.Day, &p.Price); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price rows: %w", err)
	}

	return points, nil
}
