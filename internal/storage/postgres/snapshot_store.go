package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"trading-wrapped/internal/domain"
	"trading-wrapped/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using PostgreSQL. Stats
// and personality are stored as JSONB so schema changes in the result
// shape do not require migrations.
type SnapshotStore struct {
	pool *Pool
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(pool *Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Insert adds a new snapshot. Returns ErrDuplicateKey if (address, computed_at) exists.
func (s *SnapshotStore) Insert(ctx context.Context, snap *domain.ResultSnapshot) error {
	if snap == nil || snap.Address == "" || snap.Stats == nil {
		return storage.ErrInvalidInput
	}

	statsJSON, err := json.Marshal(snap.Stats)
	if err != nil {
		return fmt.Errorf("marshal snapshot stats: %w", err)
	}
	personalityJSON, err := json.Marshal(snap.Personality)
	if err != nil {
		return fmt.Errorf("marshal snapshot personality: %w", err)
	}

	query := `
		INSERT INTO result_snapshots (address, computed_at, stats, personality)
		VALUES ($1, $2, $3, $4)
	`

	_, err = s.pool.Exec(ctx, query, snap.Address, snap.ComputedAt, statsJSON, personalityJSON)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert result snapshot: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent snapshot for an address. Returns
// ErrNotFound if the address has none.
func (s *SnapshotStore) GetLatest(ctx context.Context, address string) (*domain.ResultSnapshot, error) {
	query := `
		SELECT address, computed_at, stats, personality
		FROM result_snapshots
		WHERE address = $1
		ORDER BY computed_at DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, address)
	snap, err := scanSnapshot(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}
	return snap, nil
}

// GetByAddress retrieves all snapshots for an address, ordered by computed_at ASC.
func (s *SnapshotStore) GetByAddress(ctx context.Context, address string) ([]*domain.ResultSnapshot, error) {
	query := `
		SELECT address, computed_at, stats, personality
		FROM result_snapshots
		WHERE address = $1
		ORDER BY computed_at ASC
	`

	rows, err := s.pool.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("get snapshots by address: %w", err)
	}
	defer rows.Close()

	var snapshots []*domain.ResultSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snapshots = append(snapshots, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snapshots, nil
}

// scanSnapshot scans a single row into a ResultSnapshot.
func scanSnapshot(row pgx.Row) (*domain.ResultSnapshot, error) {
	var (
		snap            domain.ResultSnapshot
		statsJSON       []byte
		personalityJSON []byte
	)

	if err := row.Scan(&snap.Address, &snap.ComputedAt, &statsJSON, &personalityJSON); err != nil {
		return nil, err
	}

	snap.Stats = &domain.Stats{}
	if err := json.Unmarshal(statsJSON, snap.Stats); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot stats: %w", err)
	}
	if err := json.Unmarshal(personalityJSON, &snap.Personality); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot personality: %w", err)
	}

	return &snap, nil
}
