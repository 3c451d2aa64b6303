package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"trading-wrapped/internal/domain"
	"trading-wrapped/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ResultSnapshot // keyed by (address, computed_at)
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		data: make(map[string]*domain.ResultSnapshot),
	}
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

func snapshotKey(address string, computedAt int64) string {
	return fmt.Sprintf("%s|%d", address, computedAt)
}

// Insert adds a new snapshot. Returns ErrDuplicateKey if (address, computed_at) exists.
func (s *SnapshotStore) Insert(_ context.Context, snap *domain.ResultSnapshot) error {
	if snap == nil || snap.Address == "" || snap.Stats == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := snapshotKey(snap.Address, snap.ComputedAt)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	snapCopy := *snap
	s.data[key] = &snapCopy
	return nil
}

// GetLatest retrieves the most recent snapshot for an address.
func (s *SnapshotStore) GetLatest(_ context.Context, address string) (*domain.ResultSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.ResultSnapshot
	for _, snap := range s.data {
		if snap.Address != address {
			continue
		}
		if latest == nil || snap.ComputedAt > latest.ComputedAt {
			latest = snap
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}

	snapCopy := *latest
	return &snapCopy, nil
}

// GetByAddress retrieves all snapshots for an address, ordered by computed_at ASC.
func (s *SnapshotStore) GetByAddress(_ context.Context, address string) ([]*domain.ResultSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ResultSnapshot
	for _, snap := range s.data {
		if snap.Address == address {
			snapCopy := *snap
			result = append(result, &snapCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ComputedAt < result[j].ComputedAt
	})

	return result, nil
}
