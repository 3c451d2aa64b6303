package memory

import (
	"context"
	"errors"
	"testing"

	"trading-wrapped/internal/domain"
	"trading-wrapped/internal/storage"
)

func snap(address string, computedAt int64, trades int) *domain.ResultSnapshot {
	return &domain.ResultSnapshot{
		Address:     address,
		ComputedAt:  computedAt,
		Stats:       &domain.Stats{TotalTrades: trades},
		Personality: domain.Personality{ID: "PAPER_HANDS"},
	}
}

func TestSnapshotStore_InsertAndGetLatest(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	if err := store.Insert(ctx, snap("0xabc", 1000, 5)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, snap("0xabc", 2000, 9)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	latest, err := store.GetLatest(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if latest.ComputedAt != 2000 || latest.Stats.TotalTrades != 9 {
		t.Errorf("Expected latest snapshot at 2000 with 9 trades, got %+v", latest)
	}
}

func TestSnapshotStore_GetLatestNotFound(t *testing.T) {
	store := NewSnapshotStore()

	_, err := store.GetLatest(context.Background(), "0xmissing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotStore_DuplicateKey(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	if err := store.Insert(ctx, snap("0xabc", 1000, 5)); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, snap("0xabc", 1000, 7))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestSnapshotStore_InvalidInput(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, &domain.ResultSnapshot{Address: "0xabc"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for missing stats, got %v", err)
	}
	if err := store.Insert(ctx, &domain.ResultSnapshot{Stats: &domain.Stats{}}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for missing address, got %v", err)
	}
}

func TestSnapshotStore_GetByAddressOrdered(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	// Inserted out of order.
	for _, ts := range []int64{3000, 1000, 2000} {
		if err := store.Insert(ctx, snap("0xabc", ts, 1)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if err := store.Insert(ctx, snap("0xother", 500, 1)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := store.GetByAddress(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("Expected 3 snapshots, got %d", len(result))
	}
	for i := 1; i < len(result); i++ {
		if result[i].ComputedAt < result[i-1].ComputedAt {
			t.Errorf("Snapshots not ordered by computed_at ASC: %v", result)
		}
	}
}

func TestSnapshotStore_InsertCopiesValue(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	original := snap("0xabc", 1000, 5)
	if err := store.Insert(ctx, original); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	original.Address = "mutated"

	got, err := store.GetLatest(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if got.Address != "0xabc" {
		t.Errorf("Store exposed caller mutation: %+v", got)
	}
}
