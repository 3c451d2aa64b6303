package wrapped

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trading-wrapped/internal/domain"
	"trading-wrapped/internal/hyperliquid"
	"trading-wrapped/internal/hyperliquid/stub"
	"trading-wrapped/internal/share"
	"trading-wrapped/internal/storage"
	"trading-wrapped/internal/storage/memory"
)

const testAddress = "0x1234567890abcdef1234567890abcdef12345678"

// fixedSource serves one canned series for every asset. The service
// fetches assets concurrently, so call counting is locked.
type fixedSource struct {
	mu     sync.Mutex
	series domain.PriceSeries
	err    error
	assets map[string]int
}

func (s *fixedSource) DailyPrices(_ context.Context, asset string, _ int) (domain.PriceSeries, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assets == nil {
		s.assets = make(map[string]int)
	}
	s.assets[asset]++
	if s.err != nil {
		return nil, s.err
	}
	return s.series, nil
}

func (s *fixedSource) fetchCount(asset string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assets[asset]
}

func (s *fixedSource) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func testVenue() *stub.Venue {
	venue := stub.NewVenue()
	venue.AddFills(testAddress, []*domain.Fill{
		{Coin: "ETH", ClosedPnl: "100", Fee: "1", Sz: "1", Px: "2400",
			Side: "B", Time: 1717243200000, Tid: 1}, // 2024-06-01 12:00 UTC
		{Coin: "ETH", ClosedPnl: "-30", Fee: "1", Sz: "1", Px: "2400",
			Side: "A", Time: 1717329600000, Tid: 2}, // 2024-06-02 12:00 UTC
	})
	venue.AddLedger(testAddress, []*domain.LedgerEntry{
		{Time: 1717200000000, Delta: domain.LedgerDelta{Type: domain.DeltaTypeDeposit, Usdc: "1000"}},
	})
	return venue
}

func testService(venue *stub.Venue, snapshots storage.SnapshotStore) (*Service, *fixedSource) {
	src := &fixedSource{series: domain.PriceSeries{"2024-06-01": 100, "2024-06-02": 110}}
	svc := New(Options{
		Venue:     venue,
		Prices:    src,
		Snapshots: snapshots,
		Now:       func() time.Time { return time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC) },
	})
	return svc, src
}

func TestService_Analyze(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSnapshotStore()
	svc, src := testService(testVenue(), store)

	snapshot, err := svc.Analyze(ctx, testAddress, nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if snapshot.Address != testAddress {
		t.Errorf("Expected address %s, got %s", testAddress, snapshot.Address)
	}
	if snapshot.Stats == nil {
		t.Fatal("Expected stats")
	}
	if snapshot.Stats.TotalTrades != 2 {
		t.Errorf("Expected 2 trades, got %d", snapshot.Stats.TotalTrades)
	}
	if snapshot.Stats.TotalPnL != 70 {
		t.Errorf("Expected pnl 70, got %v", snapshot.Stats.TotalPnL)
	}
	if snapshot.Stats.WhatIf == nil {
		t.Fatal("Expected what-if scenarios")
	}
	if snapshot.Stats.WhatIf.Btc.InvestedAmount != 1000 {
		t.Errorf("Expected 1000 invested, got %v", snapshot.Stats.WhatIf.Btc.InvestedAmount)
	}
	if snapshot.Personality.ID == "" {
		t.Error("Expected a personality assignment")
	}

	// All four priced assets fetched exactly once.
	for _, asset := range comparisonAssets {
		if n := src.fetchCount(asset); n != 1 {
			t.Errorf("Expected 1 fetch for %s, got %d", asset, n)
		}
	}

	// Snapshot persisted.
	stored, err := store.GetLatest(ctx, testAddress)
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if stored.ComputedAt != snapshot.ComputedAt {
		t.Errorf("Expected persisted snapshot, got %+v", stored)
	}
}

func TestService_AnalyzeInvalidAddress(t *testing.T) {
	svc, _ := testService(stub.NewVenue(), nil)

	if _, err := svc.Analyze(context.Background(), "nonsense", nil); !errors.Is(err, hyperliquid.ErrInvalidAddress) {
		t.Errorf("Expected ErrInvalidAddress, got %v", err)
	}
}

func TestService_AnalyzeVenueFailure(t *testing.T) {
	venue := stub.NewVenue()
	venue.FillsErr = errors.New("venue down")
	svc, _ := testService(venue, nil)

	if _, err := svc.Analyze(context.Background(), testAddress, nil); err == nil {
		t.Fatal("Expected error when the venue fails")
	}
}

func TestService_AnalyzePriceFailureDegrades(t *testing.T) {
	svc, src := testService(testVenue(), nil)
	src.setErr(errors.New("price api down"))

	snapshot, err := svc.Analyze(context.Background(), testAddress, nil)
	if err != nil {
		t.Fatalf("Expected price failure to degrade, got %v", err)
	}
	if snapshot.Stats.WhatIf == nil {
		t.Fatal("Expected what-if scenarios")
	}
	// No prices resolved: holdings never accrue, value stays zero.
	if snapshot.Stats.WhatIf.Btc.TotalValue != 0 {
		t.Errorf("Expected zero value, got %v", snapshot.Stats.WhatIf.Btc.TotalValue)
	}
	if snapshot.Stats.WhatIf.Btc.InvestedAmount != 1000 {
		t.Errorf("Expected invested tracked, got %v", snapshot.Stats.WhatIf.Btc.InvestedAmount)
	}
	// Savings needs no price series and still compounds.
	if snapshot.Stats.WhatIf.Savings.TotalValue <= 1000 {
		t.Errorf("Expected savings to accrue interest, got %v", snapshot.Stats.WhatIf.Savings.TotalValue)
	}
}

func TestService_AnalyzeEmptyWallet(t *testing.T) {
	svc, _ := testService(stub.NewVenue(), nil)

	snapshot, err := svc.Analyze(context.Background(), testAddress, nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if snapshot.Stats.TotalTrades != 0 {
		t.Errorf("Expected 0 trades, got %d", snapshot.Stats.TotalTrades)
	}
	if snapshot.Personality.ID != "PAPER_HANDS" {
		t.Errorf("Expected PAPER_HANDS for empty wallet, got %s", snapshot.Personality.ID)
	}
}

func TestService_AnalyzeTimezoneShiftsBuckets(t *testing.T) {
	venue := stub.NewVenue()
	// 23:30 UTC = 02:30 UTC+3, late night only in the shifted zone.
	venue.AddFills(testAddress, []*domain.Fill{
		{Coin: "ETH", ClosedPnl: "10", Fee: "1", Sz: "1", Px: "2400",
			Side: "B", Time: 1717284600000, Tid: 1},
	})
	svc, _ := testService(venue, nil)

	utc, err := svc.Analyze(context.Background(), testAddress, time.UTC)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	shifted, err := svc.Analyze(context.Background(), testAddress, time.FixedZone("UTC+3", 3*3600))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if utc.Stats.LateNightTradePercent != 0 {
		t.Errorf("Expected 0%% late night in UTC, got %v", utc.Stats.LateNightTradePercent)
	}
	if shifted.Stats.LateNightTradePercent != 100 {
		t.Errorf("Expected 100%% late night in UTC+3, got %v", shifted.Stats.LateNightTradePercent)
	}
}

func TestService_WarmsPriceStore(t *testing.T) {
	ctx := context.Background()
	priceStore := memory.NewPriceStore()
	src := &fixedSource{series: domain.PriceSeries{"2024-06-01": 100}}
	svc := New(Options{
		Venue:      testVenue(),
		Prices:     src,
		PriceStore: priceStore,
	})

	if _, err := svc.Analyze(ctx, testAddress, nil); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	points, err := priceStore.GetByAsset(ctx, "btc")
	if err != nil {
		t.Fatalf("GetByAsset failed: %v", err)
	}
	if len(points) != 1 || points[0].Price != 100 {
		t.Errorf("Expected warmed price store, got %+v", points)
	}
}

func TestService_Latest(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSnapshotStore()
	svc, _ := testService(testVenue(), store)

	if _, err := svc.Latest(ctx, testAddress); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound before any analysis, got %v", err)
	}

	snapshot, err := svc.Analyze(ctx, testAddress, nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	latest, err := svc.Latest(ctx, testAddress)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.ComputedAt != snapshot.ComputedAt {
		t.Errorf("Expected latest snapshot, got %+v", latest)
	}
}

func TestService_ShareRoundTrip(t *testing.T) {
	svc, _ := testService(testVenue(), nil)

	snapshot, err := svc.Analyze(context.Background(), testAddress, nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	token, err := svc.Share(snapshot, share.SlidePnl)
	if err != nil {
		t.Fatalf("Share failed: %v", err)
	}

	decoded, err := svc.DecodeShare(token)
	if err != nil {
		t.Fatalf("DecodeShare failed: %v", err)
	}
	if decoded.Slide != share.SlidePnl {
		t.Errorf("Expected slide pnl, got %s", decoded.Slide)
	}
	if decoded.Stats.TotalTrades != snapshot.Stats.TotalTrades {
		t.Errorf("Expected frozen stats, got %+v", decoded.Stats)
	}
	if decoded.Personality.ID != snapshot.Personality.ID {
		t.Errorf("Expected frozen personality, got %+v", decoded.Personality)
	}

	if _, err := svc.DecodeShare("!!!not-base58!!!"); !errors.Is(err, share.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.Share(nil, share.SlidePnl); !errors.Is(err, share.ErrEmptySnapshot) {
		t.Errorf("Expected ErrEmptySnapshot, got %v", err)
	}
}
