// Package wrapped orchestrates a full wallet analysis: fetch history and
// reference prices, compute stats and counterfactuals, assign the
// personality, and persist the result.
package wrapped

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"trading-wrapped/internal/analytics"
	"trading-wrapped/internal/domain"
	"trading-wrapped/internal/hyperliquid"
	"trading-wrapped/internal/observability"
	"trading-wrapped/internal/personality"
	"trading-wrapped/internal/prices"
	"trading-wrapped/internal/share"
	"trading-wrapped/internal/storage"
	"trading-wrapped/internal/whatif"
)

// DefaultPriceDays is the reference price window requested per asset.
// A year of history plus slack for the lookback resolver.
const DefaultPriceDays = 400

// comparisonAssets is the fixed set of priced counterfactual assets.
// Savings needs no price series.
var comparisonAssets = []string{
	whatif.AssetBtc,
	whatif.AssetEth,
	whatif.AssetSol,
	whatif.AssetSpy,
}

// Service coordinates the analysis pipeline.
type Service struct {
	venue      hyperliquid.Venue
	prices     prices.Source
	snapshots  storage.SnapshotStore // optional, nil disables persistence
	priceStore storage.PriceStore    // optional, nil disables price warm-up
	now        func() time.Time
	priceDays  int
	logger     *log.Logger
}

// Options for creating Service.
type Options struct {
	// Required
	Venue  hyperliquid.Venue
	Prices prices.Source

	// Optional
	Snapshots  storage.SnapshotStore
	PriceStore storage.PriceStore
	Now        func() time.Time // Injectable clock for deterministic output
	PriceDays  int
	Logger     *log.Logger
}

// New creates a new Service.
func New(opts Options) *Service {
	s := &Service{
		venue:      opts.Venue,
		prices:     opts.Prices,
		snapshots:  opts.Snapshots,
		priceStore: opts.PriceStore,
		now:        opts.Now,
		priceDays:  opts.PriceDays,
		logger:     opts.Logger,
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.priceDays <= 0 {
		s.priceDays = DefaultPriceDays
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// Analyze runs the full pipeline for one wallet. loc shifts the
// hour-of-day buckets to the caller's timezone; nil means UTC. The result
// is persisted best-effort when a snapshot store is configured.
func (s *Service) Analyze(ctx context.Context, address string, loc *time.Location) (*domain.ResultSnapshot, error) {
	started := s.now()

	if err := hyperliquid.ValidateAddress(address); err != nil {
		observability.RecordAnalysis("invalid_address", 0)
		return nil, err
	}

	fills, ledger, priceSeries, err := s.fetchInputs(ctx, address)
	if err != nil {
		observability.RecordAnalysis("fetch_error", s.now().Sub(started).Seconds())
		return nil, err
	}

	// The aggregator and the simulator are independent: the simulator only
	// needs the ledger and reference prices.
	var (
		engines   sync.WaitGroup
		stats     *domain.Stats
		scenarios *domain.WhatIfScenarios
	)
	engines.Add(2)
	go func() {
		defer engines.Done()
		stats = analytics.Analyze(fills, ledger, analytics.Options{Location: loc})
	}()
	go func() {
		defer engines.Done()
		scenarios = whatif.Scenarios(ledger, priceSeries, whatif.Options{Now: s.now()})
	}()
	engines.Wait()
	stats.WhatIf = scenarios

	p := personality.Classify(stats)
	observability.RecordPersonality(p.ID)

	snapshot := &domain.ResultSnapshot{
		Address:     address,
		ComputedAt:  s.now().UnixMilli(),
		Stats:       stats,
		Personality: p,
	}

	s.persist(ctx, snapshot)

	observability.RecordAnalysis("ok", s.now().Sub(started).Seconds())
	observability.DefaultMetrics.LastSuccessfulAnalysis.Set(float64(s.now().Unix()))
	return snapshot, nil
}

// fetchInputs loads fills, ledger, and all reference price series
// concurrently. Venue failures abort the analysis; price source failures
// degrade that asset to an empty series.
func (s *Service) fetchInputs(ctx context.Context, address string) ([]*domain.Fill, []*domain.LedgerEntry, map[string]domain.PriceSeries, error) {
	var (
		wg     sync.WaitGroup
		fills  []*domain.Fill
		ledger []*domain.LedgerEntry

		fillsErr  error
		ledgerErr error

		seriesMu sync.Mutex
		series   = make(map[string]domain.PriceSeries, len(comparisonAssets))
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		started := time.Now()
		fills, fillsErr = s.venue.UserFills(ctx, address)
		observability.RecordVenueRequest("userFills", statusOf(fillsErr), time.Since(started).Seconds())
		if fillsErr == nil {
			observability.RecordFillsFetched(len(fills))
		}
	}()
	go func() {
		defer wg.Done()
		started := time.Now()
		ledger, ledgerErr = s.venue.UserLedger(ctx, address)
		observability.RecordVenueRequest("userLedger", statusOf(ledgerErr), time.Since(started).Seconds())
		if ledgerErr == nil {
			observability.RecordLedgerEntriesFetched(len(ledger))
		}
	}()

	for _, asset := range comparisonAssets {
		wg.Add(1)
		go func(asset string) {
			defer wg.Done()
			ps, err := s.prices.DailyPrices(ctx, asset, s.priceDays)
			observability.RecordPriceFetch(asset, statusOf(err))
			if err != nil {
				s.logger.Printf("price fetch for %s failed, comparison degraded: %v", asset, err)
				ps = domain.PriceSeries{}
			}
			seriesMu.Lock()
			series[asset] = ps
			seriesMu.Unlock()
		}(asset)
	}

	wg.Wait()

	if fillsErr != nil {
		return nil, nil, nil, fmt.Errorf("fetch fills: %w", fillsErr)
	}
	if ledgerErr != nil {
		return nil, nil, nil, fmt.Errorf("fetch ledger: %w", ledgerErr)
	}

	s.warmPriceStore(ctx, series)

	return fills, ledger, series, nil
}

// warmPriceStore persists fetched series so later runs can serve from
// storage. Failures are logged, never surfaced.
func (s *Service) warmPriceStore(ctx context.Context, series map[string]domain.PriceSeries) {
	if s.priceStore == nil {
		return
	}
	for asset, ps := range series {
		if err := prices.Persist(ctx, s.priceStore, asset, ps); err != nil {
			s.logger.Printf("persist %s prices failed: %v", asset, err)
		}
	}
}

// persist writes the snapshot best-effort. Duplicate (address, computed_at)
// means an identical rerun within the same millisecond; not worth failing.
func (s *Service) persist(ctx context.Context, snapshot *domain.ResultSnapshot) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Insert(ctx, snapshot); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		s.logger.Printf("persist snapshot for %s failed: %v", snapshot.Address, err)
	}
}

// Latest returns the most recent persisted snapshot for an address.
// Returns storage.ErrNotFound when there is none or persistence is off.
func (s *Service) Latest(ctx context.Context, address string) (*domain.ResultSnapshot, error) {
	if s.snapshots == nil {
		return nil, storage.ErrNotFound
	}
	if err := hyperliquid.ValidateAddress(address); err != nil {
		return nil, err
	}
	return s.snapshots.GetLatest(ctx, address)
}

// Share encodes a snapshot into a URL-safe share token.
func (s *Service) Share(snapshot *domain.ResultSnapshot, slide share.Slide) (string, error) {
	if snapshot == nil {
		return "", share.ErrEmptySnapshot
	}
	token, err := share.Encode(&share.Snapshot{
		Stats:       snapshot.Stats,
		Personality: snapshot.Personality,
		Slide:       slide,
	})
	if err != nil {
		return "", err
	}
	observability.RecordShareEncoded()
	return token, nil
}

// DecodeShare decodes a share token back into its frozen snapshot.
func (s *Service) DecodeShare(token string) (*share.Snapshot, error) {
	snapshot, err := share.Decode(token)
	observability.RecordShareDecoded(statusOf(err))
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
