package reporting

import (
	"context"
	"time"

	"trading-wrapped/internal/domain"
	"trading-wrapped/internal/storage"
)

// Generator produces reports from stored analysis snapshots.
type Generator struct {
	snapshotStore storage.SnapshotStore
	now           func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(snapshotStore storage.SnapshotStore) *Generator {
	return &Generator{
		snapshotStore: snapshotStore,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate loads the latest snapshot for an address and builds its report.
// Returns storage.ErrNotFound when the address was never analyzed.
func (g *Generator) Generate(ctx context.Context, address string) (*Report, error) {
	snapshot, err := g.snapshotStore.GetLatest(ctx, address)
	if err != nil {
		return nil, err
	}
	return g.Build(snapshot), nil
}

// Build turns a snapshot into a renderable report. Nil stats produce an
// all-zero report rather than a panic.
func (g *Generator) Build(snapshot *domain.ResultSnapshot) *Report {
	r := &Report{
		GeneratedAt:            g.now(),
		Address:                snapshot.Address,
		ComputedAt:             snapshot.ComputedAt,
		PersonalityID:          snapshot.Personality.ID,
		PersonalityName:        snapshot.Personality.Name,
		PersonalityEmoji:       snapshot.Personality.Emoji,
		PersonalityDescription: snapshot.Personality.Description,
	}

	stats := snapshot.Stats
	if stats == nil {
		return r
	}

	r.Overview = OverviewSection{
		TotalTrades:         stats.TotalTrades,
		TotalPnL:            stats.TotalPnL,
		WinRate:             stats.WinRate,
		TotalFees:           stats.TotalFees,
		TradesPerDay:        stats.TradesPerDay,
		AveragePositionSize: stats.AveragePositionSize,
		TotalDeposits:       stats.TotalDeposits,
		FirstDepositDate:    stats.FirstDepositDate,
	}

	r.Behavior = BehaviorSection{
		DegenScore:            stats.DegenScore,
		RevengeTradingScore:   stats.RevengeTradingScore,
		LateNightTradePercent: stats.LateNightTradePercent,
	}

	if stats.BiggestWin != nil {
		r.Extremes.BiggestWinAmount = stats.BiggestWin.Amount
		r.Extremes.BiggestWinCoin = stats.BiggestWin.Coin
	}
	if stats.BiggestLoss != nil {
		r.Extremes.BiggestLossAmount = stats.BiggestLoss.Amount
		r.Extremes.BiggestLossCoin = stats.BiggestLoss.Coin
	}
	if stats.CursedCoin != nil {
		r.Extremes.CursedCoin = stats.CursedCoin.Coin
		r.Extremes.CursedCoinPnL = stats.CursedCoin.Pnl
	}
	if stats.LuckyCoin != nil {
		r.Extremes.LuckyCoin = stats.LuckyCoin.Coin
		r.Extremes.LuckyCoinPnL = stats.LuckyCoin.Pnl
	}

	if stats.WorstHour != nil {
		r.Timing.HasWorstHour = true
		r.Timing.WorstHour = stats.WorstHour.Hour
		r.Timing.WorstHourPnL = stats.WorstHour.Pnl
	}
	if stats.BestMonth != nil {
		r.Timing.BestMonth = stats.BestMonth.Month
		r.Timing.BestMonthPnL = stats.BestMonth.Pnl
	}
	if stats.WorstMonth != nil {
		r.Timing.WorstMonth = stats.WorstMonth.Month
		r.Timing.WorstMonthPnL = stats.WorstMonth.Pnl
	}

	r.DailyPnL = make([]DailyPnLRow, len(stats.DailyPnL))
	for i, p := range stats.DailyPnL {
		r.DailyPnL[i] = DailyPnLRow{Date: p.Date, Pnl: p.Pnl}
	}

	if stats.WhatIf != nil {
		r.WhatIf = []WhatIfRow{
			whatIfRow("BTC", stats.WhatIf.Btc),
			whatIfRow("ETH", stats.WhatIf.Eth),
			whatIfRow("SOL", stats.WhatIf.Sol),
			whatIfRow("S&P 500", stats.WhatIf.Spy),
			whatIfRow("Savings", stats.WhatIf.Savings),
		}
	}

	return r
}

func whatIfRow(label string, result domain.WhatIfResult) WhatIfRow {
	return WhatIfRow{
		Asset:          label,
		InvestedAmount: result.InvestedAmount,
		TotalValue:     result.TotalValue,
		Pnl:            result.Pnl,
		PnlPercent:     result.PnlPercent,
	}
}
