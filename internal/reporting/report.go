package reporting

import "time"

// Report is the renderable year-in-review for one wallet. It follows the
// card order of the interactive flow: volume first, extremes, behavior
// scores, timing, the counterfactual comparisons, then the personality
// reveal.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Address     string
	ComputedAt  int64 // Unix ms of the underlying analysis

	// Overview
	Overview OverviewSection

	// Extreme trades and coins
	Extremes ExtremesSection

	// Behavior scores
	Behavior BehaviorSection

	// Timing breakdowns
	Timing TimingSection

	// Daily cumulative P&L series
	DailyPnL []DailyPnLRow

	// Counterfactual comparisons, one row per reference asset
	WhatIf []WhatIfRow

	// Personality reveal
	PersonalityID          string
	PersonalityName        string
	PersonalityEmoji       string
	PersonalityDescription string
}

// OverviewSection contains headline volume and performance numbers.
type OverviewSection struct {
	TotalTrades         int
	TotalPnL            float64
	WinRate             float64 // percent
	TotalFees           float64
	TradesPerDay        float64
	AveragePositionSize float64
	TotalDeposits       float64
	FirstDepositDate    string // "2006-01-02", empty if none
}

// ExtremesSection contains the best and worst single trades and coins.
// String fields are empty and numbers zero when the wallet has no trades.
type ExtremesSection struct {
	BiggestWinAmount  float64
	BiggestWinCoin    string
	BiggestLossAmount float64
	BiggestLossCoin   string
	CursedCoin        string
	CursedCoinPnL     float64
	LuckyCoin         string
	LuckyCoinPnL      float64
}

// BehaviorSection contains the three behavioral scores.
type BehaviorSection struct {
	DegenScore            float64 // [0,100]
	RevengeTradingScore   float64 // percent of trades
	LateNightTradePercent float64
}

// TimingSection contains the hour and month breakdowns. HasWorstHour is
// false when the wallet has no trades; the month strings are then empty.
type TimingSection struct {
	HasWorstHour  bool
	WorstHour     int // 0-23
	WorstHourPnL  float64
	BestMonth     string // "2006-01"
	BestMonthPnL  float64
	WorstMonth    string
	WorstMonthPnL float64
}

// DailyPnLRow is one day of the cumulative P&L series.
type DailyPnLRow struct {
	Date string // "2006-01-02"
	Pnl  float64
}

// WhatIfRow is one counterfactual comparison.
type WhatIfRow struct {
	Asset          string // display label, e.g. "BTC", "Savings"
	InvestedAmount float64
	TotalValue     float64
	Pnl            float64
	PnlPercent     float64
}
