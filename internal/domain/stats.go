package domain

// Stats is the trade aggregator's output: a self-contained, serializable
// summary of a wallet's trading activity plus the counterfactual bundle.
// It is a pure value recomputed from scratch on every analysis; nothing in
// it is updated incrementally.
type Stats struct {
	TotalTrades           int     `json:"totalTrades"`
	TotalPnL              float64 `json:"totalPnL"`
	WinRate               float64 `json:"winRate"` // percent, [0,100]
	TotalFees             float64 `json:"totalFees"`
	DegenScore            float64 `json:"degenScore"`          // [0,100]
	RevengeTradingScore   float64 `json:"revengeTradingScore"` // percent of trades, [0,100]
	TradesPerDay          float64 `json:"tradesPerDay"`
	LateNightTradePercent float64 `json:"lateNightTradePercent"`
	AveragePositionSize   float64 `json:"averagePositionSize"` // notional USD

	// Extrema. All four are nil exactly when TotalTrades == 0.
	BiggestWin  *ExtremeTrade `json:"biggestWin"`
	BiggestLoss *ExtremeTrade `json:"biggestLoss"`
	CursedCoin  *CoinStat     `json:"cursedCoin"`
	LuckyCoin   *CoinStat     `json:"luckyCoin"`

	WorstHour  *HourStat  `json:"worstHour"`
	BestMonth  *MonthStat `json:"bestMonth"`
	WorstMonth *MonthStat `json:"worstMonth"`

	// DailyPnL is the gapless cumulative P&L series, one point per UTC
	// calendar day from first to last trading day inclusive.
	DailyPnL []DailyPnLPoint `json:"dailyPnL"`

	TotalDeposits    float64 `json:"totalDeposits"`
	FirstDepositDate string  `json:"firstDepositDate"` // "2006-01-02", empty if no deposits

	WhatIf *WhatIfScenarios `json:"whatIf"`
}

// ExtremeTrade tags a single extreme realized P&L with its instrument.
type ExtremeTrade struct {
	Amount float64 `json:"amount"`
	Coin   string  `json:"coin"`
	Side   string  `json:"side"`
}

// CoinStat is a per-instrument cumulative P&L total.
type CoinStat struct {
	Coin string  `json:"coin"`
	Pnl  float64 `json:"pnl"`
}

// HourStat is a per-hour-of-day cumulative P&L total.
type HourStat struct {
	Hour int     `json:"hour"` // 0-23
	Pnl  float64 `json:"pnl"`
}

// MonthStat is a per-calendar-month cumulative P&L total.
type MonthStat struct {
	Month string  `json:"month"` // "2006-01"
	Pnl   float64 `json:"pnl"`
}

// DailyPnLPoint is one day of the cumulative P&L series.
type DailyPnLPoint struct {
	Date string  `json:"date"` // UTC calendar date, "2006-01-02"
	Pnl  float64 `json:"pnl"`  // cumulative realized P&L through this day
}
