// Package analytics reduces a wallet's raw trade fills into summary
// statistics. Analyze is a pure function: identical inputs always produce
// identical output, and absent or malformed data degrades to zero/nil
// fields instead of errors.
package analytics

import (
	"sort"
	"strconv"
	"time"

	"trading-wrapped/internal/domain"
	"trading-wrapped/internal/lookup"
)

// Behavioral thresholds. Product-defined constants, not tunable.
const (
	// revengeWindowMs is the maximum gap after a losing fill for the next
	// fill to count as a revenge trade.
	revengeWindowMs = 5 * 60 * 1000

	// Late-night window: hour in [0, 5).
	lateNightEndHour = 5

	// Degen score blend weights.
	degenLateNightWeight = 0.6
	degenCoinWeight      = 0.4

	dayMs = 24 * 60 * 60 * 1000
)

// degenCoins is the fixed closed set of high-volatility meme instruments.
var degenCoins = map[string]struct{}{
	"PEPE":                       {},
	"DOGE":                       {},
	"WIF":                        {},
	"BONK":                       {},
	"SHIB":                       {},
	"MEME":                       {},
	"TRUMP":                      {},
	"POPCAT":                     {},
	"MOG":                        {},
	"HarryPotterObamaSonic10Inu": {},
}

// Options configures the aggregation pass.
type Options struct {
	// Location is the time zone used for hour-of-day bucketing (late-night
	// detection, worst hour). Nil means UTC. Daily P&L bucketing always
	// uses UTC regardless of this setting.
	Location *time.Location
}

// parsedFill is a fill whose numeric fields parsed successfully.
type parsedFill struct {
	fill *domain.Fill
	pnl  float64
	fee  float64
	sz   float64
	px   float64
}

// Analyze reduces fills and ledger entries into Stats. Fills with an
// unparseable numeric field are skipped entirely: they count toward no
// total and no bucket. The WhatIf field is left nil; the caller merges the
// counterfactual bundle, which depends only on the ledger.
func Analyze(fills []*domain.Fill, ledger []*domain.LedgerEntry, opts Options) *domain.Stats {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	stats := &domain.Stats{}
	stats.TotalDeposits, stats.FirstDepositDate = sumDeposits(ledger)

	sorted := parseAndSort(fills)
	n := len(sorted)
	if n == 0 {
		return stats
	}

	firstTime := sorted[0].fill.Time
	lastTime := sorted[n-1].fill.Time

	var (
		totalPnL    float64
		totalFees   float64
		totalVolume float64
		wins        int

		biggestWin  = domain.ExtremeTrade{Amount: sorted[0].pnl, Coin: sorted[0].fill.Coin, Side: sorted[0].fill.Side}
		biggestLoss = biggestWin

		coinPnL   = make(map[string]float64)
		coinOrder []string

		hourPnL [24]float64
		hourHit [24]bool

		monthPnL   = make(map[string]float64)
		monthOrder []string

		dayDelta = make(map[string]float64)

		lateNight  int
		degenCount int
		revenge    int
	)

	for i, t := range sorted {
		totalPnL += t.pnl
		totalFees += t.fee
		totalVolume += t.sz * t.px

		if t.pnl > 0 {
			wins++
		}
		if t.pnl > biggestWin.Amount {
			biggestWin = domain.ExtremeTrade{Amount: t.pnl, Coin: t.fill.Coin, Side: t.fill.Side}
		}
		if t.pnl < biggestLoss.Amount {
			biggestLoss = domain.ExtremeTrade{Amount: t.pnl, Coin: t.fill.Coin, Side: t.fill.Side}
		}

		if _, seen := coinPnL[t.fill.Coin]; !seen {
			coinOrder = append(coinOrder, t.fill.Coin)
		}
		coinPnL[t.fill.Coin] += t.pnl

		hour := time.UnixMilli(t.fill.Time).In(loc).Hour()
		hourPnL[hour] += t.pnl
		hourHit[hour] = true
		if hour < lateNightEndHour {
			lateNight++
		}

		month := time.UnixMilli(t.fill.Time).In(loc).Format("2006-01")
		if _, seen := monthPnL[month]; !seen {
			monthOrder = append(monthOrder, month)
		}
		monthPnL[month] += t.pnl

		dayDelta[lookup.Day(t.fill.Time)] += t.pnl

		if _, ok := degenCoins[t.fill.Coin]; ok {
			degenCount++
		}

		// Revenge trade: previous fill lost and this one came within the
		// window. Strictly pairwise; the first loss is never revenge.
		if i > 0 {
			prev := sorted[i-1]
			if prev.pnl < 0 && t.fill.Time-prev.fill.Time < revengeWindowMs {
				revenge++
			}
		}
	}

	fn := float64(n)
	lateNightPct := float64(lateNight) / fn * 100
	degenCoinPct := float64(degenCount) / fn * 100

	degenScore := lateNightPct*degenLateNightWeight + degenCoinPct*degenCoinWeight
	if degenScore > 100 {
		degenScore = 100
	}

	// Guard against a near-zero span inflating the divisor below one day.
	tradingDays := float64(lastTime-firstTime) / dayMs
	if tradingDays < 1 {
		tradingDays = 1
	}

	stats.TotalTrades = n
	stats.TotalPnL = totalPnL
	stats.WinRate = float64(wins) / fn * 100
	stats.TotalFees = totalFees
	stats.DegenScore = degenScore
	stats.RevengeTradingScore = float64(revenge) / fn * 100
	stats.TradesPerDay = fn / tradingDays
	stats.LateNightTradePercent = lateNightPct
	stats.AveragePositionSize = totalVolume / fn
	stats.BiggestWin = &biggestWin
	stats.BiggestLoss = &biggestLoss
	stats.CursedCoin, stats.LuckyCoin = coinExtremes(coinOrder, coinPnL)
	stats.WorstHour = worstHour(hourPnL, hourHit)
	stats.BestMonth, stats.WorstMonth = monthExtremes(monthOrder, monthPnL)
	stats.DailyPnL = cumulativeDaily(dayDelta, firstTime, lastTime)

	return stats
}

// parseAndSort parses numeric fields and sorts valid fills ascending by
// (Time, Tid). Fills with any unparseable numeric field are dropped. The
// input slice is never modified.
func parseAndSort(fills []*domain.Fill) []parsedFill {
	valid := make([]parsedFill, 0, len(fills))
	for _, f := range fills {
		pnl, err1 := strconv.ParseFloat(f.ClosedPnl, 64)
		fee, err2 := strconv.ParseFloat(f.Fee, 64)
		sz, err3 := strconv.ParseFloat(f.Sz, 64)
		px, err4 := strconv.ParseFloat(f.Px, 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		valid = append(valid, parsedFill{fill: f, pnl: pnl, fee: fee, sz: sz, px: px})
	}

	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].fill.Time != valid[j].fill.Time {
			return valid[i].fill.Time < valid[j].fill.Time
		}
		return valid[i].fill.Tid < valid[j].fill.Tid
	})

	return valid
}

// coinExtremes returns the lowest and highest cumulative P&L coins.
// Ties resolve to the coin seen first in fill order.
func coinExtremes(order []string, pnl map[string]float64) (cursed, lucky *domain.CoinStat) {
	for _, coin := range order {
		p := pnl[coin]
		if cursed == nil || p < cursed.Pnl {
			cursed = &domain.CoinStat{Coin: coin, Pnl: p}
		}
		if lucky == nil || p > lucky.Pnl {
			lucky = &domain.CoinStat{Coin: coin, Pnl: p}
		}
	}
	return cursed, lucky
}

// worstHour returns the traded hour bucket with the lowest cumulative P&L.
// Ties resolve to the earliest hour.
func worstHour(pnl [24]float64, hit [24]bool) *domain.HourStat {
	var worst *domain.HourStat
	for h := 0; h < 24; h++ {
		if !hit[h] {
			continue
		}
		if worst == nil || pnl[h] < worst.Pnl {
			worst = &domain.HourStat{Hour: h, Pnl: pnl[h]}
		}
	}
	return worst
}

// monthExtremes returns the highest and lowest cumulative P&L months.
// Ties resolve to the month seen first in fill order.
func monthExtremes(order []string, pnl map[string]float64) (best, worst *domain.MonthStat) {
	for _, m := range order {
		p := pnl[m]
		if best == nil || p > best.Pnl {
			best = &domain.MonthStat{Month: m, Pnl: p}
		}
		if worst == nil || p < worst.Pnl {
			worst = &domain.MonthStat{Month: m, Pnl: p}
		}
	}
	return best, worst
}

// cumulativeDaily walks every UTC calendar day from the first to the last
// trading day inclusive, filling gaps with zero delta, and accumulates a
// running P&L sum. The result is gapless and strictly increasing in date.
func cumulativeDaily(delta map[string]float64, firstMs, lastMs int64) []domain.DailyPnLPoint {
	start := lookup.DayStart(firstMs)
	end := lookup.DayStart(lastMs)

	var series []domain.DailyPnLPoint
	cumulative := 0.0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(lookup.DayFormat)
		cumulative += delta[key]
		series = append(series, domain.DailyPnLPoint{Date: key, Pnl: cumulative})
	}
	return series
}

// sumDeposits totals parseable positive ledger deltas and returns the UTC
// date of the earliest one.
func sumDeposits(ledger []*domain.LedgerEntry) (total float64, firstDate string) {
	var firstMs int64 = -1
	for _, e := range ledger {
		amount, err := strconv.ParseFloat(e.Delta.Usdc, 64)
		if err != nil || amount <= 0 {
			continue
		}
		total += amount
		if firstMs < 0 || e.Time < firstMs {
			firstMs = e.Time
		}
	}
	if firstMs >= 0 {
		firstDate = lookup.Day(firstMs)
	}
	return total, firstDate
}
