// Package whatif runs counterfactual simulations over a wallet's ledger:
// what the account would be worth had every deposit bought a reference
// asset, or sat in an interest-bearing account, instead of being traded.
package whatif

import (
	"sort"
	"strconv"
	"time"

	"trading-wrapped/internal/domain"
	"trading-wrapped/internal/lookup"
)

// DefaultSavingsAPY is the annual yield used by the savings scenario.
const DefaultSavingsAPY = 0.05

// Reference assets simulated in every scenario bundle.
const (
	AssetBtc = "btc"
	AssetEth = "eth"
	AssetSol = "sol"
	AssetSpy = "spy"
)

// Options configures a simulation run.
type Options struct {
	// Now bounds the simulated day range. Zero means time.Now().
	Now time.Time

	// SavingsAPY overrides the savings scenario yield. Zero means
	// DefaultSavingsAPY.
	SavingsAPY float64
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

func (o Options) apy() float64 {
	if o.SavingsAPY == 0 {
		return DefaultSavingsAPY
	}
	return o.SavingsAPY
}

// ledgerEvent is a ledger entry whose delta parsed successfully.
type ledgerEvent struct {
	day    string
	amount float64
}

// parseLedger drops entries with unparseable deltas and returns the rest
// sorted ascending by time, reduced to (UTC day, amount).
func parseLedger(ledger []*domain.LedgerEntry) []ledgerEvent {
	sorted := make([]*domain.LedgerEntry, len(ledger))
	copy(sorted, ledger)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})

	events := make([]ledgerEvent, 0, len(sorted))
	for _, e := range sorted {
		amount, err := strconv.ParseFloat(e.Delta.Usdc, 64)
		if err != nil {
			continue
		}
		events = append(events, ledgerEvent{day: lookup.Day(e.Time), amount: amount})
	}
	return events
}

// firstDay returns UTC midnight of the earliest valid ledger event.
func firstDay(ledger []*domain.LedgerEntry) (time.Time, bool) {
	var earliest int64 = -1
	for _, e := range ledger {
		if _, err := strconv.ParseFloat(e.Delta.Usdc, 64); err != nil {
			continue
		}
		if earliest < 0 || e.Time < earliest {
			earliest = e.Time
		}
	}
	if earliest < 0 {
		return time.Time{}, false
	}
	return lookup.DayStart(earliest), true
}

// Asset simulates buying the reference asset with every positive ledger
// delta and selling with every negative one, stepping one UTC day at a
// time from the first ledger event to now.
//
// Days with no resolvable price (exact or 7-day carry-forward) leave
// holdings unchanged but still accumulate investedAmount. Valuation uses
// the last price that ever resolved, or zero before the first one.
func Asset(ledger []*domain.LedgerEntry, prices domain.PriceSeries, opts Options) domain.WhatIfResult {
	start, ok := firstDay(ledger)
	if !ok {
		return domain.WhatIfResult{}
	}
	end := lookup.DayStart(opts.now().UnixMilli())

	events := parseLedger(ledger)

	var (
		holdings  float64
		invested  float64
		lastPrice float64
		history   []domain.ValuePoint
		idx       int
	)

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(lookup.DayFormat)

		price, err := lookup.PriceOn(prices, day, lookup.MaxLookbackDays)
		resolved := err == nil
		if resolved {
			lastPrice = price
		}

		for idx < len(events) && events[idx].day <= key {
			e := events[idx]
			idx++
			if e.day != key || e.amount == 0 {
				continue
			}
			if resolved {
				holdings += e.amount / price
			}
			invested += e.amount
		}

		history = append(history, domain.ValuePoint{Date: key, Value: holdings * lastPrice})
	}

	return finish(invested, history)
}

// Savings simulates an interest-bearing cash account: the balance
// compounds daily at apy/365 before that day's ledger deltas apply.
func Savings(ledger []*domain.LedgerEntry, opts Options) domain.WhatIfResult {
	start, ok := firstDay(ledger)
	if !ok {
		return domain.WhatIfResult{}
	}
	end := lookup.DayStart(opts.now().UnixMilli())

	events := parseLedger(ledger)
	dailyRate := opts.apy() / 365

	var (
		balance  float64
		invested float64
		history  []domain.ValuePoint
		idx      int
	)

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(lookup.DayFormat)

		balance += balance * dailyRate

		for idx < len(events) && events[idx].day <= key {
			e := events[idx]
			idx++
			if e.day != key {
				continue
			}
			balance += e.amount
			invested += e.amount
		}

		history = append(history, domain.ValuePoint{Date: key, Value: balance})
	}

	return finish(invested, history)
}

// Scenarios runs the full counterfactual bundle against per-asset daily
// price series. Missing series still produce a result: investedAmount
// accumulates while value stays zero.
func Scenarios(ledger []*domain.LedgerEntry, prices map[string]domain.PriceSeries, opts Options) *domain.WhatIfScenarios {
	return &domain.WhatIfScenarios{
		Btc:     Asset(ledger, prices[AssetBtc], opts),
		Eth:     Asset(ledger, prices[AssetEth], opts),
		Sol:     Asset(ledger, prices[AssetSol], opts),
		Spy:     Asset(ledger, prices[AssetSpy], opts),
		Savings: Savings(ledger, opts),
	}
}

// finish derives the scalar outcome from the accumulated history.
// Percentage return is undefined with no capital base, so pnlPercent is
// zero when investedAmount is zero.
func finish(invested float64, history []domain.ValuePoint) domain.WhatIfResult {
	var final float64
	if len(history) > 0 {
		final = history[len(history)-1].Value
	}
	pnl := final - invested

	var pct float64
	if invested != 0 {
		pct = pnl / invested * 100
	}

	return domain.WhatIfResult{
		TotalValue:     final,
		InvestedAmount: invested,
		Pnl:            pnl,
		PnlPercent:     pct,
		History:        history,
	}
}
