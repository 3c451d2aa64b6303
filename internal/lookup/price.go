// Package lookup resolves reference prices against sparse daily series.
package lookup

import (
	"errors"
	"time"

	"trading-wrapped/internal/domain"
)

// DayFormat is the calendar-date key format used by all daily series.
const DayFormat = "2006-01-02"

// MaxLookbackDays is the default bounded carry-forward window for sparse
// price data.
const MaxLookbackDays = 7

// ErrNoPrice is returned when no price can be resolved for a date within
// the lookback window.
var ErrNoPrice = errors.New("no price data available")

// Day returns the UTC calendar-date key for a Unix-ms timestamp.
func Day(tsMs int64) string {
	return time.UnixMilli(tsMs).UTC().Format(DayFormat)
}

// DayStart returns UTC midnight of the day containing a Unix-ms timestamp.
func DayStart(tsMs int64) time.Time {
	t := time.UnixMilli(tsMs).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PriceOn resolves the reference price for a calendar day. An exact match
// wins; otherwise the most recent price within maxLookbackDays earlier days
// is carried forward. Returns ErrNoPrice if nothing resolves inside the
// window.
func PriceOn(series domain.PriceSeries, day time.Time, maxLookbackDays int) (float64, error) {
	if len(series) == 0 {
		return 0, ErrNoPrice
	}

	if p, ok := series[day.Format(DayFormat)]; ok && p != 0 {
		return p, nil
	}

	for i := 1; i <= maxLookbackDays; i++ {
		prev := day.AddDate(0, 0, -i)
		if p, ok := series[prev.Format(DayFormat)]; ok && p != 0 {
			return p, nil
		}
	}

	return 0, ErrNoPrice
}
