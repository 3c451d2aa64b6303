package domain

// PriceSeries is a sparse mapping from UTC calendar date ("2006-01-02") to a
// single reference price for one asset. Days with no data are simply absent;
// consumers resolve gaps with bounded backward lookup.
type PriceSeries map[string]float64

// PricePoint is one persisted daily price observation.
// Corresponds to the daily_prices table in ClickHouse.
type PricePoint struct {
	Asset string  // comparison asset identifier, e.g. "bitcoin", "spy"
	Day   string  // UTC calendar date, "2006-01-02"
	Price float64 // reference price in USD
}

// Series converts a slice of persisted points into a PriceSeries.
// Later points win on duplicate days, matching last-price-of-day semantics.
func Series(points []*PricePoint) PriceSeries {
	s := make(PriceSeries, len(points))
	for _, p := range points {
		s[p.Day] = p.Price
	}
	return s
}
