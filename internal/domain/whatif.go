package domain

// WhatIfResult is the outcome of one counterfactual simulation: what the
// wallet would be worth had every ledger movement bought or sold the
// reference asset instead.
type WhatIfResult struct {
	TotalValue     float64      `json:"totalValue"`     // final portfolio value, always >= 0
	InvestedAmount float64      `json:"investedAmount"` // net USD moved in; negative when withdrawals exceed deposits
	Pnl            float64      `json:"pnl"`
	PnlPercent     float64      `json:"pnlPercent"` // 0 when InvestedAmount == 0
	History        []ValuePoint `json:"history"`
}

// ValuePoint is one day of a simulated value history.
type ValuePoint struct {
	Date  string  `json:"date"` // UTC calendar date, "2006-01-02"
	Value float64 `json:"value"`
}

// WhatIfScenarios bundles the fixed set of counterfactual comparisons.
type WhatIfScenarios struct {
	Btc     WhatIfResult `json:"btc"`
	Eth     WhatIfResult `json:"eth"`
	Sol     WhatIfResult `json:"sol"`
	Spy     WhatIfResult `json:"spy"`
	Savings WhatIfResult `json:"savings"`
}
