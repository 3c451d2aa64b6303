package reporting

import (
	"fmt"
	"strings"
)

// RenderDailyPnLCSV renders the cumulative daily P&L series as CSV string.
func RenderDailyPnLCSV(rows []DailyPnLRow) string {
	var sb strings.Builder

	sb.WriteString("date,cumulative_pnl\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%s,%.6f\n", row.Date, row.Pnl))
	}

	return sb.String()
}

// RenderWhatIfCSV renders the counterfactual comparisons as CSV string.
func RenderWhatIfCSV(rows []WhatIfRow) string {
	var sb strings.Builder

	sb.WriteString("asset,invested_amount,total_value,pnl,pnl_percent\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f,%.6f\n",
			row.Asset,
			row.InvestedAmount,
			row.TotalValue,
			row.Pnl,
			row.PnlPercent,
		))
	}

	return sb.String()
}
