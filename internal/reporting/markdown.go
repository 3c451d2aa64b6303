package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Trading Wrapped\n\n")
	sb.WriteString(fmt.Sprintf("Wallet: `%s`\n\n", r.Address))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.ComputedAt > 0 {
		sb.WriteString(fmt.Sprintf("Analyzed: %s\n\n", time.UnixMilli(r.ComputedAt).UTC().Format(time.RFC3339)))
	}

	// Overview
	sb.WriteString("## Overview\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", r.Overview.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Total P&L | %.2f |\n", r.Overview.TotalPnL))
	sb.WriteString(fmt.Sprintf("| Win Rate | %.1f%% |\n", r.Overview.WinRate))
	sb.WriteString(fmt.Sprintf("| Total Fees | %.2f |\n", r.Overview.TotalFees))
	sb.WriteString(fmt.Sprintf("| Trades / Day | %.2f |\n", r.Overview.TradesPerDay))
	sb.WriteString(fmt.Sprintf("| Avg Position Size | %.2f |\n", r.Overview.AveragePositionSize))
	sb.WriteString(fmt.Sprintf("| Total Deposits | %.2f |\n", r.Overview.TotalDeposits))
	if r.Overview.FirstDepositDate != "" {
		sb.WriteString(fmt.Sprintf("| First Deposit | %s |\n", r.Overview.FirstDepositDate))
	}
	sb.WriteString("\n")

	// Extremes
	sb.WriteString("## Highlights\n\n")
	if r.Overview.TotalTrades > 0 {
		sb.WriteString("| | Coin | P&L |\n")
		sb.WriteString("|---|------|-----|\n")
		sb.WriteString(fmt.Sprintf("| Biggest Win | %s | %.2f |\n", r.Extremes.BiggestWinCoin, r.Extremes.BiggestWinAmount))
		sb.WriteString(fmt.Sprintf("| Biggest Loss | %s | %.2f |\n", r.Extremes.BiggestLossCoin, r.Extremes.BiggestLossAmount))
		sb.WriteString(fmt.Sprintf("| Cursed Coin | %s | %.2f |\n", r.Extremes.CursedCoin, r.Extremes.CursedCoinPnL))
		sb.WriteString(fmt.Sprintf("| Lucky Coin | %s | %.2f |\n", r.Extremes.LuckyCoin, r.Extremes.LuckyCoinPnL))
	} else {
		sb.WriteString("No trades this year.\n")
	}
	sb.WriteString("\n")

	// Behavior
	sb.WriteString("## Behavior\n\n")
	sb.WriteString("| Score | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Degen Score | %.1f / 100 |\n", r.Behavior.DegenScore))
	sb.WriteString(fmt.Sprintf("| Revenge Trading | %.1f%% |\n", r.Behavior.RevengeTradingScore))
	sb.WriteString(fmt.Sprintf("| Late Night Trades | %.1f%% |\n", r.Behavior.LateNightTradePercent))
	sb.WriteString("\n")

	// Timing
	sb.WriteString("## Timing\n\n")
	if r.Timing.HasWorstHour {
		sb.WriteString(fmt.Sprintf("Worst hour: %02d:00 UTC (%.2f P&L)\n\n", r.Timing.WorstHour, r.Timing.WorstHourPnL))
	}
	if r.Timing.BestMonth != "" {
		sb.WriteString("| | Month | P&L |\n")
		sb.WriteString("|---|-------|-----|\n")
		sb.WriteString(fmt.Sprintf("| Best Month | %s | %.2f |\n", r.Timing.BestMonth, r.Timing.BestMonthPnL))
		sb.WriteString(fmt.Sprintf("| Worst Month | %s | %.2f |\n", r.Timing.WorstMonth, r.Timing.WorstMonthPnL))
	} else if !r.Timing.HasWorstHour {
		sb.WriteString("No timing data available.\n")
	}
	sb.WriteString("\n")

	// What-If
	sb.WriteString("## What If\n\n")
	if len(r.WhatIf) > 0 {
		sb.WriteString("| Asset | Invested | Value | P&L | P&L % |\n")
		sb.WriteString("|-------|----------|-------|-----|-------|\n")
		for _, w := range r.WhatIf {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f | %.2f |\n",
				w.Asset, w.InvestedAmount, w.TotalValue, w.Pnl, w.PnlPercent))
		}
	} else {
		sb.WriteString("No counterfactual data available.\n")
	}
	sb.WriteString("\n")

	// Personality
	sb.WriteString("## Personality\n\n")
	if r.PersonalityID != "" {
		sb.WriteString(fmt.Sprintf("**%s %s**\n\n", r.PersonalityEmoji, r.PersonalityName))
		sb.WriteString(fmt.Sprintf("%s\n", r.PersonalityDescription))
	} else {
		sb.WriteString("No personality assigned.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
