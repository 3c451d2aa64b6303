// Package personality assigns one of ten fixed behavioral archetypes to a
// wallet based on its aggregated trading stats. The cascade is ordered:
// the first matching rule wins, and the default guarantees every wallet
// gets exactly one archetype.
package personality

import "trading-wrapped/internal/domain"

// Archetype IDs, stable across releases. Share snapshots persist them.
const (
	IDBot           = "BOT"
	IDNightOwl      = "NIGHT_OWL"
	IDRevengeTrader = "REVENGE_TRADER"
	IDGambler       = "GAMBLER"
	IDJPMorgan      = "JP_MORGAN"
	IDDegen         = "DEGEN"
	IDTopBuyer      = "TOP_BUYER"
	IDBoomer        = "BOOMER"
	IDDiamondHands  = "DIAMOND_HANDS"
	IDPaperHands    = "PAPER_HANDS"
)

var catalog = map[string]domain.Personality{
	IDBot: {
		ID:          IDBot,
		Name:        "The Bot",
		Emoji:       "🤖",
		Description: "Your trading frequency suggests you might actually be an algorithm. Are you human?",
	},
	IDNightOwl: {
		ID:          IDNightOwl,
		Name:        "The Night Owl",
		Emoji:       "🦉",
		Description: "3AM is your prime trading hour. Who needs sleep when there's volatility?",
	},
	IDRevengeTrader: {
		ID:          IDRevengeTrader,
		Name:        "The Revenge Trader",
		Emoji:       "😡",
		Description: "Lost $100? Time to 10x the position size! That'll show the market who's boss.",
	},
	IDGambler: {
		ID:          IDGambler,
		Name:        "The Gambler",
		Emoji:       "🎲",
		Description: "You win 9 times and lose it all on the 10th. The house always wins, but you keep playing.",
	},
	IDJPMorgan: {
		ID:          IDJPMorgan,
		Name:        "J.P. Morgan",
		Emoji:       "🏦",
		Description: "Calculated. Patient. Your positions are so big they probably move markets.",
	},
	IDDegen: {
		ID:          IDDegen,
		Name:        "The Degen",
		Emoji:       "🦍",
		Description: "You live for the volatility. Sleep is for the weak, and leverage is your love language.",
	},
	IDTopBuyer: {
		ID:          IDTopBuyer,
		Name:        "The Top Buyer",
		Emoji:       "🤡",
		Description: "You have a supernatural gift for buying the exact top. Every. Single. Time.",
	},
	IDBoomer: {
		ID:          IDBoomer,
		Name:        "The Boomer",
		Emoji:       "👴",
		Description: "Slow and steady... maybe too steady. You trade like you're still using dial-up internet.",
	},
	IDDiamondHands: {
		ID:          IDDiamondHands,
		Name:        "Diamond Hands",
		Emoji:       "💎",
		Description: "HODL until death. You've watched positions go -90% and said 'this is fine.'",
	},
	IDPaperHands: {
		ID:          IDPaperHands,
		Name:        "Paper Hands",
		Emoji:       "🧻",
		Description: "Any red candle sends you running. Your average hold time is shorter than a TikTok.",
	},
}

// ByID returns the archetype for a stored ID. The second return is false
// for unknown IDs.
func ByID(id string) (domain.Personality, bool) {
	p, ok := catalog[id]
	return p, ok
}

// All returns every archetype in cascade order.
func All() []domain.Personality {
	ids := []string{
		IDBot, IDNightOwl, IDRevengeTrader, IDGambler, IDJPMorgan,
		IDDegen, IDTopBuyer, IDBoomer, IDDiamondHands, IDPaperHands,
	}
	out := make([]domain.Personality, 0, len(ids))
	for _, id := range ids {
		out = append(out, catalog[id])
	}
	return out
}

// Classify maps stats to an archetype. Rules are evaluated top to bottom
// and the first match wins; reordering them changes assignments.
func Classify(stats *domain.Stats) domain.Personality {
	if stats == nil || stats.TotalTrades == 0 {
		return catalog[IDPaperHands]
	}

	switch {
	case stats.TradesPerDay > 50:
		return catalog[IDBot]
	case stats.LateNightTradePercent > 40:
		return catalog[IDNightOwl]
	case stats.RevengeTradingScore > 30:
		return catalog[IDRevengeTrader]
	case stats.WinRate > 60 && stats.TotalPnL < 0:
		return catalog[IDGambler]
	case stats.AveragePositionSize > 50000:
		return catalog[IDJPMorgan]
	case stats.TradesPerDay > 20 && stats.LateNightTradePercent > 20:
		return catalog[IDDegen]
	case stats.WinRate < 40:
		return catalog[IDTopBuyer]
	case stats.TradesPerDay < 2:
		return catalog[IDBoomer]
	case stats.TotalPnL > 0 && stats.WinRate > 50:
		return catalog[IDDiamondHands]
	default:
		return catalog[IDPaperHands]
	}
}
