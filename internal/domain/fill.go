package domain

// Fill represents one executed trade as delivered by the venue's fills
// endpoint. Numeric fields arrive as decimal strings and are never mutated;
// the analytics engine parses them on the fly.
type Fill struct {
	ClosedPnl     string // realized P&L in USD, "0" for non-closing fills
	Coin          string // instrument symbol
	Crossed       bool   // taker flag
	Dir           string // human direction, e.g. "Open Long"
	Hash          string // transaction hash
	Oid           int64  // order id
	Px            string // execution price
	Side          string // venue side code: "B" (bid) or "A" (ask)
	StartPosition string // position size before this fill
	Sz            string // fill size
	Time          int64  // execution timestamp, Unix ms
	Fee           string // fee charged, USD
	FeeToken      string // fee denomination, e.g. "USDC"
	Tid           int64  // trade id, unique per fill
}

// Side codes used by the venue.
const (
	SideBid = "B"
	SideAsk = "A"
)
