package domain

// LedgerEntry represents one balance-affecting event from the venue's
// non-funding ledger endpoint (deposits, withdrawals, transfers).
type LedgerEntry struct {
	Time  int64       // event timestamp, Unix ms
	Hash  string      // transaction hash
	Delta LedgerDelta // signed USD movement
}

// LedgerDelta carries the USD amount and category of a ledger event.
// Usdc is a signed decimal string; entries whose amount does not parse to a
// non-zero number are skipped by consumers rather than treated as errors.
type LedgerDelta struct {
	Type string // one of the DeltaType* constants
	Usdc string // signed USD amount
}

// Ledger delta categories.
const (
	DeltaTypeDeposit            = "deposit"
	DeltaTypeWithdraw           = "withdraw"
	DeltaTypeTransfer           = "transfer"
	DeltaTypeSpot               = "spot"
	DeltaTypeInternalTransfer   = "internalTransfer"
	DeltaTypeSubAccountTransfer = "subAccountTransfer"
)
