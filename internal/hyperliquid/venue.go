// Package hyperliquid fetches a wallet's trading history from the
// Hyperliquid info endpoint.
package hyperliquid

import (
	"context"
	"errors"
	"strings"

	"trading-wrapped/internal/domain"
)

// Venue defines the read-only venue interface the service consumes.
type Venue interface {
	// UserFills retrieves every perp fill for a wallet, time-aggregated.
	UserFills(ctx context.Context, address string) ([]*domain.Fill, error)

	// UserLedger retrieves all non-funding ledger updates for a wallet
	// (deposits, withdrawals, transfers).
	UserLedger(ctx context.Context, address string) ([]*domain.LedgerEntry, error)
}

// ErrInvalidAddress is returned for inputs that are not EVM addresses.
var ErrInvalidAddress = errors.New("invalid wallet address")

// ValidateAddress checks the 0x-prefixed 40-hex-digit EVM address form.
// The venue silently returns empty data for malformed addresses, so this
// is the only input validation the pipeline gets.
func ValidateAddress(address string) error {
	if len(address) != 42 || !strings.HasPrefix(address, "0x") {
		return ErrInvalidAddress
	}
	for _, c := range address[2:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return ErrInvalidAddress
		}
	}
	return nil
}
