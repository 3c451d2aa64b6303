// Package stub provides a canned Venue implementation for tests.
package stub

import (
	"context"

	"trading-wrapped/internal/domain"
	"trading-wrapped/internal/hyperliquid"
)

// Venue implements hyperliquid.Venue for testing. Unknown addresses return
// empty history, matching the real venue's behavior.
type Venue struct {
	Fills   map[string][]*domain.Fill
	Ledgers map[string][]*domain.LedgerEntry

	// FillsErr and LedgerErr, when set, fail the corresponding call.
	FillsErr  error
	LedgerErr error
}

// NewVenue creates a new stub venue.
func NewVenue() *Venue {
	return &Venue{
		Fills:   make(map[string][]*domain.Fill),
		Ledgers: make(map[string][]*domain.LedgerEntry),
	}
}

var _ hyperliquid.Venue = (*Venue)(nil)

// UserFills retrieves canned fills for an address.
func (v *Venue) UserFills(_ context.Context, address string) ([]*domain.Fill, error) {
	if v.FillsErr != nil {
		return nil, v.FillsErr
	}
	if err := hyperliquid.ValidateAddress(address); err != nil {
		return nil, err
	}
	return v.Fills[address], nil
}

// UserLedger retrieves canned ledger entries for an address.
func (v *Venue) UserLedger(_ context.Context, address string) ([]*domain.LedgerEntry, error) {
	if v.LedgerErr != nil {
		return nil, v.LedgerErr
	}
	if err := hyperliquid.ValidateAddress(address); err != nil {
		return nil, err
	}
	return v.Ledgers[address], nil
}

// AddFills adds canned fills for an address.
func (v *Venue) AddFills(address string, fills []*domain.Fill) {
	v.Fills[address] = append(v.Fills[address], fills...)
}

// AddLedger adds canned ledger entries for an address.
func (v *Venue) AddLedger(address string, entries []*domain.LedgerEntry) {
	v.Ledgers[address] = append(v.Ledgers[address], entries...)
}
