// Package share encodes a frozen wrapped result into a URL-safe token and
// back. Tokens are self-contained: the stats and personality inside one are
// a snapshot from encode time and are never recomputed on decode.
package share

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"

	"trading-wrapped/internal/domain"
)

// Slide identifies which story card a share token points at.
type Slide string

const (
	SlideTrades      Slide = "trades"
	SlidePnl         Slide = "pnl"
	SlideBiggestWin  Slide = "biggestWin"
	SlideBiggestLoss Slide = "biggestLoss"
	SlideDegen       Slide = "degen"
	SlideRevenge     Slide = "revenge"
	SlideFees        Slide = "fees"
	SlideCursed      Slide = "cursed"
	SlideWorstHour   Slide = "worstHour"
	SlidePersonality Slide = "personality"
	SlideSummary     Slide = "summary"
)

var (
	ErrEmptySnapshot = errors.New("share: snapshot has no stats")
	ErrInvalidToken  = errors.New("share: invalid token")
)

// Snapshot is the frozen payload inside a share token.
type Snapshot struct {
	Stats       *domain.Stats      `json:"stats"`
	Personality domain.Personality `json:"personality"`
	Slide       Slide              `json:"slide,omitempty"`
}

// Encode serializes a snapshot into a base58 token safe for URLs and QR
// codes without further escaping.
func Encode(s *Snapshot) (string, error) {
	if s == nil || s.Stats == nil {
		return "", ErrEmptySnapshot
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("share: encode snapshot: %w", err)
	}
	return base58.Encode(raw), nil
}

// Decode parses a token produced by Encode. Any malformed input maps to
// ErrInvalidToken; callers treat it as a client error, not a server fault.
func Decode(token string) (*Snapshot, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	raw, err := base58.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if s.Stats == nil {
		return nil, fmt.Errorf("%w: missing stats", ErrInvalidToken)
	}
	return &s, nil
}

// ValidSlide reports whether a slide identifier names a known story card.
// The empty slide is valid and means the default summary view.
func ValidSlide(s Slide) bool {
	switch s {
	case "", SlideTrades, SlidePnl, SlideBiggestWin, SlideBiggestLoss,
		SlideDegen, SlideRevenge, SlideFees, SlideCursed, SlideWorstHour,
		SlidePersonality, SlideSummary:
		return true
	}
	return false
}
