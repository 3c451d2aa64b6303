package domain

// ResultSnapshot is a computed wrapped result persisted for caching and
// history. Snapshots are append-only: recomputing for the same address
// produces a new row rather than updating an old one.
type ResultSnapshot struct {
	Address     string      `json:"address"`
	ComputedAt  int64       `json:"computedAt"` // Unix ms
	Stats       *Stats      `json:"stats"`
	Personality Personality `json:"personality"`
}
