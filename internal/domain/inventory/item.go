// Package inventory models the household's probabilistic pantry state:
// items derived from receipts, their category, matching against meal
// ingredients, and the decay of quantity/confidence over time.
package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies how an inventory row was populated.
type Source string

const (
	SourceReceipt  Source = "receipt"
	SourceInferred Source = "inferred"
	SourceManual   Source = "manual"
)

// DefaultDecayRate is applied to a new item unless a caller overrides it.
const DefaultDecayRate = 0.05

// Item is one probabilistic pantry-state row. Multiple rows may exist for
// the same (household, ingredient) pair — each row is an independent
// uncertainty, not a unique SKU.
type Item struct {
	ID              uuid.UUID
	HouseholdKey    string
	Name            string
	QtyEstimated    *float64
	QtyUsed         float64
	Unit            string
	Confidence      float64
	SourceKind      Source
	LastSeenAt      time.Time
	LastUsedAt      *time.Time
	ExpiresAt       *time.Time
	DecayRatePerDay float64
	CreatedAt       time.Time
}

// NewItem constructs an Item with invariants enforced: confidence clamped
// to [0,1], qty used starting at zero, decay rate defaulted.
func NewItem(householdKey, name string, source Source, confidence float64) *Item {
	now := time.Now()
	return &Item{
		ID:              uuid.New(),
		HouseholdKey:    householdKey,
		Name:            name,
		QtyUsed:         0,
		Confidence:      clamp01(confidence),
		SourceKind:      source,
		LastSeenAt:      now,
		DecayRatePerDay: DefaultDecayRate,
		CreatedAt:       now,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
