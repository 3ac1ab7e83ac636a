// Package taste models preference learning: individual taste signals
// derived from decision feedback and the rolled-up per-meal score derived
// from them. Both are read by the arbiter when ranking candidate meals.
package taste

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/dinnerarbiter/core/internal/domain/decision"
)

// Base weights per feedback action, before the stress-hour multiplier.
const (
	WeightApproved     = 1.0
	WeightRejected     = -1.0
	WeightDRMTriggered = -0.5
	WeightExpired      = -0.2

	// StressHourThresholdHour is the local hour (24h clock) at and above
	// which a feedback's weight is amplified — "stress hour".
	StressHourThresholdHour = 20

	// StressMultiplier amplifies the base weight when actioned_at's local
	// hour is a stress hour.
	StressMultiplier = 1.10

	WeightClampMin = -2.0
	WeightClampMax = 2.0
)

// BaseWeight returns the unamplified weight for a feedback action, or
// (0, false) if the action has no defined weight (e.g. "pending").
func BaseWeight(action decision.UserAction) (float64, bool) {
	switch action {
	case decision.ActionApproved:
		return WeightApproved, true
	case decision.ActionRejected:
		return WeightRejected, true
	case decision.ActionDRMTriggered:
		return WeightDRMTriggered, true
	case decision.ActionExpired:
		return WeightExpired, true
	default:
		return 0, false
	}
}

// IsStressHour reports whether actionedAt falls in the stress window,
// using the local hour field of the supplied timestamp without further
// timezone conversion. A nil actionedAt is never a stress hour.
func IsStressHour(actionedAt *time.Time) bool {
	if actionedAt == nil {
		return false
	}
	return actionedAt.Hour() >= StressHourThresholdHour
}

// ResolveWeight computes the final, clamped weight for a feedback action
// and its actioned-at timestamp.
func ResolveWeight(action decision.UserAction, actionedAt *time.Time) (float64, bool) {
	base, ok := BaseWeight(action)
	if !ok {
		return 0, false
	}
	if IsStressHour(actionedAt) {
		base *= StressMultiplier
	}
	return clamp(base, WeightClampMin, WeightClampMax), true
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Signal is one derived taste observation tied back to a decision event.
// Features is an opaque snapshot of the meal's characteristics at
// decision time (canonical key, est minutes, cost band, pantry-friendly
// flag, up to 20 alphabetically-sorted ingredient tokens).
type Signal struct {
	ID              uuid.UUID
	HouseholdKey    string
	DecidedAt       time.Time
	ActionedAt      *time.Time
	DecisionEventID uuid.UUID
	MealID          *uuid.UUID
	DecisionType    decision.Type
	UserActionValue decision.UserAction
	ContextHash     string
	Features        []byte
	Weight          float64
	Notes           *string
}

// NewSignal constructs a taste signal with its effective weight already
// resolved from the action and actioned-at timestamp. notes is carried
// through unchanged from the originating feedback event so repositories
// can identify undo-tagged signals (see HasUndoWithinWindow) without a
// separate lookup.
func NewSignal(householdKey string, decidedAt time.Time, actionedAt *time.Time, decisionEventID uuid.UUID, mealID *uuid.UUID, decisionType decision.Type, action decision.UserAction, contextHash string, features []byte, notes *string) (*Signal, bool) {
	weight, ok := ResolveWeight(action, actionedAt)
	if !ok {
		return nil, false
	}
	return &Signal{
		ID:              uuid.New(),
		HouseholdKey:    householdKey,
		DecidedAt:       decidedAt,
		ActionedAt:      actionedAt,
		DecisionEventID: decisionEventID,
		MealID:          mealID,
		DecisionType:    decisionType,
		UserActionValue: action,
		ContextHash:     contextHash,
		Features:        features,
		Weight:          weight,
		Notes:           notes,
	}, true
}

// MealScore is the mutable per-(household, meal) rolled-up preference
// score. It is a plain additive running sum — the design deliberately
// avoids live decay or rebalancing on write; smoothing happens only at
// read time via the arbiter's sigmoid (see internal/application/arbiter).
type MealScore struct {
	HouseholdKey string
	MealID       uuid.UUID
	Score        float64
	Approvals    int
	Rejections   int
	LastSeenAt   time.Time
	UpdatedAt    time.Time
}

// ApplySignal upserts the rolling score with a new signal's contribution.
// Callers must not call this for undo-tagged signals (see the "undo
// exception" in the taste updater): those insert a Signal row but must
// never reach this method.
func ApplySignal(existing MealScore, signal Signal, now time.Time) MealScore {
	existing.HouseholdKey = signal.HouseholdKey
	if signal.MealID != nil {
		existing.MealID = *signal.MealID
	}
	existing.Score += signal.Weight
	switch signal.UserActionValue {
	case decision.ActionApproved:
		existing.Approvals++
	case decision.ActionRejected:
		existing.Rejections++
	}
	existing.LastSeenAt = signal.DecidedAt
	existing.UpdatedAt = now
	return existing
}

// Sigmoid maps a raw taste score to (0,1), used by the arbiter as the
// per-meal taste value. A missing score should be passed as 0, which
// sigmoid(0/5) maps to exactly 0.5 — the documented "missing score"
// default — so callers do not need a separate branch for it.
func Sigmoid(score float64) float64 {
	return 1.0 / (1.0 + math.Exp(-score/5.0))
}
