package inventory

import (
	"math"
	"time"
)

// ConfidenceDecayFloor bounds how low the per-day confidence decay
// multiplier can push an item's confidence, regardless of elapsed time.
const ConfidenceDecayFloor = 0.20

// confidenceDecayPerDay is the daily confidence decay rate, independent of
// the item's own quantity decay rate.
const confidenceDecayPerDay = 0.03

// AvailabilityThreshold is the minimum decayed confidence for an item to
// be considered "likely available".
const AvailabilityThreshold = 0.60

// DaysSince returns the number of whole-or-partial days between seenAt and
// now, floored at zero. A future or invalid seenAt yields zero, matching
// the "never regress availability for clock skew" rule.
func DaysSince(seenAt time.Time, now time.Time) float64 {
	if seenAt.IsZero() || seenAt.After(now) {
		return 0
	}
	return now.Sub(seenAt).Hours() / 24.0
}

// Remaining computes the remaining estimated quantity for an item at the
// given instant. A nil QtyEstimated means "unknown, treat as present" and
// Remaining returns nil. Otherwise remaining = max(0, qtyEstimated -
// qtyUsed) * max(0, 1 - days*rate), floored at zero.
func (it *Item) Remaining(now time.Time) *float64 {
	if it.QtyEstimated == nil {
		return nil
	}

	base := *it.QtyEstimated - it.QtyUsed
	if base < 0 {
		base = 0
	}

	days := DaysSince(it.LastSeenAt, now)
	rate := it.DecayRatePerDay
	if rate == 0 {
		rate = DefaultDecayRate
	}

	multiplier := 1 - days*rate
	if multiplier < 0 {
		multiplier = 0
	}

	remaining := base * multiplier
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// DecayedConfidence returns the item's confidence discounted by elapsed
// time, clamped to [0,1] and never below ConfidenceDecayFloor of the
// multiplier (not of the absolute confidence — a very low starting
// confidence can still decay toward zero).
func (it *Item) DecayedConfidence(now time.Time) float64 {
	days := DaysSince(it.LastSeenAt, now)
	multiplier := 1 - days*confidenceDecayPerDay
	if multiplier < ConfidenceDecayFloor {
		multiplier = ConfidenceDecayFloor
	}
	return clamp01(it.Confidence * multiplier)
}

// LikelyAvailable reports whether the item should be treated as present:
// decayed confidence at or above AvailabilityThreshold AND (remaining
// quantity is positive, or quantity is unknown).
func (it *Item) LikelyAvailable(now time.Time) bool {
	if it.DecayedConfidence(now) < AvailabilityThreshold {
		return false
	}
	remaining := it.Remaining(now)
	return remaining == nil || *remaining > 0
}

// roundTo is a small helper used by tests and reporting to avoid floating
// point noise when comparing decayed values.
func roundTo(v float64, places int) float64 {
	mult := math.Pow(10, float64(places))
	return math.Round(v*mult) / mult
}
