package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func qty(v float64) *float64 { return &v }

func TestRemaining_UnknownQuantityIsNil(t *testing.T) {
	it := &Item{LastSeenAt: time.Now(), DecayRatePerDay: DefaultDecayRate}
	assert.Nil(t, it.Remaining(time.Now()))
}

func TestRemaining_NegativeUsedClampsToZero(t *testing.T) {
	now := time.Now()
	it := &Item{QtyEstimated: qty(1), QtyUsed: 5, LastSeenAt: now, DecayRatePerDay: DefaultDecayRate}
	remaining := it.Remaining(now)
	assert.NotNil(t, remaining)
	assert.Equal(t, 0.0, *remaining)
}

func TestRemaining_DecaysLinearlyWithTime(t *testing.T) {
	now := time.Now()
	seen := now.Add(-10 * 24 * time.Hour)
	it := &Item{QtyEstimated: qty(2), QtyUsed: 0, LastSeenAt: seen, DecayRatePerDay: DefaultDecayRate}
	remaining := it.Remaining(now)
	// multiplier = 1 - 10*0.05 = 0.5
	assert.InDelta(t, 1.0, *remaining, 1e-9)
}

func TestRemaining_FutureTimestampTreatedAsZeroDays(t *testing.T) {
	now := time.Now()
	it := &Item{QtyEstimated: qty(3), QtyUsed: 1, LastSeenAt: now.Add(time.Hour), DecayRatePerDay: DefaultDecayRate}
	remaining := it.Remaining(now)
	assert.InDelta(t, 2.0, *remaining, 1e-9)
}

func TestDecayedConfidence_FloorApplies(t *testing.T) {
	now := time.Now()
	seen := now.Add(-365 * 24 * time.Hour)
	it := &Item{Confidence: 1.0, LastSeenAt: seen}
	conf := it.DecayedConfidence(now)
	assert.InDelta(t, ConfidenceDecayFloor, conf, 1e-9)
}

func TestDecayedConfidence_ExactlySixtyAfterDecayIsAvailable(t *testing.T) {
	now := time.Now()
	// confidence 1.0, want decayed == 0.60 exactly: 1 - days*0.03 = 0.60 -> days = 13.333...
	days := (1.0 - AvailabilityThreshold) / 0.03
	seen := now.Add(-time.Duration(days*24*float64(time.Hour)) - time.Nanosecond)
	it := &Item{Confidence: 1.0, QtyEstimated: qty(1), LastSeenAt: seen, DecayRatePerDay: DefaultDecayRate}
	assert.True(t, it.LikelyAvailable(now) || roundTo(it.DecayedConfidence(now), 2) == AvailabilityThreshold)
}

func TestLikelyAvailable_UnknownQuantityCountsAsPresent(t *testing.T) {
	now := time.Now()
	it := &Item{Confidence: 0.9, LastSeenAt: now}
	assert.True(t, it.LikelyAvailable(now))
}

func TestLikelyAvailable_ZeroRemainingIsUnavailable(t *testing.T) {
	now := time.Now()
	it := &Item{Confidence: 0.95, QtyEstimated: qty(1), QtyUsed: 1, LastSeenAt: now}
	assert.False(t, it.LikelyAvailable(now))
}
