package arbiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dinnerarbiter/core/internal/domain/decision"
)

func TestEvaluateDRM_CalendarConflictTakesPriority(t *testing.T) {
	signal := Signal{CalendarConflict: true, Energy: "low"}
	trigger, reason := EvaluateDRM(signal, time.Now(), nil)
	assert.True(t, trigger)
	assert.Equal(t, ReasonCalendarConflict, reason)
}

func TestEvaluateDRM_LowEnergySecondPriority(t *testing.T) {
	signal := Signal{Energy: "low"}
	trigger, reason := EvaluateDRM(signal, time.Now(), nil)
	assert.True(t, trigger)
	assert.Equal(t, ReasonLowEnergy, reason)
}

func TestEvaluateDRM_TwoRejectionsWithinThirtyMinutes(t *testing.T) {
	base := time.Date(2026, 1, 20, 19, 0, 0, 0, time.UTC)
	a := base.Add(-10 * time.Minute)
	b := base.Add(-15 * time.Minute)
	events := []*decision.Event{
		{UserActionValue: decision.ActionRejected, ActionedAt: &a},
		{UserActionValue: decision.ActionRejected, ActionedAt: &b},
	}
	signal := Signal{Energy: "normal"}
	trigger, reason := EvaluateDRM(signal, base, events)
	assert.True(t, trigger)
	assert.Equal(t, ReasonTwoRejections, reason)
}

func TestEvaluateDRM_LateNoActionAfterEightPM(t *testing.T) {
	now := time.Date(2026, 1, 20, 20, 0, 0, 0, time.UTC)
	signal := Signal{Energy: "normal", TimeWindow: "dinner"}
	trigger, reason := EvaluateDRM(signal, now, nil)
	assert.True(t, trigger)
	assert.Equal(t, ReasonLateNoAction, reason)
}

func TestEvaluateDRM_EngagementNoApprovalAfterSixPM(t *testing.T) {
	now := time.Date(2026, 1, 20, 18, 30, 0, 0, time.UTC)
	pendingAt := now.Add(-time.Hour)
	events := []*decision.Event{
		{UserActionValue: decision.ActionPending, ActionedAt: &pendingAt},
	}
	signal := Signal{Energy: "normal", TimeWindow: "dinner"}
	trigger, reason := EvaluateDRM(signal, now, events)
	assert.True(t, trigger)
	assert.Equal(t, ReasonLateNoAction, reason)
}

func TestEvaluateDRM_NoTriggerWhenNothingMatches(t *testing.T) {
	now := time.Date(2026, 1, 20, 18, 0, 0, 0, time.UTC)
	signal := Signal{Energy: "normal", TimeWindow: "dinner"}
	trigger, reason := EvaluateDRM(signal, now, nil)
	assert.False(t, trigger)
	assert.Empty(t, reason)
}
