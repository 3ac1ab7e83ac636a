package arbiter

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dinnerarbiter/core/internal/domain/decision"
)

func baseInput(now time.Time) EligibilityInput {
	return EligibilityInput{
		Now:            now,
		Signal:         Signal{Energy: "normal", CalendarConflict: false},
		InventoryScore: 0.90,
		TasteScore:     0.80,
		MealID:         uuid.New(),
	}
}

func TestEvaluateAutopilot_AllGatesPass(t *testing.T) {
	now := time.Date(2026, 1, 20, 17, 30, 0, 0, time.UTC)
	in := baseInput(now)
	eligible, reason := EvaluateAutopilot(in)
	assert.True(t, eligible)
	assert.Equal(t, AllGatesPassed, reason)
}

func TestEvaluateAutopilot_WindowBoundaryInclusiveAt1700(t *testing.T) {
	now := time.Date(2026, 1, 20, 17, 0, 0, 0, time.UTC)
	in := baseInput(now)
	eligible, _ := EvaluateAutopilot(in)
	assert.True(t, eligible)
}

func TestEvaluateAutopilot_WindowBoundaryInclusiveAt1815(t *testing.T) {
	now := time.Date(2026, 1, 20, 18, 15, 0, 0, time.UTC)
	in := baseInput(now)
	eligible, _ := EvaluateAutopilot(in)
	assert.True(t, eligible)
}

func TestEvaluateAutopilot_OutsideWindowFails(t *testing.T) {
	now := time.Date(2026, 1, 20, 18, 16, 0, 0, time.UTC)
	in := baseInput(now)
	eligible, reason := EvaluateAutopilot(in)
	assert.False(t, eligible)
	assert.Equal(t, ReasonOutsideAutopilotWindow, reason)
}

func TestEvaluateAutopilot_CalendarConflictFailsSecondGate(t *testing.T) {
	now := time.Date(2026, 1, 20, 17, 30, 0, 0, time.UTC)
	in := baseInput(now)
	in.Signal.CalendarConflict = true
	eligible, reason := EvaluateAutopilot(in)
	assert.False(t, eligible)
	assert.Equal(t, ReasonCalendarConflictGate, reason)
}

func TestEvaluateAutopilot_LowInventoryScoreFails(t *testing.T) {
	now := time.Date(2026, 1, 20, 17, 30, 0, 0, time.UTC)
	in := baseInput(now)
	in.InventoryScore = 0.50
	eligible, reason := EvaluateAutopilot(in)
	assert.False(t, eligible)
	assert.Equal(t, ReasonLowInventoryScore, reason)
}

func TestEvaluateAutopilot_LowTasteScoreFails(t *testing.T) {
	now := time.Date(2026, 1, 20, 17, 30, 0, 0, time.UTC)
	in := baseInput(now)
	in.TasteScore = 0.10
	eligible, reason := EvaluateAutopilot(in)
	assert.False(t, eligible)
	assert.Equal(t, ReasonLowTasteScore, reason)
}

func TestEvaluateAutopilot_MealUsedRecentlyFails(t *testing.T) {
	now := time.Date(2026, 1, 20, 17, 30, 0, 0, time.UTC)
	in := baseInput(now)
	approvedAt := now.AddDate(0, 0, -1)
	in.RecentEvents = []*decision.Event{
		{MealID: &in.MealID, UserActionValue: decision.ActionApproved, ActionedAt: &approvedAt},
	}
	eligible, reason := EvaluateAutopilot(in)
	assert.False(t, eligible)
	assert.Equal(t, ReasonMealUsedRecently, reason)
}

func TestEvaluateAutopilot_LowApprovalRateFails(t *testing.T) {
	now := time.Date(2026, 1, 20, 17, 30, 0, 0, time.UTC)
	in := baseInput(now)
	t1 := now.AddDate(0, 0, -1)
	t2 := now.AddDate(0, 0, -2)
	t3 := now.AddDate(0, 0, -3)
	otherMeal := uuid.New()
	in.RecentEvents = []*decision.Event{
		{MealID: &otherMeal, UserActionValue: decision.ActionRejected, ActionedAt: &t1},
		{MealID: &otherMeal, UserActionValue: decision.ActionRejected, ActionedAt: &t2},
		{MealID: &otherMeal, UserActionValue: decision.ActionApproved, ActionedAt: &t3},
	}
	eligible, reason := EvaluateAutopilot(in)
	assert.False(t, eligible)
	assert.Equal(t, ReasonLowApprovalRate, reason)
}

func TestEvaluateAutopilot_EmptyApprovalWindowGetsBenefitOfDoubt(t *testing.T) {
	now := time.Date(2026, 1, 20, 17, 30, 0, 0, time.UTC)
	in := baseInput(now)
	eligible, _ := EvaluateAutopilot(in)
	assert.True(t, eligible)
}

func TestEvaluateAutopilot_RejectionExactly24HoursAgoStillRecent(t *testing.T) {
	now := time.Date(2026, 1, 20, 17, 30, 0, 0, time.UTC)
	in := baseInput(now)
	rejectedAt := now.Add(-24 * time.Hour)
	approvedAt := now.AddDate(0, 0, -2)
	otherMeal := uuid.New()
	// three approvals keep the 7-day approval rate at 0.75 so the
	// approval-rate gate passes and the recent-rejection gate is reached.
	in.RecentEvents = []*decision.Event{
		{MealID: &otherMeal, UserActionValue: decision.ActionRejected, ActionedAt: &rejectedAt},
		{MealID: &otherMeal, UserActionValue: decision.ActionApproved, ActionedAt: &approvedAt},
		{MealID: &otherMeal, UserActionValue: decision.ActionApproved, ActionedAt: &approvedAt},
		{MealID: &otherMeal, UserActionValue: decision.ActionApproved, ActionedAt: &approvedAt},
	}
	eligible, reason := EvaluateAutopilot(in)
	assert.False(t, eligible)
	assert.Equal(t, ReasonRecentRejection, reason)
}

func TestEvaluateAutopilot_ReportsFirstFailingGateInOrder(t *testing.T) {
	now := time.Date(2026, 1, 20, 19, 0, 0, 0, time.UTC) // outside window AND low energy
	in := baseInput(now)
	in.Signal.Energy = "low"
	_, reason := EvaluateAutopilot(in)
	assert.Equal(t, ReasonOutsideAutopilotWindow, reason)
}
