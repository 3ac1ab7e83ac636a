package arbiter

import (
	"time"

	"github.com/google/uuid"

	"github.com/dinnerarbiter/core/internal/domain/decision"
)

// Autopilot gate failure reasons, evaluated in this fixed order. The
// first failing gate's reason is reported; AllGatesPassed is reported
// only when every gate clears.
const (
	ReasonOutsideAutopilotWindow = "outside_autopilot_window"
	ReasonCalendarConflictGate   = "calendar_conflict"
	ReasonLowEnergyGate          = "low_energy"
	ReasonLowInventoryScore      = "low_inventory_score"
	ReasonLowTasteScore          = "low_taste_score"
	ReasonMealUsedRecently       = "meal_used_recently"
	ReasonLowApprovalRate        = "low_approval_rate"
	ReasonRecentRejection        = "recent_rejection"
	AllGatesPassed               = "all_gates_passed"
)

const (
	autopilotWindowStartHour   = 17
	autopilotWindowStartMinute = 0
	autopilotWindowEndHour     = 18
	autopilotWindowEndMinute   = 15

	minInventoryScoreForAutopilot = 0.85
	minTasteScoreForAutopilot     = 0.70
	mealRecentlyUsedWindowDays    = 3
	approvalRateWindowDays        = 7
	minApprovalRate               = 0.70
	recentRejectionWindow         = 24 * time.Hour

	// UndoThrottleWindow is the external pre-gate suppression window: if
	// an undo_autopilot feedback exists within this window, autopilot is
	// disabled even if every gate would pass.
	UndoThrottleWindow = 72 * time.Hour
)

// EligibilityInput is everything the autopilot gates need, already
// resolved by the caller (the orchestration layer loads inventory/taste
// fallbacks and recent events once and reuses them here).
type EligibilityInput struct {
	Now               time.Time
	Signal            Signal
	InventoryScore    float64
	TasteScore        float64
	MealID            uuid.UUID
	RecentEvents      []*decision.Event // household events, any window the caller has loaded (>= 7 days recommended)
}

// EvaluateAutopilot runs the eight gates in fixed order and returns
// (eligible, reason). reason is AllGatesPassed iff eligible is true.
func EvaluateAutopilot(in EligibilityInput) (bool, string) {
	if !withinAutopilotWindow(in.Now) {
		return false, ReasonOutsideAutopilotWindow
	}
	if in.Signal.CalendarConflict {
		return false, ReasonCalendarConflictGate
	}
	if in.Signal.Energy == "low" {
		return false, ReasonLowEnergyGate
	}
	if in.InventoryScore < minInventoryScoreForAutopilot {
		return false, ReasonLowInventoryScore
	}
	if in.TasteScore < minTasteScoreForAutopilot {
		return false, ReasonLowTasteScore
	}
	if mealApprovedRecently(in.MealID, in.RecentEvents, in.Now, mealRecentlyUsedWindowDays) {
		return false, ReasonMealUsedRecently
	}
	if approvalRate(in.RecentEvents, in.Now, approvalRateWindowDays) < minApprovalRate {
		return false, ReasonLowApprovalRate
	}
	if hasRejectionWithin(in.RecentEvents, in.Now, recentRejectionWindow) {
		return false, ReasonRecentRejection
	}
	return true, AllGatesPassed
}

func withinAutopilotWindow(now time.Time) bool {
	minutesOfDay := now.Hour()*60 + now.Minute()
	start := autopilotWindowStartHour*60 + autopilotWindowStartMinute
	end := autopilotWindowEndHour*60 + autopilotWindowEndMinute
	return minutesOfDay >= start && minutesOfDay <= end
}

func mealApprovedRecently(mealID uuid.UUID, events []*decision.Event, now time.Time, windowDays int) bool {
	cutoff := now.AddDate(0, 0, -windowDays)
	for _, e := range events {
		if e.UserActionValue != decision.ActionApproved || e.MealID == nil {
			continue
		}
		if *e.MealID != mealID {
			continue
		}
		if e.ActionedAt != nil && !e.ActionedAt.Before(cutoff) {
			return true
		}
	}
	return false
}

func approvalRate(events []*decision.Event, now time.Time, windowDays int) float64 {
	cutoff := now.AddDate(0, 0, -windowDays)
	var approved, rejected int
	for _, e := range events {
		if e.ActionedAt == nil || e.ActionedAt.Before(cutoff) {
			continue
		}
		switch e.UserActionValue {
		case decision.ActionApproved:
			approved++
		case decision.ActionRejected:
			rejected++
		}
	}
	total := approved + rejected
	if total == 0 {
		return 1.0 // empty window gets the benefit of the doubt
	}
	return float64(approved) / float64(total)
}

func hasRejectionWithin(events []*decision.Event, now time.Time, window time.Duration) bool {
	cutoff := now.Add(-window)
	for _, e := range events {
		if e.UserActionValue != decision.ActionRejected || e.ActionedAt == nil {
			continue
		}
		if !e.ActionedAt.Before(cutoff) {
			return true
		}
	}
	return false
}
