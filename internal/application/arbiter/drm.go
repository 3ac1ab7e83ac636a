package arbiter

import (
	"time"

	"github.com/dinnerarbiter/core/internal/domain/decision"
)

// DRM trigger reasons, in priority order. The first matching rule wins;
// later rules are never evaluated once one matches.
const (
	ReasonCalendarConflict = "calendar_conflict"
	ReasonLowEnergy        = "low_energy"
	ReasonTwoRejections    = "two_rejections"
	ReasonLateNoAction     = "late_no_action"
)

const (
	twoRejectionsWindow = 30 * time.Minute
	lateNoActionHour    = 20
	engagementHour      = 18
)

// EvaluateDRM runs the priority-ordered DRM trigger rules against the
// request signal and the household's events for today. It returns
// (shouldTrigger, reason).
func EvaluateDRM(signal Signal, now time.Time, eventsToday []*decision.Event) (bool, string) {
	if signal.CalendarConflict {
		return true, ReasonCalendarConflict
	}
	if signal.Energy == "low" {
		return true, ReasonLowEnergy
	}
	if hasTwoRejectionsWithinWindow(eventsToday, twoRejectionsWindow) {
		return true, ReasonTwoRejections
	}
	if signal.TimeWindow == "dinner" && isLateNoAction(now, eventsToday) {
		return true, ReasonLateNoAction
	}
	return false, ""
}

func hasTwoRejectionsWithinWindow(events []*decision.Event, window time.Duration) bool {
	rejections := make([]time.Time, 0, len(events))
	for _, e := range events {
		if e.UserActionValue == decision.ActionRejected && e.ActionedAt != nil {
			rejections = append(rejections, *e.ActionedAt)
		}
	}
	for i := 0; i < len(rejections); i++ {
		for j := i + 1; j < len(rejections); j++ {
			diff := rejections[i].Sub(rejections[j])
			if diff < 0 {
				diff = -diff
			}
			if diff <= window {
				return true
			}
		}
	}
	return false
}

func isLateNoAction(now time.Time, eventsToday []*decision.Event) bool {
	hour := now.Hour()
	if hour >= lateNoActionHour {
		return true
	}
	if hour < engagementHour {
		return false
	}
	return hasEngagementButNoApproval(eventsToday)
}

// hasEngagementButNoApproval reports whether today has any event with
// action in {pending, rejected, expired} but no approved decision.
func hasEngagementButNoApproval(eventsToday []*decision.Event) bool {
	engaged := false
	approved := false
	for _, e := range eventsToday {
		switch e.UserActionValue {
		case decision.ActionPending, decision.ActionRejected, decision.ActionExpired:
			engaged = true
		case decision.ActionApproved:
			approved = true
		}
	}
	return engaged && !approved
}
