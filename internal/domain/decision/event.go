// Package decision models the append-only decision event log: the single
// durable record of every dinner action ever offered and every piece of
// feedback about it. Rows are never mutated after insert — feedback is
// always a new row copying the original's fields (see InsertFeedbackCopy
// in the outbound.EventRepository contract).
package decision

import (
	"time"

	"github.com/google/uuid"
)

// Type is the kind of dinner action a decision represents.
type Type string

const (
	TypeCook     Type = "cook"
	TypeOrder    Type = "order"
	TypeZeroCook Type = "zero_cook"
)

// UserAction records what happened to a decision after it was shown.
type UserAction string

const (
	ActionPending       UserAction = "pending"
	ActionApproved      UserAction = "approved"
	ActionRejected      UserAction = "rejected"
	ActionDRMTriggered  UserAction = "drm_triggered"
	ActionExpired       UserAction = "expired"
)

// Common notes values. The set is open-ended (opaque string) but these
// are the values the core itself writes and reads.
const (
	NoteAutopilot     = "autopilot"
	NoteUndoAutopilot = "undo_autopilot"
)

// Event is one append-only row in the decision log.
type Event struct {
	ID                uuid.UUID
	HouseholdKey      string
	DecidedAt         time.Time
	DecisionType      Type
	MealID            *uuid.UUID
	ExternalVendorKey *string
	ContextHash       string
	DecisionPayload   []byte // opaque structured record of what was shown
	UserActionValue   UserAction
	ActionedAt        *time.Time
	Notes             *string
}

// NewPending constructs the original, never-to-be-mutated event row for a
// freshly computed decision.
func NewPending(householdKey string, decisionType Type, mealID *uuid.UUID, vendorKey *string, contextHash string, payload []byte, decidedAt time.Time) *Event {
	return &Event{
		ID:                uuid.New(),
		HouseholdKey:      householdKey,
		DecidedAt:         decidedAt,
		DecisionType:      decisionType,
		MealID:            mealID,
		ExternalVendorKey: vendorKey,
		ContextHash:       contextHash,
		DecisionPayload:   payload,
		UserActionValue:   ActionPending,
	}
}

// FeedbackCopy produces a new event row that copies every field from the
// original except id, user_action, actioned_at, and notes (which is set to
// the given notes value, nil included). The original is never
// mutated by this call — the caller is responsible for persisting both
// rows (insert-only).
func (e *Event) FeedbackCopy(newID uuid.UUID, action UserAction, actionedAt time.Time, notes *string) *Event {
	copied := *e
	copied.ID = newID
	copied.UserActionValue = action
	copied.ActionedAt = &actionedAt
	copied.Notes = notes
	return &copied
}

// IsAutopilot reports whether this event's notes mark it as an
// autopilot-inserted approval.
func (e *Event) IsAutopilot() bool {
	return e.Notes != nil && *e.Notes == NoteAutopilot
}

// IsUndoAutopilot reports whether this event's notes mark it as an undo
// of a prior autopilot approval.
func (e *Event) IsUndoAutopilot() bool {
	return e.Notes != nil && *e.Notes == NoteUndoAutopilot
}
