package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dinnerarbiter/core/internal/domain/decision"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
)

// EventRepository implements outbound.EventRepository over a
// mutex-guarded, household-scoped, append-only slice.
type EventRepository struct {
	mutex  sync.RWMutex
	byHH   map[string][]*decision.Event
	seenID map[uuid.UUID]bool
}

func NewEventRepository() *EventRepository {
	return &EventRepository{
		byHH:   make(map[string][]*decision.Event),
		seenID: make(map[uuid.UUID]bool),
	}
}

func (r *EventRepository) Insert(ctx context.Context, event *decision.Event) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.seenID[event.ID] {
		return outbound.ErrUniquenessViolation
	}
	r.seenID[event.ID] = true
	r.byHH[event.HouseholdKey] = append(r.byHH[event.HouseholdKey], event)
	return nil
}

// InsertFeedbackCopy enforces the (context_hash, notes) uniqueness rule
// used for idempotent autopilot dedupe in addition to the plain id
// uniqueness every insert gets.
func (r *EventRepository) InsertFeedbackCopy(ctx context.Context, event *decision.Event) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.seenID[event.ID] {
		return outbound.ErrUniquenessViolation
	}
	if event.Notes != nil {
		for _, e := range r.byHH[event.HouseholdKey] {
			if e.Notes != nil && *e.Notes == *event.Notes && e.ContextHash == event.ContextHash {
				return outbound.ErrUniquenessViolation
			}
		}
	}
	r.seenID[event.ID] = true
	r.byHH[event.HouseholdKey] = append(r.byHH[event.HouseholdKey], event)
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, householdKey string, id uuid.UUID) (*decision.Event, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	for _, e := range r.byHH[householdKey] {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, outbound.ErrNotFound
}

func (r *EventRepository) FindRecent(ctx context.Context, householdKey string, limit int) ([]*decision.Event, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	events := append([]*decision.Event(nil), r.byHH[householdKey]...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].DecidedAt.After(events[j].DecidedAt)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (r *EventRepository) CountByHousehold(ctx context.Context, householdKey string) (int64, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return int64(len(r.byHH[householdKey])), nil
}

func (r *EventRepository) FindAutopilotByContextHash(ctx context.Context, householdKey, contextHash string) (*decision.Event, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	for _, e := range r.byHH[householdKey] {
		if e.ContextHash == contextHash && e.Notes != nil && *e.Notes == decision.NoteAutopilot {
			return e, nil
		}
	}
	return nil, outbound.ErrNotFound
}
