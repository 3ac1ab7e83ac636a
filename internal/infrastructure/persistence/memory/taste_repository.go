package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dinnerarbiter/core/internal/domain/decision"
	"github.com/dinnerarbiter/core/internal/domain/taste"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
)

type tasteScoreKey struct {
	householdKey string
	mealID       uuid.UUID
}

// TasteRepository implements outbound.TasteRepository over mutex-guarded
// maps for signals (append-only, keyed by decision_event_id for dedupe)
// and rolled-up meal scores.
type TasteRepository struct {
	mutex        sync.Mutex
	signalsByEvt map[uuid.UUID]*taste.Signal
	signals      []*taste.Signal
	scores       map[tasteScoreKey]taste.MealScore
}

func NewTasteRepository() *TasteRepository {
	return &TasteRepository{
		signalsByEvt: make(map[uuid.UUID]*taste.Signal),
		scores:       make(map[tasteScoreKey]taste.MealScore),
	}
}

func (r *TasteRepository) InsertSignal(ctx context.Context, signal *taste.Signal) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, exists := r.signalsByEvt[signal.DecisionEventID]; exists {
		return outbound.ErrUniquenessViolation
	}
	r.signalsByEvt[signal.DecisionEventID] = signal
	r.signals = append(r.signals, signal)
	return nil
}

func (r *TasteRepository) UpsertMealScore(ctx context.Context, householdKey string, mealID uuid.UUID, apply func(existing taste.MealScore) taste.MealScore) (taste.MealScore, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	key := tasteScoreKey{householdKey: householdKey, mealID: mealID}
	updated := apply(r.scores[key])
	r.scores[key] = updated
	return updated, nil
}

func (r *TasteRepository) FindMealScore(ctx context.Context, householdKey string, mealID uuid.UUID) (*taste.MealScore, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	score, ok := r.scores[tasteScoreKey{householdKey: householdKey, mealID: mealID}]
	if !ok {
		return nil, outbound.ErrNotFound
	}
	return &score, nil
}

func (r *TasteRepository) FindMealScores(ctx context.Context, householdKey string, mealIDs []uuid.UUID) (map[uuid.UUID]taste.MealScore, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make(map[uuid.UUID]taste.MealScore, len(mealIDs))
	for _, id := range mealIDs {
		if score, ok := r.scores[tasteScoreKey{householdKey: householdKey, mealID: id}]; ok {
			out[id] = score
		}
	}
	return out, nil
}

func (r *TasteRepository) HasUndoWithinWindow(ctx context.Context, householdKey string, since time.Time) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, s := range r.signals {
		if s.HouseholdKey != householdKey {
			continue
		}
		if s.DecidedAt.Before(since) {
			continue
		}
		if s.Notes != nil && *s.Notes == decision.NoteUndoAutopilot {
			return true, nil
		}
	}
	return false, nil
}
