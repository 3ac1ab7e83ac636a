package taste_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dinnerarbiter/core/internal/domain/decision"
	tastedomain "github.com/dinnerarbiter/core/internal/domain/taste"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
	tasteapp "github.com/dinnerarbiter/core/internal/application/taste"
)

type fakeTasteRepo struct {
	signals    map[uuid.UUID]*tastedomain.Signal
	scores     map[string]tastedomain.MealScore
	insertErr  error
}

func newFakeTasteRepo() *fakeTasteRepo {
	return &fakeTasteRepo{
		signals: make(map[uuid.UUID]*tastedomain.Signal),
		scores:  make(map[string]tastedomain.MealScore),
	}
}

func (f *fakeTasteRepo) InsertSignal(ctx context.Context, signal *tastedomain.Signal) error {
	if _, exists := f.signals[signal.DecisionEventID]; exists {
		return outbound.ErrUniquenessViolation
	}
	f.signals[signal.DecisionEventID] = signal
	return f.insertErr
}

func (f *fakeTasteRepo) UpsertMealScore(ctx context.Context, householdKey string, mealID uuid.UUID, apply func(tastedomain.MealScore) tastedomain.MealScore) (tastedomain.MealScore, error) {
	key := householdKey + "|" + mealID.String()
	updated := apply(f.scores[key])
	f.scores[key] = updated
	return updated, nil
}

func (f *fakeTasteRepo) FindMealScore(ctx context.Context, householdKey string, mealID uuid.UUID) (*tastedomain.MealScore, error) {
	key := householdKey + "|" + mealID.String()
	if s, ok := f.scores[key]; ok {
		return &s, nil
	}
	return nil, outbound.ErrNotFound
}

func (f *fakeTasteRepo) FindMealScores(ctx context.Context, householdKey string, mealIDs []uuid.UUID) (map[uuid.UUID]tastedomain.MealScore, error) {
	out := make(map[uuid.UUID]tastedomain.MealScore)
	for _, id := range mealIDs {
		key := householdKey + "|" + id.String()
		if s, ok := f.scores[key]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (f *fakeTasteRepo) HasUndoWithinWindow(ctx context.Context, householdKey string, since time.Time) (bool, error) {
	return false, nil
}

func TestOnFeedback_ApprovedInsertsSignalAndUpdatesScore(t *testing.T) {
	repo := newFakeTasteRepo()
	updater := tasteapp.NewUpdater(repo, zap.NewNop())
	mealID := uuid.New()
	actionedAt := time.Date(2026, 1, 20, 18, 0, 0, 0, time.UTC) // before the stress hour
	event := &decision.Event{
		ID:              uuid.New(),
		HouseholdKey:    "h1",
		DecidedAt:       actionedAt,
		ActionedAt:      &actionedAt,
		MealID:          &mealID,
		DecisionType:    decision.TypeCook,
		UserActionValue: decision.ActionApproved,
		ContextHash:     "ctx",
	}
	updater.OnFeedback(context.Background(), event, nil)

	require.Len(t, repo.signals, 1)
	score, err := repo.FindMealScore(context.Background(), "h1", mealID)
	require.NoError(t, err)
	assert.InDelta(t, tastedomain.WeightApproved, score.Score, 1e-9)
	assert.Equal(t, 1, score.Approvals)
}

func TestOnFeedback_UndoAutopilotSkipsScoreUpdate(t *testing.T) {
	repo := newFakeTasteRepo()
	updater := tasteapp.NewUpdater(repo, zap.NewNop())
	mealID := uuid.New()
	actionedAt := time.Now()
	notes := decision.NoteUndoAutopilot
	event := &decision.Event{
		ID:              uuid.New(),
		HouseholdKey:    "h1",
		DecidedAt:       actionedAt,
		ActionedAt:      &actionedAt,
		MealID:          &mealID,
		DecisionType:    decision.TypeCook,
		UserActionValue: decision.ActionRejected,
		ContextHash:     "ctx",
		Notes:           &notes,
	}
	updater.OnFeedback(context.Background(), event, nil)

	require.Len(t, repo.signals, 1)
	_, err := repo.FindMealScore(context.Background(), "h1", mealID)
	assert.ErrorIs(t, err, outbound.ErrNotFound)
}

func TestOnFeedback_DuplicateSignalIsSwallowed(t *testing.T) {
	repo := newFakeTasteRepo()
	updater := tasteapp.NewUpdater(repo, zap.NewNop())
	mealID := uuid.New()
	actionedAt := time.Now()
	eventID := uuid.New()
	event := &decision.Event{
		ID:              eventID,
		HouseholdKey:    "h1",
		DecidedAt:       actionedAt,
		ActionedAt:      &actionedAt,
		MealID:          &mealID,
		DecisionType:    decision.TypeCook,
		UserActionValue: decision.ActionApproved,
		ContextHash:     "ctx",
	}
	updater.OnFeedback(context.Background(), event, nil)
	assert.NotPanics(t, func() {
		updater.OnFeedback(context.Background(), event, nil)
	})
	assert.Len(t, repo.signals, 1)
}

func TestOnFeedback_PendingActionRecordsNothing(t *testing.T) {
	repo := newFakeTasteRepo()
	updater := tasteapp.NewUpdater(repo, zap.NewNop())
	event := &decision.Event{
		ID:              uuid.New(),
		HouseholdKey:    "h1",
		DecidedAt:       time.Now(),
		UserActionValue: decision.ActionPending,
	}
	updater.OnFeedback(context.Background(), event, nil)
	assert.Empty(t, repo.signals)
}
