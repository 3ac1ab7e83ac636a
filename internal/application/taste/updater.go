// Package taste implements the best-effort taste updater that runs after
// every feedback-copy insert: it records a taste signal and rolls it into
// the meal's running score, isolating any failure from the feedback
// response that triggered it.
package taste

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/dinnerarbiter/core/internal/domain/decision"
	"github.com/dinnerarbiter/core/internal/domain/meal"
	"github.com/dinnerarbiter/core/internal/domain/taste"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
	"github.com/dinnerarbiter/core/pkg/tokenizer"
)

// MaxFeatureTokens bounds the snapshot of ingredient tokens stored on a
// taste signal.
const MaxFeatureTokens = 20

// Updater is the best-effort taste updater. Its single public method
// never returns an error to blocking callers — failures are logged and
// swallowed, matching the "best-effort, non-blocking" contract.
type Updater struct {
	taste  outbound.TasteRepository
	logger *zap.Logger
}

func NewUpdater(taste outbound.TasteRepository, logger *zap.Logger) *Updater {
	return &Updater{taste: taste, logger: logger.Named("taste_updater")}
}

// Features is the opaque-on-the-wire snapshot of a meal's characteristics
// at decision time, captured on every taste signal.
type Features struct {
	CanonicalKey   string   `json:"canonicalKey"`
	EstMinutes     int      `json:"estMinutes"`
	CostBand       string   `json:"costBand"`
	PantryFriendly bool     `json:"pantryFriendly"`
	Tokens         []string `json:"tokens"`
}

// BuildFeatures snapshots a meal and its ingredients into the feature
// record stored alongside a taste signal.
func BuildFeatures(m *meal.Meal, ingredients []meal.Ingredient) Features {
	pantryFriendly := true
	tokenSet := make(map[string]struct{})
	for _, ing := range ingredients {
		if !ing.IsPantryStaple {
			pantryFriendly = false
		}
		for _, tok := range tokenizer.Tokenize(ing.Name) {
			tokenSet[tok] = struct{}{}
		}
	}
	tokens := make([]string, 0, len(tokenSet))
	for t := range tokenSet {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	if len(tokens) > MaxFeatureTokens {
		tokens = tokens[:MaxFeatureTokens]
	}
	return Features{
		CanonicalKey:   m.CanonicalKey,
		EstMinutes:     m.EstPrepMinutes,
		CostBand:       string(m.Cost),
		PantryFriendly: pantryFriendly,
		Tokens:         tokens,
	}
}

// OnFeedback runs the taste updater for a just-inserted feedback copy.
// It never propagates an error; callers should invoke it fire-and-forget
// style (with a tight sub-timeout context) and ignore the outcome beyond
// logging, matching the best-effort design in the feedback endpoint.
func (u *Updater) OnFeedback(ctx context.Context, feedback *decision.Event, features []byte) {
	signal, ok := taste.NewSignal(
		feedback.HouseholdKey,
		feedback.DecidedAt,
		feedback.ActionedAt,
		feedback.ID,
		feedback.MealID,
		feedback.DecisionType,
		feedback.UserActionValue,
		feedback.ContextHash,
		features,
		feedback.Notes,
	)
	if !ok {
		// no defined weight for this action (e.g. pending) — nothing to record
		return
	}

	if err := u.taste.InsertSignal(ctx, signal); err != nil {
		if errors.Is(err, outbound.ErrUniquenessViolation) {
			u.logger.Warn("taste signal already processed", zap.String("decision_event_id", feedback.ID.String()))
			return
		}
		u.logger.Warn("failed to insert taste signal", zap.Error(err), zap.String("decision_event_id", feedback.ID.String()))
		return
	}

	if feedback.IsUndoAutopilot() {
		// undo exception: the signal is recorded but must not move the
		// meal's rolling score.
		return
	}

	if feedback.MealID == nil {
		return
	}

	now := time.Now()
	if _, err := u.taste.UpsertMealScore(ctx, feedback.HouseholdKey, *feedback.MealID, func(existing taste.MealScore) taste.MealScore {
		return taste.ApplySignal(existing, *signal, now)
	}); err != nil {
		u.logger.Warn("failed to upsert meal score", zap.Error(err), zap.String("meal_id", feedback.MealID.String()))
	}
}
