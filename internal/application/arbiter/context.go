// Package arbiter implements the single-decision engine: DRM trigger
// evaluation, autopilot eligibility, candidate scoring and selection, and
// the /decision, /feedback, and /drm endpoint orchestration built on top
// of them.
package arbiter

import (
	"time"

	"github.com/google/uuid"

	"github.com/dinnerarbiter/core/internal/domain/decision"
	"github.com/dinnerarbiter/core/internal/domain/inventory"
	"github.com/dinnerarbiter/core/internal/domain/meal"
	"github.com/dinnerarbiter/core/internal/domain/taste"
)

// Signal is the request-supplied context for one decision call.
type Signal struct {
	TimeWindow       string
	Energy           string
	CalendarConflict bool
}

// State is the household state loaded before scoring: the active meal
// library, its ingredients, the household's inventory, recent decision
// events, and taste scores for the candidate meals.
type State struct {
	Meals             []*meal.Meal
	IngredientsByMeal map[uuid.UUID][]meal.Ingredient
	Inventory         []*inventory.Item
	RecentEvents      []*decision.Event
	TasteScores       map[uuid.UUID]taste.MealScore
}

// MealsByID indexes the loaded meal library for quick lookup.
func (s State) MealsByID() map[uuid.UUID]*meal.Meal {
	out := make(map[uuid.UUID]*meal.Meal, len(s.Meals))
	for _, m := range s.Meals {
		out[m.ID] = m
	}
	return out
}

// RejectedWithin24h returns the set of meal ids rejected within the
// trailing 24 hours of now.
func (s State) RejectedWithin24h(now time.Time) map[uuid.UUID]struct{} {
	cutoff := now.Add(-24 * time.Hour)
	out := make(map[uuid.UUID]struct{})
	for _, e := range s.RecentEvents {
		if e.UserActionValue != decision.ActionRejected || e.ActionedAt == nil {
			continue
		}
		if e.ActionedAt.Before(cutoff) {
			continue
		}
		if e.MealID != nil {
			out[*e.MealID] = struct{}{}
		}
	}
	return out
}

// ApprovedMealsWithinWindow returns up to windowSize of the most recent
// approved meal ids, ordered most-recent-first, for the rotation penalty.
func (s State) ApprovedMealsWithinWindow(windowSize int) []uuid.UUID {
	out := make([]uuid.UUID, 0, windowSize)
	for _, e := range s.RecentEvents { // already ordered decided_at DESC
		if e.UserActionValue != decision.ActionApproved || e.MealID == nil {
			continue
		}
		out = append(out, *e.MealID)
		if len(out) >= windowSize {
			break
		}
	}
	return out
}
