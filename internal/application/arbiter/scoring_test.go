package arbiter

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinnerarbiter/core/internal/domain/decision"
	"github.com/dinnerarbiter/core/internal/domain/inventory"
	"github.com/dinnerarbiter/core/internal/domain/meal"
)

func invItem(name string, confidence float64, qty float64, used float64, seen time.Time) *inventory.Item {
	q := qty
	return &inventory.Item{
		Name:            name,
		Confidence:      confidence,
		QtyEstimated:    &q,
		QtyUsed:         used,
		LastSeenAt:      seen,
		DecayRatePerDay: inventory.DefaultDecayRate,
	}
}

func TestInventoryScoreForIngredient_PantryStapleAlwaysOne(t *testing.T) {
	score := InventoryScoreForIngredient("salt", true, nil, time.Now())
	assert.Equal(t, 1.0, score)
}

func TestInventoryScoreForIngredient_NoMatchIsZero(t *testing.T) {
	now := time.Now()
	score := InventoryScoreForIngredient("chicken breast", false, []*inventory.Item{invItem("shampoo", 1.0, 5, 0, now)}, now)
	assert.Equal(t, 0.0, score)
}

func TestInventoryScoreForIngredient_StrongMatchUncapped(t *testing.T) {
	now := time.Now()
	score := InventoryScoreForIngredient("chicken breast", false, []*inventory.Item{invItem("chicken breast", 1.0, 5, 0, now)}, now)
	assert.InDelta(t, 1.0, score, 1e-6)
}

func TestInventoryScoreForIngredient_WeakMatchCapped(t *testing.T) {
	now := time.Now()
	// "chicken breast rice" vs "chicken breast salad wrap": 2/3 overlap = 0.667 (weak)
	score := InventoryScoreForIngredient("chicken breast rice", false, []*inventory.Item{invItem("chicken breast salad wrap", 1.0, 5, 0, now)}, now)
	assert.LessOrEqual(t, score, WeakMatchCap+1e-9)
}

func TestInventoryScoreForIngredient_ZeroRemainingIsZero(t *testing.T) {
	now := time.Now()
	score := InventoryScoreForIngredient("chicken breast", false, []*inventory.Item{invItem("chicken breast", 1.0, 1, 1, now)}, now)
	assert.Equal(t, 0.0, score)
}

func TestMealInventoryScore_NoIngredientsIsNeutral(t *testing.T) {
	score := MealInventoryScore(nil, nil, time.Now())
	assert.Equal(t, NeutralInventoryScore, score)
}

func TestExplorationNoise_EmptyContextHashIsZero(t *testing.T) {
	assert.Equal(t, 0.0, ExplorationNoise("", uuid.New()))
}

func TestExplorationNoise_BoundedAndDeterministic(t *testing.T) {
	mealID := uuid.New()
	a := ExplorationNoise("ctx-1", mealID)
	b := ExplorationNoise("ctx-1", mealID)
	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a, 0.0)
	assert.LessOrEqual(t, a, MaxExplorationNoise)
}

func TestSelect_PicksHighestScoringActiveMeal(t *testing.T) {
	now := time.Now()
	m1 := &meal.Meal{ID: uuid.New(), CanonicalKey: "beta", Active: true}
	m2 := &meal.Meal{ID: uuid.New(), CanonicalKey: "alpha", Active: true}
	state := State{
		Meals: []*meal.Meal{m1, m2},
		IngredientsByMeal: map[uuid.UUID][]meal.Ingredient{
			m1.ID: {{Name: "chicken breast", IsPantryStaple: false}},
			m2.ID: {},
		},
		Inventory: []*inventory.Item{invItem("chicken breast", 0.95, 5, 0, now)},
	}
	winner, ok := Select(state, now, "")
	require.True(t, ok)
	assert.Equal(t, m1.ID, winner.Meal.ID)
}

func TestSelect_TieBreaksByCanonicalKeyAscending(t *testing.T) {
	now := time.Now()
	m1 := &meal.Meal{ID: uuid.New(), CanonicalKey: "zeta", Active: true}
	m2 := &meal.Meal{ID: uuid.New(), CanonicalKey: "alpha", Active: true}
	state := State{
		Meals:             []*meal.Meal{m1, m2},
		IngredientsByMeal: map[uuid.UUID][]meal.Ingredient{},
	}
	winner, ok := Select(state, now, "")
	require.True(t, ok)
	assert.Equal(t, "alpha", winner.Meal.CanonicalKey)
}

func TestSelect_InactiveMealsExcluded(t *testing.T) {
	m1 := &meal.Meal{ID: uuid.New(), CanonicalKey: "only", Active: false}
	state := State{Meals: []*meal.Meal{m1}}
	_, ok := Select(state, time.Now(), "")
	assert.False(t, ok)
}

func TestSelect_RejectedWithin24hExcluded(t *testing.T) {
	now := time.Now()
	mealID := uuid.New()
	m1 := &meal.Meal{ID: mealID, CanonicalKey: "only", Active: true}
	actionedAt := now.Add(-time.Hour)
	rejectedEvent := &decision.Event{
		MealID:          &mealID,
		UserActionValue: decision.ActionRejected,
		ActionedAt:      &actionedAt,
	}
	state := State{
		Meals:             []*meal.Meal{m1},
		IngredientsByMeal: map[uuid.UUID][]meal.Ingredient{},
		RecentEvents:      []*decision.Event{rejectedEvent},
	}
	_, ok := Select(state, now, "")
	assert.False(t, ok)
}

func TestSelect_NoMealsReturnsFalse(t *testing.T) {
	_, ok := Select(State{}, time.Now(), "")
	assert.False(t, ok)
}
