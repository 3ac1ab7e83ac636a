package arbiter

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dinnerarbiter/core/internal/domain/inventory"
	"github.com/dinnerarbiter/core/internal/domain/meal"
	"github.com/dinnerarbiter/core/internal/domain/taste"
	"github.com/dinnerarbiter/core/pkg/tokenizer"
)

const (
	// StrongMatchThreshold is the matcher score at or above which a
	// matched ingredient's inventory contribution is not capped.
	StrongMatchThreshold = 0.80

	// WeakMatchCap bounds a weak match's inventory contribution even when
	// the matched item's decayed confidence is high.
	WeakMatchCap = 0.50

	// NeutralInventoryScore is used for meals with no ingredients at all.
	NeutralInventoryScore = 0.5

	// RotationWindow is how many of the most recent approved meals count
	// against a repeated selection.
	RotationWindow = 7

	// RotationPenalty is subtracted from a meal's score if it appears in
	// the rotation window.
	RotationPenalty = 0.20

	// MaxExplorationNoise bounds the deterministic per-(contextHash,
	// mealId) noise term.
	MaxExplorationNoise = 0.05

	WeightInventory = 0.60
	WeightTaste     = 0.35
)

// InventoryScoreForIngredient computes one ingredient's contribution to a
// meal's inventory score, against the candidate inventory items supplied
// (already pre-filtered by the caller; semantics do not depend on
// pre-filtering).
func InventoryScoreForIngredient(ingredientName string, isPantryStaple bool, candidates []*inventory.Item, now time.Time) float64 {
	if isPantryStaple {
		return 1.0
	}

	matchCandidates := make([]inventory.Candidate, len(candidates))
	byName := make(map[string]*inventory.Item, len(candidates))
	for i, it := range candidates {
		matchCandidates[i] = inventory.Candidate{Name: it.Name}
		byName[it.Name] = it
	}

	result, ok := inventory.Match(ingredientName, matchCandidates)
	if !ok {
		return 0
	}
	item, found := byName[result.Name]
	if !found {
		return 0
	}

	remaining := item.Remaining(now)
	if remaining != nil && *remaining <= 0 {
		return 0
	}
	confidence := item.DecayedConfidence(now)
	if confidence < inventory.AvailabilityThreshold {
		return 0
	}

	contribution := confidence * result.Score
	if result.Score < StrongMatchThreshold && contribution > WeakMatchCap {
		contribution = WeakMatchCap
	}
	return contribution
}

// MealInventoryScore is the mean inventory-score contribution across a
// meal's ingredients, or NeutralInventoryScore if it has none.
func MealInventoryScore(ingredients []meal.Ingredient, candidates []*inventory.Item, now time.Time) float64 {
	if len(ingredients) == 0 {
		return NeutralInventoryScore
	}
	var total float64
	for _, ing := range ingredients {
		total += InventoryScoreForIngredient(ing.Name, ing.IsPantryStaple, candidates, now)
	}
	return total / float64(len(ingredients))
}

// MealTasteValue maps a raw taste score to (0,1) via sigmoid; a missing
// score (ok=false) is treated as 0 before the sigmoid, which yields 0.5.
func MealTasteValue(score taste.MealScore, ok bool) float64 {
	if !ok {
		return taste.Sigmoid(0)
	}
	return taste.Sigmoid(score.Score)
}

// ExplorationNoise derives a deterministic value in [0, MaxExplorationNoise]
// from the context hash and meal id. An empty context hash always yields
// zero noise, keeping deterministic tests noise-free.
func ExplorationNoise(contextHash string, mealID uuid.UUID) float64 {
	if contextHash == "" {
		return 0
	}
	h := sha256.Sum256([]byte(contextHash + "|" + mealID.String()))
	v := binary.BigEndian.Uint64(h[:8])
	fraction := float64(v) / float64(^uint64(0))
	return fraction * MaxExplorationNoise
}

// ScoredMeal is one candidate's computed score and its components, kept
// for observability/testing.
type ScoredMeal struct {
	Meal           *meal.Meal
	InventoryScore float64
	TasteScore     float64
	RotationHit    bool
	Noise          float64
	FinalScore     float64
}

// Select filters to active, non-just-rejected meals, scores every
// candidate, and deterministically picks the highest — ties broken by
// canonical key ascending. Returns (nil, false) if no meal remains.
func Select(state State, now time.Time, contextHash string) (*ScoredMeal, bool) {
	rejected := state.RejectedWithin24h(now)
	rotation := make(map[uuid.UUID]struct{})
	for _, id := range state.ApprovedMealsWithinWindow(RotationWindow) {
		rotation[id] = struct{}{}
	}

	scored := make([]ScoredMeal, 0, len(state.Meals))
	for _, m := range state.Meals {
		if !m.Active {
			continue
		}
		if _, isRejected := rejected[m.ID]; isRejected {
			continue
		}

		ingredients := state.IngredientsByMeal[m.ID]
		invScore := MealInventoryScore(ingredients, state.Inventory, now)

		ts, hasTaste := state.TasteScores[m.ID]
		tasteScore := MealTasteValue(ts, hasTaste)

		_, rotationHit := rotation[m.ID]
		penalty := 0.0
		if rotationHit {
			penalty = -RotationPenalty
		}

		noise := ExplorationNoise(contextHash, m.ID)

		final := WeightInventory*invScore + WeightTaste*tasteScore + penalty + noise

		scored = append(scored, ScoredMeal{
			Meal:           m,
			InventoryScore: invScore,
			TasteScore:     tasteScore,
			RotationHit:    rotationHit,
			Noise:          noise,
			FinalScore:     final,
		})
	}

	if len(scored) == 0 {
		return nil, false
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].FinalScore != scored[j].FinalScore {
			return scored[i].FinalScore > scored[j].FinalScore
		}
		return scored[i].Meal.CanonicalKey < scored[j].Meal.CanonicalKey
	})

	winner := scored[0]
	return &winner, true
}

// TopKInventoryFallback returns the mean inventory score across the
// top-K scored meals (by inventory score), or NeutralInventoryScore if
// none. Used by the autopilot gate that needs a whole-household estimate
// without a specific candidate already selected.
func TopKInventoryFallback(state State, now time.Time, k int) float64 {
	scores := inventoryScoresForActiveMeals(state, now)
	if len(scores) == 0 {
		return NeutralInventoryScore
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))
	if k > len(scores) {
		k = len(scores)
	}
	var sum float64
	for _, s := range scores[:k] {
		sum += s
	}
	return sum / float64(k)
}

// TopKTasteFallback returns sigmoid of the mean raw taste score across
// the top-K scored meals.
func TopKTasteFallback(state State, k int) float64 {
	rawScores := make([]float64, 0, len(state.Meals))
	for _, m := range state.Meals {
		if !m.Active {
			continue
		}
		if ts, ok := state.TasteScores[m.ID]; ok {
			rawScores = append(rawScores, ts.Score)
		} else {
			rawScores = append(rawScores, 0)
		}
	}
	if len(rawScores) == 0 {
		return taste.Sigmoid(0)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(rawScores)))
	if k > len(rawScores) {
		k = len(rawScores)
	}
	var sum float64
	for _, s := range rawScores[:k] {
		sum += s
	}
	return taste.Sigmoid(sum / float64(k))
}

func inventoryScoresForActiveMeals(state State, now time.Time) []float64 {
	out := make([]float64, 0, len(state.Meals))
	for _, m := range state.Meals {
		if !m.Active {
			continue
		}
		ingredients := state.IngredientsByMeal[m.ID]
		out = append(out, MealInventoryScore(ingredients, state.Inventory, now))
	}
	return out
}

// PreFilterTokens returns up to the 3 longest tokens of an ingredient
// name, for the optimization pre-filter query described in the matcher
// design (sent as ILIKE-style patterns to the inventory store). Matcher
// semantics never depend on this being used — it only narrows what is
// fetched before Match runs.
func PreFilterTokens(ingredientName string) []string {
	tokens := tokenizer.Tokenize(ingredientName)
	sort.SliceStable(tokens, func(i, j int) bool { return len(tokens[i]) > len(tokens[j]) })
	if len(tokens) > 3 {
		tokens = tokens[:3]
	}
	return tokens
}
