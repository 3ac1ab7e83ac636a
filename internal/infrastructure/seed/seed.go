// Package seed bootstraps a fresh deployment: the starter meal/ingredient
// library every household draws from, and on-demand household
// registration. Neither adapter (postgres or memory) ships with data of
// its own — this is the one place that data is defined.
package seed

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dinnerarbiter/core/internal/domain/household"
	"github.com/dinnerarbiter/core/internal/domain/meal"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
)

// Seeder loads the starter meal library and bootstraps households.
type Seeder struct {
	meals      outbound.MealRepository
	households outbound.HouseholdRepository
	logger     *zap.Logger
}

func NewSeeder(meals outbound.MealRepository, households outbound.HouseholdRepository, logger *zap.Logger) *Seeder {
	return &Seeder{meals: meals, households: households, logger: logger.Named("seeder")}
}

// starterMeal is the source-of-truth shape for library entries defined
// in this package, before they're assigned real UUIDs.
type starterMeal struct {
	canonicalKey   string
	displayName    string
	stepsShort     string
	estPrepMinutes int
	cost           meal.CostBand
	tags           []string
	ingredients    []meal.Ingredient
}

// starterLibrary is a small, deliberately varied set of meals spanning
// every cost band and a mix of pantry-staple-only and shopping-dependent
// ingredient lists, so the arbiter and autopilot have real variety to
// select over from a fresh deployment.
var starterLibrary = []starterMeal{
	{
		canonicalKey: "chicken_stir_fry", displayName: "Chicken stir fry",
		stepsShort: "Cube chicken, stir fry with vegetables over rice.", estPrepMinutes: 25,
		cost: meal.CostBandMedium, tags: []string{"quick", "protein"},
		ingredients: []meal.Ingredient{
			{Name: "chicken breast", QuantityText: "1 lb", IsPantryStaple: false},
			{Name: "rice", QuantityText: "2 cups", IsPantryStaple: true},
			{Name: "soy sauce", QuantityText: "2 tbsp", IsPantryStaple: true},
			{Name: "mixed vegetables", QuantityText: "2 cups", IsPantryStaple: false},
		},
	},
	{
		canonicalKey: "pasta_aglio_olio", displayName: "Pasta aglio e olio",
		stepsShort: "Boil pasta, toss with garlic, olive oil, chili flakes.", estPrepMinutes: 15,
		cost: meal.CostBandLow, tags: []string{"quick", "pantry"},
		ingredients: []meal.Ingredient{
			{Name: "spaghetti", QuantityText: "1 lb", IsPantryStaple: true},
			{Name: "garlic", QuantityText: "6 cloves", IsPantryStaple: true},
			{Name: "olive oil", QuantityText: "1/3 cup", IsPantryStaple: true},
		},
	},
	{
		canonicalKey: "grilled_salmon", displayName: "Grilled salmon with asparagus",
		stepsShort: "Season salmon, grill with asparagus 10 minutes.", estPrepMinutes: 20,
		cost: meal.CostBandHigh, tags: []string{"protein", "light"},
		ingredients: []meal.Ingredient{
			{Name: "salmon fillet", QuantityText: "1.5 lb", IsPantryStaple: false},
			{Name: "asparagus", QuantityText: "1 bunch", IsPantryStaple: false},
			{Name: "lemon", QuantityText: "1", IsPantryStaple: false},
		},
	},
	{
		canonicalKey: "bean_and_rice_bowl", displayName: "Bean and rice bowl",
		stepsShort: "Warm beans and rice, top with salsa and cheese.", estPrepMinutes: 10,
		cost: meal.CostBandLow, tags: []string{"quick", "vegetarian", "pantry"},
		ingredients: []meal.Ingredient{
			{Name: "black beans", QuantityText: "1 can", IsPantryStaple: true},
			{Name: "rice", QuantityText: "2 cups", IsPantryStaple: true},
			{Name: "salsa", QuantityText: "1/2 cup", IsPantryStaple: true},
			{Name: "cheddar cheese", QuantityText: "1/2 cup", IsPantryStaple: false},
		},
	},
	{
		canonicalKey: "beef_tacos", displayName: "Beef tacos",
		stepsShort: "Brown beef with seasoning, serve in tortillas with toppings.", estPrepMinutes: 20,
		cost: meal.CostBandMedium, tags: []string{"family"},
		ingredients: []meal.Ingredient{
			{Name: "ground beef", QuantityText: "1 lb", IsPantryStaple: false},
			{Name: "taco seasoning", QuantityText: "1 packet", IsPantryStaple: true},
			{Name: "tortillas", QuantityText: "8", IsPantryStaple: false},
			{Name: "shredded lettuce", QuantityText: "1 cup", IsPantryStaple: false},
		},
	},
	{
		canonicalKey: "veggie_omelette", displayName: "Vegetable omelette",
		stepsShort: "Whisk eggs, fold in sauteed vegetables, cook through.", estPrepMinutes: 12,
		cost: meal.CostBandLow, tags: []string{"quick", "breakfast", "vegetarian"},
		ingredients: []meal.Ingredient{
			{Name: "eggs", QuantityText: "3", IsPantryStaple: false},
			{Name: "bell pepper", QuantityText: "1/2", IsPantryStaple: false},
			{Name: "onion", QuantityText: "1/4", IsPantryStaple: true},
		},
	},
}

// SeedStarterLibrary loads the starter meals into the wired
// MealRepository, under fresh ids on every call. Safe to call on every
// startup: the postgres adapter upserts on canonical_key, and the
// in-memory adapter starts empty in each process. Calling it twice on
// one in-memory repository stores every meal twice.
func (s *Seeder) SeedStarterLibrary(ctx context.Context) error {
	meals := make([]*meal.Meal, 0, len(starterLibrary))
	var ingredients []meal.Ingredient

	for _, sm := range starterLibrary {
		id := uuid.New()
		meals = append(meals, &meal.Meal{
			ID:             id,
			CanonicalKey:   sm.canonicalKey,
			DisplayName:    sm.displayName,
			StepsShort:     sm.stepsShort,
			EstPrepMinutes: sm.estPrepMinutes,
			Cost:           sm.cost,
			Tags:           sm.tags,
			Active:         true,
		})
		for _, ing := range sm.ingredients {
			ing.MealID = id
			ingredients = append(ingredients, ing)
		}
	}

	if err := s.meals.Seed(ctx, meals, ingredients); err != nil {
		return err
	}
	s.logger.Info("seeded starter meal library", zap.Int("meal_count", len(meals)))
	return nil
}

// EnsureHousehold bootstraps a household record on first contact — the
// household key itself comes from the bearer token (see
// internal/infrastructure/security), never from this package.
func (s *Seeder) EnsureHousehold(ctx context.Context, key, name string) (*household.Household, error) {
	return s.households.EnsureExists(ctx, key, name)
}
