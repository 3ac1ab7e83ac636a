package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dinnerarbiter/core/internal/domain/meal"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
)

// MealRepository implements outbound.MealRepository over a mutex-guarded
// map. The meal library is read-mostly: Seed stores each given meal under
// its id and appends the given ingredients. It does not remove meals
// already loaded and does not match on canonical key.
type MealRepository struct {
	mutex       sync.RWMutex
	meals       map[uuid.UUID]*meal.Meal
	ingredients map[uuid.UUID][]meal.Ingredient
}

func NewMealRepository() *MealRepository {
	return &MealRepository{
		meals:       make(map[uuid.UUID]*meal.Meal),
		ingredients: make(map[uuid.UUID][]meal.Ingredient),
	}
}

func (r *MealRepository) FindActiveMeals(ctx context.Context) ([]*meal.Meal, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]*meal.Meal, 0, len(r.meals))
	for _, m := range r.meals {
		if m.Active {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MealRepository) FindIngredients(ctx context.Context, mealID uuid.UUID) ([]meal.Ingredient, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return append([]meal.Ingredient(nil), r.ingredients[mealID]...), nil
}

func (r *MealRepository) FindIngredientsForMeals(ctx context.Context, mealIDs []uuid.UUID) (map[uuid.UUID][]meal.Ingredient, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make(map[uuid.UUID][]meal.Ingredient, len(mealIDs))
	for _, id := range mealIDs {
		out[id] = append([]meal.Ingredient(nil), r.ingredients[id]...)
	}
	return out, nil
}

func (r *MealRepository) FindByID(ctx context.Context, id uuid.UUID) (*meal.Meal, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	m, ok := r.meals[id]
	if !ok {
		return nil, outbound.ErrNotFound
	}
	return m, nil
}

func (r *MealRepository) Seed(ctx context.Context, meals []*meal.Meal, ingredients []meal.Ingredient) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, m := range meals {
		r.meals[m.ID] = m
	}
	for _, ing := range ingredients {
		r.ingredients[ing.MealID] = append(r.ingredients[ing.MealID], ing)
	}
	return nil
}
