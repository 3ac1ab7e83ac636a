package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dinnerarbiter/core/internal/domain/meal"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
)

// MealRepository implements outbound.MealRepository against the
// read-mostly meals/meal_ingredients tables.
type MealRepository struct {
	pool *pgxpool.Pool
}

func NewMealRepository(pool *pgxpool.Pool) *MealRepository {
	return &MealRepository{pool: pool}
}

func (r *MealRepository) FindActiveMeals(ctx context.Context) ([]*meal.Meal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, canonical_key, display_name, steps_short, est_prep_minutes, cost, tags, active
		FROM meals WHERE active = TRUE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*meal.Meal
	for rows.Next() {
		var m meal.Meal
		var cost string
		if err := rows.Scan(&m.ID, &m.CanonicalKey, &m.DisplayName, &m.StepsShort, &m.EstPrepMinutes, &cost, &m.Tags, &m.Active); err != nil {
			return nil, err
		}
		m.Cost = meal.CostBand(cost)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *MealRepository) FindIngredients(ctx context.Context, mealID uuid.UUID) ([]meal.Ingredient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT meal_id, name, quantity_text, is_pantry_staple
		FROM meal_ingredients WHERE meal_id = $1
	`, mealID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []meal.Ingredient
	for rows.Next() {
		var ing meal.Ingredient
		if err := rows.Scan(&ing.MealID, &ing.Name, &ing.QuantityText, &ing.IsPantryStaple); err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

func (r *MealRepository) FindIngredientsForMeals(ctx context.Context, mealIDs []uuid.UUID) (map[uuid.UUID][]meal.Ingredient, error) {
	out := make(map[uuid.UUID][]meal.Ingredient, len(mealIDs))
	if len(mealIDs) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT meal_id, name, quantity_text, is_pantry_staple
		FROM meal_ingredients WHERE meal_id = ANY($1)
	`, mealIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ing meal.Ingredient
		if err := rows.Scan(&ing.MealID, &ing.Name, &ing.QuantityText, &ing.IsPantryStaple); err != nil {
			return nil, err
		}
		out[ing.MealID] = append(out[ing.MealID], ing)
	}
	return out, rows.Err()
}

func (r *MealRepository) FindByID(ctx context.Context, id uuid.UUID) (*meal.Meal, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, canonical_key, display_name, steps_short, est_prep_minutes, cost, tags, active
		FROM meals WHERE id = $1
	`, id)
	var m meal.Meal
	var cost string
	if err := row.Scan(&m.ID, &m.CanonicalKey, &m.DisplayName, &m.StepsShort, &m.EstPrepMinutes, &cost, &m.Tags, &m.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, outbound.ErrNotFound
		}
		return nil, err
	}
	m.Cost = meal.CostBand(cost)
	return &m, nil
}

// Seed upserts the shared meal library, keyed by canonical_key so
// re-running it (e.g. on every deploy) is idempotent: an existing meal
// keeps its stored id and its ingredient rows are replaced.
func (r *MealRepository) Seed(ctx context.Context, meals []*meal.Meal, ingredients []meal.Ingredient) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	storedIDs := make(map[uuid.UUID]uuid.UUID, len(meals))
	for _, m := range meals {
		var storedID uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO meals (id, canonical_key, display_name, steps_short, est_prep_minutes, cost, tags, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (canonical_key) DO UPDATE SET
				display_name = EXCLUDED.display_name,
				steps_short = EXCLUDED.steps_short,
				est_prep_minutes = EXCLUDED.est_prep_minutes,
				cost = EXCLUDED.cost,
				tags = EXCLUDED.tags,
				active = EXCLUDED.active
			RETURNING id
		`, m.ID, m.CanonicalKey, m.DisplayName, m.StepsShort, m.EstPrepMinutes, string(m.Cost), m.Tags, m.Active).Scan(&storedID)
		if err != nil {
			return err
		}
		storedIDs[m.ID] = storedID
		if _, err := tx.Exec(ctx, `DELETE FROM meal_ingredients WHERE meal_id = $1`, storedID); err != nil {
			return err
		}
	}

	for _, ing := range ingredients {
		mealID := ing.MealID
		if stored, ok := storedIDs[mealID]; ok {
			mealID = stored
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO meal_ingredients (meal_id, name, quantity_text, is_pantry_staple)
			VALUES ($1, $2, $3, $4)
		`, mealID, ing.Name, ing.QuantityText, ing.IsPantryStaple); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
