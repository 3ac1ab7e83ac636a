package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dinnerarbiter/core/internal/domain/decision"
	"github.com/dinnerarbiter/core/internal/domain/taste"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
)

// TasteRepository implements outbound.TasteRepository against the
// taste_signals (append-only) and taste_meal_scores (mutable rollup)
// tables.
type TasteRepository struct {
	pool *pgxpool.Pool
}

func NewTasteRepository(pool *pgxpool.Pool) *TasteRepository {
	return &TasteRepository{pool: pool}
}

func (r *TasteRepository) InsertSignal(ctx context.Context, signal *taste.Signal) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO taste_signals
			(id, household_key, decided_at, actioned_at, decision_event_id, meal_id,
			 decision_type, user_action, context_hash, features, weight, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		signal.ID, signal.HouseholdKey, signal.DecidedAt, signal.ActionedAt, signal.DecisionEventID,
		signal.MealID, string(signal.DecisionType), string(signal.UserActionValue), signal.ContextHash,
		json.RawMessage(signal.Features), signal.Weight, signal.Notes,
	)
	if isUniqueViolation(err) {
		return outbound.ErrUniquenessViolation
	}
	return err
}

// UpsertMealScore reads the existing row (or a zero-value one) inside a
// transaction, applies the caller's pure merge function, and writes the
// result back — the same read-modify-write contract the in-memory
// adapter provides, made safe for concurrent writers via a
// transaction-scoped advisory lock on (household, meal), which also covers
// the first write for a meal when no row exists yet to lock.
func (r *TasteRepository) UpsertMealScore(ctx context.Context, householdKey string, mealID uuid.UUID, apply func(existing taste.MealScore) taste.MealScore) (taste.MealScore, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return taste.MealScore{}, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, householdKey+"|"+mealID.String()); err != nil {
		return taste.MealScore{}, err
	}

	var existing taste.MealScore
	row := tx.QueryRow(ctx, `
		SELECT household_key, meal_id, score, approvals, rejections, last_seen_at, updated_at
		FROM taste_meal_scores WHERE household_key = $1 AND meal_id = $2
		FOR UPDATE
	`, householdKey, mealID)
	err = row.Scan(&existing.HouseholdKey, &existing.MealID, &existing.Score, &existing.Approvals,
		&existing.Rejections, &existing.LastSeenAt, &existing.UpdatedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return taste.MealScore{}, err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		existing = taste.MealScore{HouseholdKey: householdKey, MealID: mealID}
	}

	updated := apply(existing)

	_, err = tx.Exec(ctx, `
		INSERT INTO taste_meal_scores (household_key, meal_id, score, approvals, rejections, last_seen_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (household_key, meal_id) DO UPDATE SET
			score = EXCLUDED.score, approvals = EXCLUDED.approvals, rejections = EXCLUDED.rejections,
			last_seen_at = EXCLUDED.last_seen_at, updated_at = EXCLUDED.updated_at
	`, updated.HouseholdKey, updated.MealID, updated.Score, updated.Approvals, updated.Rejections,
		updated.LastSeenAt, updated.UpdatedAt)
	if err != nil {
		return taste.MealScore{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return taste.MealScore{}, err
	}
	return updated, nil
}

func (r *TasteRepository) FindMealScore(ctx context.Context, householdKey string, mealID uuid.UUID) (*taste.MealScore, error) {
	var score taste.MealScore
	row := r.pool.QueryRow(ctx, `
		SELECT household_key, meal_id, score, approvals, rejections, last_seen_at, updated_at
		FROM taste_meal_scores WHERE household_key = $1 AND meal_id = $2
	`, householdKey, mealID)
	err := row.Scan(&score.HouseholdKey, &score.MealID, &score.Score, &score.Approvals,
		&score.Rejections, &score.LastSeenAt, &score.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, outbound.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func (r *TasteRepository) FindMealScores(ctx context.Context, householdKey string, mealIDs []uuid.UUID) (map[uuid.UUID]taste.MealScore, error) {
	out := make(map[uuid.UUID]taste.MealScore, len(mealIDs))
	if len(mealIDs) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT household_key, meal_id, score, approvals, rejections, last_seen_at, updated_at
		FROM taste_meal_scores WHERE household_key = $1 AND meal_id = ANY($2)
	`, householdKey, mealIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var score taste.MealScore
		if err := rows.Scan(&score.HouseholdKey, &score.MealID, &score.Score, &score.Approvals,
			&score.Rejections, &score.LastSeenAt, &score.UpdatedAt); err != nil {
			return nil, err
		}
		out[score.MealID] = score
	}
	return out, rows.Err()
}

func (r *TasteRepository) HasUndoWithinWindow(ctx context.Context, householdKey string, since time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM taste_signals
			WHERE household_key = $1 AND decided_at >= $2 AND notes = $3
		)
	`, householdKey, since, decision.NoteUndoAutopilot).Scan(&exists)
	return exists, err
}
