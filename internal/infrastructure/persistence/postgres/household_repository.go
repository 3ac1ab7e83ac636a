package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dinnerarbiter/core/internal/domain/household"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
)

// HouseholdRepository implements outbound.HouseholdRepository against the
// households table.
type HouseholdRepository struct {
	pool *pgxpool.Pool
}

func NewHouseholdRepository(pool *pgxpool.Pool) *HouseholdRepository {
	return &HouseholdRepository{pool: pool}
}

func (r *HouseholdRepository) FindByKey(ctx context.Context, key string) (*household.Household, error) {
	row := r.pool.QueryRow(ctx, `SELECT key, name, created_at FROM households WHERE key = $1`, key)
	var h household.Household
	if err := row.Scan(&h.Key, &h.Name, &h.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, outbound.ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

func (r *HouseholdRepository) EnsureExists(ctx context.Context, key, name string) (*household.Household, error) {
	now := time.Now()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO households (key, name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO NOTHING
	`, key, name, now)
	if err != nil {
		return nil, err
	}
	return r.FindByKey(ctx, key)
}
