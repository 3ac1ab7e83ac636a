package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dinnerarbiter/core/internal/domain/inventory"
)

// InventoryRepository implements outbound.InventoryRepository against
// the household-scoped inventory_items table.
type InventoryRepository struct {
	pool *pgxpool.Pool
}

func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

// FindCandidates mirrors the in-memory adapter's substring match with a
// set of ILIKE '%token%' clauses, ordered confidence DESC then
// last-seen DESC.
func (r *InventoryRepository) FindCandidates(ctx context.Context, householdKey string, tokens []string, limit int) ([]*inventory.Item, error) {
	query := `
		SELECT id, household_key, name, qty_estimated, qty_used, unit, confidence,
		       source_kind, last_seen_at, last_used_at, expires_at, decay_rate_per_day, created_at
		FROM inventory_items
		WHERE household_key = $1
	`
	args := []interface{}{householdKey}

	if len(tokens) > 0 {
		var clauses []string
		for _, t := range tokens {
			args = append(args, "%"+t+"%")
			clauses = append(clauses, fmt.Sprintf("name ILIKE $%d", len(args)))
		}
		query += " AND (" + strings.Join(clauses, " OR ") + ")"
	}

	query += " ORDER BY confidence DESC, last_seen_at DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*inventory.Item
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInventoryItem(row rowScanner) (*inventory.Item, error) {
	var item inventory.Item
	var source string
	if err := row.Scan(
		&item.ID, &item.HouseholdKey, &item.Name, &item.QtyEstimated, &item.QtyUsed, &item.Unit,
		&item.Confidence, &source, &item.LastSeenAt, &item.LastUsedAt, &item.ExpiresAt,
		&item.DecayRatePerDay, &item.CreatedAt,
	); err != nil {
		return nil, err
	}
	item.SourceKind = inventory.Source(source)
	return &item, nil
}

func (r *InventoryRepository) Insert(ctx context.Context, item *inventory.Item) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO inventory_items
			(id, household_key, name, qty_estimated, qty_used, unit, confidence,
			 source_kind, last_seen_at, last_used_at, expires_at, decay_rate_per_day, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		item.ID, item.HouseholdKey, item.Name, item.QtyEstimated, item.QtyUsed, item.Unit,
		item.Confidence, string(item.SourceKind), item.LastSeenAt, item.LastUsedAt, item.ExpiresAt,
		item.DecayRatePerDay, item.CreatedAt,
	)
	return err
}

func (r *InventoryRepository) IncrementUsage(ctx context.Context, itemID uuid.UUID, delta float64, lastUsedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE inventory_items SET qty_used = qty_used + $2, last_used_at = $3 WHERE id = $1
	`, itemID, delta, lastUsedAt)
	return err
}
