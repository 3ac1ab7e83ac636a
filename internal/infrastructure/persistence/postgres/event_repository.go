package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dinnerarbiter/core/internal/domain/decision"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
)

// uniqueViolationCode is the Postgres SQLSTATE for a unique constraint
// violation.
const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// EventRepository implements outbound.EventRepository against the
// append-only decision_events table.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) Insert(ctx context.Context, event *decision.Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO decision_events
			(id, household_key, decided_at, decision_type, meal_id, external_vendor_key,
			 context_hash, decision_payload, user_action, actioned_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		event.ID, event.HouseholdKey, event.DecidedAt, string(event.DecisionType), event.MealID,
		event.ExternalVendorKey, event.ContextHash, json.RawMessage(event.DecisionPayload),
		string(event.UserActionValue), event.ActionedAt, event.Notes,
	)
	if isUniqueViolation(err) {
		return outbound.ErrUniquenessViolation
	}
	return err
}

// InsertFeedbackCopy enforces plain id uniqueness (primary key) plus the
// (context_hash, notes) dedupe rule used for idempotent autopilot
// inserts, checked inside the same transaction as the insert and under a
// transaction-scoped advisory lock on (household, context hash) to avoid a
// race between the check and the write.
func (r *EventRepository) InsertFeedbackCopy(ctx context.Context, event *decision.Event) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if event.Notes != nil {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, event.HouseholdKey+"|"+event.ContextHash); err != nil {
			return err
		}
		var exists bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM decision_events
				WHERE household_key = $1 AND context_hash = $2 AND notes = $3
			)
		`, event.HouseholdKey, event.ContextHash, *event.Notes).Scan(&exists)
		if err != nil {
			return err
		}
		if exists {
			return outbound.ErrUniquenessViolation
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO decision_events
			(id, household_key, decided_at, decision_type, meal_id, external_vendor_key,
			 context_hash, decision_payload, user_action, actioned_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		event.ID, event.HouseholdKey, event.DecidedAt, string(event.DecisionType), event.MealID,
		event.ExternalVendorKey, event.ContextHash, json.RawMessage(event.DecisionPayload),
		string(event.UserActionValue), event.ActionedAt, event.Notes,
	)
	if isUniqueViolation(err) {
		return outbound.ErrUniquenessViolation
	}
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *EventRepository) FindByID(ctx context.Context, householdKey string, id uuid.UUID) (*decision.Event, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, household_key, decided_at, decision_type, meal_id, external_vendor_key,
		       context_hash, decision_payload, user_action, actioned_at, notes
		FROM decision_events WHERE household_key = $1 AND id = $2
	`, householdKey, id)
	event, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, outbound.ErrNotFound
	}
	return event, err
}

func (r *EventRepository) FindRecent(ctx context.Context, householdKey string, limit int) ([]*decision.Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, household_key, decided_at, decision_type, meal_id, external_vendor_key,
		       context_hash, decision_payload, user_action, actioned_at, notes
		FROM decision_events WHERE household_key = $1
		ORDER BY decided_at DESC LIMIT $2
	`, householdKey, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*decision.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

func (r *EventRepository) CountByHousehold(ctx context.Context, householdKey string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM decision_events WHERE household_key = $1`, householdKey).Scan(&count)
	return count, err
}

func (r *EventRepository) FindAutopilotByContextHash(ctx context.Context, householdKey, contextHash string) (*decision.Event, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, household_key, decided_at, decision_type, meal_id, external_vendor_key,
		       context_hash, decision_payload, user_action, actioned_at, notes
		FROM decision_events
		WHERE household_key = $1 AND context_hash = $2 AND notes = $3
		LIMIT 1
	`, householdKey, contextHash, decision.NoteAutopilot)
	event, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, outbound.ErrNotFound
	}
	return event, err
}

func scanEvent(row rowScanner) (*decision.Event, error) {
	var e decision.Event
	var decisionType, userAction string
	var payload json.RawMessage
	if err := row.Scan(
		&e.ID, &e.HouseholdKey, &e.DecidedAt, &decisionType, &e.MealID, &e.ExternalVendorKey,
		&e.ContextHash, &payload, &userAction, &e.ActionedAt, &e.Notes,
	); err != nil {
		return nil, err
	}
	e.DecisionType = decision.Type(decisionType)
	e.UserActionValue = decision.UserAction(userAction)
	e.DecisionPayload = []byte(payload)
	return &e, nil
}
