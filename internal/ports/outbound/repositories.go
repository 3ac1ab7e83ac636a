// Package outbound defines the interfaces for outbound ports (secondary/
// driven adapters): the contracts the application layer uses to reach
// durable storage and external collaborators. Two adapters implement
// every repository interface here — internal/infrastructure/persistence/postgres
// and .../memory — so application code and its tests never depend on
// which one is wired.
package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dinnerarbiter/core/internal/domain/decision"
	"github.com/dinnerarbiter/core/internal/domain/household"
	"github.com/dinnerarbiter/core/internal/domain/inventory"
	"github.com/dinnerarbiter/core/internal/domain/meal"
	"github.com/dinnerarbiter/core/internal/domain/receipt"
	"github.com/dinnerarbiter/core/internal/domain/taste"
)

// ErrNotFound is returned by FindByID-style lookups when no row matches.
// Adapters must wrap this (or an equivalent pkg/errors NotFound) rather
// than returning a bare driver error.
var ErrNotFound = errorString("not found")

type errorString string

func (e errorString) Error() string { return string(e) }

// ErrUniquenessViolation is returned when an insert collides with a
// uniqueness constraint the caller must treat as "already processed"
// (duplicate event id, duplicate taste signal, duplicate canonical
// receipt).
var ErrUniquenessViolation = errorString("uniqueness violation")

// HouseholdRepository resolves and bootstraps household identity.
type HouseholdRepository interface {
	FindByKey(ctx context.Context, key string) (*household.Household, error)
	EnsureExists(ctx context.Context, key, name string) (*household.Household, error)
}

// MealRepository reads the shared, read-only meal/ingredient library.
type MealRepository interface {
	FindActiveMeals(ctx context.Context) ([]*meal.Meal, error)
	FindIngredients(ctx context.Context, mealID uuid.UUID) ([]meal.Ingredient, error)
	FindIngredientsForMeals(ctx context.Context, mealIDs []uuid.UUID) (map[uuid.UUID][]meal.Ingredient, error)
	FindByID(ctx context.Context, id uuid.UUID) (*meal.Meal, error)
	Seed(ctx context.Context, meals []*meal.Meal, ingredients []meal.Ingredient) error
}

// InventoryRepository manages the household-scoped probabilistic pantry
// state.
type InventoryRepository interface {
	// FindCandidates returns up to limit inventory rows for the household
	// whose name loosely matches one of the given pre-filter tokens
	// (ILIKE-style), ordered confidence DESC then last-seen DESC. Passing
	// no tokens returns the household's full inventory under the same
	// ordering, still capped at limit.
	FindCandidates(ctx context.Context, householdKey string, tokens []string, limit int) ([]*inventory.Item, error)
	Insert(ctx context.Context, item *inventory.Item) error
	IncrementUsage(ctx context.Context, itemID uuid.UUID, delta float64, lastUsedAt time.Time) error
}

// EventRepository is the append-only decision event log (component 7).
type EventRepository interface {
	Insert(ctx context.Context, event *decision.Event) error
	// InsertFeedbackCopy persists a new row derived from an existing
	// event, per the append-only feedback contract. Must surface
	// ErrUniquenessViolation when an identical (context_hash, notes)
	// autopilot row already exists.
	InsertFeedbackCopy(ctx context.Context, event *decision.Event) error
	FindByID(ctx context.Context, householdKey string, id uuid.UUID) (*decision.Event, error)
	// FindRecent returns events for the household ordered by decided_at
	// descending, capped at limit.
	FindRecent(ctx context.Context, householdKey string, limit int) ([]*decision.Event, error)
	CountByHousehold(ctx context.Context, householdKey string) (int64, error)
	// FindAutopilotByContextHash supports the idempotent-autopilot-insert
	// check: an existing row with notes="autopilot" for this context hash.
	FindAutopilotByContextHash(ctx context.Context, householdKey, contextHash string) (*decision.Event, error)
}

// TasteRepository manages taste signals and rolled-up per-meal scores
// (components 8 and derived reads for component 11).
type TasteRepository interface {
	// InsertSignal must surface ErrUniquenessViolation on a duplicate
	// decision_event_id.
	InsertSignal(ctx context.Context, signal *taste.Signal) error
	UpsertMealScore(ctx context.Context, householdKey string, mealID uuid.UUID, apply func(existing taste.MealScore) taste.MealScore) (taste.MealScore, error)
	FindMealScore(ctx context.Context, householdKey string, mealID uuid.UUID) (*taste.MealScore, error)
	FindMealScores(ctx context.Context, householdKey string, mealIDs []uuid.UUID) (map[uuid.UUID]taste.MealScore, error)
	// HasUndoWithinWindow reports whether an undo_autopilot feedback
	// signal exists for the household within the trailing window.
	HasUndoWithinWindow(ctx context.Context, householdKey string, since time.Time) (bool, error)
}

// ReceiptRepository persists receipt imports and their parsed line items.
type ReceiptRepository interface {
	InsertImport(ctx context.Context, imp *receipt.Import) error
	// FindCanonicalByHash looks up the canonical (is_duplicate=false) row
	// for a household + content hash, if any.
	FindCanonicalByHash(ctx context.Context, householdKey, contentHash string) (*receipt.Import, error)
	InsertLineItems(ctx context.Context, items []receipt.LineItem) error
}

// CacheRepository is a generic key/value cache with a per-entry TTL. The
// container provides an adapter, but no application service uses it.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// OCRProvider is the injectable text-extraction contract for receipt
// ingestion. The real provider is out of scope; internal/infrastructure/ocr
// supplies a deterministic mock.
type OCRProvider interface {
	Extract(ctx context.Context, apiKeyOrMockInput string, imageBase64 string) (rawText string, providerLabel string, err error)
}
