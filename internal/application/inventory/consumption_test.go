package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	invapp "github.com/dinnerarbiter/core/internal/application/inventory"
	invdomain "github.com/dinnerarbiter/core/internal/domain/inventory"
	"github.com/dinnerarbiter/core/internal/domain/meal"
)

type fakeInventoryRepo struct {
	items        []*invdomain.Item
	incremented  map[uuid.UUID]float64
	lastUsedAt   map[uuid.UUID]time.Time
}

func newFakeInventoryRepo(items []*invdomain.Item) *fakeInventoryRepo {
	return &fakeInventoryRepo{items: items, incremented: make(map[uuid.UUID]float64), lastUsedAt: make(map[uuid.UUID]time.Time)}
}

func (f *fakeInventoryRepo) FindCandidates(ctx context.Context, householdKey string, tokens []string, limit int) ([]*invdomain.Item, error) {
	return f.items, nil
}

func (f *fakeInventoryRepo) Insert(ctx context.Context, item *invdomain.Item) error { return nil }

func (f *fakeInventoryRepo) IncrementUsage(ctx context.Context, itemID uuid.UUID, delta float64, lastUsedAt time.Time) error {
	f.incremented[itemID] += delta
	f.lastUsedAt[itemID] = lastUsedAt
	return nil
}

func TestRun_SkipsPantryStaples(t *testing.T) {
	repo := newFakeInventoryRepo(nil)
	hook := invapp.NewHook(repo, zap.NewNop())
	ingredients := []meal.Ingredient{{Name: "salt", IsPantryStaple: true}}
	failures := hook.Run(context.Background(), "h1", ingredients, time.Now())
	assert.Empty(t, failures)
	assert.Empty(t, repo.incremented)
}

func TestRun_IncrementsMatchedNonStaple(t *testing.T) {
	id := uuid.New()
	qty := 5.0
	repo := newFakeInventoryRepo([]*invdomain.Item{{ID: id, Name: "chicken breast", Confidence: 0.9, QtyEstimated: &qty}})
	hook := invapp.NewHook(repo, zap.NewNop())
	now := time.Now()
	ingredients := []meal.Ingredient{{Name: "chicken breast", QuantityText: "2", IsPantryStaple: false}}
	failures := hook.Run(context.Background(), "h1", ingredients, now)
	assert.Empty(t, failures)
	require.Contains(t, repo.incremented, id)
	assert.InDelta(t, 2.0, repo.incremented[id], 1e-9)
	assert.Equal(t, now, repo.lastUsedAt[id])
}

func TestRun_DefaultsQuantityWhenUnparseable(t *testing.T) {
	id := uuid.New()
	qty := 5.0
	repo := newFakeInventoryRepo([]*invdomain.Item{{ID: id, Name: "chicken breast", Confidence: 0.9, QtyEstimated: &qty}})
	hook := invapp.NewHook(repo, zap.NewNop())
	ingredients := []meal.Ingredient{{Name: "chicken breast", QuantityText: "to taste", IsPantryStaple: false}}
	hook.Run(context.Background(), "h1", ingredients, time.Now())
	assert.InDelta(t, 1.0, repo.incremented[id], 1e-9)
}

func TestRun_NoMatchSkipsSilently(t *testing.T) {
	repo := newFakeInventoryRepo([]*invdomain.Item{{Name: "shampoo"}})
	hook := invapp.NewHook(repo, zap.NewNop())
	ingredients := []meal.Ingredient{{Name: "ham", IsPantryStaple: false}}
	failures := hook.Run(context.Background(), "h1", ingredients, time.Now())
	assert.Empty(t, failures)
	assert.Empty(t, repo.incremented)
}

func TestRun_NoTokensSkipsSilently(t *testing.T) {
	repo := newFakeInventoryRepo(nil)
	hook := invapp.NewHook(repo, zap.NewNop())
	ingredients := []meal.Ingredient{{Name: "oz lb", IsPantryStaple: false}}
	failures := hook.Run(context.Background(), "h1", ingredients, time.Now())
	assert.Empty(t, failures)
}
