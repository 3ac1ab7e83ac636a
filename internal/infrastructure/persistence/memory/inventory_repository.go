package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dinnerarbiter/core/internal/domain/inventory"
)

// InventoryRepository implements outbound.InventoryRepository over a
// mutex-guarded map of household-scoped item slices.
type InventoryRepository struct {
	mutex sync.RWMutex
	items map[string][]*inventory.Item
}

func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{items: make(map[string][]*inventory.Item)}
}

// FindCandidates returns up to limit rows whose name contains one of the
// pre-filter tokens (empty tokens returns the whole household inventory),
// ordered confidence DESC then last-seen DESC.
func (r *InventoryRepository) FindCandidates(ctx context.Context, householdKey string, tokens []string, limit int) ([]*inventory.Item, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	all := r.items[householdKey]
	matched := make([]*inventory.Item, 0, len(all))
	for _, item := range all {
		if len(tokens) == 0 || nameMatchesAnyToken(item.Name, tokens) {
			matched = append(matched, item)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Confidence != matched[j].Confidence {
			return matched[i].Confidence > matched[j].Confidence
		}
		return matched[i].LastSeenAt.After(matched[j].LastSeenAt)
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func nameMatchesAnyToken(name string, tokens []string) bool {
	lower := strings.ToLower(name)
	for _, t := range tokens {
		if strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

func (r *InventoryRepository) Insert(ctx context.Context, item *inventory.Item) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.items[item.HouseholdKey] = append(r.items[item.HouseholdKey], item)
	return nil
}

func (r *InventoryRepository) IncrementUsage(ctx context.Context, itemID uuid.UUID, delta float64, lastUsedAt time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, items := range r.items {
		for _, item := range items {
			if item.ID == itemID {
				item.QtyUsed += delta
				item.LastUsedAt = &lastUsedAt
				return nil
			}
		}
	}
	return nil
}
