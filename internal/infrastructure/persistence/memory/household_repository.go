package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dinnerarbiter/core/internal/domain/household"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
)

// HouseholdRepository implements outbound.HouseholdRepository over a
// mutex-guarded map keyed by household key.
type HouseholdRepository struct {
	mutex sync.RWMutex
	byKey map[string]*household.Household
}

func NewHouseholdRepository() *HouseholdRepository {
	return &HouseholdRepository{byKey: make(map[string]*household.Household)}
}

func (r *HouseholdRepository) FindByKey(ctx context.Context, key string) (*household.Household, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	h, ok := r.byKey[key]
	if !ok {
		return nil, outbound.ErrNotFound
	}
	return h, nil
}

func (r *HouseholdRepository) EnsureExists(ctx context.Context, key, name string) (*household.Household, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if h, ok := r.byKey[key]; ok {
		return h, nil
	}
	h := &household.Household{Key: key, Name: name, CreatedAt: time.Now()}
	r.byKey[key] = h
	return h, nil
}
