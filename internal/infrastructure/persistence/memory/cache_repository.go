// Package memory provides in-memory implementations of every outbound
// repository interface, used for local development and as the fixture
// backing application-layer tests that need a real (not faked) adapter.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dinnerarbiter/core/internal/ports/outbound"
)

// cacheItem is one cached value with its expiry.
type cacheItem struct {
	Value     []byte
	ExpiresAt time.Time
}

// CacheRepository implements outbound.CacheRepository over a mutex-guarded
// map, with a background goroutine sweeping expired entries.
type CacheRepository struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
}

// NewCacheRepository constructs a CacheRepository and starts its cleanup
// goroutine.
func NewCacheRepository() outbound.CacheRepository {
	repo := &CacheRepository{data: make(map[string]cacheItem)}
	go repo.cleanup()
	return repo
}

// Get retrieves a value from cache, reporting whether it was present and
// unexpired.
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	item, exists := r.data[key]
	if !exists {
		return nil, false, nil
	}
	if time.Now().After(item.ExpiresAt) {
		return nil, false, nil
	}
	return item.Value, true, nil
}

// Set stores a value with a TTL; ttl<=0 defaults to 24h.
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	r.data[key] = cacheItem{Value: value, ExpiresAt: time.Now().Add(ttl)}
	return nil
}

// Delete removes a key from cache.
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.data, key)
	return nil
}

func (r *CacheRepository) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		r.mutex.Lock()
		now := time.Now()
		for key, item := range r.data {
			if now.After(item.ExpiresAt) {
				delete(r.data, key)
			}
		}
		r.mutex.Unlock()
	}
}
