package tenant

import (
	"context"
	"sync"
	"time"

	"homeval/server/internal/models"
)

// Store reads per-tenant settings. Absent settings fall back to documented
// defaults; the engine never writes through this interface.
type Store interface {
	GetSettings(ctx context.Context, tenantID string) (models.TenantSettings, error)
}

type cacheEntry struct {
	settings models.TenantSettings
	exp      time.Time
}

// CachedStore decorates a Store with a read-mostly TTL cache so repeated
// requests for the same tenant do not hit the backing store.
type CachedStore struct {
	inner Store
	ttl   time.Duration
	now   func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func NewCachedStore(inner Store, ttl time.Duration) *CachedStore {
	return &CachedStore{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (s *CachedStore) GetSettings(ctx context.Context, tenantID string) (models.TenantSettings, error) {
	s.mu.RLock()
	entry, ok := s.entries[tenantID]
	s.mu.RUnlock()
	if ok && s.now().Before(entry.exp) {
		return entry.settings, nil
	}

	settings, err := s.inner.GetSettings(ctx, tenantID)
	if err != nil {
		return models.TenantSettings{}, err
	}

	s.mu.Lock()
	s.entries[tenantID] = cacheEntry{settings: settings, exp: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return settings, nil
}
