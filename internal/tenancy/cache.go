package tenancy

import (
	"context"
	"sync"
	"time"

	"stayfront/internal/metrics"
	"stayfront/internal/model"
)

// DefaultCacheTTL bounds how long a host-to-tenant result is reused.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	tenant   *model.TenantRecord
	cachedAt time.Time
}

// Cache memoizes resolver results per raw host. Negative results are
// cached too, so a host known not to resolve does not hammer the
// directory on every hit. Concurrent resolutions for the same cold host
// may race and perform duplicate directory lookups; the lookups are
// idempotent reads, so the race is cheaper than serializing the request
// path.
type Cache struct {
	resolver *Resolver
	ttl      time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry

	now func() time.Time
}

func NewCache(resolver *Resolver, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		resolver: resolver,
		ttl:      ttl,
		entries:  make(map[string]cacheEntry),
		now:      time.Now,
	}
}

// GetOrResolve returns the cached result for host when fresh, otherwise
// resolves and stores it.
func (c *Cache) GetOrResolve(ctx context.Context, host string) (*model.TenantRecord, error) {
	now := c.now()

	c.mu.RLock()
	ent, ok := c.entries[host]
	c.mu.RUnlock()

	if ok && now.Sub(ent.cachedAt) < c.ttl {
		metrics.TenantCacheLookups.WithLabelValues("hit").Inc()
		return ent.tenant, nil
	}
	metrics.TenantCacheLookups.WithLabelValues("miss").Inc()

	tenant, err := c.resolver.Resolve(ctx, host)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[host] = cacheEntry{tenant: tenant, cachedAt: now}
	c.mu.Unlock()

	return tenant, nil
}

// Invalidate drops one host entry. Call it when that host's tenant
// mapping changes.
func (c *Cache) Invalidate(host string) {
	c.mu.Lock()
	delete(c.entries, host)
	c.mu.Unlock()
}

// InvalidateAll clears the cache. Call it whenever a tenant's domain
// fields are edited; the edited tenant may be reachable under hosts the
// editor does not know about.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}
