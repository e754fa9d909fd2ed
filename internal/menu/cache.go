package menu

import (
	"context"
	"sync"
	"time"

	"github.com/frahmantamala/vaccination-registry/internal/core/events"
	"github.com/frahmantamala/vaccination-registry/internal/core/metrics"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

type cacheKey struct {
	EmpresaID int64
	UserID    int64
}

// Cache keeps resolved authorizations per (tenant, user). Entries expire
// after the TTL and are purged per tenant on every access change.
// Each tenant carries a generation that InvalidateTenant bumps, so a
// resolution that started before a purge cannot write its result back.
type Cache struct {
	lru     *lru.LRU[cacheKey, *Authorization]
	metrics *metrics.Metrics

	mu          sync.Mutex
	generations map[int64]uint64
}

func NewCache(size int, ttl time.Duration, m *metrics.Metrics) *Cache {
	if size <= 0 {
		size = 1024
	}
	return &Cache{
		lru:         lru.NewLRU[cacheKey, *Authorization](size, nil, ttl),
		metrics:     m,
		generations: make(map[int64]uint64),
	}
}

func (c *Cache) Get(empresaID, userID int64) (*Authorization, bool) {
	auth, ok := c.lru.Get(cacheKey{EmpresaID: empresaID, UserID: userID})
	if ok {
		c.metrics.CacheEvent("hit")
	} else {
		c.metrics.CacheEvent("miss")
	}
	return auth, ok
}

// Generation returns the tenant's current generation. Read it before
// loading from the store and hand it to Put.
func (c *Cache) Generation(empresaID int64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[empresaID]
}

// Put stores auth only if its tenant was not invalidated since gen was
// read. It reports whether the entry was stored.
func (c *Cache) Put(auth *Authorization, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[auth.EmpresaID] != gen {
		c.metrics.CacheEvent("stale")
		return false
	}
	c.lru.Add(cacheKey{EmpresaID: auth.EmpresaID, UserID: auth.UserID}, auth)
	return true
}

// InvalidateTenant drops every entry of the tenant and returns how many.
func (c *Cache) InvalidateTenant(empresaID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[empresaID]++
	removed := 0
	for _, k := range c.lru.Keys() {
		if k.EmpresaID == empresaID && c.lru.Remove(k) {
			removed++
		}
	}
	c.metrics.CacheEvent("invalidate")
	return removed
}

func (c *Cache) Len() int {
	return c.lru.Len()
}

// Subscribe wires the cache to access change events.
func (c *Cache) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeAccessChanged, func(_ context.Context, event events.Event) error {
		if e, ok := event.(*events.AccessChangedEvent); ok {
			c.InvalidateTenant(e.EmpresaID)
		}
		return nil
	})
}
