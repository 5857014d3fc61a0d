// Package cache provides time-boxed memoization for aggregate dashboard
// queries with tag-based invalidation. Entries expire after a fixed TTL;
// write paths invalidate whole tag groups instead of exact keys.
package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Well-known invalidation tags. A write path invalidates every tag its
// entity touches, e.g. a battery mutation invalidates batteries, summaries,
// kpis and dashboard.
const (
	TagTickets   = "tickets"
	TagBatteries = "batteries"
	TagVehicles  = "vehicles"
	TagInvoices  = "invoices"
	TagCustomers = "customers"
	TagSummaries = "summaries"
	TagKPIs      = "kpis"
	TagDashboard = "dashboard"
)

// QueryCache memoizes query results keyed by (query name, location scope,
// parameters). Each entry carries a tag set; Invalidate removes every entry
// whose tag set intersects the given tags.
type QueryCache struct {
	store *gocache.Cache

	mu   sync.Mutex
	tags map[string]map[string]struct{} // tag -> set of keys
}

// New creates a QueryCache with the given per-entry TTL and janitor
// interval.
func New(ttl, cleanupInterval time.Duration) *QueryCache {
	return &QueryCache{
		store: gocache.New(ttl, cleanupInterval),
		tags:  make(map[string]map[string]struct{}),
	}
}

// Key builds a cache key from the query name, location scope and
// parameters.
func Key(query, locationID string, params ...string) string {
	parts := append([]string{query, locationID}, params...)
	return strings.Join(parts, "|")
}

// GetOrCompute returns the cached value for key, or runs compute, stores the
// result under the given tags and returns it. A failed compute is not
// cached.
func (c *QueryCache) GetOrCompute(key string, tags []string, compute func() (any, error)) (any, error) {
	if v, found := c.store.Get(key); found {
		return v, nil
	}

	v, err := compute()
	if err != nil {
		return nil, fmt.Errorf("cache compute for %q: %w", key, err)
	}

	c.store.SetDefault(key, v)
	c.index(key, tags)
	return v, nil
}

// Invalidate removes every entry whose tag set intersects tags.
func (c *QueryCache) Invalidate(tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, tag := range tags {
		for key := range c.tags[tag] {
			c.store.Delete(key)
			c.dropKeyLocked(key)
		}
		delete(c.tags, tag)
	}
}

// Flush drops every cached entry.
func (c *QueryCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Flush()
	c.tags = make(map[string]map[string]struct{})
}

func (c *QueryCache) index(key string, tags []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tag := range tags {
		keys, ok := c.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

// dropKeyLocked removes key from every tag index. Caller holds mu.
func (c *QueryCache) dropKeyLocked(key string) {
	for tag, keys := range c.tags {
		delete(keys, key)
		if len(keys) == 0 {
			delete(c.tags, tag)
		}
	}
}
