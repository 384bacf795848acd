package cache

import (
	"reflect"
	"sync"

	"rrcore/internal/store"
)

// slot lazily owns one cache instance behind its own mutex, so two
// independent cache types never contend on each other's lock even though
// they share one Caches registry.
type slot struct {
	mu    sync.Mutex
	cache Cache
}

// Caches is the per-store registry of typed caches described in spec.md
// §4.5.1: "type_id → Mutex<Box<dyn Cache>>". It is generalized from the
// teacher's index/memory.Manager, which composes several typed stores
// (AttrIndexStore, KVIndexStore, JSONIndexStore) behind one façade; here
// the façade is keyed by reflect.Type instead of a fixed set of named
// fields, since the set of cache types is open-ended (query result cache,
// decoded-image cache, video-asset cache, and whatever callers add).
type Caches struct {
	slots sync.Map // reflect.Type -> *slot
}

// NewCaches returns an empty registry.
func NewCaches() *Caches {
	return &Caches{}
}

// Entry lazily constructs the cache of type C (via construct, called at
// most once) and invokes f with exclusive access to it. Access is always
// through Entry so a cache's own internal state never needs its own
// locking beyond what f itself does.
func Entry[C Cache](c *Caches, construct func() C, f func(C)) {
	var zero C
	key := reflect.TypeOf(zero)

	raw, _ := c.slots.LoadOrStore(key, &slot{})
	s := raw.(*slot)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		s.cache = construct()
	}
	f(s.cache.(C))
}

// each runs f against every currently-registered cache, each under its
// own slot lock. Caches registered concurrently with a call to each may
// or may not be observed, matching sync.Map's range semantics.
func (c *Caches) each(f func(Cache)) {
	c.slots.Range(func(_, v any) bool {
		s := v.(*slot)
		s.mu.Lock()
		if s.cache != nil {
			f(s.cache)
		}
		s.mu.Unlock()
		return true
	})
}

// BeginFrame calls BeginFrame on every registered cache.
func (c *Caches) BeginFrame() {
	c.each(func(cache Cache) { cache.BeginFrame() })
}

// PurgeMemory calls PurgeMemory on every registered cache.
func (c *Caches) PurgeMemory() {
	c.each(func(cache Cache) { cache.PurgeMemory() })
}

// OnStoreEvents fans a batch of store events out to every registered
// cache. Each cache decides independently whether an event invalidates
// any of its entries.
func (c *Caches) OnStoreEvents(events []store.Event) {
	c.each(func(cache Cache) { cache.OnStoreEvents(events) })
}

// MemoryReport sums MemoryReport across every registered cache.
func (c *Caches) MemoryReport() Report {
	var total Report
	c.each(func(cache Cache) { total = total.Add(cache.MemoryReport()) })
	return total
}
