package cache

import (
	"sync"

	"rrcore/internal/store"
)

// StoreRegistry is the process-wide map from store id to that store's
// Caches (spec.md §9, "Global mutable state": the cache registry is
// process-wide but keyed by store id; when a store is dropped, its cache
// entry is dropped with it). It holds no reference back to the store
// itself — cache invalidation is driven entirely by events passed to
// ForStore(id).OnStoreEvents, never by a direct call into the store.
type StoreRegistry struct {
	mu     sync.Mutex
	stores map[store.StoreID]*Caches
}

// NewStoreRegistry returns an empty process-wide cache registry.
func NewStoreRegistry() *StoreRegistry {
	return &StoreRegistry{stores: make(map[store.StoreID]*Caches)}
}

// ForStore returns the Caches for id, creating it on first use.
func (r *StoreRegistry) ForStore(id store.StoreID) *Caches {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.stores[id]
	if !ok {
		c = NewCaches()
		r.stores[id] = c
	}
	return c
}

// Forget drops id's Caches entry, releasing every cache entry it held.
func (r *StoreRegistry) Forget(id store.StoreID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, id)
}
