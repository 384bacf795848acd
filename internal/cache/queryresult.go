package cache

import (
	"sort"
	"strings"
	"sync"

	"rrcore/internal/ident"
	"rrcore/internal/rchunk"
	"rrcore/internal/store"
)

// QueryKind distinguishes LatestAt from Range entries sharing one cache.
type QueryKind int

const (
	QueryKindLatestAt QueryKind = iota
	QueryKindRange
)

// QueryResultKey is the cache key spec.md §4.5.3 specifies: "(query_kind,
// timeline, time_or_range, entity_path, component_set)". TimeOrRange is
// always populated as a range; LatestAt callers pass Lo == Hi.
type QueryResultKey struct {
	Kind        QueryKind
	Timeline    ident.Timeline
	TimeOrRange ident.TimeRange
	EntityPath  string // ident.EntityPath.String(), since EntityPath itself isn't comparable
	Components  string // canonical sorted, comma-joined component names
}

// NewQueryResultKey builds a key from a query's parameters. components
// need not be pre-sorted; the key canonicalizes them.
func NewQueryResultKey(kind QueryKind, tl ident.Timeline, r ident.TimeRange, entityPath ident.EntityPath, components []rchunk.ComponentDescriptor) QueryResultKey {
	names := make([]string, len(components))
	for i, c := range components {
		names[i] = c.Name
	}
	sort.Strings(names)
	return QueryResultKey{
		Kind:        kind,
		Timeline:    tl,
		TimeOrRange: r,
		EntityPath:  entityPath.String(),
		Components:  strings.Join(names, ","),
	}
}

// QueryResultValue is a memoized LatestAt or Range outcome: the chunk
// references and the resolved row indices from a prior query, exactly
// what spec.md §4.5.3 says the entry stores.
type QueryResultValue struct {
	LatestAt store.LatestAtResult
	Range    []*rchunk.Chunk
}

// QueryResultCache memoizes LatestAt/Range results, invalidated
// conservatively: any event whose chunk touches an entry's entity_path
// and component_set drops the whole entry (spec.md §4.5.3, "a
// conservative implementation invalidates the entire entry on any
// matching event").
type QueryResultCache struct {
	mu      sync.Mutex
	entries map[QueryResultKey]QueryResultValue
}

// NewQueryResultCache returns an empty query-result cache.
func NewQueryResultCache() *QueryResultCache {
	return &QueryResultCache{entries: make(map[QueryResultKey]QueryResultValue)}
}

// Get returns a previously memoized result for key, if present.
func (c *QueryResultCache) Get(key QueryResultKey) (QueryResultValue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put memoizes a result for key, overwriting any prior entry.
func (c *QueryResultCache) Put(key QueryResultKey, value QueryResultValue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// BeginFrame is a no-op: entries have no per-frame residency flag, only
// event-driven invalidation.
func (c *QueryResultCache) BeginFrame() {}

// PurgeMemory drops every memoized entry.
func (c *QueryResultCache) PurgeMemory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[QueryResultKey]QueryResultValue)
}

// OnStoreEvents drops every entry whose entity_path and component_set
// overlap an event's touched chunk(s).
func (c *QueryResultCache) OnStoreEvents(events []store.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) == 0 {
		return
	}
	for _, ev := range events {
		for _, touched := range eventChunks(ev) {
			c.invalidateLocked(touched)
		}
	}
}

// invalidateLocked drops every entry whose entity_path matches touched
// and whose component_set intersects touched's components.
func (c *QueryResultCache) invalidateLocked(touched *rchunk.Chunk) {
	entityPath := touched.EntityPath().String()
	touchedNames := make(map[string]struct{}, len(touched.Components()))
	for _, desc := range touched.Components() {
		touchedNames[desc.Name] = struct{}{}
	}

	for key := range c.entries {
		if key.EntityPath != entityPath {
			continue
		}
		for _, name := range strings.Split(key.Components, ",") {
			if _, hit := touchedNames[name]; hit {
				delete(c.entries, key)
				break
			}
		}
	}
}

// eventChunks returns every chunk an event touches: the single chunk for
// Addition/Deletion, or both the compacted chunks and the merged result
// for Compaction.
func eventChunks(ev store.Event) []*rchunk.Chunk {
	switch ev.Kind {
	case store.DiffCompaction:
		out := make([]*rchunk.Chunk, 0, len(ev.Compaction.Compacted)+1)
		out = append(out, ev.Compaction.Compacted...)
		if ev.Compaction.New != nil {
			out = append(out, ev.Compaction.New)
		}
		return out
	default:
		if ev.Chunk == nil {
			return nil
		}
		return []*rchunk.Chunk{ev.Chunk}
	}
}

// MemoryReport estimates the cache's own byte budget: the chunk pointers
// and row-index bookkeeping an entry holds, not the chunks themselves —
// those are store-owned and already accounted for there (spec.md
// §4.5.6, "eviction frees only the cache's own byte budget").
func (c *QueryResultCache) MemoryReport() Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	const perEntryOverhead = 128
	const perChunkRefBytes = 8
	var bytes int64
	for _, v := range c.entries {
		bytes += perEntryOverhead + int64(len(v.Range))*perChunkRefBytes
	}
	return Report{CPUBytes: bytes}
}
