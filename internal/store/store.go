package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/btree"

	"rrcore/internal/ident"
	"rrcore/internal/logging"
	"rrcore/internal/rchunk"
)

// chunkEntry is everything the store tracks about one resident chunk,
// beyond the chunk's own Arrow data.
type chunkEntry struct {
	chunk       *rchunk.Chunk
	isStatic    bool
	oldestRowID ident.TUID
	bytes       int64

	// timelineRefs/staticKeys record which index entries reference this
	// chunk, so removal (gc, drop_time_range, static override) can find
	// and clear them without a linear scan of every index.
	timelineRefs []timelineRef
	staticKeys   []staticKey
}

// timelineRef is one B-tree entry this chunk installed: the key identifying
// the tree, and the exact MinTime it was inserted under (needed to delete
// the matching entry later, since the tree orders on (MinTime, ChunkID)).
type timelineRef struct {
	key     timelineKey
	minTime ident.TimeInt
}

// Config configures a Store. Mirrors the teacher's Config-struct-plus-
// dependency-injected-logger idiom (internal/chunk/memory.Config).
type Config struct {
	Mem    memory.Allocator
	Logger *slog.Logger

	// CompactionMaxRows/CompactionMaxBytes gate opportunistic compaction
	// (spec.md §4.3.1 step 5): a newly-inserted chunk is only considered
	// for merging with an adjacent, non-overlapping, same-column chunk if
	// both are at or under these thresholds. Zero disables compaction.
	CompactionMaxRows  int
	CompactionMaxBytes int64
}

// Store is a single recording's in-memory chunk store: a chunks map, one
// B-tree temporal index per (timeline, entity, component) key, a static
// index, and a generation counter bumped on every mutation. Mutations take
// the write lock; queries take the read lock (spec.md §5).
type Store struct {
	id  StoreID
	mem memory.Allocator

	mu         sync.RWMutex
	generation uint64
	nextEvent  uint64

	chunks       map[ident.TUID]*chunkEntry
	temporal     map[timelineKey]*btree.BTreeG[timeIndexEntry]
	staticIndex  map[staticKey]ident.TUID
	warnedStatic map[staticKey]struct{}

	// deepDropped tracks chunk ids removed by a deep drop_time_range, so a
	// later attempt to reinsert the same chunk id is rejected rather than
	// silently resurrecting data a caller explicitly forbade re-fetching
	// (spec.md §4.3.3, "deep=true forbids later re-fetching").
	deepDropped map[ident.TUID]struct{}

	compactionMaxRows  int
	compactionMaxBytes int64

	logger *slog.Logger
}

// New creates an empty Store with a fresh StoreID.
func New(cfg Config) *Store {
	if cfg.Mem == nil {
		cfg.Mem = memory.NewGoAllocator()
	}
	return &Store{
		id:                 NewStoreID(),
		mem:                cfg.Mem,
		chunks:             make(map[ident.TUID]*chunkEntry),
		temporal:           make(map[timelineKey]*btree.BTreeG[timeIndexEntry]),
		staticIndex:        make(map[staticKey]ident.TUID),
		warnedStatic:       make(map[staticKey]struct{}),
		deepDropped:        make(map[ident.TUID]struct{}),
		compactionMaxRows:  cfg.CompactionMaxRows,
		compactionMaxBytes: cfg.CompactionMaxBytes,
		logger:             logging.Default(cfg.Logger).With("component", "chunk-store"),
	}
}

// ID returns the store's identity.
func (s *Store) ID() StoreID { return s.id }

// Generation returns the current, strictly-increasing mutation counter.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// invariant panics if cond is false. Mirrors spec.md §7's debug_assert:
// a build-tag-free helper used for "should not happen if callers use public
// APIs correctly" conditions, never for validation the caller can trigger
// (those return errors instead).
func (s *Store) invariant(cond bool, msg string, args ...any) {
	if cond {
		return
	}
	s.logger.Error("invariant violation", append([]any{"msg", msg}, args...)...)
	panic(fmt.Sprintf("store: invariant violated: "+msg, args...))
}

func (s *Store) nextEventID() uint64 {
	s.nextEvent++
	return s.nextEvent
}

// InsertChunk validates and inserts a chunk, returning the events produced.
// See spec.md §4.3.1 for the full algorithm (classify static/temporal,
// static override + warning, B-tree insertion, optional compaction).
func (s *Store) InsertChunk(ctx context.Context, c *rchunk.Chunk) ([]Event, error) {
	if c.NumRows() == 0 {
		return nil, ErrEmptyChunk
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dropped := s.deepDropped[c.ID()]; dropped {
		return nil, fmt.Errorf("store: chunk %s was deep-dropped and cannot be re-inserted", c.ID())
	}

	var events []Event
	if c.IsStatic() {
		events = s.insertStaticLocked(c)
	} else {
		events = s.insertTemporalLocked(ctx, c)
	}

	s.generation++
	for i := range events {
		events[i].Generation = s.generation
	}
	notifySubscribers(events)
	return events, nil
}

func (s *Store) insertStaticLocked(c *rchunk.Chunk) []Event {
	entityPath := c.EntityPath()
	entry := &chunkEntry{chunk: c, isStatic: true, bytes: c.HeapSizeBytes()}

	var events []Event
	for _, desc := range c.Components() {
		key := newStaticKey(entityPath, desc.Name)

		if prevID, ok := s.staticIndex[key]; ok {
			prev := s.chunks[prevID]
			s.invariant(prev != nil, "static index points at missing chunk %v", prevID)
			events = append(events,
				Event{StoreID: s.id, EventID: s.nextEventID(), Kind: DiffDeletion, Chunk: prev.chunk},
			)
			s.removeStaticReference(prevID, key)
		}

		s.staticIndex[key] = c.ID()
		entry.staticKeys = append(entry.staticKeys, key)

		if s.hasTemporalForComponent(entityPath, desc.Name) {
			if _, warned := s.warnedStatic[key]; !warned {
				s.logger.Warn("component logged both static and temporal",
					"entity_path", entityPath.String(), "component", desc.Name)
				s.warnedStatic[key] = struct{}{}
			}
		}
	}

	s.chunks[c.ID()] = entry
	events = append(events, Event{StoreID: s.id, EventID: s.nextEventID(), Kind: DiffAddition, Chunk: c})
	return events
}

func (s *Store) hasTemporalForComponent(entityPath ident.EntityPath, component string) bool {
	for key := range s.temporal {
		if key.EntityHash == entityPath.Hash() && key.Component == component {
			if tree := s.temporal[key]; tree != nil && tree.Len() > 0 {
				return true
			}
		}
	}
	return false
}

func (s *Store) insertTemporalLocked(ctx context.Context, c *rchunk.Chunk) []Event {
	s.indexTemporalLocked(ctx, c)

	if report, ok := s.tryCompactLocked(ctx, c); ok {
		return []Event{{StoreID: s.id, EventID: s.nextEventID(), Kind: DiffCompaction, Compaction: report}}
	}

	return []Event{{StoreID: s.id, EventID: s.nextEventID(), Kind: DiffAddition, Chunk: c}}
}

// indexTemporalLocked builds a chunkEntry for c and installs it into the
// chunks map and every (timeline, component) B-tree it touches. Caller
// holds the write lock.
func (s *Store) indexTemporalLocked(ctx context.Context, c *rchunk.Chunk) *chunkEntry {
	entityPath := c.EntityPath()
	entry := &chunkEntry{chunk: c, bytes: c.HeapSizeBytes(), oldestRowID: oldestRowID(c)}

	for _, tl := range c.Timelines() {
		minTime, err := minTimeOnTimeline(ctx, s.mem, c, tl)
		if err != nil {
			s.logger.Error("failed computing min time on timeline", "timeline", tl.Name, "err", err)
			continue
		}
		for _, desc := range c.Components() {
			key := newTimelineKey(tl, entityPath, desc.Name)
			tree, ok := s.temporal[key]
			if !ok {
				tree = newTimeIndex()
				s.temporal[key] = tree
			}
			tree.ReplaceOrInsert(timeIndexEntry{MinTime: minTime, ChunkID: c.ID()})
			entry.timelineRefs = append(entry.timelineRefs, timelineRef{key: key, minTime: minTime})
		}
	}

	s.chunks[c.ID()] = entry
	return entry
}

func (s *Store) removeStaticReference(id ident.TUID, key staticKey) {
	if entry, ok := s.chunks[id]; ok {
		entry.staticKeys = removeKey(entry.staticKeys, key)
		if len(entry.staticKeys) == 0 && len(entry.timelineRefs) == 0 {
			delete(s.chunks, id)
		}
	}
	delete(s.staticIndex, key)
}

func removeKey(keys []staticKey, target staticKey) []staticKey {
	out := keys[:0]
	for _, k := range keys {
		if k != target {
			out = append(out, k)
		}
	}
	return out
}

func oldestRowID(c *rchunk.Chunk) ident.TUID {
	oldest := ident.TUID{}
	first := true
	for i := 0; i < c.NumRows(); i++ {
		id := c.RowID(i)
		if first || id.Less(oldest) {
			oldest = id
			first = false
		}
	}
	return oldest
}

func minTimeOnTimeline(ctx context.Context, mem memory.Allocator, c *rchunk.Chunk, tl ident.Timeline) (ident.TimeInt, error) {
	if c.NumRows() == 0 {
		return ident.Max, nil
	}
	sorted, err := c.SortByTimeline(ctx, mem, tl)
	if err != nil {
		return 0, err
	}
	defer sorted.Release()
	return sorted.TimeAt(tl, 0)
}
