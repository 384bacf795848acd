package store

import (
	"context"
	"iter"

	"rrcore/internal/ident"
	"rrcore/internal/rchunk"
)

// LatestAtResult is the winning chunk/row for one component of a LatestAt
// query (spec.md §4.4.1).
type LatestAtResult struct {
	Chunk    *rchunk.Chunk
	RowIndex int
	Time     ident.TimeInt
	RowID    ident.TUID
}

// IterChunks returns every chunk (static or temporal) touching entityPath
// and component, in no particular order.
func (s *Store) IterChunks(entityPath ident.EntityPath, desc rchunk.ComponentDescriptor) []*rchunk.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[ident.TUID]struct{})
	var out []*rchunk.Chunk

	if id, ok := s.staticIndex[newStaticKey(entityPath, desc.Name)]; ok {
		if entry, ok := s.chunks[id]; ok {
			out = append(out, entry.chunk)
			seen[id] = struct{}{}
		}
	}
	for key, tree := range s.temporal {
		if key.EntityHash != entityPath.Hash() || key.Component != desc.Name {
			continue
		}
		tree.Ascend(func(item timeIndexEntry) bool {
			if _, dup := seen[item.ChunkID]; dup {
				return true
			}
			if entry, ok := s.chunks[item.ChunkID]; ok {
				out = append(out, entry.chunk)
				seen[item.ChunkID] = struct{}{}
			}
			return true
		})
	}
	return out
}

// LatestAtChunks resolves the winning chunk/row for a single component at
// a point in time, per spec.md §4.4.1: the static index always wins
// unconditionally when present; otherwise among temporal candidates whose
// min time on tl is <= atTime, the winner is the greatest (time, row_id)
// not exceeding atTime.
func (s *Store) LatestAtChunks(ctx context.Context, tl ident.Timeline, atTime ident.TimeInt, entityPath ident.EntityPath, desc rchunk.ComponentDescriptor) (LatestAtResult, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id, ok := s.staticIndex[newStaticKey(entityPath, desc.Name)]; ok {
		entry, ok := s.chunks[id]
		if !ok {
			return LatestAtResult{}, false, nil
		}
		return s.winningStaticRow(entry.chunk, desc)
	}

	key := newTimelineKey(tl, entityPath, desc.Name)
	tree, ok := s.temporal[key]
	if !ok {
		return LatestAtResult{}, false, nil
	}

	pivot := timeIndexEntry{MinTime: atTime, ChunkID: ident.TUID{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	}}

	var best LatestAtResult
	haveBest := false

	var evalErr error
	tree.DescendLessOrEqual(pivot, func(item timeIndexEntry) bool {
		entry, ok := s.chunks[item.ChunkID]
		if !ok {
			return true
		}
		result, found, err := localLatestAt(entry.chunk, tl, atTime, desc)
		if err != nil {
			evalErr = err
			return false
		}
		if found && (!haveBest || better(result, best)) {
			best = result
			haveBest = true
		}
		return true
	})
	if evalErr != nil {
		return LatestAtResult{}, false, evalErr
	}
	return best, haveBest, nil
}

func better(a, b LatestAtResult) bool {
	if a.Time != b.Time {
		return a.Time > b.Time
	}
	return a.RowID.Compare(b.RowID) > 0
}

func localLatestAt(c *rchunk.Chunk, tl ident.Timeline, atTime ident.TimeInt, desc rchunk.ComponentDescriptor) (LatestAtResult, bool, error) {
	entries, err := c.IterComponentIndices(tl, desc)
	if err != nil {
		return LatestAtResult{}, false, nil //nolint:nilerr // component absent from this candidate chunk is not an error
	}
	var best LatestAtResult
	found := false
	for row, entry := range entries {
		if entry.Time > atTime {
			continue
		}
		candidate := LatestAtResult{Chunk: c, RowIndex: row, Time: entry.Time, RowID: entry.RowID}
		if !found || better(candidate, best) {
			best = candidate
			found = true
		}
	}
	return best, found, nil
}

func (s *Store) winningStaticRow(c *rchunk.Chunk, desc rchunk.ComponentDescriptor) (LatestAtResult, bool, error) {
	entries, err := c.IterComponentIndices(ident.Timeline{}, desc)
	if err != nil {
		return LatestAtResult{}, false, err
	}
	var last LatestAtResult
	found := false
	for row, entry := range entries {
		last = LatestAtResult{Chunk: c, RowIndex: row, Time: ident.Static, RowID: entry.RowID}
		found = true
	}
	return last, found, nil
}

// RangeChunks returns every chunk overlapping r on tl for (entityPath,
// desc), in ascending (min_time_on_timeline, chunk_id) order (spec.md
// §4.4.2) — the temporal B-tree's native iteration order.
func (s *Store) RangeChunks(ctx context.Context, tl ident.Timeline, r ident.TimeRange, entityPath ident.EntityPath, desc rchunk.ComponentDescriptor) ([]*rchunk.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.staticIndex[newStaticKey(entityPath, desc.Name)]; ok {
		return nil, nil
	}

	key := newTimelineKey(tl, entityPath, desc.Name)
	tree, ok := s.temporal[key]
	if !ok {
		return nil, nil
	}

	r = r.Normalize()
	var out []*rchunk.Chunk
	var rangeErr error
	tree.Ascend(func(item timeIndexEntry) bool {
		entry, ok := s.chunks[item.ChunkID]
		if !ok {
			return true
		}
		span, err := chunkTimeRange(ctx, s.mem, entry.chunk, tl)
		if err != nil {
			rangeErr = err
			return false
		}
		if span.Overlaps(r) {
			out = append(out, entry.chunk)
		}
		return true
	})
	if rangeErr != nil {
		return nil, rangeErr
	}
	return out, nil
}

// AllChunks returns a lazily-iterated view over every resident chunk,
// static and temporal, for callers (e.g. storetest invariant checks) that
// need to walk the whole store.
func (s *Store) AllChunks() iter.Seq[*rchunk.Chunk] {
	s.mu.RLock()
	chunks := make([]*rchunk.Chunk, 0, len(s.chunks))
	for _, entry := range s.chunks {
		chunks = append(chunks, entry.chunk)
	}
	s.mu.RUnlock()

	return func(yield func(*rchunk.Chunk) bool) {
		for _, c := range chunks {
			if !yield(c) {
				return
			}
		}
	}
}
