package store

import (
	"context"
	"sort"

	"rrcore/internal/ident"
	"rrcore/internal/rchunk"
)

// tryCompactLocked looks for one existing temporal chunk adjacent to c —
// same entity path, same component and timeline columns, both at or under
// the configured size thresholds, and non-overlapping in time on their
// shared timeline — and merges them into a single new chunk (spec.md
// §4.3.1 step 5). Caller holds the write lock and has already indexed c
// via indexTemporalLocked. Returns false if no merge happened, leaving c
// indexed as an ordinary addition.
func (s *Store) tryCompactLocked(ctx context.Context, c *rchunk.Chunk) (CompactionReport, bool) {
	if s.compactionMaxRows <= 0 || s.compactionMaxBytes <= 0 {
		return CompactionReport{}, false
	}

	entry, ok := s.chunks[c.ID()]
	if !ok || entry.bytes > s.compactionMaxBytes || c.NumRows() > s.compactionMaxRows {
		return CompactionReport{}, false
	}
	tls := c.Timelines()
	if len(tls) != 1 {
		// Compaction only ever merges single-timeline chunks; multi-timeline
		// chunks have no single "adjacent on the same timeline" candidate.
		return CompactionReport{}, false
	}
	tl := tls[0]

	newSpan, err := chunkTimeRange(ctx, s.mem, c, tl)
	if err != nil {
		return CompactionReport{}, false
	}

	candidateID, ok := s.findCompactionCandidateLocked(ctx, c, tl, newSpan)
	if !ok {
		return CompactionReport{}, false
	}
	candidateEntry := s.chunks[candidateID]

	ordered := []*rchunk.Chunk{candidateEntry.chunk, c}
	firstSpan, err := chunkTimeRange(ctx, s.mem, candidateEntry.chunk, tl)
	if err != nil {
		return CompactionReport{}, false
	}
	if firstSpan.Lo > newSpan.Lo {
		ordered = []*rchunk.Chunk{c, candidateEntry.chunk}
	}

	merged, err := rchunk.Concat(s.mem, ordered[0], ordered[1])
	if err != nil {
		s.logger.Warn("compaction concat failed", "err", err)
		return CompactionReport{}, false
	}
	sorted, err := merged.SortByTimeline(ctx, s.mem, tl)
	if err != nil {
		s.logger.Warn("compaction sort failed", "err", err)
		merged.Release()
		return CompactionReport{}, false
	}
	merged.Release()

	s.removeTemporalEntryLocked(c.ID(), entry)
	s.removeTemporalEntryLocked(candidateID, candidateEntry)
	s.indexTemporalLocked(ctx, sorted)

	return CompactionReport{
		Compacted: []*rchunk.Chunk{candidateEntry.chunk, c},
		New:       sorted,
	}, true
}

// findCompactionCandidateLocked scans resident chunks for one eligible
// compaction partner for c: same entity path and component set, the same
// single timeline, at or under the size thresholds, and strictly
// non-overlapping with newSpan on tl.
func (s *Store) findCompactionCandidateLocked(ctx context.Context, c *rchunk.Chunk, tl ident.Timeline, newSpan ident.TimeRange) (ident.TUID, bool) {
	entityPath := c.EntityPath()
	wantComponents := componentNameSet(c.Components())

	ids := make([]ident.TUID, 0, len(s.chunks))
	for id := range s.chunks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	for _, id := range ids {
		if id == c.ID() {
			continue
		}
		entry := s.chunks[id]
		if entry.isStatic || entry.chunk.EntityPath().Hash() != entityPath.Hash() {
			continue
		}
		if entry.bytes > s.compactionMaxBytes || entry.chunk.NumRows() > s.compactionMaxRows {
			continue
		}
		otherTLs := entry.chunk.Timelines()
		if len(otherTLs) != 1 || otherTLs[0].Name != tl.Name {
			continue
		}
		if !componentNameSet(entry.chunk.Components()).equal(wantComponents) {
			continue
		}
		span, err := chunkTimeRange(ctx, s.mem, entry.chunk, tl)
		if err != nil {
			continue
		}
		if span.Overlaps(newSpan) {
			continue
		}
		return id, true
	}
	return ident.TUID{}, false
}

type nameSet map[string]struct{}

func componentNameSet(descs []rchunk.ComponentDescriptor) nameSet {
	out := make(nameSet, len(descs))
	for _, d := range descs {
		out[d.Name] = struct{}{}
	}
	return out
}

func (a nameSet) equal(b nameSet) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
