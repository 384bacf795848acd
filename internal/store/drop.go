package store

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"rrcore/internal/ident"
	"rrcore/internal/rchunk"
)

// DropTimeRange removes or splits every temporal chunk overlapping r on
// tl (spec.md §4.3.3). A chunk fully contained in r is removed outright; a
// chunk partially overlapping r is split into up to two surviving
// sub-chunks (rows strictly before r.Lo and strictly after r.Hi), each
// assigned a fresh chunk id. Static chunks are never affected. If deep is
// true, removed chunk ids are permanently barred from re-insertion.
func (s *Store) DropTimeRange(ctx context.Context, tl ident.Timeline, r ident.TimeRange, deep bool) ([]Event, error) {
	r = r.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]ident.TUID, 0, len(s.chunks))
	for id, entry := range s.chunks {
		if !entry.isStatic && chunkHasTimeline(entry.chunk, tl) {
			ids = append(ids, id)
		}
	}

	var events []Event
	for _, id := range ids {
		entry, ok := s.chunks[id]
		if !ok {
			continue
		}

		span, err := chunkTimeRange(ctx, s.mem, entry.chunk, tl)
		if err != nil {
			return nil, fmt.Errorf("store: drop_time_range: %w", err)
		}
		if !span.Overlaps(r) {
			continue
		}

		if r.Contains(span.Lo) && r.Contains(span.Hi) {
			s.removeTemporalEntryLocked(id, entry)
			events = append(events, Event{StoreID: s.id, EventID: s.nextEventID(), Kind: DiffDeletion, Chunk: entry.chunk})
			if deep {
				s.deepDropped[id] = struct{}{}
			}
			continue
		}

		survivors, err := splitAroundRange(ctx, s.mem, entry.chunk, tl, r)
		if err != nil {
			return nil, fmt.Errorf("store: drop_time_range split: %w", err)
		}

		s.removeTemporalEntryLocked(id, entry)
		events = append(events, Event{StoreID: s.id, EventID: s.nextEventID(), Kind: DiffDeletion, Chunk: entry.chunk})
		if deep {
			s.deepDropped[id] = struct{}{}
		}

		for _, survivor := range survivors {
			addEvents := s.insertTemporalLocked(ctx, survivor)
			events = append(events, addEvents...)
		}
	}

	if len(events) > 0 {
		s.generation++
		for i := range events {
			events[i].Generation = s.generation
		}
	}
	notifySubscribers(events)
	return events, nil
}

func chunkHasTimeline(c *rchunk.Chunk, tl ident.Timeline) bool {
	for _, t := range c.Timelines() {
		if t.Name == tl.Name {
			return true
		}
	}
	return false
}

// chunkTimeRange sorts c on tl (if not already) and reads the first and
// last row's time values as the chunk's time span on that timeline.
func chunkTimeRange(ctx context.Context, mem memory.Allocator, c *rchunk.Chunk, tl ident.Timeline) (ident.TimeRange, error) {
	sorted, err := c.SortByTimeline(ctx, mem, tl)
	if err != nil {
		return ident.TimeRange{}, err
	}
	defer sorted.Release()

	lo, err := sorted.TimeAt(tl, 0)
	if err != nil {
		return ident.TimeRange{}, err
	}
	hi, err := sorted.TimeAt(tl, sorted.NumRows()-1)
	if err != nil {
		return ident.TimeRange{}, err
	}
	return ident.TimeRange{Lo: lo, Hi: hi}, nil
}

// splitAroundRange sorts c on tl and returns the surviving sub-chunks:
// rows strictly before r.Lo and rows strictly after r.Hi, each with a
// fresh chunk id. Either half (or both) may be absent if empty.
func splitAroundRange(ctx context.Context, mem memory.Allocator, c *rchunk.Chunk, tl ident.Timeline, r ident.TimeRange) ([]*rchunk.Chunk, error) {
	sorted, err := c.SortByTimeline(ctx, mem, tl)
	if err != nil {
		return nil, err
	}
	defer sorted.Release()

	loIdx, err := sorted.PartitionPoint(tl, r.Lo)
	if err != nil {
		return nil, err
	}
	hiIdx, err := sorted.PartitionPoint(tl, r.Hi.Add(1))
	if err != nil {
		return nil, err
	}

	var survivors []*rchunk.Chunk
	if loIdx > 0 {
		survivors = append(survivors, sorted.RowSliced(0, loIdx, true))
	}
	if hiIdx < sorted.NumRows() {
		survivors = append(survivors, sorted.RowSliced(hiIdx, sorted.NumRows()-hiIdx, true))
	}
	return survivors, nil
}
