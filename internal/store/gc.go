package store

import (
	"sort"

	"rrcore/internal/ident"
)

// GC removes temporal chunks chosen by target, skipping any chunk that
// contains a row id present in protectedRowIDs (spec.md §4.3.2: "chunks
// referenced by protected row ids are skipped"). Static chunks are never
// considered. Returns the Deletion events produced, in removal order.
func (s *Store) GC(target GCTarget, protectedRowIDs map[ident.TUID]struct{}) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	var totalBytes int64
	var candidates []ChunkSummary
	for id, entry := range s.chunks {
		if entry.isStatic {
			continue
		}
		totalBytes += entry.bytes
		if isProtected(entry, protectedRowIDs) {
			continue
		}
		candidates = append(candidates, ChunkSummary{ID: id, Bytes: entry.bytes, OldestRowID: entry.oldestRowID})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].OldestRowID.Less(candidates[j].OldestRowID) })

	toRemove := target.Candidates(Snapshot{Chunks: candidates, TotalBytes: totalBytes})

	events := make([]Event, 0, len(toRemove))
	for _, id := range toRemove {
		entry, ok := s.chunks[id]
		if !ok {
			continue
		}
		s.removeTemporalEntryLocked(id, entry)
		events = append(events, Event{StoreID: s.id, EventID: s.nextEventID(), Kind: DiffDeletion, Chunk: entry.chunk})
	}

	if len(events) > 0 {
		s.generation++
		for i := range events {
			events[i].Generation = s.generation
		}
	}
	notifySubscribers(events)
	return events
}

func isProtected(entry *chunkEntry, protectedRowIDs map[ident.TUID]struct{}) bool {
	if len(protectedRowIDs) == 0 {
		return false
	}
	for i := 0; i < entry.chunk.NumRows(); i++ {
		if _, ok := protectedRowIDs[entry.chunk.RowID(i)]; ok {
			return true
		}
	}
	return false
}

// removeTemporalEntryLocked deletes a chunk's entries from every temporal
// index it appears in and drops it from the chunks map. Caller holds the
// write lock.
func (s *Store) removeTemporalEntryLocked(id ident.TUID, entry *chunkEntry) {
	for _, ref := range entry.timelineRefs {
		if tree, ok := s.temporal[ref.key]; ok {
			tree.Delete(timeIndexEntry{MinTime: ref.minTime, ChunkID: id})
			if tree.Len() == 0 {
				delete(s.temporal, ref.key)
			}
		}
	}
	delete(s.chunks, id)
}
