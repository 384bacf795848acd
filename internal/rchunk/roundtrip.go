package rchunk

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"rrcore/internal/ident"
)

// FromRecord rebuilds a Chunk from an Arrow record previously produced by
// New/Record, parsing the schema-level rerun:chunk_id / rerun:entity_path /
// rerun:is_sorted metadata back into the Chunk's own fields. It takes
// ownership of record's reference (the caller must not Release it
// separately); Chunk.Release releases it.
func FromRecord(record arrow.Record) (*Chunk, error) {
	meta := record.Schema().Metadata()

	idText, ok := meta.GetValue(keyChunkID)
	if !ok {
		return nil, fmt.Errorf("rchunk: record missing %q metadata", keyChunkID)
	}
	id, err := ident.ParseTUID(idText)
	if err != nil {
		return nil, fmt.Errorf("rchunk: parsing %q: %w", keyChunkID, err)
	}

	pathText, ok := meta.GetValue(keyEntityPath)
	if !ok {
		return nil, fmt.Errorf("rchunk: record missing %q metadata", keyEntityPath)
	}
	entityPath := ident.ParseEntityPath(pathText)

	sortedText, _ := meta.GetValue(keyIsSorted)
	isSorted := sortedText == "true"

	c := &Chunk{id: id, entityPath: entityPath, record: record, isSorted: isSorted}
	if isSorted {
		if tl, ok := soleCandidateSortTimeline(c); ok {
			c.sortedTimeline = tl
		} else {
			// Ambiguous (zero or multiple timelines): a round-tripped record
			// can't recover which one New/SortByTimeline last sorted by, so
			// fall back to "unknown" rather than guess wrong.
			c.isSorted = false
		}
	}
	return c, nil
}

// soleCandidateSortTimeline reports the chunk's one timeline, if it has
// exactly one. rerun:is_sorted doesn't record which timeline it applies to,
// so only the unambiguous single-timeline case can be recovered exactly.
func soleCandidateSortTimeline(c *Chunk) (ident.Timeline, bool) {
	timelines := c.Timelines()
	if len(timelines) == 1 {
		return timelines[0], true
	}
	return ident.Timeline{}, false
}
