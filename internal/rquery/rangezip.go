package rquery

import (
	"iter"
	"sort"

	"rrcore/internal/ident"
	"rrcore/internal/rchunk"
)

// ZipEntry pairs a row's index (time, row_id) with its decoded value. A
// Stream's Entries must be sorted ascending by Index before calling
// RangeZip.
type ZipEntry struct {
	Index rchunk.IndexEntry
	Value any
}

// Stream is one component's sparse row sequence to merge.
//
// Staircase controls what RangeZip does between this stream's own rows:
// true carries the last-seen value forward onto every later merged index
// (the "optional/clamped" component semantics spec.md §4.4.4 describes);
// false requires an exact index match, leaving the component absent from
// any merged row that isn't one of this stream's own rows.
type Stream struct {
	Name      rchunk.ComponentDescriptor
	Entries   []ZipEntry
	Staircase bool
}

// RangeZip merges several sorted per-component row streams into one
// sequence of merged rows, one per unique (time, row_id) index across all
// streams, each row carrying whichever streams have a value at that index
// (spec.md §4.4.4). It is a pure library combinator, not a store
// operation — it never touches an index itself.
func RangeZip(streams []Stream) iter.Seq[map[rchunk.ComponentDescriptor]any] {
	indices := mergedIndices(streams)

	return func(yield func(map[rchunk.ComponentDescriptor]any) bool) {
		cursors := make([]int, len(streams))
		carried := make([]any, len(streams))
		haveCarried := make([]bool, len(streams))

		for _, idx := range indices {
			row := make(map[rchunk.ComponentDescriptor]any, len(streams))
			for i, s := range streams {
				matched := false
				for cursors[i] < len(s.Entries) && !indexLess(idx, s.Entries[cursors[i]].Index) {
					carried[i] = s.Entries[cursors[i]].Value
					haveCarried[i] = true
					matched = indexEqual(s.Entries[cursors[i]].Index, idx)
					cursors[i]++
				}
				switch {
				case s.Staircase && haveCarried[i]:
					row[s.Name] = carried[i]
				case !s.Staircase && matched:
					row[s.Name] = carried[i]
				}
			}
			if !yield(row) {
				return
			}
		}
	}
}

func mergedIndices(streams []Stream) []rchunk.IndexEntry {
	seen := make(map[ident.TUID]struct{})
	var out []rchunk.IndexEntry
	for _, s := range streams {
		for _, e := range s.Entries {
			if _, ok := seen[e.Index.RowID]; ok {
				continue
			}
			seen[e.Index.RowID] = struct{}{}
			out = append(out, e.Index)
		}
	}
	sort.Slice(out, func(i, j int) bool { return indexLess(out[i], out[j]) })
	return out
}

func indexLess(a, b rchunk.IndexEntry) bool {
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return a.RowID.Less(b.RowID)
}

func indexEqual(a, b rchunk.IndexEntry) bool {
	return a.Time == b.Time && a.RowID == b.RowID
}
