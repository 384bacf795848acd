package rchunk

import (
	"context"
	"fmt"
	"sort"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"rrcore/internal/ident"
)

// RowSliced returns a zero-copy sub-chunk covering rows [offset, offset+n).
// If freshID is true the sub-chunk gets a new chunk id; otherwise it keeps
// the parent's id (the caller's choice, per spec: "preserving chunk_id or
// assigning a fresh one per caller's choice").
func (c *Chunk) RowSliced(offset, n int, freshID bool) *Chunk {
	sliced := c.record.NewSlice(int64(offset), int64(offset+n))
	id := c.id
	if freshID {
		id = ident.NewTUID()
	}
	return &Chunk{
		id:             id,
		entityPath:     c.entityPath,
		record:         sliced,
		sortedTimeline: c.sortedTimeline,
		isSorted:       c.isSorted,
	}
}

// TimeRangeSliced returns a zero-copy sub-chunk containing only the rows
// whose value on tl falls within r. The chunk is sorted on tl first if it
// is not already (an allocating step; the returned sub-chunk's underlying
// slice is still zero-copy over that sorted record). Returns an error if
// tl is not present on the chunk.
func (c *Chunk) TimeRangeSliced(ctx context.Context, mem memory.Allocator, tl ident.Timeline, r ident.TimeRange, freshID bool) (*Chunk, error) {
	base := c
	var err error
	if !c.IsSorted(tl) {
		base, err = c.SortByTimeline(ctx, mem, tl)
		if err != nil {
			return nil, fmt.Errorf("rchunk: time_range_sliced: %w", err)
		}
		defer base.Release()
	}

	colIdx, ok := base.timelineColumnIndex(tl)
	if !ok {
		return nil, fmt.Errorf("rchunk: chunk has no timeline %q", tl.Name)
	}
	timeCol := base.record.Column(colIdx).(*array.Int64)

	r = r.Normalize()
	lo := sort.Search(timeCol.Len(), func(i int) bool { return ident.TimeInt(timeCol.Value(i)) >= r.Lo })
	hi := sort.Search(timeCol.Len(), func(i int) bool { return ident.TimeInt(timeCol.Value(i)) > r.Hi })

	return base.RowSliced(lo, hi-lo, freshID), nil
}

// PartitionPoint returns the smallest row index i such that the value of tl
// at row i is >= t, assuming the chunk is sorted ascending on tl. This is
// the primitive drop_time_range uses to split a chunk at a boundary without
// scanning every row.
func (c *Chunk) PartitionPoint(tl ident.Timeline, t ident.TimeInt) (int, error) {
	colIdx, ok := c.timelineColumnIndex(tl)
	if !ok {
		return 0, fmt.Errorf("rchunk: chunk has no timeline %q", tl.Name)
	}
	timeCol := c.record.Column(colIdx).(*array.Int64)
	return sort.Search(timeCol.Len(), func(i int) bool { return ident.TimeInt(timeCol.Value(i)) >= t }), nil
}
