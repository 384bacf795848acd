package rchunk

import (
	"fmt"
	"iter"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"rrcore/internal/ident"
)

// IndexEntry is the (time, row_id) pair identifying a row on a timeline.
// On a static chunk Time is always ident.Static.
type IndexEntry struct {
	Time  ident.TimeInt
	RowID ident.TUID
}

// IterComponentIndices lazily yields the (row index, IndexEntry) pairs for
// every row where desc has a logged value (the list slot is non-null).
// Order follows physical row order; callers that need time order should
// sort the chunk first.
func (c *Chunk) IterComponentIndices(tl ident.Timeline, desc ComponentDescriptor) (iter.Seq2[int, IndexEntry], error) {
	compIdx, ok := c.componentColumnIndex(desc)
	if !ok {
		return nil, fmt.Errorf("rchunk: chunk has no component %q", desc.Name)
	}
	listArr, ok := c.record.Column(compIdx).(*array.List)
	if !ok {
		return nil, fmt.Errorf("rchunk: component %q is not a list array", desc.Name)
	}

	var timeCol *array.Int64
	if !c.IsStatic() {
		if tlIdx, ok := c.timelineColumnIndex(tl); ok {
			timeCol, _ = c.record.Column(tlIdx).(*array.Int64)
		}
	}

	return func(yield func(int, IndexEntry) bool) {
		for i := 0; i < listArr.Len(); i++ {
			if listArr.IsNull(i) {
				continue
			}
			entry := IndexEntry{Time: ident.Static, RowID: c.RowID(i)}
			if timeCol != nil {
				entry.Time = ident.TimeInt(timeCol.Value(i))
			}
			if !yield(i, entry) {
				return
			}
		}
	}, nil
}

// ValueAccessor bridges a typed Arrow child array and a generic Go value at
// a given position. A handful of ready-made accessors cover the value
// types the component columns actually use; callers needing a type not
// listed here supply their own.
type ValueAccessor[T any] func(values arrow.Array, i int) T

// Float64Accessor reads a *array.Float64 child array.
func Float64Accessor(values arrow.Array, i int) float64 {
	return values.(*array.Float64).Value(i)
}

// Int64Accessor reads a *array.Int64 child array.
func Int64Accessor(values arrow.Array, i int) int64 {
	return values.(*array.Int64).Value(i)
}

// Uint8Accessor reads a *array.Uint8 child array (e.g. packed color bytes).
func Uint8Accessor(values arrow.Array, i int) uint8 {
	return values.(*array.Uint8).Value(i)
}

// StringAccessor reads a *array.String child array.
func StringAccessor(values arrow.Array, i int) string {
	return values.(*array.String).Value(i)
}

// IterComponent lazily yields, for every row with a logged value for desc,
// its IndexEntry and the typed slice of list values for that row.
func IterComponent[T any](c *Chunk, tl ident.Timeline, desc ComponentDescriptor, accessor ValueAccessor[T]) (iter.Seq2[IndexEntry, []T], error) {
	compIdx, ok := c.componentColumnIndex(desc)
	if !ok {
		return nil, fmt.Errorf("rchunk: chunk has no component %q", desc.Name)
	}
	listArr, ok := c.record.Column(compIdx).(*array.List)
	if !ok {
		return nil, fmt.Errorf("rchunk: component %q is not a list array", desc.Name)
	}
	values := listArr.ListValues()

	var timeCol *array.Int64
	if !c.IsStatic() {
		if tlIdx, ok := c.timelineColumnIndex(tl); ok {
			timeCol, _ = c.record.Column(tlIdx).(*array.Int64)
		}
	}

	offsets := listArr.Offsets()

	return func(yield func(IndexEntry, []T) bool) {
		for i := 0; i < listArr.Len(); i++ {
			if listArr.IsNull(i) {
				continue
			}
			start, end := offsets[i], offsets[i+1]
			row := make([]T, 0, end-start)
			for j := start; j < end; j++ {
				row = append(row, accessor(values, int(j)))
			}
			entry := IndexEntry{Time: ident.Static, RowID: c.RowID(i)}
			if timeCol != nil {
				entry.Time = ident.TimeInt(timeCol.Value(i))
			}
			if !yield(entry, row) {
				return
			}
		}
	}, nil
}

// IterSlices yields the per-row value slices in physical row order, without
// index metadata. Unlike IterComponent, which skips null rows, it yields a
// nil slice for each null row, so the n-th value belongs to row n.
func IterSlices[T any](c *Chunk, desc ComponentDescriptor, accessor ValueAccessor[T]) (iter.Seq[[]T], error) {
	compIdx, ok := c.componentColumnIndex(desc)
	if !ok {
		return nil, fmt.Errorf("rchunk: chunk has no component %q", desc.Name)
	}
	listArr, ok := c.record.Column(compIdx).(*array.List)
	if !ok {
		return nil, fmt.Errorf("rchunk: component %q is not a list array", desc.Name)
	}
	values := listArr.ListValues()
	offsets := listArr.Offsets()

	return func(yield func([]T) bool) {
		for i := 0; i < listArr.Len(); i++ {
			if listArr.IsNull(i) {
				if !yield(nil) {
					return
				}
				continue
			}
			start, end := offsets[i], offsets[i+1]
			row := make([]T, 0, end-start)
			for j := start; j < end; j++ {
				row = append(row, accessor(values, int(j)))
			}
			if !yield(row) {
				return
			}
		}
	}, nil
}
