package rchunk

import (
	"context"
	"fmt"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"rrcore/internal/ident"
)

// SortByTimeline returns a chunk with rows permuted so that tl's time
// column is ascending. It is a no-op (returns c unchanged, with its
// reference count incremented) if c is already known-sorted on tl.
//
// The permutation is computed once from the target time column and then
// applied uniformly to the row-id column and every component's list array
// via the Arrow take kernel — the same "compute a permutation, then take"
// shape used for every other column, list offsets included; values within
// a list are not individually reshuffled, only the row (offset-pair) they
// belong to moves.
func (c *Chunk) SortByTimeline(ctx context.Context, mem memory.Allocator, tl ident.Timeline) (*Chunk, error) {
	if c.IsSorted(tl) {
		c.Retain()
		return c, nil
	}

	colIdx, ok := c.timelineColumnIndex(tl)
	if !ok {
		return nil, fmt.Errorf("rchunk: chunk has no timeline %q", tl.Name)
	}
	timeCol, ok := c.record.Column(colIdx).(*array.Int64)
	if !ok {
		return nil, fmt.Errorf("rchunk: timeline column %q is not int64", tl.Name)
	}

	perm := make([]int64, timeCol.Len())
	for i := range perm {
		perm[i] = int64(i)
	}
	sort.SliceStable(perm, func(i, j int) bool {
		return timeCol.Value(int(perm[i])) < timeCol.Value(int(perm[j]))
	})

	idxBuilder := array.NewInt64Builder(mem)
	defer idxBuilder.Release()
	idxBuilder.AppendValues(perm, nil)
	indices := idxBuilder.NewInt64Array()
	defer indices.Release()

	numCols := int(c.record.NumCols())
	takenCols := make([]arrow.Array, numCols)
	for i := 0; i < numCols; i++ {
		taken, err := compute.TakeArray(ctx, c.record.Column(i), indices)
		if err != nil {
			for _, t := range takenCols[:i] {
				t.Release()
			}
			return nil, fmt.Errorf("rchunk: take column %d: %w", i, err)
		}
		takenCols[i] = taken
	}

	schema := withIsSorted(c.record.Schema(), true)
	record := array.NewRecord(schema, takenCols, c.record.NumRows())
	for _, t := range takenCols {
		t.Release()
	}

	return &Chunk{
		id:             c.id,
		entityPath:     c.entityPath,
		record:         record,
		sortedTimeline: tl,
		isSorted:       true,
	}, nil
}

func withIsSorted(schema *arrow.Schema, sorted bool) *arrow.Schema {
	meta := schema.Metadata()
	keys := append([]string{}, meta.Keys()...)
	values := append([]string{}, meta.Values()...)
	sortedStr := "false"
	if sorted {
		sortedStr = "true"
	}
	for i, k := range keys {
		if k == keyIsSorted {
			values[i] = sortedStr
			newMeta := arrow.NewMetadata(keys, values)
			return arrow.NewSchema(schema.Fields(), &newMeta)
		}
	}
	keys = append(keys, keyIsSorted)
	values = append(values, sortedStr)
	newMeta := arrow.NewMetadata(keys, values)
	return arrow.NewSchema(schema.Fields(), &newMeta)
}
