package rchunk

import (
	"context"
	"testing"

	"rrcore/internal/ident"
)

func TestRowSlicedPreservesOrAssignsID(t *testing.T) {
	mem := newTestAllocator()
	c := newTemporalChunk(t, mem, [][]float64{{1}, {2}, {3}}, []ident.TimeInt{1, 2, 3})
	defer c.Release()

	same := c.RowSliced(1, 2, false)
	defer same.Release()
	if same.ID() != c.ID() {
		t.Fatal("freshID=false should preserve the parent chunk id")
	}
	if same.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", same.NumRows())
	}

	fresh := c.RowSliced(0, 1, true)
	defer fresh.Release()
	if fresh.ID() == c.ID() {
		t.Fatal("freshID=true should assign a new chunk id")
	}
}

func TestTimeRangeSlicedSelectsOverlappingRows(t *testing.T) {
	mem := newTestAllocator()
	ctx := context.Background()
	c := newTemporalChunk(t, mem, [][]float64{{1}, {2}, {3}, {4}}, []ident.TimeInt{10, 20, 30, 40})
	defer c.Release()

	sub, err := c.TimeRangeSliced(ctx, mem, framesTimeline, ident.TimeRange{Lo: 15, Hi: 35}, true)
	if err != nil {
		t.Fatalf("TimeRangeSliced: %v", err)
	}
	defer sub.Release()

	if sub.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2 (times 20, 30)", sub.NumRows())
	}
}

func TestTimeRangeSlicedUnknownTimeline(t *testing.T) {
	mem := newTestAllocator()
	ctx := context.Background()
	c := newTemporalChunk(t, mem, [][]float64{{1}}, []ident.TimeInt{1})
	defer c.Release()

	other := ident.NewTimeline("nope", ident.TimeTypeSequence)
	if _, err := c.TimeRangeSliced(ctx, mem, other, ident.FullRange, true); err == nil {
		t.Fatal("expected error for absent timeline")
	}
}

func TestPartitionPoint(t *testing.T) {
	mem := newTestAllocator()
	ctx := context.Background()
	c := newTemporalChunk(t, mem, [][]float64{{1}, {2}, {3}, {4}}, []ident.TimeInt{10, 20, 30, 40})
	defer c.Release()

	sorted, err := c.SortByTimeline(ctx, mem, framesTimeline)
	if err != nil {
		t.Fatalf("SortByTimeline: %v", err)
	}
	defer sorted.Release()

	idx, err := sorted.PartitionPoint(framesTimeline, 25)
	if err != nil {
		t.Fatalf("PartitionPoint: %v", err)
	}
	if idx != 2 {
		t.Fatalf("PartitionPoint(25) = %d, want 2", idx)
	}
}
