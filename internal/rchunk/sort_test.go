package rchunk

import (
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"

	"rrcore/internal/ident"
)

func TestSortByTimelineOrdersRows(t *testing.T) {
	mem := newTestAllocator()
	ctx := context.Background()
	c := newTemporalChunk(t, mem, [][]float64{{3}, {1}, {2}}, []ident.TimeInt{30, 10, 20})
	defer c.Release()

	sorted, err := c.SortByTimeline(ctx, mem, framesTimeline)
	if err != nil {
		t.Fatalf("SortByTimeline: %v", err)
	}
	defer sorted.Release()

	if !sorted.IsSorted(framesTimeline) {
		t.Fatal("result should report IsSorted(framesTimeline)")
	}

	idx, ok := sorted.timelineColumnIndex(framesTimeline)
	if !ok {
		t.Fatal("sorted chunk missing timeline column")
	}
	col := sorted.Record().Column(idx).(*array.Int64)
	want := []int64{10, 20, 30}
	for i, w := range want {
		if col.Value(i) != w {
			t.Fatalf("sorted time[%d] = %d, want %d", i, col.Value(i), w)
		}
	}
}

func TestSortByTimelineIsIdempotent(t *testing.T) {
	mem := newTestAllocator()
	ctx := context.Background()
	c := newTemporalChunk(t, mem, [][]float64{{3}, {1}, {2}}, []ident.TimeInt{30, 10, 20})
	defer c.Release()

	once, err := c.SortByTimeline(ctx, mem, framesTimeline)
	if err != nil {
		t.Fatalf("first sort: %v", err)
	}
	defer once.Release()

	twice, err := once.SortByTimeline(ctx, mem, framesTimeline)
	if err != nil {
		t.Fatalf("second sort: %v", err)
	}
	defer twice.Release()

	idx, _ := once.timelineColumnIndex(framesTimeline)
	a := once.Record().Column(idx).(*array.Int64)
	b := twice.Record().Column(idx).(*array.Int64)
	for i := 0; i < a.Len(); i++ {
		if a.Value(i) != b.Value(i) {
			t.Fatalf("sorting twice changed order at %d: %d != %d", i, a.Value(i), b.Value(i))
		}
	}
}

func TestSortByTimelineUnknownTimeline(t *testing.T) {
	mem := newTestAllocator()
	ctx := context.Background()
	c := newTemporalChunk(t, mem, [][]float64{{1}}, []ident.TimeInt{1})
	defer c.Release()

	other := ident.NewTimeline("does_not_exist", ident.TimeTypeSequence)
	if _, err := c.SortByTimeline(ctx, mem, other); err == nil {
		t.Fatal("expected error sorting by an absent timeline")
	}
}
