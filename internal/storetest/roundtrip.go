package storetest

import (
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"rrcore/internal/ident"
	"rrcore/internal/rchunk"
)

// testRoundTripChunkRecordChunk exercises the round-trip property from
// spec.md §8: Chunk -> arrow.Record -> Chunk must preserve identity,
// ordering, and every column's content.
func testRoundTripChunkRecordChunk(t *testing.T) {
	mem := memory.NewGoAllocator()
	entityPath := ident.NewEntityPath("world", "points")
	rowIDs := []ident.TUID{ident.NewTUID(), ident.NewTUID(), ident.NewTUID()}

	comp := rchunk.BuildFloat64Column(mem, [][]float64{{1}, {2}, {3}})
	defer comp.Release()

	original, err := rchunk.New(mem, entityPath, rowIDs,
		map[ident.Timeline][]ident.TimeInt{framesTimeline: {10, 20, 30}},
		map[rchunk.ComponentDescriptor]arrow.Array{positionsDesc: comp},
	)
	if err != nil {
		t.Fatalf("rchunk.New: %v", err)
	}
	defer original.Release()

	sorted, err := original.SortByTimeline(context.Background(), mem, framesTimeline)
	if err != nil {
		t.Fatalf("SortByTimeline: %v", err)
	}
	defer sorted.Release()

	record := sorted.Record()
	record.Retain()
	rebuilt, err := rchunk.FromRecord(record)
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	defer rebuilt.Release()

	if rebuilt.ID() != sorted.ID() {
		t.Fatalf("round-tripped chunk id = %v, want %v", rebuilt.ID(), sorted.ID())
	}
	if rebuilt.EntityPath().String() != sorted.EntityPath().String() {
		t.Fatalf("round-tripped entity path = %q, want %q", rebuilt.EntityPath(), sorted.EntityPath())
	}
	if rebuilt.NumRows() != sorted.NumRows() {
		t.Fatalf("round-tripped row count = %d, want %d", rebuilt.NumRows(), sorted.NumRows())
	}
	if !rebuilt.IsSorted(framesTimeline) {
		t.Fatal("round-tripped chunk must still be known-sorted on the timeline it was sorted by")
	}

	for i := 0; i < sorted.NumRows(); i++ {
		if rebuilt.RowID(i) != sorted.RowID(i) {
			t.Fatalf("row %d id = %v, want %v", i, rebuilt.RowID(i), sorted.RowID(i))
		}
		wantTime, err := sorted.TimeAt(framesTimeline, i)
		if err != nil {
			t.Fatalf("TimeAt(sorted, %d): %v", i, err)
		}
		gotTime, err := rebuilt.TimeAt(framesTimeline, i)
		if err != nil {
			t.Fatalf("TimeAt(rebuilt, %d): %v", i, err)
		}
		if gotTime != wantTime {
			t.Fatalf("row %d time = %v, want %v", i, gotTime, wantTime)
		}
	}

	gotComponents := rebuilt.Components()
	if len(gotComponents) != 1 || gotComponents[0] != positionsDesc {
		t.Fatalf("round-tripped components = %v, want [%v]", gotComponents, positionsDesc)
	}
}

// testSortByTimelineIdempotent checks that sorting an already-sorted chunk
// by the same timeline again returns the same ordering (spec.md §8: a
// second sort_by_timeline(tl) on an already-sorted chunk is a no-op).
func testSortByTimelineIdempotent(t *testing.T) {
	mem := memory.NewGoAllocator()
	entityPath := ident.NewEntityPath("world", "points")

	comp := rchunk.BuildFloat64Column(mem, [][]float64{{3}, {1}, {2}})
	defer comp.Release()

	c, err := rchunk.New(mem, entityPath, []ident.TUID{ident.NewTUID(), ident.NewTUID(), ident.NewTUID()},
		map[ident.Timeline][]ident.TimeInt{framesTimeline: {30, 10, 20}},
		map[rchunk.ComponentDescriptor]arrow.Array{positionsDesc: comp},
	)
	if err != nil {
		t.Fatalf("rchunk.New: %v", err)
	}
	defer c.Release()

	ctx := context.Background()
	once, err := c.SortByTimeline(ctx, mem, framesTimeline)
	if err != nil {
		t.Fatalf("SortByTimeline: %v", err)
	}
	defer once.Release()

	twice, err := once.SortByTimeline(ctx, mem, framesTimeline)
	if err != nil {
		t.Fatalf("SortByTimeline (second): %v", err)
	}
	defer twice.Release()

	if twice.NumRows() != once.NumRows() {
		t.Fatalf("second sort changed row count: %d vs %d", twice.NumRows(), once.NumRows())
	}
	for i := 0; i < once.NumRows(); i++ {
		onceTime, err := once.TimeAt(framesTimeline, i)
		if err != nil {
			t.Fatalf("TimeAt(once, %d): %v", i, err)
		}
		twiceTime, err := twice.TimeAt(framesTimeline, i)
		if err != nil {
			t.Fatalf("TimeAt(twice, %d): %v", i, err)
		}
		if onceTime != twiceTime {
			t.Fatalf("row %d time changed on repeat sort: %v vs %v", i, twiceTime, onceTime)
		}
		if twice.RowID(i) != once.RowID(i) {
			t.Fatalf("row %d id changed on repeat sort", i)
		}
	}
}
