package store

import (
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"rrcore/internal/ident"
)

func TestDropTimeRangeFullyContained(t *testing.T) {
	mem := memory.NewGoAllocator()
	s := newTestStore(t)
	entityPath := ident.NewEntityPath("world", "points")
	ctx := context.Background()

	c := newTemporalChunk(t, mem, entityPath, framesTimeline,
		[]ident.TimeInt{1, 2, 3}, [][]float64{{1}, {2}, {3}})
	defer c.Release()
	if _, err := s.InsertChunk(ctx, c); err != nil {
		t.Fatalf("InsertChunk: %v", err)
	}

	events, err := s.DropTimeRange(ctx, framesTimeline, ident.TimeRange{Lo: 0, Hi: 10}, false)
	if err != nil {
		t.Fatalf("DropTimeRange: %v", err)
	}
	if len(events) != 1 || events[0].Kind != DiffDeletion {
		t.Fatalf("events = %+v, want a single DiffDeletion", events)
	}

	if _, found, _ := s.LatestAtChunks(ctx, framesTimeline, ident.Max, entityPath, positionsDesc); found {
		t.Fatal("fully-contained drop should leave nothing behind")
	}
}

// TestDropTimeRangeSplits covers scenario S5: an 11-row chunk spanning
// [10, 20], dropping [12, 17] produces one deletion and two additions
// (the surviving head and tail sub-chunks).
func TestDropTimeRangeSplits(t *testing.T) {
	mem := memory.NewGoAllocator()
	s := newTestStore(t)
	entityPath := ident.NewEntityPath("world", "points")
	ctx := context.Background()

	times := make([]ident.TimeInt, 11)
	rows := make([][]float64, 11)
	for i := range times {
		times[i] = ident.TimeInt(10 + i)
		rows[i] = []float64{float64(10 + i)}
	}
	c := newTemporalChunk(t, mem, entityPath, framesTimeline, times, rows)
	defer c.Release()
	if _, err := s.InsertChunk(ctx, c); err != nil {
		t.Fatalf("InsertChunk: %v", err)
	}

	events, err := s.DropTimeRange(ctx, framesTimeline, ident.TimeRange{Lo: 12, Hi: 17}, false)
	if err != nil {
		t.Fatalf("DropTimeRange: %v", err)
	}

	var deletions, additions int
	for _, e := range events {
		switch e.Kind {
		case DiffDeletion:
			deletions++
		case DiffAddition:
			additions++
		}
	}
	if deletions != 1 || additions != 2 {
		t.Fatalf("deletions=%d additions=%d, want 1 and 2", deletions, additions)
	}

	head, found, err := s.LatestAtChunks(ctx, framesTimeline, 11, entityPath, positionsDesc)
	if err != nil {
		t.Fatalf("LatestAtChunks(11): %v", err)
	}
	if !found || head.Time != 11 {
		t.Fatalf("LatestAtChunks(11): found=%v time=%d, want the surviving head row at 11", found, head.Time)
	}

	tail, found, err := s.LatestAtChunks(ctx, framesTimeline, ident.Max, entityPath, positionsDesc)
	if err != nil {
		t.Fatalf("LatestAtChunks(max): %v", err)
	}
	if !found || tail.Time != 20 {
		t.Fatalf("LatestAtChunks(max): found=%v time=%d, want the surviving tail row at 20", found, tail.Time)
	}

	// at_time=15 falls inside the dropped window; it resolves against the
	// surviving head's last row (11), not anything in [12, 17].
	mid, found, err := s.LatestAtChunks(ctx, framesTimeline, 15, entityPath, positionsDesc)
	if err != nil {
		t.Fatalf("LatestAtChunks(15): %v", err)
	}
	if !found || mid.Time != 11 {
		t.Fatalf("LatestAtChunks(15): found=%v time=%d, want 11", found, mid.Time)
	}
}

func TestDropTimeRangeDeepBarsReinsertion(t *testing.T) {
	mem := memory.NewGoAllocator()
	s := newTestStore(t)
	entityPath := ident.NewEntityPath("world", "points")
	ctx := context.Background()

	c := newTemporalChunk(t, mem, entityPath, framesTimeline, []ident.TimeInt{1}, [][]float64{{1}})
	defer c.Release()
	if _, err := s.InsertChunk(ctx, c); err != nil {
		t.Fatalf("InsertChunk: %v", err)
	}

	if _, err := s.DropTimeRange(ctx, framesTimeline, ident.TimeRange{Lo: 0, Hi: 10}, true); err != nil {
		t.Fatalf("DropTimeRange(deep): %v", err)
	}

	if _, err := s.InsertChunk(ctx, c); err == nil {
		t.Fatal("InsertChunk after a deep drop should be rejected")
	}
}
