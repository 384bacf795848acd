package store

import (
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"rrcore/internal/ident"
)

// TestGCRespectsStatic covers scenario S4: a store holding many temporal
// chunks plus one static chunk; DropAtLeastFraction(1.0) removes every
// temporal chunk and leaves the static one untouched.
func TestGCRespectsStatic(t *testing.T) {
	mem := memory.NewGoAllocator()
	s := newTestStore(t)
	entityPath := ident.NewEntityPath("world", "points")
	ctx := context.Background()

	const numTemporal = 100
	for i := 0; i < numTemporal; i++ {
		c := newTemporalChunk(t, mem, entityPath, framesTimeline,
			[]ident.TimeInt{ident.TimeInt(i)}, [][]float64{{float64(i)}})
		if _, err := s.InsertChunk(ctx, c); err != nil {
			t.Fatalf("InsertChunk(%d): %v", i, err)
		}
		c.Release()
	}

	static := newStaticChunk(t, mem, entityPath, [][]float64{{-1}})
	defer static.Release()
	if _, err := s.InsertChunk(ctx, static); err != nil {
		t.Fatalf("InsertChunk(static): %v", err)
	}

	events := s.GC(DropAtLeastFraction{Fraction: 1.0}, nil)
	if len(events) != numTemporal {
		t.Fatalf("GC deleted %d chunks, want %d", len(events), numTemporal)
	}
	for _, e := range events {
		if e.Kind != DiffDeletion {
			t.Fatalf("event kind = %v, want DiffDeletion", e.Kind)
		}
	}

	result, found, err := s.LatestAtChunks(ctx, framesTimeline, ident.Max, entityPath, positionsDesc)
	if err != nil {
		t.Fatalf("LatestAtChunks: %v", err)
	}
	if !found || result.Chunk.ID() != static.ID() {
		t.Fatal("GC should never remove the static chunk")
	}
}

func TestGCProtectsReferencedRowIDs(t *testing.T) {
	mem := memory.NewGoAllocator()
	s := newTestStore(t)
	entityPath := ident.NewEntityPath("world", "points")
	ctx := context.Background()

	protected := newTemporalChunk(t, mem, entityPath, framesTimeline, []ident.TimeInt{1}, [][]float64{{1}})
	if _, err := s.InsertChunk(ctx, protected); err != nil {
		t.Fatalf("InsertChunk(protected): %v", err)
	}
	protectedRowID := protected.RowID(0)
	protected.Release()

	other := newTemporalChunk(t, mem, entityPath, framesTimeline, []ident.TimeInt{2}, [][]float64{{2}})
	defer other.Release()
	if _, err := s.InsertChunk(ctx, other); err != nil {
		t.Fatalf("InsertChunk(other): %v", err)
	}

	events := s.GC(DropEverythingExceptStatic{}, map[ident.TUID]struct{}{protectedRowID: {}})
	if len(events) != 1 || events[0].Chunk.ID() != other.ID() {
		t.Fatalf("GC with protection removed %v, want only the unprotected chunk", events)
	}
}

func TestCompositeGCTargetUnion(t *testing.T) {
	snapshot := Snapshot{
		Chunks: []ChunkSummary{
			{ID: ident.NewTUID(), Bytes: 10},
			{ID: ident.NewTUID(), Bytes: 20},
		},
		TotalBytes: 30,
	}
	a := GCTargetFunc(func(s Snapshot) []ident.TUID { return []ident.TUID{s.Chunks[0].ID} })
	b := GCTargetFunc(func(s Snapshot) []ident.TUID { return []ident.TUID{s.Chunks[0].ID, s.Chunks[1].ID} })

	composite := NewCompositeGCTarget(a, b)
	got := composite.Candidates(snapshot)
	if len(got) != 2 {
		t.Fatalf("CompositeGCTarget union = %d ids, want 2 (deduplicated)", len(got))
	}
}

func TestDropAtLeastFractionIsIncremental(t *testing.T) {
	snapshot := Snapshot{
		Chunks: []ChunkSummary{
			{ID: ident.NewTUID(), Bytes: 50},
			{ID: ident.NewTUID(), Bytes: 50},
			{ID: ident.NewTUID(), Bytes: 50},
		},
		TotalBytes: 150,
	}
	target := DropAtLeastFraction{Fraction: 0.5}
	got := target.Candidates(snapshot)
	if len(got) != 2 {
		t.Fatalf("DropAtLeastFraction(0.5) of 150 bytes (oldest-first, 50 each) = %d chunks, want 2", len(got))
	}
	if got[0] != snapshot.Chunks[0].ID || got[1] != snapshot.Chunks[1].ID {
		t.Fatal("DropAtLeastFraction should select the oldest chunks first, in order")
	}
}
