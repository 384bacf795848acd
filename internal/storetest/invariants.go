package storetest

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"rrcore/internal/ident"
	"rrcore/internal/rchunk"
	"rrcore/internal/store"
)

var (
	fuzzEntities = []ident.EntityPath{
		ident.NewEntityPath("world", "a"),
		ident.NewEntityPath("world", "b"),
		ident.NewEntityPath("world", "c"),
	}
	fuzzComponents = []rchunk.ComponentDescriptor{positionsDesc, radiiDesc, colorsDesc}
)

// testRandomSequenceInvariants drives a fresh store through a randomized
// sequence of insert/gc/drop operations and, after every mutation, checks
// invariant 1 from spec.md §8: every chunk the store still reports via
// AllChunks must be reachable through IterChunks for each of its own
// (entity, component) pairs, and must never be reachable for a component
// it does not carry.
func testRandomSequenceInvariants(t *testing.T, newStore NewStoreFunc) {
	const iterations = 200
	rng := rand.New(rand.NewPCG(1, 2))
	mem := memory.NewGoAllocator()
	ctx := context.Background()

	s := newStore(t)
	var live []*rchunk.Chunk
	defer func() {
		for _, c := range live {
			c.Release()
		}
	}()

	forget := func(id ident.TUID) {
		kept := live[:0]
		for _, c := range live {
			if c.ID() == id {
				c.Release()
				continue
			}
			kept = append(kept, c)
		}
		live = kept
	}

	for i := 0; i < iterations; i++ {
		switch rng.IntN(3) {
		case 0: // insert
			entityPath := fuzzEntities[rng.IntN(len(fuzzEntities))]
			desc := fuzzComponents[rng.IntN(len(fuzzComponents))]
			frame := ident.TimeInt(rng.IntN(50))
			comp := rchunk.BuildFloat64Column(mem, [][]float64{{rng.Float64()}})
			c, err := rchunk.New(mem, entityPath, []ident.TUID{ident.NewTUID()},
				map[ident.Timeline][]ident.TimeInt{framesTimeline: {frame}},
				map[rchunk.ComponentDescriptor]arrow.Array{desc: comp},
			)
			comp.Release()
			if err != nil {
				t.Fatalf("iteration %d: rchunk.New: %v", i, err)
			}
			if _, err := s.InsertChunk(ctx, c); err != nil {
				t.Fatalf("iteration %d: InsertChunk: %v", i, err)
			}
			live = append(live, c)

		case 1: // gc
			events := s.GC(store.DropAtLeastFraction{Fraction: 0.5}, nil)
			for _, ev := range events {
				for _, removed := range removedChunkIDs(ev) {
					forget(removed)
				}
			}

		case 2: // drop_time_range
			lo := ident.TimeInt(rng.IntN(50))
			hi := lo + ident.TimeInt(rng.IntN(10))
			events, err := s.DropTimeRange(ctx, framesTimeline, ident.TimeRange{Lo: lo, Hi: hi}, false)
			if err != nil {
				t.Fatalf("iteration %d: DropTimeRange: %v", i, err)
			}
			for _, ev := range events {
				for _, removed := range removedChunkIDs(ev) {
					forget(removed)
				}
			}
		}

		checkIndexConsistency(t, s, i)
	}
}

func removedChunkIDs(ev store.Event) []ident.TUID {
	switch ev.Kind {
	case store.DiffDeletion:
		return []ident.TUID{ev.Chunk.ID()}
	case store.DiffCompaction:
		ids := make([]ident.TUID, len(ev.Compaction.Compacted))
		for i, c := range ev.Compaction.Compacted {
			ids[i] = c.ID()
		}
		return ids
	default:
		return nil
	}
}

func checkIndexConsistency(t *testing.T, s *store.Store, iteration int) {
	t.Helper()
	for c := range s.AllChunks() {
		for _, desc := range c.Components() {
			found := false
			for _, candidate := range s.IterChunks(c.EntityPath(), desc) {
				if candidate.ID() == c.ID() {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("iteration %d: chunk %v carries component %q but IterChunks(%v, %q) does not report it",
					iteration, c.ID(), desc.Name, c.EntityPath(), desc.Name)
			}
		}

		for _, desc := range fuzzComponents {
			hasDesc := false
			for _, d := range c.Components() {
				if d == desc {
					hasDesc = true
					break
				}
			}
			if hasDesc {
				continue
			}
			for _, candidate := range s.IterChunks(c.EntityPath(), desc) {
				if candidate.ID() == c.ID() {
					t.Fatalf("iteration %d: chunk %v does not carry component %q but IterChunks reports it",
						iteration, c.ID(), desc.Name)
				}
			}
		}
	}
}
