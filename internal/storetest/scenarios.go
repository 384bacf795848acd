package storetest

import (
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"rrcore/internal/ident"
	"rrcore/internal/rchunk"
	"rrcore/internal/store"
)

var (
	framesTimeline = ident.NewTimeline("frame_nr", ident.TimeTypeSequence)
	positionsDesc  = rchunk.NewComponentDescriptor("Points3D:positions")
	radiiDesc      = rchunk.NewComponentDescriptor("Points3D:radii")
	colorsDesc     = rchunk.NewComponentDescriptor("Points3D:colors")
)

func mustInsert(t *testing.T, s *store.Store, c *rchunk.Chunk) {
	t.Helper()
	if _, err := s.InsertChunk(context.Background(), c); err != nil {
		t.Fatalf("InsertChunk: %v", err)
	}
}

// testS1LatestAtBasic exercises spec.md §8 scenario S1: two temporal chunks
// on the same component, queried at times that fall before, between, and
// on the second chunk's row.
func testS1LatestAtBasic(t *testing.T, s *store.Store) {
	mem := memory.NewGoAllocator()
	entityPath := ident.NewEntityPath("points")

	comp := rchunk.BuildFloat64Column(mem, [][]float64{{0, 0, 0, 1, 1, 1}})
	a, err := rchunk.New(mem, entityPath, []ident.TUID{ident.NewTUID()},
		map[ident.Timeline][]ident.TimeInt{framesTimeline: {1}},
		map[rchunk.ComponentDescriptor]arrow.Array{positionsDesc: comp},
	)
	comp.Release()
	if err != nil {
		t.Fatalf("rchunk.New chunk A: %v", err)
	}
	defer a.Release()

	comp2 := rchunk.BuildFloat64Column(mem, [][]float64{{2, 2, 2}})
	b, err := rchunk.New(mem, entityPath, []ident.TUID{ident.NewTUID()},
		map[ident.Timeline][]ident.TimeInt{framesTimeline: {3}},
		map[rchunk.ComponentDescriptor]arrow.Array{positionsDesc: comp2},
	)
	comp2.Release()
	if err != nil {
		t.Fatalf("rchunk.New chunk B: %v", err)
	}
	defer b.Release()

	mustInsert(t, s, a)
	mustInsert(t, s, b)

	ctx := context.Background()

	res, ok, err := s.LatestAtChunks(ctx, framesTimeline, 2, entityPath, positionsDesc)
	if err != nil || !ok {
		t.Fatalf("LatestAtChunks(2) = %+v, %v, %v", res, ok, err)
	}
	if res.Chunk.ID() != a.ID() || res.RowIndex != 0 {
		t.Fatalf("LatestAtChunks(2) = chunk %v row %d, want chunk A row 0", res.Chunk.ID(), res.RowIndex)
	}

	res, ok, err = s.LatestAtChunks(ctx, framesTimeline, 3, entityPath, positionsDesc)
	if err != nil || !ok {
		t.Fatalf("LatestAtChunks(3) = %+v, %v, %v", res, ok, err)
	}
	if res.Chunk.ID() != b.ID() || res.RowIndex != 0 {
		t.Fatalf("LatestAtChunks(3) = chunk %v row %d, want chunk B row 0", res.Chunk.ID(), res.RowIndex)
	}

	_, ok, err = s.LatestAtChunks(ctx, framesTimeline, 0, entityPath, positionsDesc)
	if err != nil {
		t.Fatalf("LatestAtChunks(0): %v", err)
	}
	if ok {
		t.Fatal("LatestAtChunks(0) must find nothing before any row's time")
	}
}

// testS3PartialUpdates exercises spec.md §8 scenario S3: independently
// logged components at different frames must resolve to the chunk/row
// holding each component's own most recent update, not a single shared row.
func testS3PartialUpdates(t *testing.T, s *store.Store) {
	mem := memory.NewGoAllocator()
	entityPath := ident.NewEntityPath("points")

	insertOne := func(frame ident.TimeInt, desc rchunk.ComponentDescriptor, value float64) *rchunk.Chunk {
		comp := rchunk.BuildFloat64Column(mem, [][]float64{{value}})
		c, err := rchunk.New(mem, entityPath, []ident.TUID{ident.NewTUID()},
			map[ident.Timeline][]ident.TimeInt{framesTimeline: {frame}},
			map[rchunk.ComponentDescriptor]arrow.Array{desc: comp},
		)
		comp.Release()
		if err != nil {
			t.Fatalf("rchunk.New: %v", err)
		}
		mustInsert(t, s, c)
		return c
	}

	positionsAt42 := insertOne(42, positionsDesc, 1)
	radiiAt43 := insertOne(43, radiiDesc, 2)
	colorsAt44 := insertOne(44, colorsDesc, 3)
	positionsAt45 := insertOne(45, positionsDesc, 4)
	defer positionsAt42.Release()
	defer radiiAt43.Release()
	defer colorsAt44.Release()
	defer positionsAt45.Release()

	ctx := context.Background()

	posRes, ok, err := s.LatestAtChunks(ctx, framesTimeline, 44, entityPath, positionsDesc)
	if err != nil || !ok {
		t.Fatalf("LatestAtChunks(44, positions) = %+v, %v, %v", posRes, ok, err)
	}
	if posRes.Chunk.ID() != positionsAt42.ID() {
		t.Fatalf("positions at frame 44 resolved to chunk %v, want the frame-42 chunk", posRes.Chunk.ID())
	}

	radiiRes, ok, err := s.LatestAtChunks(ctx, framesTimeline, 44, entityPath, radiiDesc)
	if err != nil || !ok {
		t.Fatalf("LatestAtChunks(44, radii) = %+v, %v, %v", radiiRes, ok, err)
	}
	if radiiRes.Chunk.ID() != radiiAt43.ID() {
		t.Fatalf("radii at frame 44 resolved to chunk %v, want the frame-43 chunk", radiiRes.Chunk.ID())
	}

	colorsRes, ok, err := s.LatestAtChunks(ctx, framesTimeline, 44, entityPath, colorsDesc)
	if err != nil || !ok {
		t.Fatalf("LatestAtChunks(44, colors) = %+v, %v, %v", colorsRes, ok, err)
	}
	if colorsRes.Chunk.ID() != colorsAt44.ID() {
		t.Fatalf("colors at frame 44 resolved to chunk %v, want the frame-44 chunk", colorsRes.Chunk.ID())
	}
}
