package rchunk

import (
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"rrcore/internal/ident"
)

func newTestAllocator() memory.Allocator { return memory.NewGoAllocator() }

var framesTimeline = ident.NewTimeline("frame_nr", ident.TimeTypeSequence)
var positionsDesc = NewComponentDescriptor("Points3D:positions")

func newRowIDs(n int) []ident.TUID {
	ids := make([]ident.TUID, n)
	for i := range ids {
		ids[i] = ident.NewTUID()
	}
	return ids
}

func newTemporalChunk(t *testing.T, mem memory.Allocator, rows [][]float64, times []ident.TimeInt) *Chunk {
	t.Helper()
	comp := BuildFloat64Column(mem, rows)
	defer comp.Release()

	c, err := New(mem, ident.NewEntityPath("points"), newRowIDs(len(rows)),
		map[ident.Timeline][]ident.TimeInt{framesTimeline: times},
		map[ComponentDescriptor]arrow.Array{positionsDesc: comp},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewBasic(t *testing.T) {
	mem := newTestAllocator()
	c := newTemporalChunk(t, mem, [][]float64{{0, 0, 0}, {1, 1, 1}}, []ident.TimeInt{1, 3})
	defer c.Release()

	if c.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", c.NumRows())
	}
	if c.IsStatic() {
		t.Fatal("chunk with a timeline column should not be static")
	}
	comps := c.Components()
	if len(comps) != 1 || comps[0] != positionsDesc {
		t.Fatalf("Components() = %v, want [%v]", comps, positionsDesc)
	}
	tls := c.Timelines()
	if len(tls) != 1 || tls[0].Name != framesTimeline.Name {
		t.Fatalf("Timelines() = %v, want [%v]", tls, framesTimeline)
	}
}

func TestNewStaticChunkHasNoTimelines(t *testing.T) {
	mem := newTestAllocator()
	comp := BuildFloat64Column(mem, [][]float64{{9, 9, 9}})
	defer comp.Release()

	c, err := New(mem, ident.NewEntityPath("points"), newRowIDs(1), nil,
		map[ComponentDescriptor]arrow.Array{positionsDesc: comp})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Release()

	if !c.IsStatic() {
		t.Fatal("chunk with no timelines should be static")
	}
}

func TestNewRejectsTimelineLengthMismatch(t *testing.T) {
	mem := newTestAllocator()
	comp := BuildFloat64Column(mem, [][]float64{{1}, {2}, {3}})
	defer comp.Release()

	_, err := New(mem, ident.NewEntityPath("points"), newRowIDs(3),
		map[ident.Timeline][]ident.TimeInt{framesTimeline: {1, 2}}, // length 2, want 3
		map[ComponentDescriptor]arrow.Array{positionsDesc: comp})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("err = %v, want ErrLengthMismatch", err)
	}
}

func TestNewRejectsComponentLengthMismatch(t *testing.T) {
	mem := newTestAllocator()
	comp := BuildFloat64Column(mem, [][]float64{{1}, {2}}) // length 2
	defer comp.Release()

	_, err := New(mem, ident.NewEntityPath("points"), newRowIDs(3), nil,
		map[ComponentDescriptor]arrow.Array{positionsDesc: comp})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("err = %v, want ErrLengthMismatch", err)
	}
}

func TestNewRejectsDuplicateComponentName(t *testing.T) {
	mem := newTestAllocator()
	comp := BuildFloat64Column(mem, [][]float64{{1}})
	defer comp.Release()

	collidingDesc := NewComponentDescriptor(framesTimeline.Name)
	_, err := New(mem, ident.NewEntityPath("points"), newRowIDs(1),
		map[ident.Timeline][]ident.TimeInt{framesTimeline: {1}},
		map[ComponentDescriptor]arrow.Array{collidingDesc: comp})
	if !errors.Is(err, ErrDuplicateComponent) {
		t.Fatalf("err = %v, want ErrDuplicateComponent", err)
	}
}

func TestNewRejectsNonListComponent(t *testing.T) {
	mem := newTestAllocator()
	b := array.NewFloat64Builder(mem)
	b.AppendValues([]float64{1, 2, 3}, nil)
	flat := b.NewArray()
	b.Release()
	defer flat.Release()

	_, err := New(mem, ident.NewEntityPath("points"), newRowIDs(3), nil,
		map[ComponentDescriptor]arrow.Array{positionsDesc: flat})
	if !errors.Is(err, ErrInvalidDatatype) {
		t.Fatalf("err = %v, want ErrInvalidDatatype", err)
	}
}

func TestChunkRecordCarriesRowsAndMetadata(t *testing.T) {
	mem := newTestAllocator()
	c := newTemporalChunk(t, mem, [][]float64{{0, 0, 0}, {1, 1, 1}}, []ident.TimeInt{1, 3})
	defer c.Release()

	rec := c.Record()
	if rec.NumRows() != 2 {
		t.Fatalf("record NumRows() = %d, want 2", rec.NumRows())
	}
	entityPath, ok := rec.Schema().Metadata().GetValue(keyEntityPath)
	if !ok || entityPath != "/points" {
		t.Fatalf("schema metadata entity_path = %q, ok=%v", entityPath, ok)
	}
}
