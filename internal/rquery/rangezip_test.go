package rquery

import (
	"testing"

	"rrcore/internal/ident"
	"rrcore/internal/rchunk"
)

func idx(t ident.TimeInt, seed byte) rchunk.IndexEntry {
	var id ident.TUID
	id[15] = seed
	return rchunk.IndexEntry{Time: t, RowID: id}
}

func TestRangeZipStrictComponentsOnlyAppearOnOwnRows(t *testing.T) {
	posDesc := rchunk.NewComponentDescriptor("Points3D:positions")
	colorDesc := rchunk.NewComponentDescriptor("Points3D:colors")

	positions := Stream{
		Name: posDesc,
		Entries: []ZipEntry{
			{Index: idx(1, 1), Value: "p1"},
			{Index: idx(2, 2), Value: "p2"},
		},
	}
	colors := Stream{
		Name: colorDesc,
		Entries: []ZipEntry{
			{Index: idx(1, 1), Value: "c1"},
		},
	}

	var rows []map[rchunk.ComponentDescriptor]any
	for row := range RangeZip([]Stream{positions, colors}) {
		rows = append(rows, row)
	}
	if len(rows) != 2 {
		t.Fatalf("RangeZip produced %d rows, want 2", len(rows))
	}
	if rows[0][posDesc] != "p1" || rows[0][colorDesc] != "c1" {
		t.Fatalf("row 0 = %+v, want positions=p1 colors=c1", rows[0])
	}
	if _, ok := rows[1][colorDesc]; ok {
		t.Fatalf("row 1 = %+v, want colors absent (no row at index 2)", rows[1])
	}
	if rows[1][posDesc] != "p2" {
		t.Fatalf("row 1 positions = %v, want p2", rows[1][posDesc])
	}
}

func TestRangeZipStaircaseCarriesForward(t *testing.T) {
	posDesc := rchunk.NewComponentDescriptor("Points3D:positions")
	radiusDesc := rchunk.NewComponentDescriptor("Points3D:radii")

	positions := Stream{
		Name: posDesc,
		Entries: []ZipEntry{
			{Index: idx(1, 1), Value: "p1"},
			{Index: idx(3, 3), Value: "p3"},
		},
	}
	radii := Stream{
		Name:      radiusDesc,
		Staircase: true,
		Entries: []ZipEntry{
			{Index: idx(1, 1), Value: 1.0},
		},
	}

	var rows []map[rchunk.ComponentDescriptor]any
	for row := range RangeZip([]Stream{positions, radii}) {
		rows = append(rows, row)
	}
	if len(rows) != 2 {
		t.Fatalf("RangeZip produced %d rows, want 2", len(rows))
	}
	for _, row := range rows {
		if row[radiusDesc] != 1.0 {
			t.Fatalf("row = %+v, want radii carried forward as 1.0", row)
		}
	}
}

func TestRangeZipEmptyStreamsProduceNoRows(t *testing.T) {
	count := 0
	for range RangeZip(nil) {
		count++
	}
	if count != 0 {
		t.Fatalf("RangeZip(nil) produced %d rows, want 0", count)
	}
}
