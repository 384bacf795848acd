package ident

import "testing"

func TestNewTUIDMonotonic(t *testing.T) {
	ids := make([]TUID, 1000)
	for i := range ids {
		ids[i] = NewTUID()
	}
	for i := 1; i < len(ids); i++ {
		if !ids[i-1].Less(ids[i]) {
			t.Fatalf("ids not strictly increasing at %d: %v >= %v", i, ids[i-1], ids[i])
		}
	}
}

func TestNewTUIDMonotonicUnderFrozenClock(t *testing.T) {
	orig := now
	defer func() { now = orig }()
	now = func() uint64 { return 1000 }

	a := NewTUID()
	b := NewTUID()
	c := NewTUID()

	if !a.Less(b) || !b.Less(c) {
		t.Fatalf("expected strictly increasing under frozen clock, got %v %v %v", a, b, c)
	}
	if a.High() != b.High() || b.High() != c.High() {
		t.Fatalf("expected identical high bits under frozen clock")
	}
}

func TestNewTUIDMonotonicUnderBackwardsClock(t *testing.T) {
	orig := now
	defer func() { now = orig }()

	now = func() uint64 { return 5000 }
	a := NewTUID()

	now = func() uint64 { return 1000 } // clock jumps backwards
	b := NewTUID()

	if !a.Less(b) {
		t.Fatalf("expected monotonic id despite backwards clock: %v >= %v", a, b)
	}
	if b.High() != a.High() {
		t.Fatalf("expected high bits held steady on clock regression")
	}
}

func TestTUIDTextRoundTrip(t *testing.T) {
	id := NewTUID()
	for _, ns := range []Namespace{NamespaceChunk, NamespaceRow} {
		text := id.Text(ns)
		got, err := ParseTUID(text)
		if err != nil {
			t.Fatalf("parse %q: %v", text, err)
		}
		if got != id {
			t.Fatalf("round trip mismatch: %v != %v", got, id)
		}
	}
}

func TestParseTUIDWithoutNamespace(t *testing.T) {
	id := NewTUID()
	got, err := ParseTUID(id.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != id {
		t.Fatalf("round trip mismatch")
	}
}

func TestParseTUIDInvalid(t *testing.T) {
	if _, err := ParseTUID("chunk_nothex"); err == nil {
		t.Fatal("expected error for malformed hex")
	}
	if _, err := ParseTUID("row_deadbeef"); err == nil {
		t.Fatal("expected error for short id")
	}
}

func TestTUIDIsZero(t *testing.T) {
	var z TUID
	if !z.IsZero() {
		t.Fatal("zero value should report IsZero")
	}
	if NewTUID().IsZero() {
		t.Fatal("generated id should not be zero")
	}
}
