// Package rchunk implements Chunk, the immutable columnar record batch that
// is the core's unit of storage: one entity path, a row-id column, zero or
// more timeline columns, and one list<T> column per logged component.
//
// A Chunk wraps a real Apache Arrow record batch
// (github.com/apache/arrow-go/v18/arrow) rather than a hand-rolled columnar
// layout, so the schema and metadata conventions below are load-bearing:
// anything that consumes a Chunk downstream (a decoder, a test fixture
// comparing against a reference RecordBatch) can do so with a generic Arrow
// reader.
package rchunk

import "strings"

// ComponentDescriptor names a logged component column, e.g.
// "Points3D:positions". The archetype/field split mirrors how the upstream
// data model names fully-qualified component columns; the core itself
// treats the whole string as an opaque identifier.
type ComponentDescriptor struct {
	Name string
}

// NewComponentDescriptor constructs a descriptor from "Archetype:field".
func NewComponentDescriptor(name string) ComponentDescriptor {
	return ComponentDescriptor{Name: name}
}

func (d ComponentDescriptor) String() string { return d.Name }

// Archetype returns the portion of the descriptor before the first ':', or
// the whole name if there is no archetype qualifier.
func (d ComponentDescriptor) Archetype() string {
	if i := strings.IndexByte(d.Name, ':'); i >= 0 {
		return d.Name[:i]
	}
	return d.Name
}
