package rchunk

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"rrcore/internal/ident"
)

// ErrIncompatibleChunks is returned by Concat when the inputs do not share
// the same entity path and column set.
var ErrIncompatibleChunks = errors.New("rchunk: incompatible chunks for concatenation")

// Concat concatenates two or more chunks of the same entity path and
// column set into a single new chunk with a fresh chunk id. It is the
// primitive behind opportunistic compaction (spec.md §4.3.1 step 5):
// chunks are never merged implicitly by any other operation. The result
// is not sorted on any timeline; callers that need it sorted call
// SortByTimeline afterward.
func Concat(mem memory.Allocator, chunks ...*Chunk) (*Chunk, error) {
	if len(chunks) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 chunks, got %d", ErrIncompatibleChunks, len(chunks))
	}

	first := chunks[0]
	entityPath := first.entityPath
	fields := first.record.Schema().Fields()

	for _, c := range chunks[1:] {
		if c.entityPath.Hash() != entityPath.Hash() {
			return nil, fmt.Errorf("%w: entity path mismatch", ErrIncompatibleChunks)
		}
		if c.record.Schema().NumFields() != len(fields) {
			return nil, fmt.Errorf("%w: column count mismatch", ErrIncompatibleChunks)
		}
	}

	var numRows int64
	for _, c := range chunks {
		numRows += c.record.NumRows()
	}

	cols := make([]arrow.Array, 0, len(fields))
	for _, field := range fields {
		parts := make([]arrow.Array, 0, len(chunks))
		for _, c := range chunks {
			idx, ok := columnIndexByName(c.record.Schema(), field.Name)
			if !ok {
				return nil, fmt.Errorf("%w: column %q missing from one input", ErrIncompatibleChunks, field.Name)
			}
			parts = append(parts, c.record.Column(idx))
		}
		merged, err := array.Concatenate(parts, mem)
		if err != nil {
			for _, c := range cols {
				c.Release()
			}
			return nil, fmt.Errorf("rchunk: concat column %q: %w", field.Name, err)
		}
		cols = append(cols, merged)
	}

	id := ident.NewTUID()
	schema := arrow.NewSchema(fields, schemaMetaPtr(chunkSchemaMetadata(id, entityPath, false)))
	record := array.NewRecord(schema, cols, numRows)
	for _, c := range cols {
		c.Release()
	}

	return &Chunk{id: id, entityPath: entityPath, record: record}, nil
}

func columnIndexByName(schema *arrow.Schema, name string) (int, bool) {
	for i, f := range schema.Fields() {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}
