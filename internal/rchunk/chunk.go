package rchunk

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"rrcore/internal/ident"
)

var (
	// ErrLengthMismatch is returned by New when row ids, timeline values,
	// or component arrays disagree on row count.
	ErrLengthMismatch = errors.New("rchunk: column length mismatch")
	// ErrDuplicateComponent is returned by New when a component descriptor
	// collides with another column's name (a timeline or another
	// component).
	ErrDuplicateComponent = errors.New("rchunk: duplicate component name")
	// ErrInvalidDatatype is returned by New when a component array is not
	// a list-typed Arrow array.
	ErrInvalidDatatype = errors.New("rchunk: invalid component datatype")
)

// Chunk is an immutable, Arrow-backed columnar record batch: one row per
// logged event, a row-id column, zero or more timeline columns, and one
// list<T> column per component. Chunks are shared by reference; holding one
// is safe indefinitely and never blocks a store.
type Chunk struct {
	id         ident.TUID
	entityPath ident.EntityPath
	record     arrow.Record

	// sortedTimeline/isSorted record which timeline (if any) the chunk is
	// currently known to be ascending-sorted on. Zero value (isSorted ==
	// false) means "unknown/not sorted" — callers that need a guarantee
	// call SortByTimeline.
	sortedTimeline ident.Timeline
	isSorted       bool
}

// New validates and constructs a Chunk from already-built Arrow columns.
// timelines maps each timeline present on this chunk to its per-row int64
// values (same length as rowIDs); components maps each logged component to
// an already-built list<T> Arrow array (same length as rowIDs). New takes
// ownership of neither slice; it builds fresh Arrow arrays from the time
// values and wraps (without copying) the component arrays it is given.
func New(
	mem memory.Allocator,
	entityPath ident.EntityPath,
	rowIDs []ident.TUID,
	timelines map[ident.Timeline][]ident.TimeInt,
	components map[ComponentDescriptor]arrow.Array,
) (*Chunk, error) {
	numRows := len(rowIDs)

	for tl, values := range timelines {
		if len(values) != numRows {
			return nil, fmt.Errorf("%w: timeline %q has %d values, want %d", ErrLengthMismatch, tl.Name, len(values), numRows)
		}
	}
	for desc, arr := range components {
		if arr.Len() != numRows {
			return nil, fmt.Errorf("%w: component %q has %d rows, want %d", ErrLengthMismatch, desc.Name, arr.Len(), numRows)
		}
		if arr.DataType().ID() != arrow.LIST {
			return nil, fmt.Errorf("%w: component %q is %s, want list<T>", ErrInvalidDatatype, desc.Name, arr.DataType())
		}
	}

	usedNames := make(map[string]struct{}, len(timelines)+len(components)+1)
	usedNames[RowIDColumn] = struct{}{}
	for tl := range timelines {
		if _, dup := usedNames[tl.Name]; dup {
			return nil, fmt.Errorf("%w: timeline %q collides with an existing column", ErrDuplicateComponent, tl.Name)
		}
		usedNames[tl.Name] = struct{}{}
	}
	for desc := range components {
		if _, dup := usedNames[desc.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateComponent, desc.Name)
		}
		usedNames[desc.Name] = struct{}{}
	}

	id := ident.NewTUID()

	fields := make([]arrow.Field, 0, len(usedNames))
	cols := make([]arrow.Array, 0, len(usedNames))

	fields = append(fields, rowIDField())
	cols = append(cols, buildRowIDColumn(mem, rowIDs))

	for tl, values := range timelines {
		fields = append(fields, timelineField(tl))
		cols = append(cols, buildTimeColumn(mem, values))
	}
	for desc, arr := range components {
		fields = append(fields, componentField(entityPath, desc, arr.DataType().(*arrow.ListType).Elem()))
		arr.Retain()
		cols = append(cols, arr)
	}

	schema := arrow.NewSchema(fields, schemaMetaPtr(chunkSchemaMetadata(id, entityPath, false)))
	record := array.NewRecord(schema, cols, int64(numRows))
	for _, c := range cols {
		c.Release()
	}

	return &Chunk{id: id, entityPath: entityPath, record: record}, nil
}

func schemaMetaPtr(m arrow.Metadata) *arrow.Metadata { return &m }

func buildRowIDColumn(mem memory.Allocator, rowIDs []ident.TUID) arrow.Array {
	b := array.NewFixedSizeBinaryBuilder(mem, rowIDType)
	defer b.Release()
	for _, id := range rowIDs {
		b.Append(id[:])
	}
	return b.NewArray()
}

func buildTimeColumn(mem memory.Allocator, values []ident.TimeInt) arrow.Array {
	b := array.NewInt64Builder(mem)
	defer b.Release()
	for _, v := range values {
		b.Append(int64(v))
	}
	return b.NewArray()
}

// ID returns the chunk's identity.
func (c *Chunk) ID() ident.TUID { return c.id }

// EntityPath returns the entity path every row in this chunk belongs to.
func (c *Chunk) EntityPath() ident.EntityPath { return c.entityPath }

// NumRows returns the row count.
func (c *Chunk) NumRows() int { return int(c.record.NumRows()) }

// Record exposes the underlying Arrow record batch for callers (decoders,
// round-trip tests) that need direct Arrow access. The returned record must
// not be mutated.
func (c *Chunk) Record() arrow.Record { return c.record }

// Components returns the descriptors of every component column present.
func (c *Chunk) Components() []ComponentDescriptor {
	schema := c.record.Schema()
	var out []ComponentDescriptor
	for _, f := range schema.Fields() {
		if kind, ok := f.Metadata.GetValue(keyKind); ok && kind == metaKindComponent {
			out = append(out, ComponentDescriptor{Name: f.Name})
		}
	}
	return out
}

// Timelines returns the timelines present on this chunk.
func (c *Chunk) Timelines() []ident.Timeline {
	schema := c.record.Schema()
	var out []ident.Timeline
	for _, f := range schema.Fields() {
		if kind, ok := f.Metadata.GetValue(keyKind); ok && kind == metaKindIndex {
			typ, _ := f.Metadata.GetValue(keyTimeType)
			out = append(out, ident.NewTimeline(f.Name, parseTimeType(typ)))
		}
	}
	return out
}

func parseTimeType(s string) ident.TimeType {
	switch s {
	case "sequence":
		return ident.TimeTypeSequence
	case "duration":
		return ident.TimeTypeDurationNs
	case "timestamp":
		return ident.TimeTypeTimestampNs
	default:
		return ident.TimeTypeSequence
	}
}

// IsStatic reports whether the chunk carries no timeline columns.
func (c *Chunk) IsStatic() bool {
	return len(c.Timelines()) == 0
}

// IsSorted reports whether the chunk is known to be ascending-sorted on tl.
// A chunk is sorted with respect to at most one timeline at a time; sorting
// by a different timeline (SortByTimeline) clears any prior guarantee.
func (c *Chunk) IsSorted(tl ident.Timeline) bool {
	return c.isSorted && c.sortedTimeline == tl
}

// TimeAt returns the value of timeline tl at row i.
func (c *Chunk) TimeAt(tl ident.Timeline, i int) (ident.TimeInt, error) {
	idx, ok := c.timelineColumnIndex(tl)
	if !ok {
		return 0, fmt.Errorf("rchunk: chunk has no timeline %q", tl.Name)
	}
	col := c.record.Column(idx).(*array.Int64)
	return ident.TimeInt(col.Value(i)), nil
}

func (c *Chunk) timelineColumnIndex(tl ident.Timeline) (int, bool) {
	schema := c.record.Schema()
	for i, f := range schema.Fields() {
		if f.Name == tl.Name {
			if kind, ok := f.Metadata.GetValue(keyKind); ok && kind == metaKindIndex {
				return i, true
			}
		}
	}
	return 0, false
}

func (c *Chunk) componentColumnIndex(desc ComponentDescriptor) (int, bool) {
	schema := c.record.Schema()
	for i, f := range schema.Fields() {
		if f.Name == desc.Name {
			return i, true
		}
	}
	return 0, false
}

// RowID returns the row-id at index i.
func (c *Chunk) RowID(i int) ident.TUID {
	col := c.record.Column(0).(*array.FixedSizeBinary)
	var out ident.TUID
	copy(out[:], col.Value(i))
	return out
}

// Release releases the chunk's underlying Arrow record. Chunks are
// reference-counted per the Arrow convention; a Chunk obtained from the
// store must be released when the caller is done holding it if it retained
// it beyond the store's own lifetime management.
func (c *Chunk) Release() {
	c.record.Release()
}

// Retain increments the underlying Arrow record's reference count.
func (c *Chunk) Retain() {
	c.record.Retain()
}
