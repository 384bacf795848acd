package rchunk

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ValueAppender appends one value onto the list's child value builder. It
// is the write-side counterpart of ValueAccessor, needed because Arrow's
// builder types are not generic.
type ValueAppender[T any] func(b array.Builder, v T)

// AppendFloat64 appends onto a *array.Float64Builder.
func AppendFloat64(b array.Builder, v float64) { b.(*array.Float64Builder).Append(v) }

// AppendInt64 appends onto a *array.Int64Builder.
func AppendInt64(b array.Builder, v int64) { b.(*array.Int64Builder).Append(v) }

// AppendUint8 appends onto a *array.Uint8Builder.
func AppendUint8(b array.Builder, v uint8) { b.(*array.Uint8Builder).Append(v) }

// AppendString appends onto a *array.StringBuilder.
func AppendString(b array.Builder, v string) { b.(*array.StringBuilder).Append(v) }

// BuildListColumn constructs a list<valueType> Arrow array from per-row
// value slices. A nil row slice produces a null list slot ("no value this
// row", per the component column convention); an empty non-nil slice
// produces a valid zero-length list.
func BuildListColumn[T any](mem memory.Allocator, valueType arrow.DataType, rows [][]T, appender ValueAppender[T]) arrow.Array {
	lb := array.NewListBuilder(mem, valueType)
	defer lb.Release()
	vb := lb.ValueBuilder()

	for _, row := range rows {
		if row == nil {
			lb.AppendNull()
			continue
		}
		lb.Append(true)
		for _, v := range row {
			appender(vb, v)
		}
	}
	return lb.NewArray()
}

// BuildFloat64Column is BuildListColumn specialized to list<float64>, the
// common case for position/scalar components.
func BuildFloat64Column(mem memory.Allocator, rows [][]float64) arrow.Array {
	return BuildListColumn(mem, arrow.PrimitiveTypes.Float64, rows, AppendFloat64)
}

// BuildUint8Column is BuildListColumn specialized to list<uint8>, the
// common case for packed color components.
func BuildUint8Column(mem memory.Allocator, rows [][]uint8) arrow.Array {
	return BuildListColumn(mem, arrow.PrimitiveTypes.Uint8, rows, AppendUint8)
}

// BuildStringColumn is BuildListColumn specialized to list<string>, for
// label-like components.
func BuildStringColumn(mem memory.Allocator, rows [][]string) arrow.Array {
	return BuildListColumn(mem, arrow.BinaryTypes.String, rows, AppendString)
}

// ValidateComponentArray is exposed so store-level code can check an
// arbitrary caller-supplied array before handing it to New, giving the
// ErrInvalidDatatype check a name outside of the constructor.
func ValidateComponentArray(arr arrow.Array) error {
	if arr.DataType().ID() != arrow.LIST {
		return fmt.Errorf("%w: %s", ErrInvalidDatatype, arr.DataType())
	}
	return nil
}
