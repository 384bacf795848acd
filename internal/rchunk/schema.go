package rchunk

import (
	"github.com/apache/arrow-go/v18/arrow"

	"rrcore/internal/ident"
)

// Metadata keys and values per the chunk wire format: a schema-level
// rerun:chunk_id / rerun:entity_path / rerun:is_sorted triple, an
// "rerun:kind=index" int64 column per timeline, and an
// "rerun:kind=component" list<T> column per logged component.
const (
	metaKindIndex     = "index"
	metaKindComponent = "component"

	keyKind       = "rerun:kind"
	keyTimeType   = "rerun:time_type"
	keyComponent  = "rerun:component"
	keyEntityPath = "rerun:entity_path"
	keyChunkID    = "rerun:chunk_id"
	keyIsSorted   = "rerun:is_sorted"

	// RowIDColumn is the fixed-size-binary(16) row-id column present in
	// every chunk.
	RowIDColumn = "rerun.row_id"
)

var rowIDType = &arrow.FixedSizeBinaryType{ByteWidth: 16}

func timelineField(tl ident.Timeline) arrow.Field {
	return arrow.Field{
		Name:     tl.Name,
		Type:     arrow.PrimitiveTypes.Int64,
		Nullable: false,
		Metadata: arrow.NewMetadata(
			[]string{keyKind, keyTimeType},
			[]string{metaKindIndex, tl.Type.String()},
		),
	}
}

func componentField(entityPath ident.EntityPath, desc ComponentDescriptor, valueType arrow.DataType) arrow.Field {
	return arrow.Field{
		Name:     desc.Name,
		Type:     arrow.ListOf(valueType),
		Nullable: true,
		Metadata: arrow.NewMetadata(
			[]string{keyKind, keyComponent, keyEntityPath},
			[]string{metaKindComponent, desc.Name, entityPath.String()},
		),
	}
}

func rowIDField() arrow.Field {
	return arrow.Field{
		Name:     RowIDColumn,
		Type:     rowIDType,
		Nullable: false,
	}
}

func chunkSchemaMetadata(id ident.TUID, entityPath ident.EntityPath, isSorted bool) arrow.Metadata {
	sorted := "false"
	if isSorted {
		sorted = "true"
	}
	return arrow.NewMetadata(
		[]string{keyChunkID, keyEntityPath, keyIsSorted},
		[]string{id.Text(ident.NamespaceChunk), entityPath.String(), sorted},
	)
}
