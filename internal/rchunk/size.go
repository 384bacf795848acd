package rchunk

import "github.com/apache/arrow-go/v18/arrow"

// fixedColumnOverhead approximates the per-column bookkeeping (schema
// field, Arrow array header) that raw buffer sizes don't capture — mirrors
// the teacher's ChunkMeta dual accounting (logical Bytes vs on-disk
// DiskBytes) but with no disk component, since nothing here touches disk.
const fixedColumnOverhead = 64

// HeapSizeBytes recursively sums the byte size of every Arrow buffer
// backing this chunk's columns, for GC candidate selection and cache
// memory budgeting.
func (c *Chunk) HeapSizeBytes() int64 {
	var total int64
	numCols := int(c.record.NumCols())
	for i := 0; i < numCols; i++ {
		total += fixedColumnOverhead
		total += bufferBytes(c.record.Column(i).Data())
	}
	return total
}

func bufferBytes(data arrow.ArrayData) int64 {
	var total int64
	for _, buf := range data.Buffers() {
		if buf != nil {
			total += int64(buf.Len())
		}
	}
	for _, child := range data.Children() {
		total += bufferBytes(child)
	}
	return total
}
