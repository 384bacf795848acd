package cache

import (
	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"

	"rrcore/internal/ident"
	"rrcore/internal/rchunk"
)

// BlobCacheKey is the 64-bit content key spec.md §4.5.4 calls
// blob_cache_key = hash(row_id, component_descriptor): a stable,
// allocation-light identity for "the decoded bytes behind this one row's
// component value", shared by the decoded-image and video-asset caches.
type BlobCacheKey uint64

// blobKeyPayload is the exact tuple hashed into a BlobCacheKey, encoded
// with msgpack (already a direct dependency, used elsewhere in the
// corpus to serialize structured values compactly) before hashing so the
// key is stable across the descriptor's internal field order.
type blobKeyPayload struct {
	RowID      ident.TUID
	Descriptor string
}

// ComputeBlobCacheKey derives the cache key for one row's component blob.
func ComputeBlobCacheKey(rowID ident.TUID, desc rchunk.ComponentDescriptor) BlobCacheKey {
	encoded, err := msgpack.Marshal(blobKeyPayload{RowID: rowID, Descriptor: desc.Name})
	if err != nil {
		// msgpack.Marshal only fails on unsupported types; blobKeyPayload
		// contains none, so this is unreachable in practice. Fall back to
		// hashing the raw descriptor name rather than panicking.
		return BlobCacheKey(xxhash.Sum64String(desc.Name))
	}
	return BlobCacheKey(xxhash.Sum64(encoded))
}
