package cache

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"rrcore/internal/ident"
	"rrcore/internal/rchunk"
	"rrcore/internal/store"
)

func TestDecodedImageCacheMemoizesAcrossCalls(t *testing.T) {
	c := NewDecodedImageCache(0, 0)
	key := DecodedImageKey{Blob: BlobCacheKey(1), MediaType: "image/png"}

	decodes := 0
	decode := func() (DecodedImage, error) {
		decodes++
		return DecodedImage{Pixels: []byte{1, 2, 3}, Width: 1, Height: 1}, nil
	}

	if _, err := c.GetOrDecode(key, decode); err != nil {
		t.Fatalf("GetOrDecode: %v", err)
	}
	if _, err := c.GetOrDecode(key, decode); err != nil {
		t.Fatalf("GetOrDecode: %v", err)
	}
	if decodes != 1 {
		t.Fatalf("decode called %d times, want 1", decodes)
	}
}

func TestDecodedImageCachePurgeMemoryEvictsUnused(t *testing.T) {
	c := NewDecodedImageCache(0, 0)
	used := DecodedImageKey{Blob: BlobCacheKey(1), MediaType: "image/png"}
	stale := DecodedImageKey{Blob: BlobCacheKey(2), MediaType: "image/png"}

	decode := func() (DecodedImage, error) { return DecodedImage{Pixels: []byte{1}}, nil }
	if _, err := c.GetOrDecode(used, decode); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetOrDecode(stale, decode); err != nil {
		t.Fatal(err)
	}

	c.BeginFrame() // clears both flags for the frame about to run
	if _, err := c.GetOrDecode(used, decode); err != nil {
		t.Fatal(err) // only "used" is touched this frame
	}

	c.PurgeMemory()

	if _, ok := c.entries.Peek(used); !ok {
		t.Fatal("used-this-frame entry must survive PurgeMemory")
	}
	if _, ok := c.entries.Peek(stale); ok {
		t.Fatal("unused entry must be evicted by PurgeMemory")
	}
}

func TestDecodedImageCacheInvalidatesOnRemovedRow(t *testing.T) {
	mem := memory.NewGoAllocator()
	entityPath := ident.NewEntityPath("world", "img")
	tl := ident.NewTimeline("frame_nr", ident.TimeTypeSequence)
	desc := rchunk.NewComponentDescriptor("Image:buffer")
	rowID := ident.NewTUID()

	comp := rchunk.BuildUint8Column(mem, [][]uint8{{0xFF}})
	defer comp.Release()
	c, err := rchunk.New(mem, entityPath, []ident.TUID{rowID},
		map[ident.Timeline][]ident.TimeInt{tl: {5}},
		map[rchunk.ComponentDescriptor]arrow.Array{desc: comp},
	)
	if err != nil {
		t.Fatalf("rchunk.New: %v", err)
	}
	defer c.Release()

	blobKey := ComputeBlobCacheKey(rowID, desc)
	cache := NewDecodedImageCache(0, 0)
	key := DecodedImageKey{Blob: blobKey, MediaType: "image/png"}
	if _, err := cache.GetOrDecode(key, func() (DecodedImage, error) {
		return DecodedImage{Pixels: []byte{1}}, nil
	}); err != nil {
		t.Fatal(err)
	}

	cache.OnStoreEvents([]store.Event{{Kind: store.DiffDeletion, Chunk: c}})

	if _, ok := cache.entries.Peek(key); ok {
		t.Fatal("entry for a deleted row must be invalidated")
	}
}
