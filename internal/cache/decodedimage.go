package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"rrcore/internal/rchunk"
	"rrcore/internal/store"
)

// DecodedImageKey is the cache key spec.md §4.5.4 specifies:
// "(blob_cache_key, media_type)".
type DecodedImageKey struct {
	Blob      BlobCacheKey
	MediaType string
}

// DecodedImage is a decoded pixel buffer plus the metadata needed to
// interpret it.
type DecodedImage struct {
	Pixels []byte
	Width  int
	Height int
	Format string
}

// heapSize approximates the cache's own byte budget for one decoded
// image: the pixel buffer dominates, everything else is fixed overhead.
func (d DecodedImage) heapSize() int64 {
	const fixedOverhead = 64
	return int64(len(d.Pixels)) + fixedOverhead
}

type decodedImageEntry struct {
	value         DecodedImage
	usedThisFrame bool
}

// DecodedImageCache memoizes decoded image buffers, bounded by an LRU
// entry count as a backstop (github.com/hashicorp/golang-lru/v2, the
// same bounded-map-with-eviction library the corpus reaches for
// elsewhere) and by the "used this frame" mark-and-sweep spec.md
// mandates as the cache's primary eviction policy.
type DecodedImageCache struct {
	mu           sync.Mutex
	entries      *lru.Cache[DecodedImageKey, *decodedImageEntry]
	softCapBytes int64
}

// NewDecodedImageCache returns a cache bounded by maxEntries (an LRU
// backstop; <= 0 means a reasonable default) and a soft byte budget
// checked at each BeginFrame.
func NewDecodedImageCache(maxEntries int, softCapBytes int64) *DecodedImageCache {
	if maxEntries <= 0 {
		maxEntries = 512
	}
	entries, _ := lru.New[DecodedImageKey, *decodedImageEntry](maxEntries)
	return &DecodedImageCache{entries: entries, softCapBytes: softCapBytes}
}

// GetOrDecode returns the memoized image for key, marking it used this
// frame, or calls decode to produce and memoize one.
func (c *DecodedImageCache) GetOrDecode(key DecodedImageKey, decode func() (DecodedImage, error)) (DecodedImage, error) {
	c.mu.Lock()
	if entry, ok := c.entries.Get(key); ok {
		entry.usedThisFrame = true
		c.mu.Unlock()
		return entry.value, nil
	}
	c.mu.Unlock()

	img, err := decode()
	if err != nil {
		return DecodedImage{}, err
	}

	c.mu.Lock()
	c.entries.Add(key, &decodedImageEntry{value: img, usedThisFrame: true})
	c.mu.Unlock()
	return img, nil
}

// BeginFrame evicts entries not used this frame if the cache is over its
// soft byte budget, then clears every remaining entry's "used this frame"
// flag.
func (c *DecodedImageCache) BeginFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.softCapBytes > 0 && c.totalBytesLocked() > c.softCapBytes {
		c.evictUnusedLocked()
	}
	for _, key := range c.entries.Keys() {
		if entry, ok := c.entries.Peek(key); ok {
			entry.usedThisFrame = false
		}
	}
}

// PurgeMemory unconditionally evicts every entry not used this frame.
func (c *DecodedImageCache) PurgeMemory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictUnusedLocked()
}

func (c *DecodedImageCache) evictUnusedLocked() {
	for _, key := range c.entries.Keys() {
		if entry, ok := c.entries.Peek(key); ok && !entry.usedThisFrame {
			c.entries.Remove(key)
		}
	}
}

func (c *DecodedImageCache) totalBytesLocked() int64 {
	var total int64
	for _, key := range c.entries.Keys() {
		if entry, ok := c.entries.Peek(key); ok {
			total += entry.value.heapSize()
		}
	}
	return total
}

// OnStoreEvents drops memoized images whose (row_id, component) blob key
// belonged to a chunk that a Deletion or Compaction event removed — a
// decoded image keyed off a row that no longer exists can never be
// refreshed, so it must not outlive its row. blob_cache_key is a one-way
// hash, so membership is checked by recomputing the key for every
// (row_id, component) pair the removed chunk held rather than by
// inverting it.
func (c *DecodedImageCache) OnStoreEvents(events []store.Event) {
	stale := make(map[BlobCacheKey]struct{})
	for _, ev := range events {
		for _, removed := range removedChunks(ev) {
			addBlobKeysFromChunk(stale, removed)
		}
	}
	if len(stale) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range c.entries.Keys() {
		if _, hit := stale[key.Blob]; hit {
			c.entries.Remove(key)
		}
	}
}

// removedChunks returns the chunks an event permanently removed: the
// deleted chunk for Deletion, or the compacted inputs for Compaction
// (the merged result is a fresh chunk with fresh row ids, so its rows
// are never stale).
func removedChunks(ev store.Event) []*rchunk.Chunk {
	switch ev.Kind {
	case store.DiffDeletion:
		if ev.Chunk == nil {
			return nil
		}
		return []*rchunk.Chunk{ev.Chunk}
	case store.DiffCompaction:
		return ev.Compaction.Compacted
	default:
		return nil
	}
}

// addBlobKeysFromChunk adds the blob cache key for every (row, component)
// pair in c to dst.
func addBlobKeysFromChunk(dst map[BlobCacheKey]struct{}, c *rchunk.Chunk) {
	for i := 0; i < c.NumRows(); i++ {
		rowID := c.RowID(i)
		for _, desc := range c.Components() {
			dst[ComputeBlobCacheKey(rowID, desc)] = struct{}{}
		}
	}
}

// MemoryReport returns the cache's current resident bytes, all CPU-side.
func (c *DecodedImageCache) MemoryReport() Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Report{CPUBytes: c.totalBytesLocked()}
}
