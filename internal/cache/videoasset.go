package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"rrcore/internal/store"
)

// VideoAssetKey is the cache key spec.md §4.5.5 specifies:
// "(blob_cache_key, media_type, hw_accel_setting)".
type VideoAssetKey struct {
	Blob           BlobCacheKey
	MediaType      string
	HWAccelSetting string
}

// VideoDecoder is the decoder handle a video asset owns. Decoders
// independently manage their own per-frame residency (spec.md §4.5.5);
// the cache only owns the handle's lifetime, never its internal state.
type VideoDecoder interface {
	Close() error
}

// VideoAsset is parsed container metadata plus the decoder(s) opened
// against it.
type VideoAsset struct {
	ContainerFormat string
	DurationNs      int64
	Decoders        []VideoDecoder
	MetadataBytes   int64
}

func (a VideoAsset) heapSize() int64 {
	const perDecoderOverhead = 256
	return a.MetadataBytes + int64(len(a.Decoders))*perDecoderOverhead
}

type videoAssetEntry struct {
	value         VideoAsset
	usedThisFrame bool
}

// VideoAssetCache memoizes opened video assets the same "used this
// frame" way DecodedImageCache memoizes decoded pixels, parameterized
// additionally by hardware-acceleration setting since a decoder opened
// for one hw_accel_setting cannot serve a request for another.
type VideoAssetCache struct {
	mu      sync.Mutex
	entries *lru.Cache[VideoAssetKey, *videoAssetEntry]
}

// NewVideoAssetCache returns a cache bounded by maxEntries (an LRU
// backstop; <= 0 means a reasonable default).
func NewVideoAssetCache(maxEntries int) *VideoAssetCache {
	if maxEntries <= 0 {
		maxEntries = 64
	}
	entries, _ := lru.New[VideoAssetKey, *videoAssetEntry](maxEntries)
	return &VideoAssetCache{entries: entries}
}

// GetOrOpen returns the memoized asset for key, marking it used this
// frame, or calls open to parse and memoize one.
func (c *VideoAssetCache) GetOrOpen(key VideoAssetKey, open func() (VideoAsset, error)) (VideoAsset, error) {
	c.mu.Lock()
	if entry, ok := c.entries.Get(key); ok {
		entry.usedThisFrame = true
		c.mu.Unlock()
		return entry.value, nil
	}
	c.mu.Unlock()

	asset, err := open()
	if err != nil {
		return VideoAsset{}, err
	}

	c.mu.Lock()
	c.entries.Add(key, &videoAssetEntry{value: asset, usedThisFrame: true})
	c.mu.Unlock()
	return asset, nil
}

// BeginFrame clears every entry's "used this frame" flag.
func (c *VideoAssetCache) BeginFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range c.entries.Keys() {
		if entry, ok := c.entries.Peek(key); ok {
			entry.usedThisFrame = false
		}
	}
}

// PurgeMemory closes and evicts every asset not used this frame.
func (c *VideoAssetCache) PurgeMemory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range c.entries.Keys() {
		entry, ok := c.entries.Peek(key)
		if !ok || entry.usedThisFrame {
			continue
		}
		closeDecoders(entry.value.Decoders)
		c.entries.Remove(key)
	}
}

func closeDecoders(decoders []VideoDecoder) {
	for _, d := range decoders {
		_ = d.Close()
	}
}

// OnStoreEvents drops memoized assets for any removed row, mirroring
// DecodedImageCache's forward-recompute invalidation since blob_cache_key
// cannot be inverted.
func (c *VideoAssetCache) OnStoreEvents(events []store.Event) {
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
			if entry, ok := c.entries.Peek(key); ok {
				closeDecoders(entry.value.Decoders)
			}
			c.entries.Remove(key)
		}
	}
}

// MemoryReport returns the cache's current resident bytes, all CPU-side
// (decoder hardware residency, if any, is the decoder's own concern).
func (c *VideoAssetCache) MemoryReport() Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, key := range c.entries.Keys() {
		if entry, ok := c.entries.Peek(key); ok {
			total += entry.value.heapSize()
		}
	}
	return Report{CPUBytes: total}
}
