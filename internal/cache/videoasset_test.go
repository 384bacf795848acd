package cache

import "testing"

type fakeDecoder struct{ closed bool }

func (d *fakeDecoder) Close() error {
	d.closed = true
	return nil
}

func TestVideoAssetCacheMemoizesAcrossCalls(t *testing.T) {
	c := NewVideoAssetCache(0)
	key := VideoAssetKey{Blob: BlobCacheKey(1), MediaType: "video/mp4", HWAccelSetting: "none"}

	opens := 0
	open := func() (VideoAsset, error) {
		opens++
		return VideoAsset{ContainerFormat: "mp4", Decoders: []VideoDecoder{&fakeDecoder{}}}, nil
	}

	if _, err := c.GetOrOpen(key, open); err != nil {
		t.Fatalf("GetOrOpen: %v", err)
	}
	if _, err := c.GetOrOpen(key, open); err != nil {
		t.Fatalf("GetOrOpen: %v", err)
	}
	if opens != 1 {
		t.Fatalf("open called %d times, want 1", opens)
	}
}

func TestVideoAssetCachePurgeMemoryClosesUnusedDecoders(t *testing.T) {
	c := NewVideoAssetCache(0)
	key := VideoAssetKey{Blob: BlobCacheKey(1), MediaType: "video/mp4", HWAccelSetting: "none"}
	decoder := &fakeDecoder{}

	if _, err := c.GetOrOpen(key, func() (VideoAsset, error) {
		return VideoAsset{Decoders: []VideoDecoder{decoder}}, nil
	}); err != nil {
		t.Fatal(err)
	}

	c.BeginFrame() // clears the flag set during open
	c.PurgeMemory()

	if !decoder.closed {
		t.Fatal("PurgeMemory must close decoders for evicted, unused assets")
	}
	if _, ok := c.entries.Peek(key); ok {
		t.Fatal("unused asset must be evicted")
	}
}

func TestVideoAssetCacheDistinguishesHWAccelSetting(t *testing.T) {
	c := NewVideoAssetCache(0)
	base := VideoAssetKey{Blob: BlobCacheKey(1), MediaType: "video/mp4"}
	sw := base
	sw.HWAccelSetting = "none"
	hw := base
	hw.HWAccelSetting = "nvdec"

	if sw == hw {
		t.Fatal("distinct hw_accel_setting values must produce distinct keys")
	}
}
