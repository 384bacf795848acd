// Package cache implements the per-store cache layer: a registry of
// typed, independently-lockable caches keyed off chunk content and
// invalidated by store mutation events rather than direct calls.
package cache

import "rrcore/internal/store"

// Report is a cache's current memory usage, broken down the way the UI
// budgets memory: bytes resident on the CPU side versus bytes uploaded to
// the GPU (texture/decoder memory). A cache with no GPU-resident state
// always reports zero there.
type Report struct {
	CPUBytes int64
	GPUBytes int64
}

// Add returns the element-wise sum of two reports.
func (r Report) Add(other Report) Report {
	return Report{CPUBytes: r.CPUBytes + other.CPUBytes, GPUBytes: r.GPUBytes + other.GPUBytes}
}

// Cache is the common interface every per-store cache type implements.
// BeginFrame and PurgeMemory are driven by a UI loop or, headless, by a
// Scheduler; OnStoreEvents is driven synchronously by the store's
// subscriber mechanism.
type Cache interface {
	// BeginFrame marks the start of a new UI frame: caches that track
	// "used this frame" residency clear the flag here.
	BeginFrame()

	// PurgeMemory evicts everything the cache can safely drop right now.
	PurgeMemory()

	// OnStoreEvents is called with a batch of events in mutation order.
	// Implementations must be conservative: when in doubt, invalidate.
	OnStoreEvents(events []store.Event)

	// MemoryReport returns the cache's current byte usage.
	MemoryReport() Report
}
