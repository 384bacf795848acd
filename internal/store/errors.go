package store

import "errors"

var (
	// ErrEmptyChunk is returned by InsertChunk for a zero-row chunk.
	ErrEmptyChunk = errors.New("store: chunk has zero rows")
	// ErrChunkNotFound names a chunk id the store does not hold. No Store
	// method returns it.
	ErrChunkNotFound = errors.New("store: chunk not found")
	// ErrUnknownTimeline names a timeline the store has never indexed. No
	// Store method returns it: a query or drop on such a timeline yields an
	// empty result and a nil error.
	ErrUnknownTimeline = errors.New("store: unknown timeline")
)
