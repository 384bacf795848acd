// Package store implements ChunkStore: the in-memory, indexed home for
// Chunks within a single recording. A Store owns a chunks map, one B-tree
// temporal index per (timeline, entity, component) key, a static-component
// index, and a process-wide event subscriber registry.
package store

import "github.com/google/uuid"

// StoreID identifies a recording. Matches the teacher's use of uuid.UUID
// for the identical role in internal/chunk/types.go's Record.StoreID.
type StoreID = uuid.UUID

// NewStoreID generates a fresh StoreID.
func NewStoreID() StoreID { return uuid.New() }
