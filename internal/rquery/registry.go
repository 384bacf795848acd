// Package rquery implements the query engine that sits above one or more
// chunk stores: LatestAt, Range, visible-history/relative-range
// resolution, and the range-zip combinator for aligning several
// components' sparse rows onto one shared index (spec.md §4.4).
package rquery

import "rrcore/internal/store"

// StoreRegistry gives an Engine access to more than one recording's store,
// the same "engine doesn't own storage, a registry does" split the
// teacher's query.StoreRegistry uses for its multi-store mode.
type StoreRegistry interface {
	// ListStores returns every store id the engine can query.
	ListStores() []store.StoreID
	// Store returns the store for id, or nil if unknown.
	Store(id store.StoreID) *store.Store
}
