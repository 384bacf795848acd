// Package storetest provides a shared conformance/property-test suite for
// store.Store, mirroring the teacher's internal/config/storetest package: a
// single exported entry point that a _test.go file elsewhere calls against
// its own store construction, rather than duplicating the same scenarios
// per caller.
package storetest

import (
	"testing"

	"rrcore/internal/store"
)

// NewStoreFunc returns a fresh, empty store for one sub-test.
type NewStoreFunc func(t *testing.T) *store.Store

// RunConformanceSuite runs the spec's concrete scenarios (spec.md §8) not
// already covered by internal/store's own table-driven tests, a randomized
// property-test pass checking invariant 1 of spec.md §8 (index
// consistency; the other invariants are not checked here), and the two
// round-trip properties.
func RunConformanceSuite(t *testing.T, newStore NewStoreFunc) {
	t.Run("S1_LatestAtBasic", func(t *testing.T) {
		testS1LatestAtBasic(t, newStore(t))
	})
	t.Run("S3_PartialUpdatesRowAlignment", func(t *testing.T) {
		testS3PartialUpdates(t, newStore(t))
	})
	t.Run("RandomSequenceInvariants", func(t *testing.T) {
		testRandomSequenceInvariants(t, newStore)
	})
	t.Run("RoundTripChunkRecordChunk", func(t *testing.T) {
		testRoundTripChunkRecordChunk(t)
	})
	t.Run("SortByTimelineIdempotent", func(t *testing.T) {
		testSortByTimelineIdempotent(t)
	})
}
