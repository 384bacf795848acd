package store

import (
	"github.com/google/btree"

	"rrcore/internal/ident"
)

// btreeDegree matches the teacher's corpus-wide default for ordered
// in-memory indices; no tuning rationale beyond "a reasonable B-tree
// fanout for an in-memory index of a few thousand entries".
const btreeDegree = 32

// timelineKey identifies one (timeline, entity, component) temporal index:
// spec.md's "(timeline, entity_path, component) → B-tree<(time, chunk_id)>".
type timelineKey struct {
	Timeline   string
	EntityHash uint64
	Component  string
}

func newTimelineKey(tl ident.Timeline, entityPath ident.EntityPath, component string) timelineKey {
	return timelineKey{Timeline: tl.Name, EntityHash: entityPath.Hash(), Component: component}
}

// staticKey identifies a (entity, component) static-override slot: spec.md's
// static index, one chunk per key at any given time.
type staticKey struct {
	EntityHash uint64
	Component  string
}

func newStaticKey(entityPath ident.EntityPath, component string) staticKey {
	return staticKey{EntityHash: entityPath.Hash(), Component: component}
}

// timeIndexEntry is the B-tree element: a chunk's minimum time on some
// timeline, paired with its id for tie-breaking and removal.
type timeIndexEntry struct {
	MinTime ident.TimeInt
	ChunkID ident.TUID
}

func lessTimeIndexEntry(a, b timeIndexEntry) bool {
	if a.MinTime != b.MinTime {
		return a.MinTime < b.MinTime
	}
	return a.ChunkID.Less(b.ChunkID)
}

func newTimeIndex() *btree.BTreeG[timeIndexEntry] {
	return btree.NewG(btreeDegree, lessTimeIndexEntry)
}
