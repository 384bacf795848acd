package store

import "rrcore/internal/ident"

// ChunkSummary is the information a GCTarget needs about one candidate
// temporal chunk, without needing the chunk's Arrow data itself.
type ChunkSummary struct {
	ID          ident.TUID
	Bytes       int64
	OldestRowID ident.TUID
}

// Snapshot is the pure, read-only view a GCTarget decides over: every
// non-protected temporal chunk, already ordered ascending by OldestRowID
// (spec.md §4.3.2: "order temporal chunks by oldest row id").
type Snapshot struct {
	Chunks     []ChunkSummary
	TotalBytes int64
}

// GCTarget decides which temporal chunks a gc call should remove. It is a
// pure function over a Snapshot — no IO, no locks, no mutation — mirroring
// the teacher's RetentionPolicy family (internal/chunk/retention.go):
// TTL/Size/Count policies there are all "pure function from a vault
// snapshot to a list of chunk ids to delete", the identical shape.
type GCTarget interface {
	Candidates(snapshot Snapshot) []ident.TUID
}

// GCTargetFunc adapts an ordinary function to GCTarget.
type GCTargetFunc func(snapshot Snapshot) []ident.TUID

func (f GCTargetFunc) Candidates(snapshot Snapshot) []ident.TUID { return f(snapshot) }

// DropAtLeastFraction accumulates chunks, oldest first, until the
// accumulated byte total meets fraction of the snapshot's temporal heap
// size — an incremental running total rather than a two-pass gather-then-
// filter, matching the original implementation's garbage-collection test
// fixtures (re_arrow_store/tests/garbage.rs): byte accounting is kept as a
// running sum during candidate selection, not recomputed from scratch.
type DropAtLeastFraction struct {
	Fraction float64
}

func (t DropAtLeastFraction) Candidates(snapshot Snapshot) []ident.TUID {
	if t.Fraction <= 0 || snapshot.TotalBytes == 0 {
		return nil
	}
	target := float64(snapshot.TotalBytes) * min(t.Fraction, 1.0)

	var freed float64
	var out []ident.TUID
	for _, c := range snapshot.Chunks {
		if freed >= target {
			break
		}
		out = append(out, c.ID)
		freed += float64(c.Bytes)
	}
	return out
}

// DropEverythingExceptStatic removes every temporal chunk in the snapshot
// (the snapshot never includes static chunks to begin with — gc never
// touches them — so this target simply takes everything offered to it).
type DropEverythingExceptStatic struct{}

func (DropEverythingExceptStatic) Candidates(snapshot Snapshot) []ident.TUID {
	out := make([]ident.TUID, len(snapshot.Chunks))
	for i, c := range snapshot.Chunks {
		out[i] = c.ID
	}
	return out
}

// CompositeGCTarget unions several targets: a chunk is collected if any
// sub-target names it. Carried over from the teacher's
// CompositeRetentionPolicy for symmetry; spec.md only names the two
// targets above, composing them is a natural extension the pattern
// invites.
type CompositeGCTarget struct {
	targets []GCTarget
}

func NewCompositeGCTarget(targets ...GCTarget) CompositeGCTarget {
	return CompositeGCTarget{targets: targets}
}

func (c CompositeGCTarget) Candidates(snapshot Snapshot) []ident.TUID {
	seen := make(map[ident.TUID]struct{})
	var out []ident.TUID
	for _, t := range c.targets {
		for _, id := range t.Candidates(snapshot) {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}
