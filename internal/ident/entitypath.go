package ident

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// EntityPath is an immutable, ordered sequence of path parts identifying a
// logical object in a recording (e.g. "/world/camera/points"). EntityPath
// values are cheap to copy and share: the parts slice is never mutated
// after construction.
type EntityPath struct {
	parts []string
}

// Root is the canonical empty EntityPath.
var Root = EntityPath{}

// NewEntityPath constructs an EntityPath from already-split parts.
func NewEntityPath(parts ...string) EntityPath {
	if len(parts) == 0 {
		return Root
	}
	cp := make([]string, len(parts))
	copy(cp, parts)
	return EntityPath{parts: cp}
}

// ParseEntityPath splits a "/"-separated string into an EntityPath.
// Leading/trailing slashes and empty segments (from "//") are ignored.
func ParseEntityPath(s string) EntityPath {
	raw := strings.Split(s, "/")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return NewEntityPath(parts...)
}

// Parts returns the path's parts. The returned slice must not be mutated.
func (p EntityPath) Parts() []string { return p.parts }

// IsRoot reports whether p is the canonical empty root path.
func (p EntityPath) IsRoot() bool { return len(p.parts) == 0 }

// String renders the canonical "/"-prefixed form ("/" for the root).
func (p EntityPath) String() string {
	if p.IsRoot() {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

// Parent returns the path with its last part removed. Parent of Root is
// Root.
func (p EntityPath) Parent() EntityPath {
	if len(p.parts) == 0 {
		return Root
	}
	return NewEntityPath(p.parts[:len(p.parts)-1]...)
}

// IsDescendantOf reports whether p is other or lies strictly below other
// in the path hierarchy ("/world/camera".IsDescendantOf("/world") == true).
func (p EntityPath) IsDescendantOf(other EntityPath) bool {
	if len(other.parts) > len(p.parts) {
		return false
	}
	for i, part := range other.parts {
		if p.parts[i] != part {
			return false
		}
	}
	return true
}

// IsStrictDescendantOf is IsDescendantOf excluding equality.
func (p EntityPath) IsStrictDescendantOf(other EntityPath) bool {
	return len(p.parts) > len(other.parts) && p.IsDescendantOf(other)
}

// Equal reports whether two paths have identical parts.
func (p EntityPath) Equal(other EntityPath) bool {
	if len(p.parts) != len(other.parts) {
		return false
	}
	for i, part := range p.parts {
		if other.parts[i] != part {
			return false
		}
	}
	return true
}

// Compare orders paths lexicographically part-by-part, matching spec's
// "Ordering: lexicographic on parts".
func (p EntityPath) Compare(other EntityPath) int {
	n := min(len(p.parts), len(other.parts))
	for i := 0; i < n; i++ {
		if c := strings.Compare(p.parts[i], other.parts[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(p.parts) < len(other.parts):
		return -1
	case len(p.parts) > len(other.parts):
		return 1
	default:
		return 0
	}
}

// Hash returns a 64-bit identity hash, sufficient for map/index lookup
// keys (spec: "64-bit hash sufficient for lookup").
func (p EntityPath) Hash() uint64 {
	d := xxhash.New()
	for _, part := range p.parts {
		_, _ = d.WriteString(part)
		_, _ = d.Write([]byte{0}) // separator, so ("ab","c") != ("a","bc")
	}
	return d.Sum64()
}

// Hash128 returns an optional 128-bit collision-resistant key, built from
// two independently-seeded digests of the same content (spec: "128-bit
// hash optional for collision-resistant keys").
func (p EntityPath) Hash128() [16]byte {
	var out [16]byte
	lo := xxhash.New()
	hi := xxhash.New()
	_, _ = hi.Write([]byte("rrcore-entitypath-hash128-salt"))
	for _, part := range p.parts {
		_, _ = lo.WriteString(part)
		_, _ = lo.Write([]byte{0})
		_, _ = hi.WriteString(part)
		_, _ = hi.Write([]byte{0})
	}
	putUint64(out[0:8], lo.Sum64())
	putUint64(out[8:16], hi.Sum64())
	return out
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * (7 - i)))
	}
}
