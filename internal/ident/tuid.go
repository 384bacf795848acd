package ident

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrInvalidTUID is returned when parsing a malformed TUID text form.
var ErrInvalidTUID = errors.New("invalid tuid")

// TUID is a 128-bit time-ordered unique identifier used for both row ids
// and chunk ids. The high 64 bits are an approximate wall-clock nanosecond
// reading; the low 64 bits are a generation counter that guarantees strict
// monotonicity even when the wall clock does not advance (or, per the
// original implementation's clock-skew handling, briefly moves backwards).
//
// Stored in Arrow columns as fixed-size-binary(16), big-endian (spec §6.2).
type TUID [16]byte

// Namespace distinguishes how a TUID's text form is prefixed. It carries
// no semantic weight beyond that — chunk ids and row ids are otherwise
// identical in structure.
type Namespace string

const (
	NamespaceChunk Namespace = "chunk"
	NamespaceRow   Namespace = "row"
)

// tuidGenerator produces strictly increasing TUIDs. The teacher's ChunkID
// relies on uuid.NewV7's own internal monotonicity guarantee; TUID needs
// the same property under a custom bit layout, so it tracks its own last
// reading instead, matching the original re_tuid generator's clock-skew
// handling (SPEC_FULL.md, "SUPPLEMENTED FEATURES"): a generator is a single
// package-level instance, guarded by a mutex, rather than one per OS
// thread — this is a strictly stronger guarantee than spec's "within a
// thread" requirement, not a weaker one.
type tuidGenerator struct {
	mu       sync.Mutex
	lastHigh uint64
	lastLow  uint64
}

var defaultGenerator = &tuidGenerator{}

// now is overridable in tests.
var now = func() uint64 { return uint64(time.Now().UnixNano()) } //nolint:gochecknoglobals // test seam, mirrors teacher's Config.Now pattern

func (g *tuidGenerator) next() TUID {
	g.mu.Lock()
	defer g.mu.Unlock()

	high := now()
	if high > g.lastHigh {
		g.lastHigh = high
		g.lastLow = 0
	} else {
		// Clock did not advance (or moved backwards): hold the high bits
		// and advance the low counter instead, preserving strict
		// monotonicity through clock adjustments.
		g.lastLow++
	}

	var t TUID
	binary.BigEndian.PutUint64(t[0:8], g.lastHigh)
	binary.BigEndian.PutUint64(t[8:16], g.lastLow)
	return t
}

// NewTUID generates a new TUID. Within a single generator (the package
// default, shared process-wide), consecutive calls yield strictly
// increasing values.
func NewTUID() TUID {
	return defaultGenerator.next()
}

// High returns the wall-clock-nanoseconds component.
func (t TUID) High() uint64 { return binary.BigEndian.Uint64(t[0:8]) }

// Low returns the monotonic counter component.
func (t TUID) Low() uint64 { return binary.BigEndian.Uint64(t[8:16]) }

// Time returns the approximate wall-clock time encoded in the high bits.
func (t TUID) Time() time.Time {
	return time.Unix(0, int64(t.High())) //nolint:gosec // G115: wall-clock ns reading, not attacker controlled
}

// Compare orders TUIDs by (High, Low), matching generation order.
func (t TUID) Compare(other TUID) int {
	switch {
	case t.High() < other.High():
		return -1
	case t.High() > other.High():
		return 1
	case t.Low() < other.Low():
		return -1
	case t.Low() > other.Low():
		return 1
	default:
		return 0
	}
}

// Less reports whether t sorts before other.
func (t TUID) Less(other TUID) bool { return t.Compare(other) < 0 }

// IsZero reports whether t is the zero value.
func (t TUID) IsZero() bool { return t == TUID{} }

// String renders the namespace-less 32-hex-character form.
func (t TUID) String() string {
	return hex.EncodeToString(t[:])
}

// Text renders "<namespace>_<32 hex chars>" (spec §6.2).
func (t TUID) Text(ns Namespace) string {
	return string(ns) + "_" + t.String()
}

// ParseTUID parses a TUID from its hex form, with an optional
// "<namespace>_" prefix (namespace is not validated against a known set;
// the prefix is purely decorative per spec §6.2, "prefix optional on
// parse").
func ParseTUID(s string) (TUID, error) {
	if idx := strings.IndexByte(s, '_'); idx >= 0 {
		s = s[idx+1:]
	}
	if len(s) != 32 {
		return TUID{}, fmt.Errorf("%w: want 32 hex chars, got %d", ErrInvalidTUID, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return TUID{}, fmt.Errorf("%w: %w", ErrInvalidTUID, err)
	}
	var t TUID
	copy(t[:], raw)
	return t, nil
}
