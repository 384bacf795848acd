// Package ident defines the pure value types shared by every other core
// package: entity paths, timelines, logical time values, and time-ordered
// unique identifiers (TUIDs). Nothing in this package holds state or
// performs IO.
package ident

import "math"

// TimeInt is a signed 64-bit logical time value on some Timeline.
//
// Two sentinels are reserved: Static (data with no time axis) and
// Min/Max (open range endpoints). Static sorts before every other value,
// including Min: Static < Min <= t <= Max for any ordinary t.
//
// Arithmetic on TimeInt saturates at Min/Max and never produces Static;
// Static is a data classification, not a reachable point on the time axis.
type TimeInt int64

const (
	// Static marks data with no time axis. It compares less than every
	// other TimeInt, including Min.
	Static TimeInt = math.MinInt64

	// Min is the smallest ordinary (non-Static) time value.
	Min TimeInt = math.MinInt64 + 1

	// Max is the largest representable time value.
	Max TimeInt = math.MaxInt64
)

// IsStatic reports whether t is the Static sentinel.
func (t TimeInt) IsStatic() bool { return t == Static }

// IsTemporal reports whether t is an ordinary (non-Static) time value.
func (t TimeInt) IsTemporal() bool { return t != Static }

// Add returns t+d, saturating at Min/Max. If t is Static, the result is
// Static regardless of d (arithmetic never escapes the Static sentinel
// into an ordinary value, nor vice versa).
func (t TimeInt) Add(d int64) TimeInt {
	if t.IsStatic() {
		return Static
	}
	sum := int64(t) + d
	// Overflow detection via sign comparison.
	if d > 0 && sum < int64(t) {
		return Max
	}
	if d < 0 && sum > int64(t) {
		return Min
	}
	if TimeInt(sum) < Min {
		return Min
	}
	if TimeInt(sum) > Max {
		return Max
	}
	return TimeInt(sum)
}

// Sub returns t-d, saturating at Min/Max.
func (t TimeInt) Sub(d int64) TimeInt {
	if d == math.MinInt64 {
		return t.Add(math.MaxInt64).Add(1)
	}
	return t.Add(-d)
}

// Clamp returns t clamped to [Min, Max]; Static passes through unchanged.
func Clamp(t TimeInt) TimeInt {
	if t.IsStatic() {
		return Static
	}
	if t < Min {
		return Min
	}
	if t > Max {
		return Max
	}
	return t
}

// TimeRange is a closed interval [Lo, Hi] on some Timeline. An inverted
// range (Lo > Hi) is not itself an error; callers that build ranges from
// possibly-swapped cursor-relative bounds should call Normalize.
type TimeRange struct {
	Lo TimeInt
	Hi TimeInt
}

// Normalize returns r with Lo <= Hi, swapping the bounds if they arrived
// inverted (spec: "If the resolved range is inverted, boundaries are
// swapped").
func (r TimeRange) Normalize() TimeRange {
	if r.Lo > r.Hi {
		return TimeRange{Lo: r.Hi, Hi: r.Lo}
	}
	return r
}

// IsPoint reports whether the range has zero length, i.e. Lo == Hi.
func (r TimeRange) IsPoint() bool { return r.Lo == r.Hi }

// Contains reports whether t falls within [Lo, Hi]. Static never falls
// within any temporal range.
func (r TimeRange) Contains(t TimeInt) bool {
	if t.IsStatic() {
		return false
	}
	return t >= r.Lo && t <= r.Hi
}

// Overlaps reports whether r and other share at least one point.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Lo <= other.Hi && other.Lo <= r.Hi
}

// FullRange is the unbounded [Min, Max] range.
var FullRange = TimeRange{Lo: Min, Hi: Max}
