package rquery

import (
	"context"

	"rrcore/internal/ident"
	"rrcore/internal/rchunk"
	"rrcore/internal/store"
)

// BoundKind classifies one endpoint of a VisibleRange (spec.md §4.4.3).
type BoundKind int

const (
	// BoundAbsolute pins the endpoint to a fixed TimeInt, ignoring cursor.
	BoundAbsolute BoundKind = iota
	// BoundRelativeToCursor offsets the endpoint from the query cursor.
	BoundRelativeToCursor
	// BoundUnbounded resolves to ident.Min (as a Lo) or ident.Max (as a Hi).
	BoundUnbounded
)

// Bound is one endpoint of a VisibleRange.
type Bound struct {
	Kind   BoundKind
	Abs    ident.TimeInt // used when Kind == BoundAbsolute
	Offset int64         // used when Kind == BoundRelativeToCursor; added to cursor
}

// Absolute constructs a fixed-point Bound.
func Absolute(t ident.TimeInt) Bound { return Bound{Kind: BoundAbsolute, Abs: t} }

// RelativeToCursor constructs a Bound offset from the query cursor.
func RelativeToCursor(offset int64) Bound { return Bound{Kind: BoundRelativeToCursor, Offset: offset} }

// Unbounded constructs an open Bound (±∞ depending on position).
func Unbounded() Bound { return Bound{Kind: BoundUnbounded} }

// VisibleRange is a range whose boundaries may be absolute, cursor-relative,
// or unbounded — resolved to a concrete ident.TimeRange against a cursor
// before any index is touched (spec.md §4.4.3).
type VisibleRange struct {
	Lo Bound
	Hi Bound
}

// Resolve turns vr into a concrete, normalized TimeRange given cursor (the
// query's "current time"). An inverted result is swapped per spec.
func (vr VisibleRange) Resolve(cursor ident.TimeInt) ident.TimeRange {
	lo := resolveBound(vr.Lo, cursor, ident.Min)
	hi := resolveBound(vr.Hi, cursor, ident.Max)
	return ident.TimeRange{Lo: lo, Hi: hi}.Normalize()
}

func resolveBound(b Bound, cursor ident.TimeInt, unboundedValue ident.TimeInt) ident.TimeInt {
	switch b.Kind {
	case BoundAbsolute:
		return b.Abs
	case BoundRelativeToCursor:
		return cursor.Add(b.Offset)
	default:
		return unboundedValue
	}
}

// VisibleHistoryResults is either a single LatestAt-style result (when the
// resolved range degenerates to a point) or a set of overlapping chunks,
// one of the two fields populated — exactly the "length-zero resolved
// range degenerates to a LatestAt at the single point" rule in spec.md
// §4.4.3.
type VisibleHistoryResults struct {
	LatestAt LatestAtResults
	Range    RangeResults
}

// VisibleHistory resolves vr against cursor and dispatches to LatestAt or
// Range accordingly.
func (e *Engine) VisibleHistory(ctx context.Context, id store.StoreID, tl ident.Timeline, cursor ident.TimeInt, vr VisibleRange, entityPath ident.EntityPath, components []rchunk.ComponentDescriptor) (VisibleHistoryResults, error) {
	resolved := vr.Resolve(cursor)

	if resolved.IsPoint() {
		results, err := e.LatestAt(ctx, id, tl, resolved.Lo, entityPath, components)
		if err != nil {
			return VisibleHistoryResults{}, err
		}
		return VisibleHistoryResults{LatestAt: results}, nil
	}

	results, err := e.Range(ctx, id, tl, resolved, entityPath, components)
	if err != nil {
		return VisibleHistoryResults{}, err
	}
	return VisibleHistoryResults{Range: results}, nil
}
