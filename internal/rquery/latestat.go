package rquery

import (
	"context"

	"rrcore/internal/ident"
	"rrcore/internal/rchunk"
	"rrcore/internal/store"
)

// LatestAtResults maps each requested component to its winning row.
// Components with no data at or before at_time are absent, not an error
// (spec.md §4.4.1).
type LatestAtResults map[rchunk.ComponentDescriptor]store.LatestAtResult

// LatestAt resolves, for every component in components, the value visible
// at at_time on tl for entityPath: the static index if present, otherwise
// the greatest (time, row_id) not exceeding at_time.
func (e *Engine) LatestAt(ctx context.Context, id store.StoreID, tl ident.Timeline, atTime ident.TimeInt, entityPath ident.EntityPath, components []rchunk.ComponentDescriptor) (LatestAtResults, error) {
	s, err := e.resolveStore(id)
	if err != nil {
		return nil, err
	}

	out := make(LatestAtResults, len(components))
	for _, desc := range components {
		result, found, err := s.LatestAtChunks(ctx, tl, atTime, entityPath, desc)
		if err != nil {
			return nil, err
		}
		if found {
			out[desc] = result
		}
	}
	return out, nil
}
