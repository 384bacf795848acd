package rquery

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"rrcore/internal/ident"
	"rrcore/internal/rchunk"
	"rrcore/internal/store"
)

// RangeResults maps each requested component to the chunks overlapping the
// query range, in ascending (min_time_on_timeline, chunk_id) order
// (spec.md §4.4.2). Consumers filter rows to the exact range themselves;
// chunk boundaries need not align with query boundaries.
type RangeResults map[rchunk.ComponentDescriptor][]*rchunk.Chunk

// Range returns, per component, every chunk overlapping r on tl for
// entityPath.
func (e *Engine) Range(ctx context.Context, id store.StoreID, tl ident.Timeline, r ident.TimeRange, entityPath ident.EntityPath, components []rchunk.ComponentDescriptor) (RangeResults, error) {
	s, err := e.resolveStore(id)
	if err != nil {
		return nil, err
	}

	out := make(RangeResults, len(components))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, desc := range components {
		g.Go(func() error {
			chunks, err := s.RangeChunks(gctx, tl, r, entityPath, desc)
			if err != nil {
				return err
			}
			if len(chunks) > 0 {
				mu.Lock()
				out[desc] = chunks
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
