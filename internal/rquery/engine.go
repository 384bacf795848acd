package rquery

import (
	"fmt"
	"log/slog"

	"rrcore/internal/logging"
	"rrcore/internal/store"
)

// Engine answers queries as pure functions over a store's (or a
// registry's many stores') current indices: no caching, no mutation.
// Mirrors the teacher's query.Engine single-store/multi-store-registry
// duality (internal/query/query.go).
type Engine struct {
	store    *store.Store
	registry StoreRegistry
	logger   *slog.Logger
}

// New creates an engine bound to a single store.
func New(s *store.Store, logger *slog.Logger) *Engine {
	return &Engine{store: s, logger: logging.Default(logger).With("component", "query-engine")}
}

// NewWithRegistry creates an engine that resolves a store id on every call
// via registry, for callers juggling more than one recording.
func NewWithRegistry(registry StoreRegistry, logger *slog.Logger) *Engine {
	return &Engine{registry: registry, logger: logging.Default(logger).With("component", "query-engine")}
}

// resolveStore picks the target store: the bound single store, or a
// registry lookup by id. id is ignored in single-store mode.
func (e *Engine) resolveStore(id store.StoreID) (*store.Store, error) {
	if e.registry != nil {
		s := e.registry.Store(id)
		if s == nil {
			return nil, fmt.Errorf("rquery: unknown store %s", id)
		}
		return s, nil
	}
	if e.store == nil {
		return nil, fmt.Errorf("rquery: engine has no bound store and no registry")
	}
	return e.store, nil
}
