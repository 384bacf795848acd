// Package logging provides the dependency-injected logging convention used
// throughout the core: every component accepts an optional *slog.Logger,
// scopes it once at construction time, and never touches global state.
//
// Design principles:
//   - Logging is dependency-injected, never global
//   - Each component owns its own scoped logger
//   - Logger scoping happens once at construction time via slog.With()
//   - If no logger is provided, a discard logger is used
//
// Global configuration (output format, level, destination, dynamic
// per-component verbosity) is a deployment concern and lives outside this
// package's scope entirely; components here only ever consume a logger, they
// never configure one.
//
// Logging is intentionally sparse:
//   - No logging inside hot paths (insert, query scans, cache lookups)
//   - Lifecycle boundaries (chunk sealed, GC ran, subscriber registered) are
//     the intended log points
package logging

import (
	"context"
	"log/slog"
)

// discardHandler is a handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// Discard returns a logger that discards all output.
// Use this as a default when no logger is provided.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

// Default returns the provided logger if non-nil, otherwise returns a discard logger.
// This is the standard pattern for optional logger parameters:
//
//	func New(logger *slog.Logger) *Thing {
//	    logger = logging.Default(logger)
//	    return &Thing{logger: logger.With("component", "thing")}
//	}
func Default(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return Discard()
}

// Scope returns logger.With("component", component), applying Default first
// so callers never need a nil check before scoping.
func Scope(logger *slog.Logger, component string) *slog.Logger {
	return Default(logger).With("component", component)
}
