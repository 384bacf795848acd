// Package notify provides broadcast notification primitives used to wake
// waiters on store mutations without polling.
package notify

import "sync"

// Signal is a broadcast notification mechanism. Callers wait on C(),
// and any call to Notify() wakes all current waiters by closing the
// channel and installing a fresh one.
//
// Signal is used by the chunk store's subscriber registry: a registration
// gets its own Signal so a long-poll waiter can block on "anything changed
// for this store" instead of re-scanning the event log.
type Signal struct {
	mu   sync.Mutex
	ch   chan struct{}
	seq  uint64
	done bool
}

// NewSignal creates a ready-to-use Signal.
func NewSignal() *Signal { return &Signal{ch: make(chan struct{})} }

// Notify wakes all current waiters and bumps the generation counter.
// Notify after Close is a no-op.
func (s *Signal) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	close(s.ch)
	s.ch = make(chan struct{})
	s.seq++
}

// C returns a channel that is closed on the next Notify() or Close() call.
// Callers should re-call C() after each wakeup to get the next channel.
func (s *Signal) C() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch
}

// Seq returns the number of times Notify has been called. Useful for
// detecting whether a wakeup was missed between C() and a subsequent wait.
func (s *Signal) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Close wakes all current waiters permanently; future Notify calls are
// no-ops and C() keeps returning an already-closed channel. Used when a
// store (and its subscriber registrations) is torn down.
func (s *Signal) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.done = true
	close(s.ch)
}
