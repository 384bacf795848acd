package store

import (
	"sort"
	"sync"

	"rrcore/internal/notify"
)

// Subscriber receives store mutation events synchronously, on the thread
// that performed the mutation. Implementations must be fast and
// non-blocking and must not call back into any store's lock.
type Subscriber interface {
	OnEvents(events []Event)
}

// SubscriberFunc adapts an ordinary function to Subscriber.
type SubscriberFunc func(events []Event)

func (f SubscriberFunc) OnEvents(events []Event) { f(events) }

// SubscriberHandle is the opaque registration token returned by
// RegisterSubscriber.
type SubscriberHandle uint64

type subscriberEntry struct {
	handle SubscriberHandle
	sub    Subscriber
	signal *notify.Signal
}

// subscribers is process-wide: spec.md §4.3.4, "subscribers are registered
// process-wide and receive events for all stores; each subscriber filters
// by store_id as needed" — avoiding a per-store back-reference is exactly
// the "avoiding cyclic ownership" design note in spec.md §9.
var (
	subscribersMu sync.Mutex
	subscribers   = map[SubscriberHandle]*subscriberEntry{}
	nextHandle    SubscriberHandle
)

// RegisterSubscriber adds sub to the process-wide subscriber list and
// returns an opaque handle. The handle's associated *notify.Signal fires
// after every delivery to this subscriber, letting long-poll-style
// consumers (a cache's eviction sweep, a test waiting for a GC to land)
// block on <-Signal(handle).C() instead of busy-polling.
func RegisterSubscriber(sub Subscriber) SubscriberHandle {
	subscribersMu.Lock()
	defer subscribersMu.Unlock()
	nextHandle++
	handle := nextHandle
	subscribers[handle] = &subscriberEntry{handle: handle, sub: sub, signal: notify.NewSignal()}
	return handle
}

// UnregisterSubscriber removes a previously registered subscriber. It is a
// no-op for an unknown or already-unregistered handle.
func UnregisterSubscriber(handle SubscriberHandle) {
	subscribersMu.Lock()
	defer subscribersMu.Unlock()
	if entry, ok := subscribers[handle]; ok {
		entry.signal.Close()
		delete(subscribers, handle)
	}
}

// Signal returns the notify.Signal associated with handle, or nil if the
// handle is not currently registered.
func Signal(handle SubscriberHandle) *notify.Signal {
	subscribersMu.Lock()
	defer subscribersMu.Unlock()
	if entry, ok := subscribers[handle]; ok {
		return entry.signal
	}
	return nil
}

// WithSubscriberOnce gives typed read access to the Subscriber registered
// under handle, matching spec.md's "with_subscriber_once(handle, f)". It
// returns the zero value and false if handle is not registered or does not
// hold a T.
func WithSubscriberOnce[T Subscriber](handle SubscriberHandle, f func(T)) bool {
	subscribersMu.Lock()
	entry, ok := subscribers[handle]
	subscribersMu.Unlock()
	if !ok {
		return false
	}
	typed, ok := entry.sub.(T)
	if !ok {
		return false
	}
	f(typed)
	return true
}

// notifySubscribers delivers events to every registered subscriber, in
// ascending handle (registration) order, then signals each one. Called
// while the originating Store's write lock is held (spec.md §5).
func notifySubscribers(events []Event) {
	if len(events) == 0 {
		return
	}
	subscribersMu.Lock()
	entries := make([]*subscriberEntry, 0, len(subscribers))
	for _, e := range subscribers {
		entries = append(entries, e)
	}
	subscribersMu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].handle < entries[j].handle })

	for _, e := range entries {
		e.sub.OnEvents(events)
		e.signal.Notify()
	}
}
