// Package observer implements ordered change notification for stores.
package observer

import (
	"sync"
	"sync/atomic"
)

// Listener receives a snapshot after a change was applied.
type Listener[T any] func(T)

type subscription[T any] struct {
	fn     Listener[T]
	active atomic.Bool
}

// Hub fans out events to subscribers one at a time, in enqueue order.
//
// Stores call Enqueue while still holding their own lock, so queue order equals
// application order, and Drain after releasing it. Only one goroutine drains at
// a time; a listener that mutates the store re-entrantly has its event queued
// and delivered after the current one.
type Hub[T any] struct {
	mu       sync.Mutex
	subs     []*subscription[T]
	queue    []T
	draining bool
}

// NewHub creates an empty hub.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{}
}

// Subscribe registers fn and returns a function that removes it.
func (h *Hub[T]) Subscribe(fn Listener[T]) (unsubscribe func()) {
	sub := &subscription[T]{fn: fn}
	sub.active.Store(true)

	h.mu.Lock()
	h.subs = append(h.subs, sub)
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, s := range h.subs {
				if s == sub {
					h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
					break
				}
			}
		})
	}
}

// Enqueue appends an event without delivering it.
func (h *Hub[T]) Enqueue(event T) {
	h.mu.Lock()
	h.queue = append(h.queue, event)
	h.mu.Unlock()
}

// Drain delivers queued events unless another call is already draining.
// A panicking listener propagates to the caller; events still queued are
// delivered by the next Drain.
func (h *Hub[T]) Drain() {
	h.mu.Lock()
	if h.draining {
		h.mu.Unlock()
		return
	}
	h.draining = true

	finished := false
	defer func() {
		if !finished {
			h.mu.Lock()
			h.draining = false
			h.mu.Unlock()
		}
	}()

	for len(h.queue) > 0 {
		event := h.queue[0]
		h.queue = h.queue[1:]
		subs := make([]*subscription[T], len(h.subs))
		copy(subs, h.subs)
		h.mu.Unlock()

		for _, s := range subs {
			if s.active.Load() {
				s.fn(event)
			}
		}

		h.mu.Lock()
	}

	h.draining = false
	h.queue = nil
	finished = true
	h.mu.Unlock()
}
