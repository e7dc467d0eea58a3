// Package pubsub fans values out to in-process subscribers.
package pubsub

import "sync"

// Hub delivers published values to every subscriber. Slow subscribers drop
// values rather than block the publisher.
type Hub[T any] struct {
	mu   sync.Mutex
	next int
	subs map[int]chan T
}

func (h *Hub[T]) Subscribe(buffer int) (<-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs == nil {
		h.subs = make(map[int]chan T)
	}
	id := h.next
	h.next++
	ch := make(chan T, buffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// Close ends every subscription.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		close(ch)
		delete(h.subs, id)
	}
}
