package maphost

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/samirrijal/detourmap/internal/core/domain"
)

const subscriberBuffer = 256

// Hub is the in-process layer event fan-out used when no broker is configured.
// Slow subscribers drop events rather than block the surface.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan []byte
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan []byte)}
}

// PublishLayerEvent encodes ev and offers it to every subscriber.
func (h *Hub) PublishLayerEvent(_ context.Context, ev *domain.LayerEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- data:
		default:
		}
	}
	return nil
}

// Subscribe calls fn with every encoded event from its own goroutine until the
// returned cancel func is called.
func (h *Hub) Subscribe(fn func(data []byte)) (func(), error) {
	ch := make(chan []byte, subscriberBuffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	go func() {
		for data := range ch {
			fn(data)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(ch)
			h.mu.Unlock()
		})
	}, nil
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
