package notify

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("notification hub closed")

const defaultBuffer = 16

// Subscription receives values published for one session.
type Subscription struct {
	C <-chan any

	hub       *Hub
	sessionID string
	ch        chan any
	once      sync.Once
}

// Close detaches the subscription from the hub. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}

// Hub fans notifications out to the live connections of a session.
type Hub struct {
	mu      sync.Mutex
	subs    map[string]map[*Subscription]struct{}
	buffer  int
	closed  bool
	dropped int64
}

func NewHub() *Hub {
	return &Hub{subs: map[string]map[*Subscription]struct{}{}, buffer: defaultBuffer}
}

func (h *Hub) Subscribe(sessionID string) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}

	ch := make(chan any, h.buffer)
	sub := &Subscription{C: ch, hub: h, sessionID: sessionID, ch: ch}
	set := h.subs[sessionID]
	if set == nil {
		set = map[*Subscription]struct{}{}
		h.subs[sessionID] = set
	}
	set[sub] = struct{}{}
	return sub, nil
}

// Publish delivers v to every subscriber of sessionID without blocking.
// A subscriber whose buffer is full misses the value.
func (h *Hub) Publish(sessionID string, v any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	for sub := range h.subs[sessionID] {
		select {
		case sub.ch <- v:
		default:
			h.dropped++
		}
	}
	return nil
}

func (h *Hub) Subscribers(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[sessionID])
}

func (h *Hub) Dropped() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[sub.sessionID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.sessionID)
	}
	close(sub.ch)
}

// Close closes every subscription channel. Later calls to Subscribe and
// Publish return ErrClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, set := range h.subs {
		for sub := range set {
			close(sub.ch)
		}
		delete(h.subs, id)
	}
}

// Run blocks until ctx is done and then closes the hub.
func (h *Hub) Run(ctx context.Context) error {
	<-ctx.Done()
	h.Close()
	return nil
}
