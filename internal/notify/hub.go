package notify

import (
	"context"
	"errors"
	"sync"

	"swipehire/internal/common"
	"swipehire/internal/metrics"
)

var ErrHubClosed = errors.New("notification hub closed")

// Subscription is one session's view of an actor room. C is closed when the
// subscription or the hub is closed.
type Subscription struct {
	ActorID common.UUID
	C       <-chan Signal

	ch   chan Signal
	hub  *Hub
	once sync.Once
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// Hub holds the in-process rooms, one per actor id.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[common.UUID]map[*Subscription]struct{}
	buffer  int
	closed  bool
	metrics *metrics.Collector
}

func NewHub(buffer int, collector *metrics.Collector) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		rooms:   make(map[common.UUID]map[*Subscription]struct{}),
		buffer:  buffer,
		metrics: collector,
	}
}

func (h *Hub) Subscribe(actorID common.UUID) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}
	ch := make(chan Signal, h.buffer)
	sub := &Subscription{ActorID: actorID, C: ch, ch: ch, hub: h}
	room, ok := h.rooms[actorID]
	if !ok {
		room = make(map[*Subscription]struct{})
		h.rooms[actorID] = room
	}
	room[sub] = struct{}{}
	return sub, nil
}

// Publish hands the signal to every subscription in the actor's room without
// blocking. A subscriber with a full buffer misses the signal; it already has
// an undelivered invalidation queued, so nothing is lost.
func (h *Hub) Publish(_ context.Context, signal Signal) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrHubClosed
	}
	for sub := range h.rooms[signal.ActorID] {
		select {
		case sub.ch <- signal:
			h.metrics.IncSignalsDelivered()
		default:
			h.metrics.IncSignalsDropped()
		}
	}
	return nil
}

func (h *Hub) Subscribers(actorID common.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[actorID])
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for actorID, room := range h.rooms {
		for sub := range room {
			close(sub.ch)
		}
		delete(h.rooms, actorID)
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[sub.ActorID]
	if !ok {
		return
	}
	if _, ok := room[sub]; !ok {
		return
	}
	delete(room, sub)
	close(sub.ch)
	if len(room) == 0 {
		delete(h.rooms, sub.ActorID)
	}
}
