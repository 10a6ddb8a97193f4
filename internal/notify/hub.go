package notify

import (
	"sync"
	"time"

	"pomodoro/pomod/internal/clock"
	"pomodoro/pomod/internal/model"
)

const subscriberBuffer = 16

// Event is what watchers receive for each phase change.
type Event struct {
	Type  string      `json:"type"`
	Phase model.Phase `json:"phase"`
	At    time.Time   `json:"at"`
}

const EventPhase = "phase"

// Hub broadcasts phase changes to any number of subscribers. A subscriber
// that falls behind loses events rather than stalling the broadcast.
type Hub struct {
	mu     sync.Mutex
	clock  clock.Clock
	subs   map[chan Event]struct{}
	closed bool
}

func NewHub(c clock.Clock) *Hub {
	return &Hub{
		clock: c,
		subs:  make(map[chan Event]struct{}),
	}
}

// Subscribe registers a watcher. The returned cancel func unregisters it and
// closes the channel; the channel is also closed when the hub closes.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[ch]; ok {
				delete(h.subs, ch)
				close(ch)
			}
		})
	}
}

func (h *Hub) Notify(phase model.Phase) {
	h.mu.Lock()
	defer h.mu.Unlock()

	event := Event{Type: EventPhase, Phase: phase, At: h.clock.Now().UTC()}
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close disconnects every subscriber. Later subscriptions get a closed
// channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
