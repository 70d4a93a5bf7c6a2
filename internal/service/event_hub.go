package service

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/stemsi/lms-admin-mock/internal/model"
)

// Publisher receives change events after a collection is rewritten.
type Publisher interface {
	Publish(ev model.ChangeEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(model.ChangeEvent) {}

// Publishers sends each event to every publisher in order.
type Publishers []Publisher

// Publish implements Publisher.
func (ps Publishers) Publish(ev model.ChangeEvent) {
	for _, p := range ps {
		p.Publish(ev)
	}
}

// EventHub fans change events out to subscribers in this process.
// A subscriber that falls behind loses events; writers never block.
type EventHub struct {
	mu      sync.RWMutex
	subs    map[chan model.ChangeEvent]struct{}
	bufSize int
	log     zerolog.Logger
}

// NewEventHub creates a hub whose subscriber channels hold bufSize events.
func NewEventHub(bufSize int, log zerolog.Logger) *EventHub {
	if bufSize < 1 {
		bufSize = 1
	}
	return &EventHub{
		subs:    make(map[chan model.ChangeEvent]struct{}),
		bufSize: bufSize,
		log:     log.With().Str("component", "event_hub").Logger(),
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called once; it closes the channel.
func (h *EventHub) Subscribe() (<-chan model.ChangeEvent, func()) {
	ch := make(chan model.ChangeEvent, h.bufSize)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber with room in its buffer.
func (h *EventHub) Publish(ev model.ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.log.Warn().
				Str("collection", ev.Collection).
				Str("action", string(ev.Action)).
				Msg("Subscriber buffer full, event dropped")
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *EventHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
