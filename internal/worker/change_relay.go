package worker

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/lms-admin-mock/internal/model"
	"github.com/stemsi/lms-admin-mock/internal/service"
)

// RelayQueueSize bounds events waiting to be published to Redis.
const RelayQueueSize = 256

// ChangeRelay shares change events between server processes that use the
// same Redis. Local events are published on channel; events from other
// processes are handed to the local publisher (the event hub).
type ChangeRelay struct {
	rdb     *redis.Client
	channel string
	origin  string
	local   service.Publisher
	queue   chan model.ChangeEvent
	log     zerolog.Logger
}

type relayMessage struct {
	Origin string            `json:"origin"`
	Event  model.ChangeEvent `json:"event"`
}

// NewChangeRelay creates a relay. Call Start in a goroutine.
func NewChangeRelay(rdb *redis.Client, channel string, local service.Publisher, log zerolog.Logger) *ChangeRelay {
	return &ChangeRelay{
		rdb:     rdb,
		channel: channel,
		origin:  uuid.New().String(),
		local:   local,
		queue:   make(chan model.ChangeEvent, RelayQueueSize),
		log:     log.With().Str("component", "change_relay").Logger(),
	}
}

// Publish queues a local event for Redis. It never blocks; when the queue is
// full the event is dropped and only local subscribers see it.
func (r *ChangeRelay) Publish(ev model.ChangeEvent) {
	select {
	case r.queue <- ev:
	default:
		r.log.Warn().Str("collection", ev.Collection).Msg("Relay queue full, event not shared")
	}
}

// Start subscribes to the channel and runs until ctx is done. ready is
// closed once the subscription is confirmed; it may be nil.
func (r *ChangeRelay) Start(ctx context.Context, ready chan<- struct{}) {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		r.log.Error().Err(err).Msg("Subscribe failed, relay disabled")
		if ready != nil {
			close(ready)
		}
		return
	}
	if ready != nil {
		close(ready)
	}

	r.log.Info().Str("channel", r.channel).Msg("Relay started")
	incoming := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			r.drain()
			r.log.Info().Msg("Relay stopped")
			return

		case ev := <-r.queue:
			r.send(ctx, ev)

		case msg, ok := <-incoming:
			if !ok {
				return
			}
			r.receive(msg.Payload)
		}
	}
}

func (r *ChangeRelay) send(ctx context.Context, ev model.ChangeEvent) {
	payload, err := json.Marshal(relayMessage{Origin: r.origin, Event: ev})
	if err != nil {
		r.log.Error().Err(err).Msg("Marshal error")
		return
	}
	if err := r.rdb.Publish(ctx, r.channel, payload).Err(); err != nil && ctx.Err() == nil {
		r.log.Error().Err(err).Str("record_id", ev.RecordID).Msg("Publish error")
	}
}

func (r *ChangeRelay) receive(payload string) {
	var msg relayMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		r.log.Warn().Err(err).Msg("Unmarshal error")
		return
	}
	if msg.Origin == r.origin {
		return
	}
	r.local.Publish(msg.Event)
}

// drain publishes queued events before shutdown.
func (r *ChangeRelay) drain() {
	ctx := context.Background()
	for {
		select {
		case ev := <-r.queue:
			r.send(ctx, ev)
		default:
			return
		}
	}
}
