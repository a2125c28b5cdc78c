package broadcast

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// Transport publishes a payload on a named live channel.
type Transport interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Event is the envelope subscribers of a live channel receive.
type Event struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeEvent wraps a rendered payload into an Event envelope.
func EncodeEvent(event string, payload []byte) ([]byte, error) {
	b, err := json.Marshal(Event{Event: event, Payload: json.RawMessage(payload)})
	return b, errors.Wrap(err, "encode event")
}

// RedisTransport publishes with Redis PUBLISH.
type RedisTransport struct {
	client *redis.Client
}

func NewRedisTransport(client *redis.Client) *RedisTransport {
	return &RedisTransport{client: client}
}

func (t *RedisTransport) Publish(ctx context.Context, channel string, payload []byte) error {
	return errors.Wrapf(t.client.Publish(ctx, channel, payload).Err(), "publish to %s", channel)
}

// EventBusTransport publishes on an in-process watermill event bus, the
// channel name being the topic.
type EventBusTransport struct {
	EventBus *gochannel.GoChannel
}

func NewEventBusTransport(e *gochannel.GoChannel) *EventBusTransport {
	return &EventBusTransport{EventBus: e}
}

func (t *EventBusTransport) Publish(ctx context.Context, channel string, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return errors.Wrapf(t.EventBus.Publish(channel, msg), "publish to %s", channel)
}

// Published is one recorded Publish call.
type Published struct {
	Channel string
	Payload []byte
}

// MemoryTransport records publishes in order.
type MemoryTransport struct {
	mu        sync.Mutex
	published []Published
}

func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{}
}

func (t *MemoryTransport) Publish(ctx context.Context, channel string, payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.published = append(t.published, Published{Channel: channel, Payload: payload})
	return nil
}

func (t *MemoryTransport) Published() []Published {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Published{}, t.published...)
}

// Channels lists the channels published to, in order.
func (t *MemoryTransport) Channels() []string {
	res := []string{}
	for _, p := range t.Published() {
		res = append(res, p.Channel)
	}
	return res
}
