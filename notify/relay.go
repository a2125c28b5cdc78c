package notify

import (
	"context"
	"encoding/json"

	"github.com/Luismorlan/feedcast/broadcast"
	"github.com/Luismorlan/feedcast/engine"
	Logger "github.com/Luismorlan/feedcast/utils/log"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const EventNotification = "notification"

// Relay forwards notifications from the event bus to the recipient's home
// live channel.
type Relay struct {
	engine.Module

	EventBus  *gochannel.GoChannel
	Transport broadcast.Transport
}

func NewRelay(e *gochannel.GoChannel, t broadcast.Transport) *Relay {
	return &Relay{EventBus: e, Transport: t}
}

func (r *Relay) Name() string {
	return "notification_relay"
}

func (r *Relay) RunModule(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := r.EventBus.Subscribe(ctx, TopicNotification)
	if err != nil {
		return err
	}

	for msg := range messages {
		msg.Ack()

		var n Notification
		if err := json.Unmarshal(msg.Payload, &n); err != nil {
			Logger.Log.WithError(err).Errorf("drop malformed notification %s", msg.UUID)
			continue
		}
		event, err := broadcast.EncodeEvent(EventNotification, msg.Payload)
		if err != nil {
			return err
		}
		if err := r.Transport.Publish(ctx, broadcast.HomeChannel(n.AccountID), event); err != nil {
			// Live delivery is best effort.
			Logger.Log.WithError(err).Warnf("fail to relay %s notification to %d", n.Type, n.AccountID)
		}
	}
	return nil
}
