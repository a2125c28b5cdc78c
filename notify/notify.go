// Package notify delivers mention and edit notifications to local accounts.
// Notifications are published on the in-process event bus and relayed to the
// accounts' live channels.
package notify

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pkg/errors"
)

const (
	TopicNotification = "topic.notification"

	TypeMention = "mention"
	// TypeUpdate tells a reblogger that a status they reblogged was edited.
	TypeUpdate = "update"
)

type Notification struct {
	Type      string `json:"type"`
	AccountID int64  `json:"account_id"`
	StatusID  int64  `json:"status_id"`
}

type Notifier interface {
	NotifyMention(ctx context.Context, accountID int64, statusID int64) error
	NotifyUpdate(ctx context.Context, accountID int64, statusID int64) error
}

// EventBusNotifier publishes notifications on TopicNotification.
type EventBusNotifier struct {
	EventBus *gochannel.GoChannel
}

func NewEventBusNotifier(e *gochannel.GoChannel) *EventBusNotifier {
	return &EventBusNotifier{EventBus: e}
}

func (n *EventBusNotifier) publish(ctx context.Context, notification Notification) error {
	data, err := json.Marshal(notification)
	if err != nil {
		return errors.Wrap(err, "encode notification")
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	return errors.Wrapf(n.EventBus.Publish(TopicNotification, msg),
		"publish %s notification to %d", notification.Type, notification.AccountID)
}

func (n *EventBusNotifier) NotifyMention(ctx context.Context, accountID int64, statusID int64) error {
	return n.publish(ctx, Notification{Type: TypeMention, AccountID: accountID, StatusID: statusID})
}

func (n *EventBusNotifier) NotifyUpdate(ctx context.Context, accountID int64, statusID int64) error {
	return n.publish(ctx, Notification{Type: TypeUpdate, AccountID: accountID, StatusID: statusID})
}

// MemoryNotifier records notifications.
type MemoryNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{}
}

func (n *MemoryNotifier) record(notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return nil
}

func (n *MemoryNotifier) NotifyMention(ctx context.Context, accountID int64, statusID int64) error {
	return n.record(Notification{Type: TypeMention, AccountID: accountID, StatusID: statusID})
}

func (n *MemoryNotifier) NotifyUpdate(ctx context.Context, accountID int64, statusID int64) error {
	return n.record(Notification{Type: TypeUpdate, AccountID: accountID, StatusID: statusID})
}

func (n *MemoryNotifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification{}, n.sent...)
}
