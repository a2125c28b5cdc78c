// Package queue carries feed insertions from the dispatcher to the feed
// insertion workers, and distribution jobs from the write path to the
// dispatcher.
package queue

import (
	"context"
	"encoding/json"

	"github.com/Luismorlan/feedcast/model"
	"github.com/pkg/errors"
)

// FeedInsertion asks a worker to append StatusID to one feed.
type FeedInsertion struct {
	StatusID int64          `json:"status_id"`
	Kind     model.FeedKind `json:"kind"`
	TargetID int64          `json:"target_id"`
	// Update is set when the status was edited.
	Update bool `json:"update,omitempty"`
	// ForeignContext records that a broad antenna captured a status from a
	// remote author, a reblog, or a non-public visibility.
	ForeignContext bool `json:"foreign_context,omitempty"`
}

func (f FeedInsertion) Target() model.DeliveryTarget {
	return model.DeliveryTarget{Kind: f.Kind, ID: f.TargetID}
}

// FeedInsertionQueue accepts feed insertions in bulk. One call per feed kind
// and page keeps the number of queue round trips bounded.
type FeedInsertionQueue interface {
	EnqueueBulk(ctx context.Context, items []FeedInsertion) error
}

// DistributionJob asks the dispatcher to fan out a committed status.
type DistributionJob struct {
	StatusID             int64   `json:"status_id"`
	Edit                 bool    `json:"edit,omitempty"`
	SuppressedMentionIDs []int64 `json:"suppressed_mention_ids,omitempty"`
}

// Message is one message read from a queue.
type Message struct {
	Body          string
	MessageID     string
	ReceivedTimes int
	SentTimestamp int
	ReceiptHandle string
}

// MessageReader reads and acknowledges queue messages. A message that is not
// deleted becomes visible again and is redelivered.
type MessageReader interface {
	ReceiveMessages(ctx context.Context, maxNumberOfMessages int64) ([]*Message, error)
	DeleteMessage(ctx context.Context, msg *Message) error
}

func encode(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "encode queue message")
	}
	return string(b), nil
}

func EncodeFeedInsertion(item FeedInsertion) (string, error) {
	return encode(item)
}

func DecodeFeedInsertion(body string) (FeedInsertion, error) {
	var item FeedInsertion
	if err := json.Unmarshal([]byte(body), &item); err != nil {
		return item, errors.Wrap(err, "decode feed insertion")
	}
	switch item.Kind {
	case model.FeedKindHome, model.FeedKindList, model.FeedKindAntenna:
	default:
		return item, errors.Errorf("unknown feed kind %q", item.Kind)
	}
	return item, nil
}

func EncodeDistributionJob(job DistributionJob) (string, error) {
	return encode(job)
}

func DecodeDistributionJob(body string) (DistributionJob, error) {
	var job DistributionJob
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		return job, errors.Wrap(err, "decode distribution job")
	}
	if job.StatusID == 0 {
		return job, errors.New("distribution job without status id")
	}
	return job, nil
}
