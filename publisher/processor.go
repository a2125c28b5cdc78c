// Package publisher turns "distribute status" jobs into dispatches.
package publisher

import (
	"context"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/Luismorlan/feedcast/dispatcher"
	"github.com/Luismorlan/feedcast/engine"
	"github.com/Luismorlan/feedcast/model"
	"github.com/Luismorlan/feedcast/queue"
	"github.com/Luismorlan/feedcast/store"
	Logger "github.com/Luismorlan/feedcast/utils/log"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBatchSize = queue.MaxReceivedMessages
	idleDelay        = 2 * time.Second
)

type StatusFinder interface {
	FindStatus(ctx context.Context, id int64) (*model.Status, error)
}

type Distributor interface {
	Dispatch(ctx context.Context, status *model.Status, opts dispatcher.Options) (*dispatcher.Result, error)
}

// Outcome of one distribution message.
type Outcome string

const (
	OutcomeDispatched Outcome = "dispatched"
	// The status no longer exists, nothing to distribute.
	OutcomeGone      Outcome = "gone"
	OutcomeMalformed Outcome = "malformed"
	OutcomeRejected  Outcome = "rejected"
	OutcomeRetry     Outcome = "retry"
)

// deletes reports whether the message leaves the queue.
func (o Outcome) deletes() bool {
	return o != OutcomeRetry
}

type DistributionMessageProcessor struct {
	engine.Module

	Reader     queue.MessageReader
	Statuses   StatusFinder
	Dispatcher Distributor
	Statsd     statsd.ClientInterface
	BatchSize  int64
}

func NewDistributionMessageProcessor(
	reader queue.MessageReader,
	statuses StatusFinder,
	d Distributor,
) *DistributionMessageProcessor {
	return &DistributionMessageProcessor{
		Reader:     reader,
		Statuses:   statuses,
		Dispatcher: d,
		Statsd:     &statsd.NoOpClient{},
		BatchSize:  DefaultBatchSize,
	}
}

func (p *DistributionMessageProcessor) Name() string {
	return "distribution_publisher"
}

func (p *DistributionMessageProcessor) RunModule(ctx context.Context) error {
	for ctx.Err() == nil {
		n, err := p.ReadAndProcessMessages(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			select {
			case <-ctx.Done():
			case <-time.After(idleDelay):
			}
		}
	}
	return nil
}

// ReadAndProcessMessages reads one batch of distribution jobs and dispatches
// them in order. It returns the number of messages read.
func (p *DistributionMessageProcessor) ReadAndProcessMessages(ctx context.Context) (int, error) {
	batch := p.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	msgs, err := p.Reader.ReceiveMessages(ctx, batch)
	if err != nil {
		return 0, errors.Wrap(err, "read distribution jobs")
	}

	for _, msg := range msgs {
		outcome := p.ProcessOneMessage(ctx, msg)
		p.count(outcome)
		if !outcome.deletes() {
			continue
		}
		if err := p.Reader.DeleteMessage(ctx, msg); err != nil {
			Logger.Log.WithError(err).Errorf("fail to delete distribution job %s", msg.MessageID)
		}
	}
	return len(msgs), nil
}

// ProcessOneMessage dispatches the status named by msg. Only transient
// failures keep the message queued.
func (p *DistributionMessageProcessor) ProcessOneMessage(ctx context.Context, msg *queue.Message) Outcome {
	job, err := queue.DecodeDistributionJob(msg.Body)
	if err != nil {
		Logger.Log.WithError(err).Errorf("drop malformed distribution job %s", msg.MessageID)
		return OutcomeMalformed
	}
	log := Logger.Log.WithFields(logrus.Fields{
		"status_id":      job.StatusID,
		"edit":           job.Edit,
		"received_times": msg.ReceivedTimes,
	})

	status, err := p.Statuses.FindStatus(ctx, job.StatusID)
	if errors.Is(err, store.ErrNotFound) {
		log.Info("status is gone, skip distribution")
		return OutcomeGone
	}
	if err != nil {
		log.WithError(err).Error("fail to load status, will retry")
		return OutcomeRetry
	}

	_, err = p.Dispatcher.Dispatch(ctx, status, dispatcher.Options{
		IsEdit:               job.Edit,
		SuppressedMentionIDs: job.SuppressedMentionIDs,
	})
	switch {
	case err == nil:
		return OutcomeDispatched
	case dispatcher.IsRetryable(err):
		log.WithError(err).Warn("distribution failed, will retry")
		return OutcomeRetry
	default:
		log.WithError(err).Error("distribution rejected")
		return OutcomeRejected
	}
}

func (p *DistributionMessageProcessor) count(outcome Outcome) {
	if p.Statsd == nil {
		return
	}
	if err := p.Statsd.Incr("publisher.job", []string{"outcome:" + string(outcome)}, 1); err != nil {
		Logger.Log.WithError(err).Debug("cannot report publisher job")
	}
}
