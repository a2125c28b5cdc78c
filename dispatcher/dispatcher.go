// Package dispatcher fans a committed status out to every feed that should
// receive it: the author's own feed, followers, lists, antennas, hashtag
// followers and the public live channels.
package dispatcher

import (
	"context"
	"strconv"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/Luismorlan/feedcast/antenna"
	"github.com/Luismorlan/feedcast/broadcast"
	"github.com/Luismorlan/feedcast/feed"
	"github.com/Luismorlan/feedcast/model"
	"github.com/Luismorlan/feedcast/notify"
	"github.com/Luismorlan/feedcast/queue"
	"github.com/Luismorlan/feedcast/render"
	"github.com/Luismorlan/feedcast/store"
	Logger "github.com/Luismorlan/feedcast/utils/log"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/ext"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

type RuleStore interface {
	TopicCandidates(c antenna.Criteria, pageSize int) *store.Cursor[model.Antenna]
	BroadCandidates(c antenna.BroadCriteria, pageSize int) *store.Cursor[model.Antenna]
}

type GraphStore interface {
	LocalFollowers(accountID int64, activeSince time.Time, pageSize int) *store.Cursor[int64]
	ListsForLocalDistribution(memberID int64, activeSince time.Time, pageSize int) *store.Cursor[int64]
	ListsOwnedByAmong(memberID int64, ownerIDs []int64, activeSince time.Time, pageSize int) *store.Cursor[int64]
	LocalFollowersAmong(ctx context.Context, accountID int64, ids []int64, activeSince time.Time) ([]int64, error)
	LocalAccountsAmong(ctx context.Context, ids []int64) ([]int64, error)
	TagFollowers(tagIDs []int64, pageSize int) *store.Cursor[int64]
	LocalRebloggers(statusID int64, pageSize int) *store.Cursor[int64]
	Relationships(ctx context.Context, authorID int64, ownerIDs []int64) (map[int64]antenna.Relationship, error)
}

type ConversationStore interface {
	AddStatus(ctx context.Context, statusID int64, participantIDs []int64) error
}

// Deps are the collaborators a Dispatcher talks to.
type Deps struct {
	Rules         RuleStore
	Graph         GraphStore
	Conversations ConversationStore
	Queue         queue.FeedInsertionQueue
	Feeds         feed.Store
	Transport     broadcast.Transport
	Renderer      render.Renderer
	Cache         render.PayloadCache
	Notifier      notify.Notifier
	// Optional, metrics are dropped when nil.
	Statsd statsd.ClientInterface
	// Optional, defaults to time.Now.
	Clock func() time.Time
}

type Options struct {
	IsEdit bool
	// Mentioned accounts that must not be notified, typically those already
	// notified for an earlier revision.
	SuppressedMentionIDs []int64
}

// Result summarizes one dispatch.
type Result struct {
	SelfDelivered   bool
	Enqueued        map[model.FeedKind]int
	AntennasMatched int
	Notified        int
	Channels        []string
}

type Dispatcher struct {
	cfg  Config
	deps Deps
}

func New(cfg Config, deps Deps) *Dispatcher {
	if deps.Statsd == nil {
		deps.Statsd = &statsd.NoOpClient{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Dispatcher{cfg: cfg.withDefaults(), deps: deps}
}

// run is the state of one dispatch.
type run struct {
	*Dispatcher

	status      *model.Status
	opts        Options
	now         time.Time
	activeSince time.Time
	payload     []byte
	batch       *Batch
	result      *Result
	log         *logrus.Entry
}

// Dispatch distributes status. Statuses without visibility fail with
// ErrStatusNotReady. Any error aborts the dispatch and the caller reruns it
// whole, see IsRetryable.
func (d *Dispatcher) Dispatch(ctx context.Context, status *model.Status, opts Options) (res *Result, err error) {
	span, ctx := tracer.StartSpanFromContext(ctx, "dispatcher.dispatch",
		tracer.Tag("status_id", status.ID),
		tracer.Tag("edit", opts.IsEdit),
	)
	defer func() { span.Finish(tracer.WithError(err)) }()

	if status.Visibility == nil {
		Logger.Log.Warnf("status %d has no visibility yet, retry later", status.ID)
		d.countDispatch("unknown", opts.IsEdit, "not_ready")
		return nil, errors.Wrapf(ErrStatusNotReady, "status %d", status.ID)
	}
	visibility := *status.Visibility
	span.SetTag(ext.ResourceName, visibility.String())

	now := d.deps.Clock()
	r := &run{
		Dispatcher:  d,
		status:      status,
		opts:        opts,
		now:         now,
		activeSince: now.Add(-d.cfg.ActiveWindow),
		batch:       NewBatch(status.ID, opts.IsEdit),
		result:      &Result{Enqueued: make(map[model.FeedKind]int)},
		log: Logger.Log.WithFields(logrus.Fields{
			"status_id":  status.ID,
			"visibility": visibility.String(),
			"edit":       opts.IsEdit,
		}),
	}

	if err := r.execute(ctx); err != nil {
		r.log.WithError(err).Error("dispatch failed")
		d.countDispatch(visibility.String(), opts.IsEdit, "error")
		return r.result, err
	}

	d.countDispatch(visibility.String(), opts.IsEdit, "ok")
	for kind, n := range r.result.Enqueued {
		d.count("dispatch.enqueued", int64(n), "kind:"+string(kind))
	}
	r.log.WithFields(logrus.Fields{
		"home":     r.result.Enqueued[model.FeedKindHome],
		"list":     r.result.Enqueued[model.FeedKindList],
		"antenna":  r.result.Enqueued[model.FeedKindAntenna],
		"antennas": r.result.AntennasMatched,
		"channels": len(r.result.Channels),
	}).Info("status dispatched")
	return r.result, nil
}

func (r *run) execute(ctx context.Context) error {
	payload, err := render.Warm(ctx, r.deps.Renderer, r.deps.Cache, r.status)
	if err != nil {
		return errors.Wrap(err, "warm payload cache")
	}
	r.payload = payload

	if err := r.fanOutToLocalRecipients(ctx); err != nil {
		return err
	}
	return r.fanOutToPublicRecipients(ctx)
}

func (d *Dispatcher) countDispatch(visibility string, edit bool, result string) {
	d.count("dispatch.count", 1,
		"visibility:"+visibility,
		"edit:"+strconv.FormatBool(edit),
		"result:"+result,
	)
}

func (d *Dispatcher) count(name string, n int64, tags ...string) {
	if err := d.deps.Statsd.Count(name, n, tags, 1); err != nil {
		Logger.Log.WithError(err).Debugf("cannot report %s", name)
	}
}

// enqueueTargets converts one page of target ids into a bulk enqueue.
func (r *run) enqueueTargets(ctx context.Context, kind model.FeedKind, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	items := make([]queue.FeedInsertion, 0, len(ids))
	for _, id := range ids {
		items = append(items, queue.FeedInsertion{
			StatusID: r.status.ID,
			Kind:     kind,
			TargetID: id,
			Update:   r.opts.IsEdit,
		})
	}
	if err := r.deps.Queue.EnqueueBulk(ctx, items); err != nil {
		return errors.Wrapf(err, "enqueue %d %s insertions", len(items), kind)
	}
	r.result.Enqueued[kind] += len(items)
	return nil
}

// enqueuePages drains c, enqueueing each page as it is read.
func (r *run) enqueuePages(ctx context.Context, c *store.Cursor[int64], kind model.FeedKind, phase string) error {
	err := c.Each(ctx, func(page []int64) error {
		return r.enqueueTargets(ctx, kind, page)
	})
	return errors.Wrap(err, phase)
}

func (r *run) liveEvent() string {
	if r.opts.IsEdit {
		return broadcast.EventStatusUpdate
	}
	return broadcast.EventUpdate
}

// publish pushes the rendered payload to a live channel. Live channels are
// best effort, failures are logged and dispatch goes on.
func (r *run) publish(ctx context.Context, channel string) bool {
	event, err := broadcast.EncodeEvent(r.liveEvent(), r.payload)
	if err == nil {
		err = r.deps.Transport.Publish(ctx, channel, event)
	}
	if err != nil {
		r.log.WithError(err).Warnf("cannot publish to %s", channel)
		return false
	}
	return true
}
