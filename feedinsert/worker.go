// Package feedinsert consumes feed insertions produced by the dispatcher and
// appends them to feeds, applying each target owner's home filters.
package feedinsert

import (
	"context"
	"fmt"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/Luismorlan/feedcast/broadcast"
	"github.com/Luismorlan/feedcast/engine"
	"github.com/Luismorlan/feedcast/feed"
	"github.com/Luismorlan/feedcast/model"
	"github.com/Luismorlan/feedcast/queue"
	"github.com/Luismorlan/feedcast/render"
	"github.com/Luismorlan/feedcast/store"
	Logger "github.com/Luismorlan/feedcast/utils/log"
	"github.com/pkg/errors"
)

const (
	DefaultBatchSize = queue.MaxReceivedMessages
	idleDelay        = time.Second

	resultInserted = "inserted"
	resultFiltered = "filtered"
	resultSkipped  = "skipped"
)

type StatusFinder interface {
	FindStatus(ctx context.Context, id int64) (*model.Status, error)
}

// Graph answers the ownership and relationship questions the home filter
// needs.
type Graph interface {
	FindAccount(ctx context.Context, id int64) (*model.Account, error)
	Blocking(ctx context.Context, accountID int64, targetID int64) (bool, error)
	ListOwner(ctx context.Context, listID int64) (int64, error)
}

type AntennaOwners interface {
	AntennaOwner(ctx context.Context, antennaID int64) (int64, error)
}

type Worker struct {
	engine.Module

	Reader    queue.MessageReader
	Statuses  StatusFinder
	Graph     Graph
	Antennas  AntennaOwners
	Feeds     feed.Store
	Transport broadcast.Transport
	Cache     render.PayloadCache
	Renderer  render.Renderer
	Statsd    statsd.ClientInterface

	LocalDomain string
	BatchSize   int64
}

func (w *Worker) Name() string {
	return "feed_inserter"
}

func (w *Worker) RunModule(ctx context.Context) error {
	for ctx.Err() == nil {
		n, err := w.ProcessMessages(ctx)
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

// ProcessMessages reads one batch and inserts every message in it. A message
// is deleted once handled, failed insertions stay queued for redelivery. It
// returns the number of messages read.
func (w *Worker) ProcessMessages(ctx context.Context) (int, error) {
	batch := w.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	msgs, err := w.Reader.ReceiveMessages(ctx, batch)
	if err != nil {
		return 0, errors.Wrap(err, "read feed insertions")
	}

	for _, msg := range msgs {
		item, err := queue.DecodeFeedInsertion(msg.Body)
		if err != nil {
			Logger.Log.WithError(err).Errorf("drop malformed feed insertion %s", msg.MessageID)
		} else if err := w.Insert(ctx, item); err != nil {
			Logger.Log.WithError(err).Errorf("fail to insert status %d into %s, will retry", item.StatusID, item.Target())
			continue
		}
		if err := w.Reader.DeleteMessage(ctx, msg); err != nil {
			Logger.Log.WithError(err).Errorf("fail to delete feed insertion %s", msg.MessageID)
		}
	}
	return len(msgs), nil
}

func (w *Worker) count(item queue.FeedInsertion, result string) {
	if w.Statsd == nil {
		return
	}
	tags := []string{"kind:" + string(item.Kind), "result:" + result}
	if err := w.Statsd.Incr("feed_insert.count", tags, 1); err != nil {
		Logger.Log.WithError(err).Debug("cannot report feed insert count")
	}
}

// Insert appends one status to one feed. Insertions for statuses, lists or
// antennas that no longer exist are dropped without error.
func (w *Worker) Insert(ctx context.Context, item queue.FeedInsertion) error {
	status, err := w.Statuses.FindStatus(ctx, item.StatusID)
	if errors.Is(err, store.ErrNotFound) {
		w.count(item, resultSkipped)
		return nil
	}
	if err != nil {
		return err
	}

	ownerID, err := w.ownerOf(ctx, item.Target())
	if errors.Is(err, store.ErrNotFound) {
		w.count(item, resultSkipped)
		return nil
	}
	if err != nil {
		return err
	}

	filtered, err := w.filteredFromHome(ctx, ownerID, status)
	if err != nil {
		return err
	}
	if filtered {
		w.count(item, resultFiltered)
		return nil
	}

	notify, err := feed.Append(ctx, w.Feeds, item.Target(), item.StatusID, item.Update, item.ForeignContext)
	if err != nil {
		return err
	}
	if !notify {
		w.count(item, resultSkipped)
		return nil
	}
	w.count(item, resultInserted)
	w.pushLive(ctx, item, status)
	return nil
}

func (w *Worker) ownerOf(ctx context.Context, target model.DeliveryTarget) (int64, error) {
	switch target.Kind {
	case model.FeedKindHome:
		return target.ID, nil
	case model.FeedKindList:
		return w.Graph.ListOwner(ctx, target.ID)
	case model.FeedKindAntenna:
		return w.Antennas.AntennaOwner(ctx, target.ID)
	}
	return 0, fmt.Errorf("unknown feed kind %q", target.Kind)
}

// filteredFromHome is true when the owner blocks the author or excluded the
// author's account or domain. Owners always see their own statuses.
func (w *Worker) filteredFromHome(ctx context.Context, ownerID int64, status *model.Status) (bool, error) {
	if ownerID == status.AccountID {
		return false, nil
	}
	owner, err := w.Graph.FindAccount(ctx, ownerID)
	if errors.Is(err, store.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	domain := ""
	if !status.Account.IsLocal() {
		domain = status.Account.DomainOr(w.LocalDomain)
	}
	if owner.Excludes(status.AccountID, domain) {
		return true, nil
	}
	return w.Graph.Blocking(ctx, ownerID, status.AccountID)
}

func (w *Worker) payload(ctx context.Context, status *model.Status) ([]byte, error) {
	payload, err := w.Cache.Get(ctx, status.ID)
	if err == nil {
		return payload, nil
	}
	if !errors.Is(err, render.ErrCacheMiss) {
		Logger.Log.WithError(err).Warnf("payload cache unavailable for status %d", status.ID)
	}
	return render.Warm(ctx, w.Renderer, w.Cache, status)
}

// pushLive tells live subscribers of the feed about the status. Failures are
// logged only, subscribers resync from the feed.
func (w *Worker) pushLive(ctx context.Context, item queue.FeedInsertion, status *model.Status) {
	payload, err := w.payload(ctx, status)
	if err != nil {
		Logger.Log.WithError(err).Warnf("cannot render status %d for live push", status.ID)
		return
	}
	name := broadcast.EventUpdate
	if item.Update {
		name = broadcast.EventStatusUpdate
	}
	event, err := broadcast.EncodeEvent(name, payload)
	if err != nil {
		Logger.Log.WithError(err).Warnf("cannot encode live event for status %d", status.ID)
		return
	}
	if err := w.Transport.Publish(ctx, broadcast.FeedChannel(item.Target()), event); err != nil {
		Logger.Log.WithError(err).Warnf("cannot push status %d to %s", status.ID, item.Target())
	}
}
