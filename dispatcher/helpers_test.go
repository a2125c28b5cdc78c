package dispatcher

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/Luismorlan/feedcast/broadcast"
	"github.com/Luismorlan/feedcast/feed"
	"github.com/Luismorlan/feedcast/feedinsert"
	"github.com/Luismorlan/feedcast/model"
	"github.com/Luismorlan/feedcast/notify"
	"github.com/Luismorlan/feedcast/queue"
	"github.com/Luismorlan/feedcast/render"
	"github.com/Luismorlan/feedcast/store"
	"github.com/stretchr/testify/require"
)

const localDomain = "local.example"

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store     *store.MemoryStore
	queue     *queue.MemoryQueue
	feeds     *feed.MemoryStore
	transport *broadcast.MemoryTransport
	cache     *render.MemoryPayloadCache
	notifier  *notify.MemoryNotifier
	cfg       Config
}

func newFixture() *fixture {
	cfg := DefaultConfig()
	cfg.LocalDomain = localDomain
	cfg.PageSize = 2
	return &fixture{
		store:     store.NewMemoryStore(),
		queue:     queue.NewMemoryQueue(),
		feeds:     feed.NewMemoryStore(100),
		transport: broadcast.NewMemoryTransport(),
		cache:     render.NewMemoryPayloadCache(),
		notifier:  notify.NewMemoryNotifier(),
		cfg:       cfg,
	}
}

func (f *fixture) dispatcher() *Dispatcher {
	return New(f.cfg, Deps{
		Rules:         f.store,
		Graph:         f.store,
		Conversations: f.store,
		Queue:         f.queue,
		Feeds:         f.feeds,
		Transport:     f.transport,
		Renderer:      render.NewJSONRenderer(localDomain),
		Cache:         f.cache,
		Notifier:      f.notifier,
		Clock:         func() time.Time { return now },
	})
}

func (f *fixture) dispatch(t *testing.T, status *model.Status, opts Options) *Result {
	t.Helper()
	res, err := f.dispatcher().Dispatch(context.Background(), status, opts)
	require.NoError(t, err)
	return res
}

// drain runs the feed insertion worker until the queue is empty.
func (f *fixture) drain(t *testing.T) {
	t.Helper()
	w := &feedinsert.Worker{
		Reader:      f.queue,
		Statuses:    f.store,
		Graph:       f.store,
		Antennas:    f.store,
		Feeds:       f.feeds,
		Transport:   f.transport,
		Cache:       f.cache,
		Renderer:    render.NewJSONRenderer(localDomain),
		LocalDomain: localDomain,
	}
	for f.queue.Pending() > 0 {
		_, err := w.ProcessMessages(context.Background())
		require.NoError(t, err)
	}
}

func activeLocal(id int64) model.Account {
	last := now.Add(-time.Hour)
	return model.Account{ID: id, Username: "user", LastActiveAt: &last}
}

func remote(id int64, domain string) model.Account {
	return model.Account{ID: id, Username: "far", Domain: &domain}
}

func visPtr(v model.Visibility) *model.Visibility { return &v }

func newStatus(id int64, author model.Account, v model.Visibility, text string) *model.Status {
	return &model.Status{
		ID:         id,
		CreatedAt:  now,
		AccountID:  author.ID,
		Account:    author,
		Visibility: visPtr(v),
		Text:       text,
	}
}

func mention(ids ...int64) []model.Mention {
	res := []model.Mention{}
	for _, id := range ids {
		res = append(res, model.Mention{AccountID: id})
	}
	return res
}

// enqueuedTargets lists distinct queued targets, ordered by kind then id.
func enqueuedTargets(q *queue.MemoryQueue) []model.DeliveryTarget {
	seen := map[model.DeliveryTarget]struct{}{}
	res := []model.DeliveryTarget{}
	for _, item := range q.Items() {
		if _, ok := seen[item.Target()]; ok {
			continue
		}
		seen[item.Target()] = struct{}{}
		res = append(res, item.Target())
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Kind != res[j].Kind {
			return res[i].Kind < res[j].Kind
		}
		return res[i].ID < res[j].ID
	})
	return res
}

func homes(ids ...int64) []model.DeliveryTarget {
	res := []model.DeliveryTarget{}
	for _, id := range ids {
		res = append(res, model.PersonalFeedOf(id))
	}
	return res
}

func lists(ids ...int64) []model.DeliveryTarget {
	res := []model.DeliveryTarget{}
	for _, id := range ids {
		res = append(res, model.NamedListFeedOf(id))
	}
	return res
}

func targets(groups ...[]model.DeliveryTarget) []model.DeliveryTarget {
	res := []model.DeliveryTarget{}
	for _, g := range groups {
		res = append(res, g...)
	}
	return res
}
