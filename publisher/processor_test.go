package publisher

import (
	"context"
	"testing"
	"time"

	"github.com/Luismorlan/feedcast/broadcast"
	"github.com/Luismorlan/feedcast/dispatcher"
	"github.com/Luismorlan/feedcast/feed"
	"github.com/Luismorlan/feedcast/model"
	"github.com/Luismorlan/feedcast/notify"
	"github.com/Luismorlan/feedcast/queue"
	"github.com/Luismorlan/feedcast/render"
	"github.com/Luismorlan/feedcast/store"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDistributor struct {
	err   error
	calls []dispatcher.Options
}

func (d *fakeDistributor) Dispatch(ctx context.Context, status *model.Status, opts dispatcher.Options) (*dispatcher.Result, error) {
	d.calls = append(d.calls, opts)
	return &dispatcher.Result{}, d.err
}

func pushJob(t *testing.T, q *queue.MemoryQueue, job queue.DistributionJob) {
	body, err := queue.EncodeDistributionJob(job)
	require.NoError(t, err)
	q.Push(body)
}

func seededStore() *store.MemoryStore {
	s := store.NewMemoryStore()
	last := time.Now()
	public := model.VisibilityPublic
	s.PutAccount(model.Account{ID: 1, Username: "author", LastActiveAt: &last})
	s.PutAccount(model.Account{ID: 2, Username: "reader", LastActiveAt: &last})
	s.PutFollow(2, 1)
	s.PutStatus(model.Status{ID: 100, AccountID: 1, Visibility: &public, Text: "hi"})
	return s
}

func TestDispatchesAndDeletes(t *testing.T) {
	s := seededStore()
	jobs := queue.NewMemoryQueue()
	insertions := queue.NewMemoryQueue()
	feeds := feed.NewMemoryStore(10)
	d := dispatcher.New(dispatcher.DefaultConfig(), dispatcher.Deps{
		Rules:         s,
		Graph:         s,
		Conversations: s,
		Queue:         insertions,
		Feeds:         feeds,
		Transport:     broadcast.NewMemoryTransport(),
		Renderer:      render.NewJSONRenderer("local.example"),
		Cache:         render.NewMemoryPayloadCache(),
		Notifier:      notify.NewMemoryNotifier(),
	})
	pushJob(t, jobs, queue.DistributionJob{StatusID: 100})

	n, err := NewDistributionMessageProcessor(jobs, s, d).ReadAndProcessMessages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, jobs.Pending())
	assert.Equal(t, []model.DeliveryTarget{model.PersonalFeedOf(1)}, feeds.Targets(100))
	require.Len(t, insertions.Items(), 1)
	assert.Equal(t, model.PersonalFeedOf(2), insertions.Items()[0].Target())
}

func TestOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		job     *queue.DistributionJob
		err     error
		want    Outcome
		pending int
	}{
		{name: "dispatched", job: &queue.DistributionJob{StatusID: 100, Edit: true}, want: OutcomeDispatched},
		{name: "gone", job: &queue.DistributionJob{StatusID: 404}, want: OutcomeGone},
		{name: "malformed", body: "{", want: OutcomeMalformed},
		{name: "not ready", job: &queue.DistributionJob{StatusID: 100}, err: errors.Wrap(dispatcher.ErrStatusNotReady, "status 100"), want: OutcomeRetry, pending: 1},
		{name: "io", job: &queue.DistributionJob{StatusID: 100}, err: errors.New("connection reset"), want: OutcomeRetry, pending: 1},
		{name: "invalid", job: &queue.DistributionJob{StatusID: 100}, err: errors.Wrap(dispatcher.ErrInvalidStatus, "status 100"), want: OutcomeRejected},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := queue.NewMemoryQueue()
			if tc.job != nil {
				pushJob(t, q, *tc.job)
			} else {
				q.Push(tc.body)
			}
			d := &fakeDistributor{err: tc.err}
			p := NewDistributionMessageProcessor(q, seededStore(), d)

			msgs, err := q.ReceiveMessages(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.ProcessOneMessage(context.Background(), msgs[0]))

			_, err = p.ReadAndProcessMessages(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.pending, q.Pending())
		})
	}
}

func TestForwardsEditOptions(t *testing.T) {
	q := queue.NewMemoryQueue()
	pushJob(t, q, queue.DistributionJob{StatusID: 100, Edit: true, SuppressedMentionIDs: []int64{7}})
	d := &fakeDistributor{}

	_, err := NewDistributionMessageProcessor(q, seededStore(), d).ReadAndProcessMessages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []dispatcher.Options{{IsEdit: true, SuppressedMentionIDs: []int64{7}}}, d.calls)
}

func TestRunModuleStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewDistributionMessageProcessor(queue.NewMemoryQueue(), seededStore(), &fakeDistributor{})
	done := make(chan error)
	go func() { done <- p.RunModule(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("module did not stop")
	}
}
