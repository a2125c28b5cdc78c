package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Luismorlan/feedcast/broadcast"
	"github.com/Luismorlan/feedcast/model"
	"github.com/Luismorlan/feedcast/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	author            = int64(1)
	follower          = int64(2)
	mentionedFollower = int64(3)
	remoteFollower    = int64(4)
	mentionedStranger = int64(5)
	tagFollower       = int64(6)

	followerList  = int64(10)
	mentionedList = int64(11)
	hogeTag       = int64(1)
)

// seedGraph builds an author with two local followers (one of them mentioned
// in tests that use mentions), a remote follower, a mentioned non-follower,
// one list per local follower and a hashtag follower.
func seedGraph(f *fixture) model.Account {
	a := activeLocal(author)
	f.store.PutAccount(a)
	for _, id := range []int64{follower, mentionedFollower, mentionedStranger, tagFollower} {
		f.store.PutAccount(activeLocal(id))
	}
	f.store.PutAccount(remote(remoteFollower, "remote.example"))
	for _, id := range []int64{follower, mentionedFollower, remoteFollower} {
		f.store.PutFollow(id, author)
	}
	f.store.PutList(model.List{ID: followerList, AccountID: follower}, author)
	f.store.PutList(model.List{ID: mentionedList, AccountID: mentionedFollower}, author)
	f.store.PutTagFollow(tagFollower, hogeTag)
	return a
}

func TestVisibilityBranchCompleteness(t *testing.T) {
	followerBranch := targets(homes(follower, mentionedFollower, tagFollower), lists(followerList, mentionedList))

	tests := []struct {
		visibility   model.Visibility
		withMentions bool
		want         []model.DeliveryTarget
		conversation []int64
	}{
		{model.VisibilityPublic, false, followerBranch, nil},
		{model.VisibilityPublic, true, followerBranch, nil},
		{model.VisibilityUnlisted, false, followerBranch, nil},
		{model.VisibilityUnlisted, true, followerBranch, nil},
		{model.VisibilityPublicUnlisted, false, followerBranch, nil},
		{model.VisibilityPublicUnlisted, true, followerBranch, nil},
		{model.VisibilityLogin, false, followerBranch, nil},
		{model.VisibilityLogin, true, followerBranch, nil},
		{model.VisibilityPrivate, false, followerBranch, nil},
		{model.VisibilityPrivate, true, followerBranch, nil},
		{model.VisibilityLimited, false, targets(), nil},
		{model.VisibilityLimited, true, targets(homes(mentionedFollower), lists(mentionedList)), nil},
		{model.VisibilityDirect, false, targets(), []int64{author}},
		{model.VisibilityDirect, true, targets(homes(mentionedFollower)), []int64{author, mentionedFollower, mentionedStranger}},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%s/mentions=%t", tc.visibility, tc.withMentions), func(t *testing.T) {
			f := newFixture()
			a := seedGraph(f)
			status := newStatus(100, a, tc.visibility, "Hello #hoge")
			status.Tags = []model.Tag{{ID: hogeTag, Name: "hoge"}}
			if tc.withMentions {
				status.Mentions = mention(mentionedFollower, mentionedStranger)
			}

			res := f.dispatch(t, status, Options{})

			assert.Equal(t, tc.want, enqueuedTargets(f.queue))
			assert.True(t, res.SelfDelivered)
			assert.Equal(t, homes(author), f.feeds.Targets(100))

			for _, id := range []int64{author, follower, mentionedFollower, mentionedStranger} {
				want := []int64{}
				if tc.conversation != nil && containsID(tc.conversation, id) {
					want = []int64{100}
				}
				assert.Equal(t, want, f.store.ConversationStatuses(id), "conversation of %d", id)
			}

			if tc.withMentions {
				assert.Equal(t, []notify.Notification{
					{Type: notify.TypeMention, AccountID: mentionedFollower, StatusID: 100},
					{Type: notify.TypeMention, AccountID: mentionedStranger, StatusID: 100},
				}, f.notifier.Sent())
			} else {
				assert.Empty(t, f.notifier.Sent())
			}
		})
	}
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestFollowersArePaged(t *testing.T) {
	f := newFixture()
	a := seedGraph(f)
	for id := int64(20); id < 25; id++ {
		f.store.PutAccount(activeLocal(id))
		f.store.PutFollow(id, author)
	}

	f.dispatch(t, newStatus(100, a, model.VisibilityPrivate, "hi"), Options{})

	// 7 followers in pages of 2, then 2 lists in one page.
	sizes := []int{}
	for _, call := range f.queue.Calls() {
		sizes = append(sizes, len(call))
	}
	assert.Equal(t, []int{2, 2, 2, 1, 2}, sizes)
}

func TestRemoteAuthorIsNotSelfDelivered(t *testing.T) {
	f := newFixture()
	seedGraph(f)
	far := remote(50, "remote.example")
	f.store.PutAccount(far)
	f.store.PutFollow(follower, far.ID)

	res := f.dispatch(t, newStatus(100, far, model.VisibilityPublic, "hi"), Options{})
	assert.False(t, res.SelfDelivered)
	assert.Empty(t, f.feeds.Targets(100))
	assert.Equal(t, homes(follower), enqueuedTargets(f.queue))
}

func TestStatusNotReady(t *testing.T) {
	f := newFixture()
	a := seedGraph(f)
	status := newStatus(100, a, model.VisibilityPublic, "hi")
	status.Visibility = nil

	_, err := f.dispatcher().Dispatch(context.Background(), status, Options{})
	assert.ErrorIs(t, err, ErrStatusNotReady)
	assert.True(t, IsRetryable(err))
	assert.Empty(t, f.queue.Calls())
	assert.Empty(t, f.feeds.Targets(100))
	assert.Equal(t, 0, f.cache.Puts())
}

func TestUnknownVisibilityIsNotRetryable(t *testing.T) {
	f := newFixture()
	a := seedGraph(f)

	_, err := f.dispatcher().Dispatch(context.Background(), newStatus(100, a, model.Visibility(99), "hi"), Options{})
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.False(t, IsRetryable(err))
}

func TestQueueFailurePropagates(t *testing.T) {
	f := newFixture()
	a := seedGraph(f)
	f.queue.Err = errors.New("sqs unavailable")

	_, err := f.dispatcher().Dispatch(context.Background(), newStatus(100, a, model.VisibilityPublic, "hi"), Options{})
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "deliver to followers")
}

func TestRendersOnce(t *testing.T) {
	f := newFixture()
	a := seedGraph(f)
	status := newStatus(100, a, model.VisibilityPublic, "Hello #hoge")
	status.Tags = []model.Tag{{ID: hogeTag, Name: "hoge"}}

	f.dispatch(t, status, Options{})
	assert.Equal(t, 1, f.cache.Puts())
	cached, err := f.cache.Get(context.Background(), 100)
	require.NoError(t, err)
	assert.Contains(t, string(cached), `"content":"Hello #hoge"`)
}

func TestPublicBroadcast(t *testing.T) {
	f := newFixture()
	a := seedGraph(f)
	status := newStatus(100, a, model.VisibilityPublic, "Hello #Hoge")
	status.Tags = []model.Tag{{ID: hogeTag, Name: "Hoge"}}
	status.WithMedia = true

	res := f.dispatch(t, status, Options{})
	want := []string{
		"timeline:hashtag:hoge",
		"timeline:hashtag:hoge:local",
		broadcast.ChannelPublic,
		broadcast.ChannelPublicLocal,
		broadcast.ChannelPublicMedia,
		broadcast.ChannelPublicLocalMedia,
	}
	assert.Equal(t, want, res.Channels)
	// the author's home channel gets the self-delivered status first
	assert.Equal(t, append([]string{"timeline:1"}, want...), f.transport.Channels())
}

func TestNoBroadcastForSilencedAuthorsOrReblogs(t *testing.T) {
	f := newFixture()
	a := seedGraph(f)
	silenced := a
	silenced.SilencedAt = &now
	res := f.dispatch(t, newStatus(100, silenced, model.VisibilityPublic, "hi"), Options{})
	assert.Empty(t, res.Channels)

	reblog := newStatus(101, a, model.VisibilityPublic, "")
	orig := int64(100)
	reblog.ReblogOfID = &orig
	res = f.dispatch(t, reblog, Options{})
	assert.Empty(t, res.Channels)
}

func TestUnlistedHashtagOnlyBroadcast(t *testing.T) {
	f := newFixture()
	a := seedGraph(f)
	status := newStatus(100, a, model.VisibilityUnlisted, "Hello #hoge")
	status.Tags = []model.Tag{{ID: hogeTag, Name: "hoge"}}

	res := f.dispatch(t, status, Options{})
	assert.Equal(t, []string{"timeline:hashtag:hoge", "timeline:hashtag:hoge:local"}, res.Channels)
}

func TestSuppressedAndSilentMentions(t *testing.T) {
	f := newFixture()
	a := seedGraph(f)
	status := newStatus(100, a, model.VisibilityPublic, "hi")
	status.Mentions = []model.Mention{
		{AccountID: mentionedFollower},
		{AccountID: mentionedStranger, Silent: true},
		{AccountID: follower},
		{AccountID: remoteFollower},
		{AccountID: author},
	}

	res := f.dispatch(t, status, Options{SuppressedMentionIDs: []int64{follower}})
	assert.Equal(t, []notify.Notification{
		{Type: notify.TypeMention, AccountID: mentionedFollower, StatusID: 100},
	}, f.notifier.Sent())
	assert.Equal(t, 1, res.Notified)
}

func TestEditNotifiesRebloggersAndMarksUpdates(t *testing.T) {
	f := newFixture()
	a := seedGraph(f)
	status := newStatus(100, a, model.VisibilityDirect, "hi")
	status.Mentions = mention(mentionedFollower)
	f.store.PutStatus(*status)
	orig := int64(100)
	f.store.PutStatus(model.Status{ID: 101, AccountID: follower, ReblogOfID: &orig})
	f.store.PutStatus(model.Status{ID: 102, AccountID: remoteFollower, ReblogOfID: &orig})

	f.dispatch(t, status, Options{IsEdit: true, SuppressedMentionIDs: []int64{mentionedFollower}})

	assert.Equal(t, []notify.Notification{
		{Type: notify.TypeUpdate, AccountID: follower, StatusID: 100},
	}, f.notifier.Sent())
	for _, item := range f.queue.Items() {
		assert.True(t, item.Update)
	}
	// edits of direct statuses leave conversations alone
	assert.Empty(t, f.store.ConversationStatuses(author))
}
