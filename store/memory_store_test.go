package store

import (
	"context"
	"testing"
	"time"

	"github.com/Luismorlan/feedcast/antenna"
	"github.com/Luismorlan/feedcast/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

const activeWindow = 14 * 24 * time.Hour

func activeAccount(id int64) model.Account {
	last := testNow.Add(-time.Hour)
	return model.Account{ID: id, LastActiveAt: &last}
}

func remoteAccount(id int64, domain string) model.Account {
	return model.Account{ID: id, Domain: &domain}
}

func collectIDs(t *testing.T, c *Cursor[int64]) []int64 {
	ids := []int64{}
	require.NoError(t, c.Each(context.Background(), func(page []int64) error {
		ids = append(ids, page...)
		return nil
	}))
	return ids
}

func collectAntennaIDs(t *testing.T, c *Cursor[model.Antenna]) []int64 {
	ids := []int64{}
	require.NoError(t, c.Each(context.Background(), func(page []model.Antenna) error {
		for _, a := range page {
			ids = append(ids, a.ID)
		}
		return nil
	}))
	return ids
}

func TestMemoryStoreLocalFollowers(t *testing.T) {
	s := NewMemoryStore()
	s.PutAccount(activeAccount(1))
	s.PutAccount(activeAccount(2))
	s.PutAccount(activeAccount(3))
	stale := testNow.Add(-30 * 24 * time.Hour)
	s.PutAccount(model.Account{ID: 4, LastActiveAt: &stale})
	s.PutAccount(remoteAccount(5, "remote.example"))
	suspended := activeAccount(6)
	suspended.SuspendedAt = &testNow
	s.PutAccount(suspended)
	for _, id := range []int64{2, 3, 4, 5, 6} {
		s.PutFollow(id, 1)
	}

	got := collectIDs(t, s.LocalFollowers(1, testNow.Add(-activeWindow), 1))
	assert.Equal(t, []int64{2, 3}, got)

	among, err := s.LocalFollowersAmong(context.Background(), 1, []int64{3, 4, 5, 9}, testNow.Add(-activeWindow))
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, among)
}

func TestMemoryStoreLists(t *testing.T) {
	s := NewMemoryStore()
	s.PutAccount(activeAccount(1))
	s.PutAccount(activeAccount(2))
	s.PutAccount(activeAccount(3))
	s.PutList(model.List{ID: 10, AccountID: 2}, 1)
	s.PutList(model.List{ID: 11, AccountID: 3}, 1)
	s.PutList(model.List{ID: 12, AccountID: 3}, 2)

	activeSince := testNow.Add(-activeWindow)
	assert.Equal(t, []int64{10, 11}, collectIDs(t, s.ListsForLocalDistribution(1, activeSince, 10)))
	assert.Equal(t, []int64{11}, collectIDs(t, s.ListsOwnedByAmong(1, []int64{3}, activeSince, 10)))
	assert.Empty(t, collectIDs(t, s.ListsOwnedByAmong(1, nil, activeSince, 10)))

	owner, err := s.ListOwner(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, int64(3), owner)
	_, err = s.ListOwner(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreTopicCandidates(t *testing.T) {
	s := NewMemoryStore()
	s.PutAccount(activeAccount(1))
	s.PutAccount(activeAccount(2))
	s.PutAntenna(model.Antenna{ID: 1, AccountID: 2, Available: true, AnyDomains: true, AnyAccounts: true, AnyTags: true, Keywords: []string{"go"}})
	s.PutAntenna(model.Antenna{ID: 2, AccountID: 2, Available: false, AnyDomains: true, AnyAccounts: true, AnyTags: true, Keywords: []string{"go"}})
	s.PutAntenna(model.Antenna{ID: 3, AccountID: 2, Available: true, AnyDomains: true, AnyAccounts: true, AnyTags: true, STL: true})
	s.PutAntenna(model.Antenna{ID: 4, AccountID: 2, Available: true, AnyDomains: true, AnyAccounts: true, AnyTags: true, AnyKeywords: true})

	public := model.VisibilityPublic
	status := &model.Status{ID: 50, AccountID: 1, Account: activeAccount(1), Visibility: &public}
	c := antenna.NewCriteria(status, "local.example", testNow, activeWindow)
	assert.Equal(t, []int64{1}, collectAntennaIDs(t, s.TopicCandidates(c, 10)))

	b := antenna.NewBroadCriteria(status, true, false, testNow, activeWindow)
	assert.Equal(t, []int64{3}, collectAntennaIDs(t, s.BroadCandidates(b, 10)))
}

func TestMemoryStoreCreateAntennaLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i := 0; i < model.MaxAntennasPerAccount; i++ {
		require.NoError(t, s.CreateAntenna(ctx, &model.Antenna{AccountID: 1, AnyKeywords: true, AnyAccounts: true, AnyTags: true, Domains: []string{"a.example"}}))
	}
	err := s.CreateAntenna(ctx, &model.Antenna{AccountID: 1, AnyKeywords: true, AnyAccounts: true, AnyTags: true, Domains: []string{"a.example"}})
	assert.ErrorIs(t, err, model.ErrAntennaLimitReached)

	owner, err := s.AntennaOwner(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), owner)
}

func TestMemoryStoreRelationshipsAndBlocks(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.PutFollow(2, 1)
	s.PutFollow(1, 3)
	s.PutFollow(1, 2)
	s.PutBlock(4, 1)

	rels, err := s.Relationships(ctx, 1, []int64{2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, map[int64]antenna.Relationship{
		2: {OwnerFollowsAuthor: true, AuthorFollowsOwner: true},
		3: {AuthorFollowsOwner: true},
	}, rels)

	blocked, err := s.Blocking(ctx, 4, 1)
	require.NoError(t, err)
	assert.True(t, blocked)
	blocked, err = s.Blocking(ctx, 1, 4)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestMemoryStoreStatusesAndConversations(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.PutAccount(activeAccount(1))
	s.PutAccount(activeAccount(2))
	s.PutStatus(model.Status{ID: 7, AccountID: 1, Text: "hello"})
	orig := int64(7)
	s.PutStatus(model.Status{ID: 8, AccountID: 2, ReblogOfID: &orig})

	status, err := s.FindStatus(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.Account.ID)
	_, err = s.FindStatus(ctx, 70)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []int64{2}, collectIDs(t, s.LocalRebloggers(7, 10)))

	require.NoError(t, s.AddStatus(ctx, 7, []int64{1, 2}))
	require.NoError(t, s.AddStatus(ctx, 7, []int64{1}))
	assert.Equal(t, []int64{7}, s.ConversationStatuses(1))
	assert.Equal(t, []int64{7}, s.ConversationStatuses(2))
}
