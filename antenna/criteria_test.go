package antenna

import (
	"testing"
	"time"

	"github.com/Luismorlan/feedcast/model"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

const activeWindow = 14 * 24 * time.Hour

func TestCriteriaDomainWildcardVsList(t *testing.T) {
	owner := activeOwner(2)
	wildcard := keywordAntenna(2, "x")
	listed := keywordAntenna(2, "x")
	listed.AnyDomains = false
	listed.Domains = pq.StringArray{"example.com"}

	local := localStatus("x")
	remote := localStatus("x")
	remote.Account = model.Account{ID: 1, Domain: strPtr("example.com")}
	other := localStatus("x")
	other.Account = model.Account{ID: 1, Domain: strPtr("sub.example.com")}

	for _, s := range []*model.Status{local, remote, other} {
		assert.True(t, NewCriteria(s, localDomain, now, activeWindow).Admits(wildcard, owner))
	}
	assert.False(t, NewCriteria(local, localDomain, now, activeWindow).Admits(listed, owner))
	assert.True(t, NewCriteria(remote, localDomain, now, activeWindow).Admits(listed, owner))
	assert.False(t, NewCriteria(other, localDomain, now, activeWindow).Admits(listed, owner))
}

func TestCriteriaMediaAndReblogFilters(t *testing.T) {
	owner := activeOwner(2)
	mediaOnly := keywordAntenna(2, "x")
	mediaOnly.WithMediaOnly = true

	plain := localStatus("x")
	withMedia := localStatus("x")
	withMedia.WithMedia = true
	assert.False(t, NewCriteria(plain, localDomain, now, activeWindow).Admits(mediaOnly, owner))
	assert.True(t, NewCriteria(withMedia, localDomain, now, activeWindow).Admits(mediaOnly, owner))

	ignoreReblog := keywordAntenna(2, "x")
	ignoreReblog.IgnoreReblog = true
	reblog := localStatus("x")
	reblog.ReblogOfID = int64Ptr(50)
	// non-reblogs are the ones filtered out
	assert.False(t, NewCriteria(plain, localDomain, now, activeWindow).Admits(ignoreReblog, owner))
	assert.True(t, NewCriteria(reblog, localDomain, now, activeWindow).Admits(ignoreReblog, owner))
}

func TestCriteriaAccountsAndTags(t *testing.T) {
	owner := activeOwner(2)
	s := localStatus("x")
	s.Tags = []model.Tag{{ID: 3, Name: "hoge"}}
	c := NewCriteria(s, localDomain, now, activeWindow)

	byAccount := keywordAntenna(2, "x")
	byAccount.AnyAccounts = false
	byAccount.Accounts = pq.Int64Array{1}
	assert.True(t, c.Admits(byAccount, owner))
	byAccount.Accounts = pq.Int64Array{8}
	assert.False(t, c.Admits(byAccount, owner))

	byTag := keywordAntenna(2, "x")
	byTag.AnyTags = false
	byTag.Tags = pq.Int64Array{3, 4}
	assert.True(t, c.Admits(byTag, owner))
	byTag.Tags = pq.Int64Array{4}
	assert.False(t, c.Admits(byTag, owner))
}

func TestCriteriaOwnerLiveness(t *testing.T) {
	a := keywordAntenna(2, "x")
	c := NewCriteria(localStatus("x"), localDomain, now, activeWindow)

	assert.True(t, c.Admits(a, activeOwner(2)))
	assert.False(t, c.Admits(a, nil))

	suspended := activeOwner(2)
	suspended.SuspendedAt = &now
	assert.False(t, c.Admits(a, suspended))

	stale := now.Add(-30 * 24 * time.Hour)
	assert.False(t, c.Admits(a, &model.Account{ID: 2, LastActiveAt: &stale}))
}

func TestCriteriaSkipsBroadAntennas(t *testing.T) {
	a := keywordAntenna(2, "x")
	a.STL = true
	assert.False(t, NewCriteria(localStatus("x"), localDomain, now, activeWindow).Admits(a, activeOwner(2)))
}

func TestIsForeignContext(t *testing.T) {
	assert.False(t, IsForeignContext(localStatus("x")))

	remote := localStatus("x")
	remote.Account.Domain = strPtr("remote.example")
	assert.True(t, IsForeignContext(remote))

	reblog := localStatus("x")
	reblog.ReblogOfID = int64Ptr(3)
	assert.True(t, IsForeignContext(reblog))

	for _, v := range model.Visibilities {
		s := localStatus("x")
		s.Visibility = visPtr(v)
		expected := !(v == model.VisibilityPublic || v == model.VisibilityPublicUnlisted || v == model.VisibilityLogin)
		assert.Equal(t, expected, IsForeignContext(s), v.String())
	}
}

func TestBroadCriteriaForeignContextRestriction(t *testing.T) {
	owner := activeOwner(2)
	homeSTL := &model.Antenna{ID: 1, AccountID: 2, Available: true, STL: true}
	listSTL := &model.Antenna{ID: 2, AccountID: 2, Available: true, STL: true, ListID: 7}

	remote := localStatus("x")
	remote.AccountID = 9
	remote.Account = model.Account{ID: 9, Domain: strPtr("remote.example")}
	c := NewBroadCriteria(remote, true, true, now, activeWindow)
	assert.True(t, c.ForeignContext)

	assert.False(t, c.Admits(homeSTL, owner, false))
	assert.False(t, c.Admits(homeSTL, owner, true))
	assert.False(t, c.Admits(listSTL, owner, false))
	assert.True(t, c.Admits(listSTL, owner, true))

	local := NewBroadCriteria(localStatus("x"), true, true, now, activeWindow)
	assert.False(t, local.ForeignContext)
	assert.True(t, local.Admits(homeSTL, owner, false))
	assert.True(t, local.Admits(listSTL, owner, false))
}

func TestBroadCriteriaAuthorOwnsAntenna(t *testing.T) {
	reblog := localStatus("x")
	reblog.AccountID = 2
	reblog.Account = model.Account{ID: 2}
	reblog.ReblogOfID = int64Ptr(3)
	c := NewBroadCriteria(reblog, true, true, now, activeWindow)

	own := &model.Antenna{AccountID: 2, Available: true, LTL: true, ListID: 4}
	assert.True(t, c.Admits(own, activeOwner(2), false))
}

func TestBroadCriteriaScopesAndLiveness(t *testing.T) {
	ltl := &model.Antenna{AccountID: 2, Available: true, LTL: true}
	onlySTL := NewBroadCriteria(localStatus("x"), true, false, now, activeWindow)
	assert.False(t, onlySTL.Admits(ltl, activeOwner(2), false))
	assert.False(t, NewBroadCriteria(localStatus("x"), false, false, now, activeWindow).Scopes())

	both := NewBroadCriteria(localStatus("x"), true, true, now, activeWindow)
	assert.True(t, both.Admits(ltl, activeOwner(2), false))
	assert.False(t, both.Admits(ltl, nil, false))

	ltl.Available = false
	assert.False(t, both.Admits(ltl, activeOwner(2), false))
}
