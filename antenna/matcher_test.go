package antenna

import (
	"testing"

	"github.com/Luismorlan/feedcast/model"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMatchKeywordIsSubstring(t *testing.T) {
	a := keywordAntenna(2, "cat")
	assert.True(t, Match(a, NewSubject(localStatus("concatenate"), localDomain), now))
	assert.False(t, Match(a, NewSubject(localStatus("dog"), localDomain), now))

	body := keywordAntenna(2, "body")
	assert.True(t, Match(body, NewSubject(localStatus("this is my body"), localDomain), now))
}

func TestMatchKeywordIsCaseSensitive(t *testing.T) {
	a := keywordAntenna(2, "Go")
	assert.True(t, Match(a, NewSubject(localStatus("Learning Go"), localDomain), now))
	assert.False(t, Match(a, NewSubject(localStatus("learning go"), localDomain), now))
}

func TestMatchSearchesSpoilerText(t *testing.T) {
	s := localStatus("nothing here")
	s.SpoilerText = "anime spoilers"
	assert.True(t, Match(keywordAntenna(2, "anime"), NewSubject(s, localDomain), now))
}

func TestMatchExclusionTakesPrecedence(t *testing.T) {
	a := keywordAntenna(2, "anime")
	a.ExcludeKeywords = pq.StringArray{"spoiler"}
	assert.True(t, Match(a, NewSubject(localStatus("new anime"), localDomain), now))
	assert.False(t, Match(a, NewSubject(localStatus("new anime spoiler"), localDomain), now))
}

func TestMatchExclusions(t *testing.T) {
	remote := localStatus("anime")
	remote.AccountID = 9
	remote.Account = model.Account{ID: 9, Domain: strPtr("remote.example")}
	remote.Tags = []model.Tag{{ID: 5, Name: "hoge"}}
	subject := NewSubject(remote, localDomain)

	a := keywordAntenna(2, "anime")
	assert.True(t, Match(a, subject, now))

	byAccount := keywordAntenna(2, "anime")
	byAccount.ExcludeAccounts = pq.Int64Array{9}
	assert.False(t, Match(byAccount, subject, now))

	byDomain := keywordAntenna(2, "anime")
	byDomain.ExcludeDomains = pq.StringArray{"remote.example"}
	assert.False(t, Match(byDomain, subject, now))

	byTag := keywordAntenna(2, "anime")
	byTag.ExcludeTags = pq.Int64Array{4, 5}
	assert.False(t, Match(byTag, subject, now))

	localExcluded := keywordAntenna(2, "anime")
	localExcluded.ExcludeDomains = pq.StringArray{localDomain}
	assert.False(t, Match(localExcluded, NewSubject(localStatus("anime"), localDomain), now))
}

func TestMatchRejectsDisabledAndMalformed(t *testing.T) {
	subject := NewSubject(localStatus("anything"), localDomain)

	unavailable := keywordAntenna(2, "any")
	unavailable.Available = false
	assert.False(t, Match(unavailable, subject, now))

	expired := keywordAntenna(2, "any")
	expired.ExpiresAt = &now
	assert.False(t, Match(expired, subject, now))

	blank := keywordAntenna(2, " ", "")
	assert.False(t, Match(blank, subject, now))

	inert := keywordAntenna(2)
	inert.AnyKeywords = true
	assert.False(t, Match(inert, subject, now))

	assert.False(t, Match(nil, subject, now))
}

func TestMatchAllKeywordsWithOtherDimension(t *testing.T) {
	a := &model.Antenna{
		Available:   true,
		AnyKeywords: true,
		AnyDomains:  false,
		Domains:     pq.StringArray{localDomain},
		AnyAccounts: true,
		AnyTags:     true,
	}
	assert.True(t, Match(a, NewSubject(localStatus("whatever"), localDomain), now))
}

func TestMatchBroad(t *testing.T) {
	stl := &model.Antenna{Available: true, STL: true}
	assert.True(t, MatchBroad(stl, now))
	stl.ExpiresAt = &now
	assert.False(t, MatchBroad(stl, now))
	assert.False(t, MatchBroad(keywordAntenna(2, "x"), now))
}

func TestTargets(t *testing.T) {
	home := &model.Antenna{ID: 1, AccountID: 2}
	list := &model.Antenna{ID: 3, AccountID: 2, ListID: 7}

	assert.Equal(t, []model.DeliveryTarget{model.PersonalFeedOf(2)}, Targets(home, false))
	assert.Equal(t, []model.DeliveryTarget{model.NamedListFeedOf(7)}, Targets(list, false))

	assert.Equal(t, []model.DeliveryTarget{model.RuleFeedOf(1)}, Targets(home, true))
	list.InsertFeeds = true
	assert.Equal(t, []model.DeliveryTarget{model.RuleFeedOf(3), model.NamedListFeedOf(7)}, Targets(list, true))
}
