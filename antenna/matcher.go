package antenna

import (
	"strings"
	"time"

	"github.com/Luismorlan/feedcast/model"
	"github.com/Luismorlan/feedcast/utils"
)

// Subject holds the per-status values every match needs, computed once per
// dispatch.
type Subject struct {
	AuthorID int64
	Domain   string
	TagIDs   []int64
	Text     string
}

func NewSubject(status *model.Status, localDomain string) Subject {
	return Subject{
		AuthorID: status.AccountID,
		Domain:   status.Account.DomainOr(localDomain),
		TagIDs:   status.TagIDs(),
		Text:     status.SearchText(),
	}
}

// Match is the exact predicate for a topic antenna candidate. It never fails:
// a malformed antenna simply does not match.
func Match(a *model.Antenna, s Subject, now time.Time) bool {
	if a == nil || !a.Enabled(now) {
		return false
	}
	if !a.AnyKeywords {
		keywords := nonBlank(a.Keywords)
		// A keyword dimension that is not match-all but carries no usable
		// keyword would otherwise match everything.
		if len(keywords) == 0 || !containsAny(s.Text, keywords) {
			return false
		}
	}
	if containsAny(s.Text, nonBlank(a.ExcludeKeywords)) {
		return false
	}
	if utils.ContainsInt64(a.ExcludeAccounts, s.AuthorID) {
		return false
	}
	if utils.ContainsString(a.ExcludeDomains, s.Domain) {
		return false
	}
	if utils.IntersectsInt64(a.ExcludeTags, s.TagIDs) {
		return false
	}
	return true
}

// MatchBroad re-checks a broad candidate. Broad antennas carry no topic
// predicate, only enablement.
func MatchBroad(a *model.Antenna, now time.Time) bool {
	return a != nil && a.IsBroad() && a.Available && !a.Expired(now)
}

// Targets returns where a matched antenna delivers. With rule feeds enabled the
// antenna always receives into its own feed and only reaches home or list
// when InsertFeeds is set.
func Targets(a *model.Antenna, ruleFeeds bool) []model.DeliveryTarget {
	targets := []model.DeliveryTarget{}
	if ruleFeeds {
		targets = append(targets, model.RuleFeedOf(a.ID))
		if !a.InsertFeeds {
			return targets
		}
	}
	if a.ListID == 0 {
		return append(targets, model.PersonalFeedOf(a.AccountID))
	}
	return append(targets, model.NamedListFeedOf(a.ListID))
}

// Keyword matching is a case sensitive substring test.
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func nonBlank(keywords []string) []string {
	res := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if strings.TrimSpace(kw) != "" {
			res = append(res, kw)
		}
	}
	return res
}
