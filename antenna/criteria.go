// Package antenna decides which subscription rules ("antennas") want a status.
//
// Selection happens in two stages. Criteria and BroadCriteria describe cheap
// set-membership filters that a rule store turns into relational queries, so
// only plausible candidates are read. Match then evaluates the exact predicate
// on each candidate.
package antenna

import (
	"time"

	"github.com/Luismorlan/feedcast/model"
	"github.com/Luismorlan/feedcast/utils"
)

// Criteria narrows enabled topic antennas for one status.
type Criteria struct {
	// Author domain, the local domain for local authors.
	Domain    string
	WithMedia bool
	IsReblog  bool
	AuthorID  int64
	TagIDs    []int64
	// Owners must have been active after this instant.
	ActiveSince time.Time
	Now         time.Time
}

func NewCriteria(status *model.Status, localDomain string, now time.Time, activeWindow time.Duration) Criteria {
	return Criteria{
		Domain:      status.Account.DomainOr(localDomain),
		WithMedia:   status.WithMedia,
		IsReblog:    status.IsReblog(),
		AuthorID:    status.AccountID,
		TagIDs:      status.TagIDs(),
		ActiveSince: now.Add(-activeWindow),
		Now:         now,
	}
}

// Admits applies every candidate filter to a single antenna. Rule stores that
// cannot push the filters down to a query use this directly.
func (c Criteria) Admits(a *model.Antenna, owner *model.Account) bool {
	if a.IsBroad() || !a.Enabled(c.Now) {
		return false
	}
	if !a.AnyDomains && !utils.ContainsString(a.Domains, c.Domain) {
		return false
	}
	if !c.WithMedia && a.WithMediaOnly {
		return false
	}
	// Only non-reblogs are filtered against IgnoreReblog.
	// TODO: confirm with product whether IgnoreReblog should drop reblogs instead.
	if !c.IsReblog && a.IgnoreReblog {
		return false
	}
	if !a.AnyAccounts && !utils.ContainsInt64(a.Accounts, c.AuthorID) {
		return false
	}
	if !a.AnyTags && !utils.IntersectsInt64(a.Tags, c.TagIDs) {
		return false
	}
	return ownerIsLive(owner, c.ActiveSince)
}

// BroadCriteria narrows stl / ltl antennas for one status.
type BroadCriteria struct {
	AuthorID int64
	// ForeignContext restricts delivery to list-targeted antennas whose owner
	// follows, or is, the author.
	ForeignContext bool
	STL            bool
	LTL            bool
	ActiveSince    time.Time
	Now            time.Time
}

// IsForeignContext is true for a remote author, a reblog, or a visibility
// narrower than the public timelines.
func IsForeignContext(status *model.Status) bool {
	if !status.Account.IsLocal() || status.IsReblog() {
		return true
	}
	return status.Visibility == nil || !status.Visibility.IsPublicTimelineVisible()
}

func NewBroadCriteria(status *model.Status, stl bool, ltl bool, now time.Time, activeWindow time.Duration) BroadCriteria {
	return BroadCriteria{
		AuthorID:       status.AccountID,
		ForeignContext: IsForeignContext(status),
		STL:            stl,
		LTL:            ltl,
		ActiveSince:    now.Add(-activeWindow),
		Now:            now,
	}
}

// Scopes is false when neither broad scope is enabled.
func (c BroadCriteria) Scopes() bool {
	return c.STL || c.LTL
}

// Admits applies the broad candidate filters. ownerFollowsAuthor is only
// consulted in a foreign context.
func (c BroadCriteria) Admits(a *model.Antenna, owner *model.Account, ownerFollowsAuthor bool) bool {
	if !(c.STL && a.STL) && !(c.LTL && a.LTL) {
		return false
	}
	if !a.Available || a.Expired(c.Now) {
		return false
	}
	if !ownerIsLive(owner, c.ActiveSince) {
		return false
	}
	if c.ForeignContext {
		if a.ListID == 0 {
			return false
		}
		if a.AccountID != c.AuthorID && !ownerFollowsAuthor {
			return false
		}
	}
	return true
}

func ownerIsLive(owner *model.Account, activeSince time.Time) bool {
	return owner != nil && !owner.IsSuspended() && owner.ActiveSince(activeSince)
}
