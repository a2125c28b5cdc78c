package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// Write-time limits for antennas.
const (
	MaxAntennasPerAccount = 30
	MaxAntennaAccounts    = 100
	MaxAntennaDomains     = 20
	MaxAntennaTags        = 50
	MaxAntennaKeywords    = 100
	MaxAntennaKeywordLen  = 200
)

var (
	ErrAntennaLimitReached = errors.New("antenna limit reached for account")
	ErrAntennaEmptyScope   = errors.New("antenna dimension is not match-all but has an empty list")
	ErrAntennaBroadAndList = errors.New("antenna cannot be both stl and ltl")
)

/*

Antenna is a stored, user-owned subscription rule that pulls matching statuses
into a feed independently of the follow graph.

AccountID: owner
ListID: 0 delivers into the owner's home feed, otherwise into the named list
Available / ExpiresAt: enablement, a nil ExpiresAt never expires
STL / LTL: broad-subscription scopes, capture the whole local stream or the local timeline
Keywords, Domains, Accounts, Tags: topic dimensions, each ignored when its Any* flag is set
Exclude*: exclusion lists, an empty list excludes nothing
WithMediaOnly / IgnoreReblog: candidate filters
InsertFeeds: deliver into home or list in addition to the antenna's own feed

*/
type Antenna struct {
	ID              int64 `gorm:"primaryKey"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	AccountID       int64 `gorm:"index"`
	ListID          int64 `gorm:"not null;default:0"`
	Title           string
	Available       bool `gorm:"not null;default:true"`
	ExpiresAt       *time.Time
	STL             bool           `gorm:"column:stl;not null;default:false"`
	LTL             bool           `gorm:"column:ltl;not null;default:false"`
	Keywords        pq.StringArray `gorm:"type:text[]"`
	AnyKeywords     bool           `gorm:"not null;default:true"`
	Domains         pq.StringArray `gorm:"type:text[]"`
	AnyDomains      bool           `gorm:"not null;default:true"`
	Accounts        pq.Int64Array  `gorm:"type:bigint[]"`
	AnyAccounts     bool           `gorm:"not null;default:true"`
	Tags            pq.Int64Array  `gorm:"type:bigint[]"`
	AnyTags         bool           `gorm:"not null;default:true"`
	ExcludeKeywords pq.StringArray `gorm:"type:text[]"`
	ExcludeDomains  pq.StringArray `gorm:"type:text[]"`
	ExcludeAccounts pq.Int64Array  `gorm:"type:bigint[]"`
	ExcludeTags     pq.Int64Array  `gorm:"type:bigint[]"`
	WithMediaOnly   bool           `gorm:"not null;default:false"`
	IgnoreReblog    bool           `gorm:"not null;default:false"`
	InsertFeeds     bool           `gorm:"not null;default:false"`
}

// IsBroad is true for stl / ltl antennas.
func (a *Antenna) IsBroad() bool {
	return a.STL || a.LTL
}

func (a *Antenna) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && !a.ExpiresAt.After(now)
}

// HasTopicPredicate is false when every topic dimension is match-all. Such a
// topic antenna would capture everything and is inert.
func (a *Antenna) HasTopicPredicate() bool {
	return !(a.AnyKeywords && a.AnyDomains && a.AnyAccounts && a.AnyTags)
}

// Enabled reports whether the antenna may receive statuses at now.
func (a *Antenna) Enabled(now time.Time) bool {
	if !a.Available || a.Expired(now) {
		return false
	}
	return a.IsBroad() || a.HasTopicPredicate()
}

// Validate enforces per-antenna limits. It runs on the write path only.
func (a *Antenna) Validate() error {
	if a.STL && a.LTL {
		return ErrAntennaBroadAndList
	}
	if len(a.Accounts) > MaxAntennaAccounts || len(a.ExcludeAccounts) > MaxAntennaAccounts {
		return errors.Errorf("antenna accounts exceed limit of %d", MaxAntennaAccounts)
	}
	if len(a.Domains) > MaxAntennaDomains || len(a.ExcludeDomains) > MaxAntennaDomains {
		return errors.Errorf("antenna domains exceed limit of %d", MaxAntennaDomains)
	}
	if len(a.Tags) > MaxAntennaTags || len(a.ExcludeTags) > MaxAntennaTags {
		return errors.Errorf("antenna tags exceed limit of %d", MaxAntennaTags)
	}
	if len(a.Keywords) > MaxAntennaKeywords || len(a.ExcludeKeywords) > MaxAntennaKeywords {
		return errors.Errorf("antenna keywords exceed limit of %d", MaxAntennaKeywords)
	}
	for _, kw := range append(append([]string{}, a.Keywords...), a.ExcludeKeywords...) {
		if len(kw) > MaxAntennaKeywordLen {
			return errors.Errorf("antenna keyword longer than %d bytes", MaxAntennaKeywordLen)
		}
	}
	if a.IsBroad() {
		return nil
	}
	if (!a.AnyKeywords && len(a.Keywords) == 0) ||
		(!a.AnyDomains && len(a.Domains) == 0) ||
		(!a.AnyAccounts && len(a.Accounts) == 0) ||
		(!a.AnyTags && len(a.Tags) == 0) {
		return ErrAntennaEmptyScope
	}
	return nil
}
