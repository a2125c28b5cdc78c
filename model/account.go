package model

import (
	"time"

	"github.com/lib/pq"
)

/*

Account is a local or remote actor that authors statuses and owns feeds.

ID: primary key, assigned by the write path
Domain: nil for local accounts, the remote host otherwise
SuspendedAt / SilencedAt: moderation state, nil when not applied
LastActiveAt: last sign-in of a local account, nil for remote accounts
SubscriptionPolicy: whether other accounts' antennas may capture this account's statuses
ExcludedDomains / ExcludedAccountIDs: authors this account never wants in its own home feed

*/
type Account struct {
	ID                 int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt          time.Time
	Username           string
	Domain             *string `gorm:"index"`
	SuspendedAt        *time.Time
	SilencedAt         *time.Time
	LastActiveAt       *time.Time `gorm:"index"`
	SubscriptionPolicy SubscriptionPolicy `gorm:"not null;default:0"`
	ExcludedDomains    pq.StringArray     `gorm:"type:text[]"`
	ExcludedAccountIDs pq.Int64Array      `gorm:"type:bigint[]"`
}

func (a *Account) IsLocal() bool {
	return a.Domain == nil || *a.Domain == ""
}

// DomainOr returns the account's domain, or localDomain for local accounts.
func (a *Account) DomainOr(localDomain string) string {
	if a.IsLocal() {
		return localDomain
	}
	return *a.Domain
}

func (a *Account) IsSuspended() bool {
	return a.SuspendedAt != nil
}

func (a *Account) IsSilenced() bool {
	return a.SilencedAt != nil
}

// ActiveSince reports whether the account signed in after t.
func (a *Account) ActiveSince(t time.Time) bool {
	return a.LastActiveAt != nil && a.LastActiveAt.After(t)
}

// DisallowsSubscription is true when the account opted out of being captured
// by other accounts' topic antennas.
func (a *Account) DisallowsSubscription() bool {
	return a.SubscriptionPolicy == SubscriptionPolicyBlock
}

// Excludes reports whether the account excluded the given author or the
// author's domain from its own timeline.
func (a *Account) Excludes(authorID int64, authorDomain string) bool {
	for _, id := range a.ExcludedAccountIDs {
		if id == authorID {
			return true
		}
	}
	if authorDomain == "" {
		return false
	}
	for _, d := range a.ExcludedDomains {
		if d == authorDomain {
			return true
		}
	}
	return false
}
