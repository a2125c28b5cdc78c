package model

import (
	"strings"
	"time"
)

/*

Status is a post subject to distribution.

ID: time-derived and monotonically increasing, a higher id means a later status
AccountID / Account: author, "belongs-to" relation
Visibility: nil only while the status is not yet durably committed
Searchability: nil means derived from visibility
ReblogOfID: set when the status is a pure reshare of another status
InReplyToID / InReplyToAccountID: set for replies
WithMedia: true when media is attached
Tags: hashtags, "many-to-many" relation through status_tags
Mentions: mentioned accounts, "has-many" relation

*/
type Status struct {
	ID                 int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	EditedAt           *time.Time
	AccountID          int64   `gorm:"index"`
	Account            Account `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Visibility         *Visibility
	Searchability      *Searchability
	ReblogOfID         *int64 `gorm:"index"`
	InReplyToID        *int64
	InReplyToAccountID *int64
	Text               string
	SpoilerText        string
	WithMedia          bool
	Tags               []Tag     `gorm:"many2many:status_tags;"`
	Mentions           []Mention `gorm:"constraint:OnDelete:CASCADE;"`
}

// Mention of AccountID in StatusID. Silent mentions never notify.
type Mention struct {
	ID        int64 `gorm:"primaryKey"`
	StatusID  int64 `gorm:"index"`
	AccountID int64 `gorm:"index"`
	Silent    bool
}

func (s *Status) IsReblog() bool {
	return s.ReblogOfID != nil
}

func (s *Status) IsReply() bool {
	return s.InReplyToID != nil
}

// IsSelfReply is true for a reply to one of the author's own statuses.
func (s *Status) IsSelfReply() bool {
	return s.IsReply() && s.InReplyToAccountID != nil && *s.InReplyToAccountID == s.AccountID
}

// EffectiveSearchability falls back to the widest searchability the
// visibility allows when none was stored.
func (s *Status) EffectiveSearchability() Searchability {
	if s.Searchability != nil {
		return *s.Searchability
	}
	if s.Visibility == nil {
		return SearchabilityDirect
	}
	switch *s.Visibility {
	case VisibilityPublic, VisibilityUnlisted, VisibilityLogin:
		return SearchabilityPublic
	case VisibilityPublicUnlisted:
		return SearchabilityPublicUnlisted
	case VisibilityPrivate:
		return SearchabilityPrivate
	case VisibilityLimited:
		return SearchabilityLimited
	case VisibilityDirect:
		return SearchabilityDirect
	}
	return SearchabilityDirect
}

func (s *Status) TagIDs() []int64 {
	ids := make([]int64, 0, len(s.Tags))
	for _, t := range s.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

func (s *Status) TagNames() []string {
	names := make([]string, 0, len(s.Tags))
	for _, t := range s.Tags {
		names = append(names, t.Name)
	}
	return names
}

// MentionedAccountIDs returns every mentioned account id, including silent
// mentions.
func (s *Status) MentionedAccountIDs() []int64 {
	ids := make([]int64, 0, len(s.Mentions))
	for _, m := range s.Mentions {
		ids = append(ids, m.AccountID)
	}
	return ids
}

// ActiveMentionAccountIDs skips silent mentions.
func (s *Status) ActiveMentionAccountIDs() []int64 {
	ids := make([]int64, 0, len(s.Mentions))
	for _, m := range s.Mentions {
		if !m.Silent {
			ids = append(ids, m.AccountID)
		}
	}
	return ids
}

// SearchText is the text antenna keywords are matched against.
func (s *Status) SearchText() string {
	if s.SpoilerText == "" {
		return s.Text
	}
	return strings.Join([]string{s.SpoilerText, s.Text}, "\n")
}
