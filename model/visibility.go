package model

import (
	"github.com/pkg/errors"
)

// Visibility controls who may see a status. Values are persisted as small
// integers and must stay stable.
type Visibility int16

const (
	VisibilityPublic         Visibility = 0
	VisibilityUnlisted       Visibility = 1
	VisibilityPrivate        Visibility = 2
	VisibilityDirect         Visibility = 3
	VisibilityLimited        Visibility = 4
	VisibilityPublicUnlisted Visibility = 10
	VisibilityLogin          Visibility = 11
)

// Visibilities lists every visibility value.
var Visibilities = []Visibility{
	VisibilityPublic,
	VisibilityUnlisted,
	VisibilityPrivate,
	VisibilityDirect,
	VisibilityLimited,
	VisibilityPublicUnlisted,
	VisibilityLogin,
}

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityUnlisted:
		return "unlisted"
	case VisibilityPrivate:
		return "private"
	case VisibilityDirect:
		return "direct"
	case VisibilityLimited:
		return "limited"
	case VisibilityPublicUnlisted:
		return "public_unlisted"
	case VisibilityLogin:
		return "login"
	}
	return "unknown"
}

func (v Visibility) Valid() bool {
	return v.String() != "unknown"
}

// IsPublicTimelineVisible reports whether a status with this visibility may
// appear on server-wide timelines (public, public_unlisted and login).
func (v Visibility) IsPublicTimelineVisible() bool {
	switch v {
	case VisibilityPublic, VisibilityPublicUnlisted, VisibilityLogin:
		return true
	}
	return false
}

func ParseVisibility(s string) (Visibility, error) {
	for _, v := range Visibilities {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, errors.Errorf("unknown visibility %q", s)
}

// Searchability controls who may find a status through search.
type Searchability int16

const (
	SearchabilityPublic         Searchability = 0
	SearchabilityPrivate        Searchability = 1
	SearchabilityDirect         Searchability = 2
	SearchabilityLimited        Searchability = 3
	SearchabilityPublicUnlisted Searchability = 10
)

var Searchabilities = []Searchability{
	SearchabilityPublic,
	SearchabilityPrivate,
	SearchabilityDirect,
	SearchabilityLimited,
	SearchabilityPublicUnlisted,
}

func (s Searchability) String() string {
	switch s {
	case SearchabilityPublic:
		return "public"
	case SearchabilityPrivate:
		return "private"
	case SearchabilityDirect:
		return "direct"
	case SearchabilityLimited:
		return "limited"
	case SearchabilityPublicUnlisted:
		return "public_unlisted"
	}
	return "unknown"
}

func (s Searchability) Valid() bool {
	return s.String() != "unknown"
}

func ParseSearchability(str string) (Searchability, error) {
	for _, s := range Searchabilities {
		if s.String() == str {
			return s, nil
		}
	}
	return 0, errors.Errorf("unknown searchability %q", str)
}

// SubscriptionPolicy governs whether antennas owned by other accounts may
// capture an account's statuses.
type SubscriptionPolicy int16

const (
	SubscriptionPolicyAllow         SubscriptionPolicy = 0
	SubscriptionPolicyFollowersOnly SubscriptionPolicy = 1
	SubscriptionPolicyFollowingOnly SubscriptionPolicy = 2
	SubscriptionPolicyMutualsOnly   SubscriptionPolicy = 3
	SubscriptionPolicyOutsideOnly   SubscriptionPolicy = 4
	SubscriptionPolicyBlock         SubscriptionPolicy = 5
)

func (p SubscriptionPolicy) String() string {
	switch p {
	case SubscriptionPolicyAllow:
		return "allow"
	case SubscriptionPolicyFollowersOnly:
		return "followers_only"
	case SubscriptionPolicyFollowingOnly:
		return "following_only"
	case SubscriptionPolicyMutualsOnly:
		return "mutuals_only"
	case SubscriptionPolicyOutsideOnly:
		return "outside_only"
	case SubscriptionPolicyBlock:
		return "block"
	}
	return "unknown"
}
