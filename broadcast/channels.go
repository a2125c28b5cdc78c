// Package broadcast publishes live events on named channels. Delivery is
// best effort, subscribers resync from the feed store.
package broadcast

import (
	"fmt"
	"strings"

	"github.com/Luismorlan/feedcast/model"
)

const (
	ChannelPublic            = "timeline:public"
	ChannelPublicLocal       = "timeline:public:local"
	ChannelPublicRemote      = "timeline:public:remote"
	ChannelPublicMedia       = "timeline:public:media"
	ChannelPublicLocalMedia  = "timeline:public:local:media"
	ChannelPublicRemoteMedia = "timeline:public:remote:media"

	EventUpdate       = "update"
	EventStatusUpdate = "status.update"
)

// HomeChannel carries live events of an account's home feed.
func HomeChannel(accountID int64) string {
	return fmt.Sprintf("timeline:%d", accountID)
}

func ListChannel(listID int64) string {
	return fmt.Sprintf("timeline:list:%d", listID)
}

func AntennaChannel(antennaID int64) string {
	return fmt.Sprintf("timeline:antenna:%d", antennaID)
}

// FeedChannel maps a delivery target to its live channel.
func FeedChannel(t model.DeliveryTarget) string {
	switch t.Kind {
	case model.FeedKindList:
		return ListChannel(t.ID)
	case model.FeedKindAntenna:
		return AntennaChannel(t.ID)
	default:
		return HomeChannel(t.ID)
	}
}

func HashtagChannel(name string, local bool) string {
	ch := "timeline:hashtag:" + strings.ToLower(name)
	if local {
		ch += ":local"
	}
	return ch
}

// Scope is how widely a status is broadcast on public channels.
type Scope int

const (
	ScopeNone Scope = iota
	// ScopeHashtagOnly reaches hashtag channels but not public timelines.
	ScopeHashtagOnly
	// ScopeLocalOnly reaches only the local variants of each channel.
	ScopeLocalOnly
	ScopeFull
)

func (s Scope) String() string {
	switch s {
	case ScopeHashtagOnly:
		return "hashtag_only"
	case ScopeLocalOnly:
		return "local_only"
	case ScopeFull:
		return "full"
	default:
		return "none"
	}
}

// ScopeOf decides the broadcast scope. Reblogs and statuses of silenced
// authors are never broadcast.
func ScopeOf(status *model.Status) Scope {
	if status.Visibility == nil || status.IsReblog() || status.Account.IsSilenced() {
		return ScopeNone
	}
	switch *status.Visibility {
	case model.VisibilityPublic, model.VisibilityLogin:
		return ScopeFull
	case model.VisibilityPublicUnlisted:
		return ScopeLocalOnly
	case model.VisibilityUnlisted:
		if status.EffectiveSearchability() == model.SearchabilityPublic {
			return ScopeHashtagOnly
		}
	}
	return ScopeNone
}

// Channels lists every public channel a status is published on for scope.
// Replies other than self-replies stay off the public timelines, hashtag
// channels still receive them.
func Channels(status *model.Status, scope Scope) []string {
	if scope == ScopeNone {
		return nil
	}
	local := status.Account.IsLocal()
	// The local-only variant has nothing to offer remote authors.
	if scope == ScopeLocalOnly && !local {
		return nil
	}

	channels := []string{}
	for _, name := range status.TagNames() {
		if scope != ScopeLocalOnly {
			channels = append(channels, HashtagChannel(name, false))
		}
		if local {
			channels = append(channels, HashtagChannel(name, true))
		}
	}

	if scope == ScopeHashtagOnly || (status.IsReply() && !status.IsSelfReply()) {
		return channels
	}

	if scope == ScopeFull {
		channels = append(channels, ChannelPublic)
		if local {
			channels = append(channels, ChannelPublicLocal)
		} else {
			channels = append(channels, ChannelPublicRemote)
		}
	} else {
		channels = append(channels, ChannelPublicLocal)
	}

	if !status.WithMedia {
		return channels
	}
	if scope == ScopeFull {
		channels = append(channels, ChannelPublicMedia)
		if local {
			channels = append(channels, ChannelPublicLocalMedia)
		} else {
			channels = append(channels, ChannelPublicRemoteMedia)
		}
	} else {
		channels = append(channels, ChannelPublicLocalMedia)
	}
	return channels
}
