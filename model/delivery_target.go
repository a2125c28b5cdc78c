package model

import "fmt"

// FeedKind names the kind of feed a delivery target points at.
type FeedKind string

const (
	FeedKindHome    FeedKind = "home"
	FeedKindList    FeedKind = "list"
	FeedKindAntenna FeedKind = "antenna"
)

// DeliveryTarget is a transient (kind, id) pair produced during dispatch. It is
// never persisted here, the feed store owns the feeds themselves.
type DeliveryTarget struct {
	Kind FeedKind
	ID   int64
}

func PersonalFeedOf(accountID int64) DeliveryTarget {
	return DeliveryTarget{Kind: FeedKindHome, ID: accountID}
}

func NamedListFeedOf(listID int64) DeliveryTarget {
	return DeliveryTarget{Kind: FeedKindList, ID: listID}
}

// RuleFeedOf is the antenna's own feed.
func RuleFeedOf(antennaID int64) DeliveryTarget {
	return DeliveryTarget{Kind: FeedKindAntenna, ID: antennaID}
}

func (t DeliveryTarget) String() string {
	return fmt.Sprintf("%s:%d", t.Kind, t.ID)
}
