// Package feed stores per-target feeds as status ids ordered by id. Appends
// are idempotent per (target, status id).
package feed

import (
	"context"
	"fmt"

	"github.com/Luismorlan/feedcast/model"
)

const DefaultMaxItems = 800

// Store appends statuses to feeds. The returned bool tells whether
// subscribers of the feed should be told about the status: true for a
// first insert, and for every edit of a status the feed holds.
type Store interface {
	AppendToPersonalFeed(ctx context.Context, accountID int64, statusID int64, isEdit bool) (bool, error)
	AppendToListFeed(ctx context.Context, listID int64, statusID int64, isEdit bool, isForeignContext bool) (bool, error)
	AppendToRuleFeed(ctx context.Context, antennaID int64, statusID int64, isEdit bool) (bool, error)
	// Statuses returns up to limit status ids of a feed, newest first.
	Statuses(ctx context.Context, target model.DeliveryTarget, limit int) ([]int64, error)
}

func Key(target model.DeliveryTarget) string {
	return fmt.Sprintf("feed:%s:%d", target.Kind, target.ID)
}

// ForeignKey holds the ids a list feed received from a foreign context.
func ForeignKey(target model.DeliveryTarget) string {
	return Key(target) + ":foreign"
}

// Append dispatches to the Store method matching target's kind.
func Append(ctx context.Context, s Store, target model.DeliveryTarget, statusID int64, isEdit bool, isForeignContext bool) (bool, error) {
	switch target.Kind {
	case model.FeedKindHome:
		return s.AppendToPersonalFeed(ctx, target.ID, statusID, isEdit)
	case model.FeedKindList:
		return s.AppendToListFeed(ctx, target.ID, statusID, isEdit, isForeignContext)
	case model.FeedKindAntenna:
		return s.AppendToRuleFeed(ctx, target.ID, statusID, isEdit)
	}
	return false, fmt.Errorf("unknown feed kind %q", target.Kind)
}
