package dispatcher

import (
	"context"

	"github.com/Luismorlan/feedcast/broadcast"
	"github.com/Luismorlan/feedcast/model"
)

func (r *run) fanOutToPublicRecipients(ctx context.Context) error {
	switch *r.status.Visibility {
	case model.VisibilityPublic,
		model.VisibilityUnlisted,
		model.VisibilityPublicUnlisted,
		model.VisibilityLogin,
		model.VisibilityPrivate:
		if err := r.deliverToHashtagFollowers(ctx); err != nil {
			return err
		}
	}
	r.broadcastToPublicChannels(ctx)
	return nil
}

func (r *run) deliverToHashtagFollowers(ctx context.Context) error {
	tagIDs := r.status.TagIDs()
	if len(tagIDs) == 0 {
		return nil
	}
	c := r.deps.Graph.TagFollowers(tagIDs, r.cfg.PageSize)
	return r.enqueuePages(ctx, c, model.FeedKindHome, "deliver to hashtag followers")
}

func (r *run) broadcastToPublicChannels(ctx context.Context) {
	scope := broadcast.ScopeOf(r.status)
	for _, channel := range broadcast.Channels(r.status, scope) {
		if r.publish(ctx, channel) {
			r.result.Channels = append(r.result.Channels, channel)
		}
	}
	if scope != broadcast.ScopeNone {
		r.log.Debugf("broadcast with scope %s", scope)
	}
}
