package dispatcher

import (
	"context"

	"github.com/Luismorlan/feedcast/broadcast"
	"github.com/Luismorlan/feedcast/model"
	"github.com/Luismorlan/feedcast/utils"
	"github.com/pkg/errors"
)

func (r *run) fanOutToLocalRecipients(ctx context.Context) error {
	if err := r.deliverToSelf(ctx); err != nil {
		return err
	}
	if err := r.notifyMentioned(ctx); err != nil {
		return err
	}
	if r.opts.IsEdit {
		if err := r.notifyRebloggers(ctx); err != nil {
			return err
		}
	}

	switch v := *r.status.Visibility; v {
	case model.VisibilityPublic,
		model.VisibilityUnlisted,
		model.VisibilityPublicUnlisted,
		model.VisibilityLogin,
		model.VisibilityPrivate:
		if err := r.deliverToFollowers(ctx); err != nil {
			return err
		}
		if err := r.deliverToLists(ctx); err != nil {
			return err
		}
		if r.eligibleForTopicAntennas() {
			if err := r.deliverToTopicAntennas(ctx); err != nil {
				return err
			}
		}
		if err := r.deliverToBroadAntennas(ctx); err != nil {
			return err
		}
	case model.VisibilityLimited:
		if err := r.deliverToMentionedLists(ctx); err != nil {
			return err
		}
		if err := r.deliverToMentionedFollowers(ctx); err != nil {
			return err
		}
	case model.VisibilityDirect:
		if err := r.deliverToMentionedFollowers(ctx); err != nil {
			return err
		}
		if !r.opts.IsEdit {
			if err := r.deliverToConversation(ctx); err != nil {
				return err
			}
		}
	default:
		return errors.Wrapf(ErrInvalidStatus, "status %d has unknown visibility %d", r.status.ID, v)
	}

	return r.flushAntennas(ctx)
}

// deliverToSelf writes straight into a local author's feed so the author sees
// the status without waiting for the queue.
func (r *run) deliverToSelf(ctx context.Context) error {
	if !r.status.Account.IsLocal() {
		return nil
	}
	notify, err := r.deps.Feeds.AppendToPersonalFeed(ctx, r.status.AccountID, r.status.ID, r.opts.IsEdit)
	if err != nil {
		return errors.Wrap(err, "deliver to self")
	}
	r.result.SelfDelivered = true
	if notify {
		r.publish(ctx, broadcast.HomeChannel(r.status.AccountID))
	}
	return nil
}

func (r *run) notifyMentioned(ctx context.Context) error {
	suppressed := utils.Int64Set(r.opts.SuppressedMentionIDs)
	candidates := []int64{}
	for _, id := range r.status.ActiveMentionAccountIDs() {
		if _, ok := suppressed[id]; ok || id == r.status.AccountID {
			continue
		}
		candidates = append(candidates, id)
	}
	if len(candidates) == 0 {
		return nil
	}
	local, err := r.deps.Graph.LocalAccountsAmong(ctx, candidates)
	if err != nil {
		return errors.Wrap(err, "read mentioned local accounts")
	}
	for _, id := range local {
		if err := r.deps.Notifier.NotifyMention(ctx, id, r.status.ID); err != nil {
			return errors.Wrapf(err, "notify mention of %d", id)
		}
		r.result.Notified++
	}
	return nil
}

func (r *run) notifyRebloggers(ctx context.Context) error {
	c := r.deps.Graph.LocalRebloggers(r.status.ID, r.cfg.PageSize)
	err := c.Each(ctx, func(page []int64) error {
		for _, id := range page {
			if id == r.status.AccountID {
				continue
			}
			if err := r.deps.Notifier.NotifyUpdate(ctx, id, r.status.ID); err != nil {
				return errors.Wrapf(err, "notify update to %d", id)
			}
			r.result.Notified++
		}
		return nil
	})
	return errors.Wrap(err, "notify rebloggers")
}

func (r *run) deliverToFollowers(ctx context.Context) error {
	c := r.deps.Graph.LocalFollowers(r.status.AccountID, r.activeSince, r.cfg.PageSize)
	return r.enqueuePages(ctx, c, model.FeedKindHome, "deliver to followers")
}

func (r *run) deliverToLists(ctx context.Context) error {
	c := r.deps.Graph.ListsForLocalDistribution(r.status.AccountID, r.activeSince, r.cfg.PageSize)
	return r.enqueuePages(ctx, c, model.FeedKindList, "deliver to lists")
}

// deliverToMentionedLists reaches lists containing the author whose owner is
// mentioned.
func (r *run) deliverToMentionedLists(ctx context.Context) error {
	mentioned := r.status.MentionedAccountIDs()
	if len(mentioned) == 0 {
		return nil
	}
	c := r.deps.Graph.ListsOwnedByAmong(r.status.AccountID, mentioned, r.activeSince, r.cfg.PageSize)
	return r.enqueuePages(ctx, c, model.FeedKindList, "deliver to mentioned owners' lists")
}

func (r *run) deliverToMentionedFollowers(ctx context.Context) error {
	mentioned := r.status.MentionedAccountIDs()
	if len(mentioned) == 0 {
		return nil
	}
	ids, err := r.deps.Graph.LocalFollowersAmong(ctx, r.status.AccountID, mentioned, r.activeSince)
	if err != nil {
		return errors.Wrap(err, "read mentioned followers")
	}
	for start := 0; start < len(ids); start += r.cfg.PageSize {
		end := start + r.cfg.PageSize
		if end > len(ids) {
			end = len(ids)
		}
		if err := r.enqueueTargets(ctx, model.FeedKindHome, ids[start:end]); err != nil {
			return errors.Wrap(err, "deliver to mentioned followers")
		}
	}
	return nil
}

// deliverToConversation records a direct status for the local author and
// every local mentioned account.
func (r *run) deliverToConversation(ctx context.Context) error {
	participants, err := r.deps.Graph.LocalAccountsAmong(ctx, r.status.MentionedAccountIDs())
	if err != nil {
		return errors.Wrap(err, "read conversation participants")
	}
	if r.status.Account.IsLocal() && !utils.ContainsInt64(participants, r.status.AccountID) {
		participants = append([]int64{r.status.AccountID}, participants...)
	}
	if len(participants) == 0 {
		return nil
	}
	return errors.Wrap(r.deps.Conversations.AddStatus(ctx, r.status.ID, participants), "deliver to conversation")
}
