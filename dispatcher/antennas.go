package dispatcher

import (
	"context"

	"github.com/Luismorlan/feedcast/antenna"
	"github.com/Luismorlan/feedcast/model"
	"github.com/pkg/errors"
)

const (
	scopeTopic = "topic"
	scopeBroad = "broad"
)

// eligibleForTopicAntennas is false for visibilities narrower than the public
// timelines and for authors that opted out of subscription.
func (r *run) eligibleForTopicAntennas() bool {
	if !r.cfg.TopicSubscriptionEnabled {
		return false
	}
	switch *r.status.Visibility {
	case model.VisibilityPublic, model.VisibilityPublicUnlisted, model.VisibilityLogin:
	default:
		return false
	}
	return !r.status.Account.DisallowsSubscription()
}

func (r *run) deliverToTopicAntennas(ctx context.Context) error {
	criteria := antenna.NewCriteria(r.status, r.cfg.LocalDomain, r.now, r.cfg.ActiveWindow)
	subject := antenna.NewSubject(r.status, r.cfg.LocalDomain)
	policy := r.status.Account.SubscriptionPolicy

	matched := 0
	c := r.deps.Rules.TopicCandidates(criteria, r.cfg.PageSize)
	err := c.Each(ctx, func(page []model.Antenna) error {
		hits := make([]*model.Antenna, 0, len(page))
		for i := range page {
			if antenna.Match(&page[i], subject, r.now) {
				hits = append(hits, &page[i])
			}
		}
		hits, err := r.admittedByPolicy(ctx, policy, hits)
		if err != nil {
			return err
		}
		for _, a := range hits {
			r.accumulate(a, false)
		}
		matched += len(hits)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "deliver to topic antennas")
	}
	r.countMatched(scopeTopic, matched)
	return nil
}

// admittedByPolicy drops antennas whose owner the author's subscription
// policy keeps out.
func (r *run) admittedByPolicy(ctx context.Context, policy model.SubscriptionPolicy, hits []*model.Antenna) ([]*model.Antenna, error) {
	if len(hits) == 0 {
		return hits, nil
	}
	authorID := r.status.AccountID
	var rels map[int64]antenna.Relationship
	if antenna.NeedsRelationships(policy) {
		owners := make([]int64, 0, len(hits))
		for _, a := range hits {
			if a.AccountID != authorID {
				owners = append(owners, a.AccountID)
			}
		}
		var err error
		if rels, err = r.deps.Graph.Relationships(ctx, authorID, owners); err != nil {
			return nil, errors.Wrap(err, "read antenna owner relationships")
		}
	}
	admitted := hits[:0]
	for _, a := range hits {
		if antenna.PolicyAdmits(policy, a.AccountID, authorID, rels[a.AccountID]) {
			admitted = append(admitted, a)
		}
	}
	return admitted, nil
}

func (r *run) deliverToBroadAntennas(ctx context.Context) error {
	criteria := antenna.NewBroadCriteria(r.status, r.cfg.STLEnabled, r.cfg.LTLEnabled, r.now, r.cfg.ActiveWindow)
	if !criteria.Scopes() {
		return nil
	}

	matched := 0
	c := r.deps.Rules.BroadCandidates(criteria, r.cfg.PageSize)
	err := c.Each(ctx, func(page []model.Antenna) error {
		for i := range page {
			if antenna.MatchBroad(&page[i], r.now) {
				r.accumulate(&page[i], criteria.ForeignContext)
				matched++
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "deliver to broad antennas")
	}
	r.countMatched(scopeBroad, matched)
	return nil
}

func (r *run) accumulate(a *model.Antenna, foreignContext bool) {
	for _, t := range antenna.Targets(a, r.cfg.RuleFeedsEnabled) {
		r.batch.Add(t, foreignContext)
	}
	r.result.AntennasMatched++
}

func (r *run) countMatched(scope string, n int) {
	if n > 0 {
		r.count("antenna.matched", int64(n), "scope:"+scope)
	}
}

func (r *run) flushAntennas(ctx context.Context) error {
	counts, err := r.batch.Flush(ctx, r.deps.Queue)
	for kind, n := range counts {
		r.result.Enqueued[kind] += n
	}
	return err
}
