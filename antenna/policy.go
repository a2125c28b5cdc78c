package antenna

import "github.com/Luismorlan/feedcast/model"

// Relationship between an antenna owner and the status author.
type Relationship struct {
	OwnerFollowsAuthor bool
	AuthorFollowsOwner bool
}

// PolicyAdmits reports whether the author's subscription policy lets an
// antenna owned by ownerID capture the author's status. Authors always reach
// their own antennas.
func PolicyAdmits(policy model.SubscriptionPolicy, ownerID int64, authorID int64, rel Relationship) bool {
	if ownerID == authorID {
		return true
	}
	switch policy {
	case model.SubscriptionPolicyAllow:
		return true
	case model.SubscriptionPolicyFollowersOnly:
		return rel.OwnerFollowsAuthor
	case model.SubscriptionPolicyFollowingOnly:
		return rel.AuthorFollowsOwner
	case model.SubscriptionPolicyMutualsOnly:
		return rel.OwnerFollowsAuthor && rel.AuthorFollowsOwner
	case model.SubscriptionPolicyOutsideOnly:
		return !rel.OwnerFollowsAuthor
	case model.SubscriptionPolicyBlock:
		return false
	}
	return false
}

// NeedsRelationships is false when the policy can be decided without looking
// at the follow graph.
func NeedsRelationships(policy model.SubscriptionPolicy) bool {
	switch policy {
	case model.SubscriptionPolicyAllow, model.SubscriptionPolicyBlock:
		return false
	}
	return true
}
