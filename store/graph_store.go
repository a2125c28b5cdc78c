package store

import (
	"context"
	"time"

	"github.com/Luismorlan/feedcast/antenna"
	"github.com/Luismorlan/feedcast/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GraphStore reads the follow graph, lists, tag follows and reblogs.
type GraphStore struct {
	db *gorm.DB
}

func NewGraphStore(db *gorm.DB) *GraphStore {
	return &GraphStore{db: db}
}

// LocalFollowers pages over local followers of accountID who were active
// after activeSince.
func (s *GraphStore) LocalFollowers(accountID int64, activeSince time.Time, pageSize int) *Cursor[int64] {
	return NewIDCursor(pageSize, func(ctx context.Context, after int64, limit int) ([]int64, error) {
		var ids []int64
		err := s.db.WithContext(ctx).Model(&model.Follow{}).
			Joins("JOIN accounts ON accounts.id = follows.account_id").
			Where("follows.target_account_id = ?", accountID).
			Where(localAccountSQL).
			Where("accounts.last_active_at > ?", activeSince).
			Where("follows.account_id > ?", after).
			Order("follows.account_id").
			Limit(limit).
			Pluck("follows.account_id", &ids).Error
		return ids, errors.Wrap(err, "read local followers")
	})
}

func (s *GraphStore) listsQuery(ctx context.Context, memberID int64, activeSince time.Time) *gorm.DB {
	return s.db.WithContext(ctx).Model(&model.List{}).
		Joins("JOIN list_accounts ON list_accounts.list_id = lists.id").
		Joins("JOIN accounts ON accounts.id = lists.account_id").
		Where("list_accounts.account_id = ?", memberID).
		Where("accounts.suspended_at IS NULL AND accounts.last_active_at > ?", activeSince)
}

// ListsForLocalDistribution pages over lists that include memberID and whose
// owner is active.
func (s *GraphStore) ListsForLocalDistribution(memberID int64, activeSince time.Time, pageSize int) *Cursor[int64] {
	return NewIDCursor(pageSize, func(ctx context.Context, after int64, limit int) ([]int64, error) {
		var ids []int64
		err := s.listsQuery(ctx, memberID, activeSince).
			Where("lists.id > ?", after).
			Order("lists.id").
			Limit(limit).
			Pluck("lists.id", &ids).Error
		return ids, errors.Wrap(err, "read lists for distribution")
	})
}

// ListsOwnedByAmong is ListsForLocalDistribution restricted to lists owned by
// one of ownerIDs.
func (s *GraphStore) ListsOwnedByAmong(memberID int64, ownerIDs []int64, activeSince time.Time, pageSize int) *Cursor[int64] {
	return NewIDCursor(pageSize, func(ctx context.Context, after int64, limit int) ([]int64, error) {
		if len(ownerIDs) == 0 {
			return nil, nil
		}
		var ids []int64
		err := s.listsQuery(ctx, memberID, activeSince).
			Where("lists.account_id IN ?", ownerIDs).
			Where("lists.id > ?", after).
			Order("lists.id").
			Limit(limit).
			Pluck("lists.id", &ids).Error
		return ids, errors.Wrap(err, "read mentioned owners' lists")
	})
}

// LocalFollowersAmong returns the subset of ids that are active local
// followers of accountID.
func (s *GraphStore) LocalFollowersAmong(ctx context.Context, accountID int64, ids []int64, activeSince time.Time) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	var res []int64
	err := s.db.WithContext(ctx).Model(&model.Follow{}).
		Joins("JOIN accounts ON accounts.id = follows.account_id").
		Where("follows.target_account_id = ? AND follows.account_id IN ?", accountID, ids).
		Where(localAccountSQL).
		Where("accounts.last_active_at > ?", activeSince).
		Order("follows.account_id").
		Pluck("follows.account_id", &res).Error
	return res, errors.Wrap(err, "read mentioned followers")
}

// LocalAccountsAmong returns the subset of ids that are local, non-suspended
// accounts.
func (s *GraphStore) LocalAccountsAmong(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	var res []int64
	err := s.db.WithContext(ctx).Model(&model.Account{}).
		Where("accounts.id IN ?", ids).
		Where(localAccountSQL).
		Order("accounts.id").
		Pluck("accounts.id", &res).Error
	return res, errors.Wrap(err, "read local accounts")
}

// TagFollowers pages over local accounts following any of tagIDs.
func (s *GraphStore) TagFollowers(tagIDs []int64, pageSize int) *Cursor[int64] {
	return NewIDCursor(pageSize, func(ctx context.Context, after int64, limit int) ([]int64, error) {
		if len(tagIDs) == 0 {
			return nil, nil
		}
		var ids []int64
		err := s.db.WithContext(ctx).Model(&model.TagFollow{}).
			Distinct("tag_follows.account_id").
			Joins("JOIN accounts ON accounts.id = tag_follows.account_id").
			Where("tag_follows.tag_id IN ?", tagIDs).
			Where(localAccountSQL).
			Where("tag_follows.account_id > ?", after).
			Order("tag_follows.account_id").
			Limit(limit).
			Pluck("tag_follows.account_id", &ids).Error
		return ids, errors.Wrap(err, "read tag followers")
	})
}

// LocalRebloggers pages over local accounts that reblogged statusID.
func (s *GraphStore) LocalRebloggers(statusID int64, pageSize int) *Cursor[int64] {
	return NewIDCursor(pageSize, func(ctx context.Context, after int64, limit int) ([]int64, error) {
		var ids []int64
		err := s.db.WithContext(ctx).Model(&model.Status{}).
			Distinct("statuses.account_id").
			Joins("JOIN accounts ON accounts.id = statuses.account_id").
			Where("statuses.reblog_of_id = ?", statusID).
			Where(localAccountSQL).
			Where("statuses.account_id > ?", after).
			Order("statuses.account_id").
			Limit(limit).
			Pluck("statuses.account_id", &ids).Error
		return ids, errors.Wrap(err, "read local rebloggers")
	})
}

// Relationships reports, for each owner id, how it relates to authorID in the
// follow graph.
func (s *GraphStore) Relationships(ctx context.Context, authorID int64, ownerIDs []int64) (map[int64]antenna.Relationship, error) {
	res := make(map[int64]antenna.Relationship, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return res, nil
	}

	var followers []int64
	if err := s.db.WithContext(ctx).Model(&model.Follow{}).
		Where("target_account_id = ? AND account_id IN ?", authorID, ownerIDs).
		Pluck("account_id", &followers).Error; err != nil {
		return nil, errors.Wrap(err, "read owner follows")
	}
	var following []int64
	if err := s.db.WithContext(ctx).Model(&model.Follow{}).
		Where("account_id = ? AND target_account_id IN ?", authorID, ownerIDs).
		Pluck("target_account_id", &following).Error; err != nil {
		return nil, errors.Wrap(err, "read author follows")
	}

	for _, id := range followers {
		rel := res[id]
		rel.OwnerFollowsAuthor = true
		res[id] = rel
	}
	for _, id := range following {
		rel := res[id]
		rel.AuthorFollowsOwner = true
		res[id] = rel
	}
	return res, nil
}

func (s *GraphStore) FindAccount(ctx context.Context, id int64) (*model.Account, error) {
	var a model.Account
	err := s.db.WithContext(ctx).First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "read account")
	}
	return &a, nil
}

// Blocking reports whether accountID blocks targetID.
func (s *GraphStore) Blocking(ctx context.Context, accountID int64, targetID int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Block{}).
		Where("account_id = ? AND target_account_id = ?", accountID, targetID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "read block")
	}
	return count > 0, nil
}

// ListOwner returns the account owning listID.
func (s *GraphStore) ListOwner(ctx context.Context, listID int64) (int64, error) {
	var l model.List
	err := s.db.WithContext(ctx).Select("id", "account_id").First(&l, listID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, errors.Wrap(err, "read list owner")
	}
	return l.AccountID, nil
}
