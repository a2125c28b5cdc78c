package store

import (
	"context"
	"time"

	"github.com/Luismorlan/feedcast/antenna"
	"github.com/Luismorlan/feedcast/model"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// RuleStore reads and writes antennas in Postgres. Candidate queries push the
// antenna.Criteria filters down to SQL so only plausible antennas are read.
type RuleStore struct {
	db *gorm.DB
}

func NewRuleStore(db *gorm.DB) *RuleStore {
	return &RuleStore{db: db}
}

// liveOwners selects ids of accounts that are not suspended and were active
// after the given instant.
func (s *RuleStore) liveOwners(ctx context.Context, activeSince time.Time) *gorm.DB {
	return s.db.WithContext(ctx).Model(&model.Account{}).
		Select("id").
		Where("suspended_at IS NULL AND last_active_at > ?", activeSince)
}

func (s *RuleStore) topicQuery(ctx context.Context, c antenna.Criteria) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&model.Antenna{}).
		Where("stl = ? AND ltl = ?", false, false).
		Where("available = ?", true).
		Where("(expires_at IS NULL OR expires_at > ?)", c.Now).
		Where("NOT (any_keywords AND any_domains AND any_accounts AND any_tags)").
		Where("(any_domains = ? OR ? = ANY(domains))", true, c.Domain)
	if !c.WithMedia {
		q = q.Where("with_media_only = ?", false)
	}
	if !c.IsReblog {
		q = q.Where("ignore_reblog = ?", false)
	}
	q = q.Where("(any_accounts = ? OR ? = ANY(accounts))", true, c.AuthorID)
	if len(c.TagIDs) == 0 {
		q = q.Where("any_tags = ?", true)
	} else {
		q = q.Where("(any_tags = ? OR tags && ?)", true, pq.Int64Array(c.TagIDs))
	}
	return q.Where("account_id IN (?)", s.liveOwners(ctx, c.ActiveSince))
}

// TopicCandidates pages over topic antennas admitted by c.
func (s *RuleStore) TopicCandidates(c antenna.Criteria, pageSize int) *Cursor[model.Antenna] {
	return NewCursor(pageSize, antennaKey, func(ctx context.Context, after int64, limit int) ([]model.Antenna, error) {
		var rows []model.Antenna
		err := s.topicQuery(ctx, c).
			Where("id > ?", after).
			Order("id").
			Limit(limit).
			Find(&rows).Error
		return rows, errors.Wrap(err, "read topic antenna candidates")
	})
}

func (s *RuleStore) broadQuery(ctx context.Context, c antenna.BroadCriteria) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&model.Antenna{}).
		Where("available = ?", true).
		Where("(expires_at IS NULL OR expires_at > ?)", c.Now)
	switch {
	case c.STL && c.LTL:
		q = q.Where("(stl = ? OR ltl = ?)", true, true)
	case c.STL:
		q = q.Where("stl = ?", true)
	default:
		q = q.Where("ltl = ?", true)
	}
	q = q.Where("account_id IN (?)", s.liveOwners(ctx, c.ActiveSince))
	if c.ForeignContext {
		followers := s.db.Model(&model.Follow{}).
			Select("account_id").
			Where("target_account_id = ?", c.AuthorID)
		q = q.Where("list_id <> 0").
			Where("(account_id = ? OR account_id IN (?))", c.AuthorID, followers)
	}
	return q
}

// BroadCandidates pages over stl / ltl antennas admitted by c.
func (s *RuleStore) BroadCandidates(c antenna.BroadCriteria, pageSize int) *Cursor[model.Antenna] {
	return NewCursor(pageSize, antennaKey, func(ctx context.Context, after int64, limit int) ([]model.Antenna, error) {
		if !c.Scopes() {
			return nil, nil
		}
		var rows []model.Antenna
		err := s.broadQuery(ctx, c).
			Where("id > ?", after).
			Order("id").
			Limit(limit).
			Find(&rows).Error
		return rows, errors.Wrap(err, "read broad antenna candidates")
	})
}

// AntennaOwner returns the owner of an antenna.
func (s *RuleStore) AntennaOwner(ctx context.Context, antennaID int64) (int64, error) {
	var a model.Antenna
	err := s.db.WithContext(ctx).Select("id", "account_id").First(&a, antennaID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, errors.Wrap(err, "read antenna owner")
	}
	return a.AccountID, nil
}

// CreateAntenna validates and stores a new antenna, enforcing the per-owner
// count limit in the same transaction.
func (s *RuleStore) CreateAntenna(ctx context.Context, a *model.Antenna) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Antenna{}).Where("account_id = ?", a.AccountID).Count(&count).Error; err != nil {
			return err
		}
		if count >= model.MaxAntennasPerAccount {
			return model.ErrAntennaLimitReached
		}
		return tx.Create(a).Error
	})
}

func antennaKey(a model.Antenna) int64 {
	return a.ID
}
