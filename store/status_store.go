package store

import (
	"context"

	"github.com/Luismorlan/feedcast/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatusStore loads statuses with the associations dispatch reads.
type StatusStore struct {
	db *gorm.DB
}

func NewStatusStore(db *gorm.DB) *StatusStore {
	return &StatusStore{db: db}
}

func (s *StatusStore) FindStatus(ctx context.Context, id int64) (*model.Status, error) {
	var status model.Status
	err := s.db.WithContext(ctx).
		Preload("Account").
		Preload("Tags").
		Preload("Mentions").
		First(&status, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "read status")
	}
	return &status, nil
}

// ConversationStore is the private conversation store for direct statuses.
type ConversationStore struct {
	db *gorm.DB
}

func NewConversationStore(db *gorm.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// AddStatus records statusID in the conversation of every participant.
// Re-adding is a no-op.
func (s *ConversationStore) AddStatus(ctx context.Context, statusID int64, participantIDs []int64) error {
	if len(participantIDs) == 0 {
		return nil
	}
	rows := make([]model.ConversationStatus, 0, len(participantIDs))
	for _, id := range participantIDs {
		rows = append(rows, model.ConversationStatus{AccountID: id, StatusID: statusID})
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
	return errors.Wrap(err, "add conversation status")
}
