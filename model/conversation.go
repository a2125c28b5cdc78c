package model

import "time"

// ConversationStatus records a direct status in a participant's private
// conversation store.
type ConversationStatus struct {
	AccountID int64 `gorm:"primaryKey;autoIncrement:false"`
	StatusID  int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}
