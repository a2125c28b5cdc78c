package model

import "time"

/*

List is a user-curated sub-timeline owned by AccountID. Members are stored
in ListAccount.

*/
type List struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	AccountID int64 `gorm:"index"`
	Title     string
}

// ListAccount is membership of AccountID in ListID.
type ListAccount struct {
	ListID    int64 `gorm:"primaryKey;autoIncrement:false"`
	AccountID int64 `gorm:"primaryKey;autoIncrement:false;index"`
}
