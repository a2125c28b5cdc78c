package model

import "time"

type Tag struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex"`
}

// TagFollow marks AccountID as following hashtag TagID.
type TagFollow struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	AccountID int64 `gorm:"uniqueIndex:ux_tag_follow_account_tag"`
	TagID     int64 `gorm:"uniqueIndex:ux_tag_follow_account_tag;index"`
}
