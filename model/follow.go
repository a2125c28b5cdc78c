package model

import "time"

// Follow is a directed follow relation: AccountID follows TargetAccountID.
type Follow struct {
	ID              int64 `gorm:"primaryKey"`
	CreatedAt       time.Time
	AccountID       int64 `gorm:"uniqueIndex:ux_follow_account_target"`
	TargetAccountID int64 `gorm:"uniqueIndex:ux_follow_account_target;index"`
}

// Block is a directed block relation: AccountID blocks TargetAccountID.
type Block struct {
	ID              int64 `gorm:"primaryKey"`
	CreatedAt       time.Time
	AccountID       int64 `gorm:"uniqueIndex:ux_block_account_target"`
	TargetAccountID int64 `gorm:"uniqueIndex:ux_block_account_target"`
}
