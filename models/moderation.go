package models

import (
	"time"
)

// Moderation actions taken automatically. Every timeout is recorded here, which is also
// what the timeout escalation policy counts.
type ModLog struct {
	ID        uint64    `gorm:"primaryKey"`
	UserID    string    `gorm:"index:idx_modlog_user_time;not null"`
	Reason    string    `gorm:"not null"`
	Rule      string    `gorm:"not null"`
	Timestamp time.Time `gorm:"index:idx_modlog_user_time;not null"`
}
