package models

import (
	"time"
)

// A chat user as known to the bot. Rows are keyed by the chat network's stable user id;
// names and colour are refreshed whenever the user is observed in chat.
type User struct {
	ID          string `gorm:"primaryKey"`
	SimpleName  string `gorm:"index;not null"`
	DisplayName string `gorm:"not null"`
	// hex colour without leading '#', nil if the user never set one
	Color         *string
	FirstActiveAt time.Time `gorm:"not null"`
	LastActiveAt  *time.Time
	LastMessageAt *time.Time
	LastUpdatedAt time.Time `gorm:"not null"`
}

func (u User) String() string {
	return u.SimpleName + "(" + u.ID + ")"
}

// Observed user attributes, as passed to a user recorder on every inbound message.
type UserInfo struct {
	ID          string
	DisplayName string
	SimpleName  string
	Color       *string
	FromMessage bool
	UpdatedAt   time.Time
}
