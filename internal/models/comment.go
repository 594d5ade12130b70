package models

import (
	"time"
)

// Comment is a reply attached to exactly one tweet. Both TweetID and
// UserID are assigned server-side; comments are never edited or deleted
// through the web interface.
type Comment struct {
	ID        uint   `gorm:"primaryKey"`
	Text      string `gorm:"not null"`
	UserID    uint   `gorm:"not null;index"`
	TweetID   uint   `gorm:"not null;index"`
	User      User   `gorm:"foreignKey:UserID"`
	Tweet     Tweet  `gorm:"foreignKey:TweetID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
