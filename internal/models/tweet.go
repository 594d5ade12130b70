package models

import (
	"time"
)

// Tweet is a user-authored post with optional image. UserID is always the
// user who was authenticated at creation time; handlers never accept it
// from the client.
type Tweet struct {
	ID   uint   `gorm:"primaryKey"`
	Text string `gorm:"not null"`
	// ImagePath is a path relative to the upload directory, e.g.
	// "images/3f1c….jpg". Empty when the tweet has no image.
	ImagePath string
	UserID    uint `gorm:"not null;index"`
	User      User `gorm:"foreignKey:UserID"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Comments  []Comment `gorm:"foreignKey:TweetID"`
}

// ImageURL returns the public URL for the tweet's image, or "" when the
// tweet has none.
func (t *Tweet) ImageURL() string {
	if t.ImagePath == "" {
		return ""
	}
	return "/media/" + t.ImagePath
}
