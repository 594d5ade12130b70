package models

import (
	"time"
)

// Session is the server-side record behind a login cookie. Deleting the
// row revokes the cookie even before its expiry.
type Session struct {
	ID        string `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;index"`
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
