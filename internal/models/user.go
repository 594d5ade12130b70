// Package models contains the persistent entities of the application.
package models

import (
	"time"
)

// User is a registered account. The password field always holds a bcrypt
// hash and is never rendered into a page.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;not null"`
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Tweets    []Tweet `gorm:"foreignKey:UserID"`
}
