// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered author in the Quill application.
// EmailHash is the sha256 hex digest of the lower-cased email and is used
// as the Gravatar lookup key.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"unique;not null" json:"email"`
	EmailHash string    `gorm:"unique;not null" json:"email_hash"`
	Password  string    `gorm:"not null" json:"-"`
	Username  string    `gorm:"unique;not null" json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Posts     []Post    `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
	Comments  []Comment `gorm:"foreignKey:AuthorID" json:"-"`
}

// SuperUserID is the fixed user granted blanket edit/delete authority
// over all posts.
const SuperUserID uint = 1
