package models

import (
	"time"
)

// Comment is a reader comment on a post. Comments are never edited and are
// deleted only as a side effect of deleting their parent post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"not null" json:"author_id"`
	PostID    uint      `gorm:"not null" json:"post_id"`
	Body      string    `gorm:"not null" json:"comment_body"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author"`
	Post      Post      `gorm:"foreignKey:PostID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
