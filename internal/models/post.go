package models

import (
	"time"
)

// Post is a published blog entry. Date is a display string fixed at
// creation time and never recomputed; Author and Date are immutable after
// creation.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"not null" json:"author_id"`
	Title     string    `gorm:"unique;not null" json:"title"`
	Date      string    `gorm:"not null" json:"date"`
	Body      string    `gorm:"not null" json:"body"`
	ImageURL  string    `json:"img_url"`
	Subtitle  string    `json:"subtitle"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author"`
	Comments  []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanModify reports whether actorID may edit or delete this post:
// the post's author, or the superuser.
func (p *Post) CanModify(actorID uint) bool {
	return actorID != 0 && (actorID == p.AuthorID || actorID == SuperUserID)
}
