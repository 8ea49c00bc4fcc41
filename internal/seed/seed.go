// Package seed populates a development database with plausible fake data.
package seed

import (
	"context"
	"fmt"
	"time"

	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options controls how much data Run generates.
type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
	Password        string
	SaltLen         int
}

// DefaultOptions is a small but representative data set.
func DefaultOptions() Options {
	return Options{
		Users:           5,
		PostsPerUser:    3,
		CommentsPerPost: 4,
		Password:        "password123",
		SaltLen:         16,
	}
}

// Run fills the database. The first created account is the superuser; all
// accounts share the same password for convenience.
func Run(ctx context.Context, db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())

	hashed, err := service.HashPassword(opts.Password, opts.SaltLen)
	if err != nil {
		return fmt.Errorf("hashing seed password: %w", err)
	}

	users := make([]*models.User, 0, opts.Users+1)

	admin := &models.User{
		Email:     "admin@quill.dev",
		EmailHash: service.EmailHash("admin@quill.dev"),
		Password:  hashed,
		Username:  "admin",
	}
	if err := db.WithContext(ctx).FirstOrCreate(admin, models.User{Email: admin.Email}).Error; err != nil {
		return fmt.Errorf("creating superuser: %w", err)
	}
	users = append(users, admin)

	for i := 0; i < opts.Users; i++ {
		email := gofakeit.Email()
		user := &models.User{
			Email:     email,
			EmailHash: service.EmailHash(email),
			Password:  hashed,
			Username:  gofakeit.Username(),
		}
		if err := db.WithContext(ctx).Create(user).Error; err != nil {
			observability.Logger.Warn("skipping seed user", "error", err.Error())
			continue
		}
		users = append(users, user)
	}

	postCount := 0
	commentCount := 0
	for _, u := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			post := &models.Post{
				AuthorID: u.ID,
				Title:    gofakeit.Sentence(4),
				Date:     gofakeit.DateRange(time.Now().AddDate(-1, 0, 0), time.Now()).Format("January 2, 2006"),
				Body:     gofakeit.Paragraph(3, 5, 12, "\n\n"),
				ImageURL: gofakeit.ImageURL(1200, 600),
				Subtitle: gofakeit.Sentence(8),
			}
			if err := db.WithContext(ctx).Create(post).Error; err != nil {
				observability.Logger.Warn("skipping seed post", "error", err.Error())
				continue
			}
			postCount++

			for j := 0; j < opts.CommentsPerPost; j++ {
				commenter := users[gofakeit.Number(0, len(users)-1)]
				comment := &models.Comment{
					AuthorID: commenter.ID,
					PostID:   post.ID,
					Body:     gofakeit.Sentence(gofakeit.Number(5, 20)),
				}
				if err := db.WithContext(ctx).Create(comment).Error; err != nil {
					observability.Logger.Warn("skipping seed comment", "error", err.Error())
					continue
				}
				commentCount++
			}
		}
	}

	observability.Logger.Info("seed complete",
		"users", len(users), "posts", postCount, "comments", commentCount)
	return nil
}
