package service

import (
	"context"
	"errors"
	"time"

	"quill/internal/models"
	"quill/internal/repository"

	"gorm.io/gorm"
)

// displayDateFormat fixes a post's human-readable date at creation time,
// e.g. "August 28, 2026". The date is never recomputed afterwards.
const displayDateFormat = "January 2, 2006"

// PostService implements the post lifecycle: create, read, update, delete.
// Edit and delete are gated on author-or-superuser.
type PostService struct {
	postRepo repository.PostRepository
}

// CreatePostInput holds the new-post form fields.
type CreatePostInput struct {
	AuthorID uint
	Title    string
	Subtitle string
	Body     string
	ImageURL string
}

// UpdatePostInput holds the edit-post form fields. Date and author are
// immutable and deliberately absent.
type UpdatePostInput struct {
	ActorID  uint
	PostID   uint
	Title    string
	Subtitle string
	Body     string
	ImageURL string
}

// NewPostService creates a PostService.
func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

// CreatePost inserts a new post with its display date set to now. A title
// collision yields Conflict with no partial write.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Title == "" || in.Body == "" {
		return nil, models.NewValidationError("Title and body are required")
	}

	post := &models.Post{
		AuthorID: in.AuthorID,
		Title:    in.Title,
		Date:     time.Now().Format(displayDateFormat),
		Body:     in.Body,
		ImageURL: in.ImageURL,
		Subtitle: in.Subtitle,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflictError("A post with this title already exists")
		}
		return nil, models.NewInternalError(err)
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// GetPost loads a post by id.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// ListPosts returns posts newest first.
func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	posts, err := s.postRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListPostsByAuthor returns one author's posts newest first.
func (s *PostService) ListPostsByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	posts, err := s.postRepo.GetByAuthorID(ctx, authorID, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// UpdatePost overwrites the mutable fields of a post. Only the post's
// author or the superuser may edit; anyone else gets a hard Forbidden.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.GetPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	if !post.CanModify(in.ActorID) {
		return nil, models.NewForbiddenError("Only the author may edit this post")
	}
	if in.Title == "" || in.Body == "" {
		return nil, models.NewValidationError("Title and body are required")
	}

	post.Title = in.Title
	post.Subtitle = in.Subtitle
	post.Body = in.Body
	post.ImageURL = in.ImageURL

	if err := s.postRepo.Update(ctx, post); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflictError("A post with this title already exists")
		}
		return nil, models.NewInternalError(err)
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// DeletePost removes the post and all of its comments atomically. Only the
// post's author or the superuser may delete.
func (s *PostService) DeletePost(ctx context.Context, actorID, postID uint) error {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	if !post.CanModify(actorID) {
		return models.NewForbiddenError("Only the author may delete this post")
	}

	if err := s.postRepo.DeleteWithComments(ctx, postID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
