package service

import (
	"context"
	"errors"

	"quill/internal/models"
	"quill/internal/repository"

	"gorm.io/gorm"
)

const maxCommentLen = 10000

// CommentService implements the comment lifecycle. Comments are created by
// authenticated readers and removed only with their parent post.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

// AddCommentInput holds the comment form fields. ActorID is zero for an
// anonymous visitor.
type AddCommentInput struct {
	ActorID uint
	PostID  uint
	Body    string
}

// NewCommentService creates a CommentService.
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// AddComment inserts a comment bound to the actor and post. An anonymous
// actor receives NeedsLogin — a soft redirect to the login flow, not a hard
// denial — and no row is created.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, models.NewInternalError(err)
	}

	if in.ActorID == 0 {
		return nil, models.NewNeedsLoginError()
	}

	if in.Body == "" {
		return nil, models.NewValidationError("Comment body is required")
	}
	if len(in.Body) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	comment := &models.Comment{
		AuthorID: in.ActorID,
		PostID:   in.PostID,
		Body:     in.Body,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return created, nil
}

// ListComments returns a post's comments oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}
