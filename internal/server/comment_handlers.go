package server

import (
	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Body string `json:"comment_body"`
}

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	comments, err := s.commentSvc.ListComments(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{
		"comments": comments,
		"count":    len(comments),
	})
}

// AddComment handles POST /api/posts/:id/comments. An anonymous visitor gets
// a 401 with a login URL rather than a hard denial; no comment is created.
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentSvc.AddComment(c.Context(), service.AddCommentInput{
		ActorID: currentUserID(c),
		PostID:  postID,
		Body:    req.Body,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}
