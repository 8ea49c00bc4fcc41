package server

import (
	"strconv"

	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Body     string `json:"body"`
	ImageURL string `json:"img_url"`
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, models.NewValidationError("Invalid " + name + " parameter")
	}
	return uint(id), nil
}

// paginationParams reads limit/offset query params with sane bounds.
func paginationParams(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	limit, offset := paginationParams(c)
	posts, err := s.postSvc.ListPosts(c.Context(), limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{
		"posts": posts,
		"count": len(posts),
	})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postSvc.GetPost(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	authorID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	limit, offset := paginationParams(c)
	posts, err := s.postSvc.ListPostsByAuthor(c.Context(), authorID, limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{
		"posts": posts,
		"count": len(posts),
	})
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postSvc.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID: currentUserID(c),
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Body:     req.Body,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	observability.Logger.Info("post created", "post_id", post.ID, "author_id", post.AuthorID)
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postSvc.UpdatePost(c.Context(), service.UpdatePostInput{
		ActorID:  currentUserID(c),
		PostID:   id,
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Body:     req.Body,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id. The post's comments are removed
// in the same transaction.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.postSvc.DeletePost(c.Context(), currentUserID(c), id); err != nil {
		return models.RespondWithError(c, err)
	}

	observability.Logger.Info("post deleted", "post_id", id, "actor_id", currentUserID(c))
	return c.JSON(fiber.Map{"message": "Post deleted"})
}
