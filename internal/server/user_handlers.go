package server

import (
	"time"

	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// authorView is the public directory shape for a user: no email, only the
// Gravatar hash.
type authorView struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	EmailHash string    `json:"email_hash"`
	CreatedAt time.Time `json:"created_at"`
}

// GetUsers handles GET /api/users, the public author directory.
func (s *Server) GetUsers(c *fiber.Ctx) error {
	limit, offset := paginationParams(c)

	users, err := s.userRepo.List(c.Context(), limit, offset)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	authors := make([]authorView, 0, len(users))
	for _, u := range users {
		authors = append(authors, authorView{
			ID:        u.ID,
			Username:  u.Username,
			EmailHash: u.EmailHash,
			CreatedAt: u.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"users": authors,
		"count": len(authors),
	})
}
