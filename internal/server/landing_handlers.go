package server

import (
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetLanding handles GET /api/. The response combines the post list with
// best-effort headlines and weather; a provider outage drops its section
// but never fails the request. An optional ?location= query selects the
// forecast location, falling back to the host's IP-derived location.
func (s *Server) GetLanding(c *fiber.Ctx) error {
	limit, offset := paginationParams(c)
	posts, err := s.postSvc.ListPosts(c.Context(), limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	external := s.resolver.BuildLandingContext(c.Context(), c.Query("location"))

	return c.JSON(fiber.Map{
		"posts":     posts,
		"headlines": external.Headlines,
		"forecast":  external.Forecast,
	})
}
