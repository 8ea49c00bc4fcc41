package server

import (
	"quill/internal/mailer"
	"quill/internal/models"
	"quill/internal/observability"

	"github.com/gofiber/fiber/v2"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// SendContactMessage handles POST /api/contact. The submission is relayed
// verbatim to the operator mailbox; a delivery failure surfaces as 502.
func (s *Server) SendContactMessage(c *fiber.Ctx) error {
	var req contactRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	err := s.mailer.SendContactMessage(c.Context(), mailer.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	observability.Logger.Info("contact message relayed", "from", req.Email)
	return c.JSON(fiber.Map{"message": "Message sent"})
}
