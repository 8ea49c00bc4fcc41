package server

import (
	"time"

	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// setSessionCookie mirrors the token into an http-only cookie so browser
// clients stay logged in without holding the token in script.
func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: "Lax",
		Path:     "/",
	})
}

// Register handles POST /api/auth/register. A duplicate email or username
// yields 409 with no partial account.
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	user, token, err := s.authSvc.Register(c.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	observability.Logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	s.setSessionCookie(c, token)
	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token, User: user})
}

// Login handles POST /api/auth/login.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	user, token, err := s.authSvc.Login(c.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	s.setSessionCookie(c, token)
	return c.JSON(authResponse{Token: token, User: user})
}

// Logout handles POST /api/auth/logout. The session's token ID is revoked
// server-side so the token stops working before its natural expiry.
func (s *Server) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("sessionJTI").(string)
	exp, _ := c.Locals("sessionExp").(time.Time)

	if err := s.authSvc.Logout(c.Context(), jti, exp); err != nil {
		observability.Logger.Error("session revocation failed", "error", err.Error())
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Path:     "/",
	})

	return c.JSON(fiber.Map{"message": "Logged out"})
}
