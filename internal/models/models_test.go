package models

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestCanModify(t *testing.T) {
	t.Parallel()

	post := &Post{ID: 10, AuthorID: 5}

	tests := []struct {
		name    string
		actorID uint
		want    bool
	}{
		{"author", 5, true},
		{"superuser", SuperUserID, true},
		{"other user", 7, false},
		{"anonymous", 0, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, post.CanModify(tt.actorID))
		})
	}
}

func TestStatusForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"conflict", NewConflictError("dup"), fiber.StatusConflict},
		{"not found", NewNotFoundError("Post", 1), fiber.StatusNotFound},
		{"forbidden", NewForbiddenError("no"), fiber.StatusForbidden},
		{"needs login", NewNeedsLoginError(), fiber.StatusUnauthorized},
		{"invalid credentials", NewInvalidCredentialsError(), fiber.StatusUnauthorized},
		{"unauthorized", NewUnauthorizedError("no token"), fiber.StatusUnauthorized},
		{"validation", NewValidationError("bad"), fiber.StatusBadRequest},
		{"delivery", NewDeliveryError(errors.New("smtp down")), fiber.StatusBadGateway},
		{"internal", NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
		{"plain error", errors.New("anything"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StatusForError(tt.err))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("smtp refused")
	err := NewDeliveryError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "smtp refused")
}
