package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Details  string `json:"details,omitempty"`
	LoginURL string `json:"login_url,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error codes used across the application.
const (
	CodeConflict           = "CONFLICT"
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeNeedsLogin         = "NEEDS_LOGIN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeDeliveryError      = "DELIVERY_ERROR"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// Predefined error constructors
func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

// NewForbiddenError is a hard denial for authenticated but unauthorized
// actors, distinct from the NeedsLogin soft gate.
func NewForbiddenError(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

// NewNeedsLoginError signals that the caller should route to the login flow
// rather than receive a hard denial.
func NewNeedsLoginError() *AppError {
	return &AppError{Code: CodeNeedsLogin, Message: "Please log in to continue"}
}

// NewInvalidCredentialsError deliberately does not distinguish an unknown
// email from a wrong password, to avoid user enumeration.
func NewInvalidCredentialsError() *AppError {
	return &AppError{Code: CodeInvalidCredentials, Message: "Invalid email or password"}
}

func NewDeliveryError(err error) *AppError {
	return &AppError{Code: CodeDeliveryError, Message: "Message delivery failed", Err: err}
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidationError, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

func NewInternalError(err error) *AppError {
	return &AppError{Code: CodeInternalError, Message: "Internal server error", Err: err}
}

// StatusForError maps an application error to its HTTP status code.
func StatusForError(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}

	switch appErr.Code {
	case CodeConflict:
		return fiber.StatusConflict
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeNeedsLogin, CodeInvalidCredentials, CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeValidationError:
		return fiber.StatusBadRequest
	case CodeDeliveryError:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes a standardized error response. Internal error
// details are only echoed for non-internal codes.
func RespondWithError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewInternalError(err)
	}

	response := ErrorResponse{
		Error: appErr.Message,
		Code:  appErr.Code,
	}
	if appErr.Err != nil && appErr.Code != CodeInternalError {
		response.Details = appErr.Err.Error()
	}
	if appErr.Code == CodeNeedsLogin {
		response.LoginURL = "/login"
	}

	return c.Status(StatusForError(appErr)).JSON(response)
}
