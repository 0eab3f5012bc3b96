package handlers

import (
	"errors"

	mw "go-logstore/internal/middleware"
	"go-logstore/internal/pkg/validation"
	"go-logstore/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles authentication related HTTP requests
type AuthHandler struct {
	authService services.AuthService
	// No logger stored here, obtained per request from context
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest defines the expected JSON body for login requests
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterRequest defines the expected JSON body for registration requests
type RegisterRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin viewer"`
}

// Login handles POST /auth/login requests
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	logger := mw.GetRequestLogger(c)

	if !validation.ParseAndValidate(c, &req) {
		logger.Warn("Login request validation failed or bad request body")
		return nil // Response already sent by ParseAndValidate
	}

	token, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrInvalidCredentials):
			logger.Warn("Login failed", zap.String("email", req.Email), zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			logger.Error("Internal server error during login", zap.String("email", req.Email), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Login failed due to an internal error",
			})
		}
	}

	logger.Info("Login successful", zap.String("email", req.Email))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}

// Register handles POST /auth/register requests
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	logger := mw.GetRequestLogger(c)

	if !validation.ParseAndValidate(c, &req) {
		logger.Warn("Register request validation failed or bad request body")
		return nil
	}
	if req.Role == "" {
		req.Role = "admin"
	}

	_, authenticated := c.Locals(mw.UserIDKey).(int64)
	user, err := h.authService.Register(c.Context(), req.Name, req.Email, req.Password, req.Role, authenticated)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailExists):
			logger.Warn("Registration failed: duplicate email", zap.String("email", req.Email))
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, services.ErrRegistrationClosed):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			logger.Error("Internal server error during registration", zap.String("email", req.Email), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Registration failed due to an internal error",
			})
		}
	}

	logger.Info("Registration successful", zap.String("email", req.Email), zap.Int64("userID", user.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"user":    user,
	})
}
