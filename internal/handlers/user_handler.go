package handlers

import (
	"errors"
	"strconv"

	mw "go-logstore/internal/middleware"
	"go-logstore/internal/pkg/validation"
	"go-logstore/internal/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler handles user management HTTP requests
type UserHandler struct {
	store *store.Store
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(st *store.Store) *UserHandler {
	return &UserHandler{store: st}
}

// UpdateUserRequest defines the expected JSON body for profile updates
type UpdateUserRequest struct {
	Name string `json:"name" validate:"max=100"`
	Role string `json:"role" validate:"omitempty,oneof=admin viewer"`
}

// UpdatePasswordRequest defines the expected JSON body for password updates
type UpdatePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// ListUsers handles GET /users requests.
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	logger := mw.GetRequestLogger(c)

	users, err := h.store.GetAllUsers(c.Context())
	if err != nil {
		logger.Error("Failed to list users", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list users"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"items": users})
}

// CountUsers handles GET /users/count requests.
func (h *UserHandler) CountUsers(c *fiber.Ctx) error {
	logger := mw.GetRequestLogger(c)

	count, err := h.store.GetUserCount(c.Context())
	if err != nil {
		logger.Error("Failed to count users", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count users"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"count": count})
}

// GetUser handles GET /users/:email requests.
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	logger := mw.GetRequestLogger(c)
	email := c.Params("email")

	user, err := h.store.GetUserByEmail(c.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		logger.Error("Failed to get user", zap.String("email", email), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to get user"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"item": user})
}

// UpdateUser handles PUT /users/:email requests.
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	logger := mw.GetRequestLogger(c)
	email := c.Params("email")

	var req UpdateUserRequest
	if !validation.ParseAndValidate(c, &req) {
		return nil
	}

	user, err := h.store.UpdateUserByEmail(c.Context(), email, req.Name, req.Role)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		logger.Error("Failed to update user", zap.String("email", email), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}
	logger.Info("User updated", zap.String("email", email))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"item": user})
}

// UpdatePassword handles PUT /users/:email/password requests.
func (h *UserHandler) UpdatePassword(c *fiber.Ctx) error {
	logger := mw.GetRequestLogger(c)
	email := c.Params("email")

	var req UpdatePasswordRequest
	if !validation.ParseAndValidate(c, &req) {
		return nil
	}

	if err := h.store.UpdatePassword(c.Context(), email, req.NewPassword); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		logger.Error("Failed to update password", zap.String("email", email), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update password"})
	}
	logger.Info("Password updated", zap.String("email", email))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Password updated"})
}

// DeleteUser handles DELETE /users/:id requests.
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	logger := mw.GetRequestLogger(c)

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	if err := h.store.DeleteUser(c.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		logger.Error("Failed to delete user", zap.Int64("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete user"})
	}
	logger.Info("User deleted", zap.Int64("id", id))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "User deleted"})
}
