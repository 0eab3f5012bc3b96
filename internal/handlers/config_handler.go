package handlers

import (
	"errors"

	mw "go-logstore/internal/middleware"
	"go-logstore/internal/pkg/validation"
	"go-logstore/internal/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ConfigHandler handles config key/value HTTP requests
type ConfigHandler struct {
	store *store.Store
}

// NewConfigHandler creates a new ConfigHandler
func NewConfigHandler(st *store.Store) *ConfigHandler {
	return &ConfigHandler{store: st}
}

// SetConfigRequest defines the expected JSON body for set-config requests
type SetConfigRequest struct {
	Value string `json:"value" validate:"required"`
}

// GetConfig handles GET /config/:key requests. An absent key resolves with
// an absent item rather than an error.
func (h *ConfigHandler) GetConfig(c *fiber.Ctx) error {
	logger := mw.GetRequestLogger(c)
	key := c.Params("key")

	entry, err := h.store.GetConfig(c.Context(), key)
	if err != nil {
		logger.Error("Failed to get config", zap.String("key", key), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to get config"})
	}
	if entry == nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"item": nil})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"item": entry})
}

// SetConfig handles PUT /config/:key requests (upsert).
func (h *ConfigHandler) SetConfig(c *fiber.Ctx) error {
	logger := mw.GetRequestLogger(c)
	key := c.Params("key")

	var req SetConfigRequest
	if !validation.ParseAndValidate(c, &req) {
		return nil
	}

	entry, err := h.store.SetConfig(c.Context(), key, req.Value)
	if err != nil {
		logger.Error("Failed to set config", zap.String("key", key), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to set config"})
	}
	logger.Info("Config updated", zap.String("key", key))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"item": entry})
}

// DeleteConfig handles DELETE /config/:key requests.
func (h *ConfigHandler) DeleteConfig(c *fiber.Ctx) error {
	logger := mw.GetRequestLogger(c)
	key := c.Params("key")

	if err := h.store.DeleteConfig(c.Context(), key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Config key not found"})
		}
		logger.Error("Failed to delete config", zap.String("key", key), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete config"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Config deleted"})
}
