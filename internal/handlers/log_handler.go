package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	mw "go-logstore/internal/middleware"
	"go-logstore/internal/models"
	"go-logstore/internal/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// LogHandler handles log ingestion and query HTTP requests
type LogHandler struct {
	store *store.Store
}

// NewLogHandler creates a new LogHandler
func NewLogHandler(st *store.Store) *LogHandler {
	return &LogHandler{store: st}
}

// PostLogs handles POST /logs requests: entries are buffered fire-and-forget,
// so the response only acknowledges acceptance.
func (h *LogHandler) PostLogs(c *fiber.Ctx) error {
	logger := mw.GetRequestLogger(c)

	var entries []models.LogEntry
	if err := c.BodyParser(&entries); err != nil {
		logger.Warn("Failed to parse log entries body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: expected a JSON array of log entries",
		})
	}

	h.store.PostLogs(entries)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"accepted": len(entries),
	})
}

// GetLogs handles GET /logs requests.
func (h *LogHandler) GetLogs(c *fiber.Ctx) error {
	logger := mw.GetRequestLogger(c)

	filter, err := parseLogFilter(c)
	if err != nil {
		logger.Warn("Invalid log filter", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	items, err := h.store.GetLogs(c.Context(), filter)
	if err != nil {
		logger.Error("Failed to get logs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to get logs"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"items": items})
}

// SearchLogs handles GET /logs/search requests. The response reports the
// effective filters, including any synthesized timestamp bound.
func (h *LogHandler) SearchLogs(c *fiber.Ctx) error {
	logger := mw.GetRequestLogger(c)

	filter, err := parseLogFilter(c)
	if err != nil {
		logger.Warn("Invalid log filter", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var terms []string
	if q := c.Query("q"); q != "" {
		terms = strings.Fields(q)
	}

	items, effective, err := h.store.SearchLogs(c.Context(), terms, filter)
	if err != nil {
		logger.Error("Failed to search logs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to search logs"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"items": items, "filters": effective})
}

// GetMeta handles GET /logs/:id/meta requests.
func (h *LogHandler) GetMeta(c *fiber.Ctx) error {
	logger := mw.GetRequestLogger(c)

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid log id"})
	}

	meta, err := h.store.GetMeta(c.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Log entry not found"})
		}
		logger.Error("Failed to get log meta", zap.Int64("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to get log meta"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"item": fiber.Map{"id": id, "meta": meta}})
}

// GetHostnames handles GET /logs/hostnames requests.
func (h *LogHandler) GetHostnames(c *fiber.Ctx) error {
	logger := mw.GetRequestLogger(c)

	hostnames, err := h.store.GetHostnames(c.Context())
	if err != nil {
		logger.Error("Failed to get hostnames", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to get hostnames"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"items": hostnames})
}

// DeleteAllLogs handles DELETE /logs requests.
func (h *LogHandler) DeleteAllLogs(c *fiber.Ctx) error {
	logger := mw.GetRequestLogger(c)

	if err := h.store.DeleteAllLogs(c.Context()); err != nil {
		logger.Error("Failed to delete all logs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete logs"})
	}
	logger.Info("All logs deleted")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "All logs deleted"})
}

// InsertNotification handles POST /notifications requests.
func (h *LogHandler) InsertNotification(c *fiber.Ctx) error {
	logger := mw.GetRequestLogger(c)

	var n models.Notification
	if err := c.BodyParser(&n); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	receipt, err := h.store.InsertNotificationItem(c.Context(), &n)
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		logger.Error("Failed to insert notification", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to insert notification"})
	}
	return c.Status(fiber.StatusCreated).JSON(receipt)
}

// parseLogFilter reads the LogFilter fields from query parameters.
func parseLogFilter(c *fiber.Ctx) (models.LogFilter, error) {
	var f models.LogFilter

	f.Hostname = c.Query("hostname")
	if v := c.Query("hostnames"); v != "" {
		f.Hostnames = splitNonEmpty(v)
	}
	f.Source = c.Query("source")
	if v := c.Query("sources"); v != "" {
		f.Sources = splitNonEmpty(v)
	}
	f.Level = c.Query("level")
	if v := c.Query("levels"); v != "" {
		f.Levels = splitNonEmpty(v)
	}

	var err error
	if f.Pid, err = queryInt(c, "pid"); err != nil {
		return f, err
	}
	var n int
	if n, err = queryInt(c, "limit"); err != nil {
		return f, err
	}
	f.Limit = n

	if f.ExternalID, err = queryInt64(c, "external_id"); err != nil {
		return f, err
	}
	if f.LtID, err = queryInt64(c, "lt_id"); err != nil {
		return f, err
	}
	if f.GtID, err = queryInt64(c, "gt_id"); err != nil {
		return f, err
	}

	if v := c.Query("level_json"); v != "" {
		if err := json.Unmarshal([]byte(v), &f.LevelJSON); err != nil {
			return f, errors.New("invalid level_json: expected a JSON array of {source, level} pairs")
		}
	}

	if ts, err := queryTime(c, "lte_timestamp"); err != nil {
		return f, err
	} else if ts != nil {
		f.LteTimestamp = ts
	}
	if ts, err := queryTime(c, "gte_timestamp"); err != nil {
		return f, err
	} else if ts != nil {
		f.GteTimestamp = ts
	}

	return f, nil
}

func splitNonEmpty(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New("invalid " + key + ": expected an integer")
	}
	return n, nil
}

func queryInt64(c *fiber.Ctx, key string) (int64, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, errors.New("invalid " + key + ": expected an integer")
	}
	return n, nil
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, errors.New("invalid " + key + ": expected an RFC3339 timestamp")
	}
	return &ts, nil
}
