package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-logstore/internal/database"
	"go-logstore/internal/models"
	"go-logstore/internal/store"

	"github.com/gofiber/fiber/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) (*fiber.App, *store.Store) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	opts := store.DefaultOptions()
	opts.FlushInterval = time.Hour
	opts.SweepInterval = time.Hour
	st := store.New(db, database.SQLite, opts, zap.NewNop())
	require.NoError(t, st.Initialize(context.Background()))
	t.Cleanup(func() { st.Stop(context.Background()) })

	h := NewLogHandler(st)
	app := fiber.New()
	app.Post("/logs", h.PostLogs)
	app.Get("/logs", h.GetLogs)
	app.Get("/logs/search", h.SearchLogs)
	app.Get("/logs/hostnames", h.GetHostnames)
	app.Get("/logs/:id/meta", h.GetMeta)
	app.Delete("/logs", h.DeleteAllLogs)
	return app, st
}

func decodeBody(t *testing.T, r io.Reader) map[string]json.RawMessage {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(r).Decode(&body))
	return body
}

func TestPostLogs_AcceptsAndBuffers(t *testing.T) {
	app, st := newTestApp(t)

	payload := `[{"timestamp":"2026-08-01T12:00:00Z","hostname":"web-1","pid":77,"source":"app","level":"info","message":"hello"}]`
	req := httptest.NewRequest(fiber.MethodPost, "/logs", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	require.Equal(t, 1, st.PendingCount())
}

func TestPostLogs_RejectsMalformedBody(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/logs", strings.NewReader(`{"not":"an array"`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetLogs_FilterParsing(t *testing.T) {
	app, st := newTestApp(t)
	ctx := context.Background()

	st.PostLogs([]models.LogEntry{
		{Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC), Hostname: "web-1", Source: "app", Level: "info", Message: "a"},
		{Timestamp: time.Date(2026, 8, 1, 12, 1, 0, 0, time.UTC), Hostname: "web-2", Source: "app", Level: "error", Message: "b"},
	})
	require.NoError(t, st.Flush(ctx))

	req := httptest.NewRequest(fiber.MethodGet, "/logs?hostname=web-2&level=error", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	var items []models.LogEntry
	require.NoError(t, json.Unmarshal(body["items"], &items))
	require.Len(t, items, 1)
	require.Equal(t, "b", items[0].Message)
}

func TestGetLogs_RejectsBadTimestamp(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/logs?lte_timestamp=yesterday", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSearchLogs_ReturnsEffectiveFilters(t *testing.T) {
	app, st := newTestApp(t)
	ctx := context.Background()

	st.PostLogs([]models.LogEntry{
		{Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC), Hostname: "web-1", Source: "app", Level: "info", Message: "disk almost full"},
	})
	require.NoError(t, st.Flush(ctx))

	req := httptest.NewRequest(fiber.MethodGet, "/logs/search?q=disk+full&lte_timestamp=2026-08-01T13:00:00Z", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	var items []models.LogEntry
	require.NoError(t, json.Unmarshal(body["items"], &items))
	require.Len(t, items, 1)

	var filters models.LogFilter
	require.NoError(t, json.Unmarshal(body["filters"], &filters))
	require.NotNil(t, filters.GteTimestamp)
	require.Equal(t, time.Date(2026, 7, 31, 13, 0, 0, 0, time.UTC), filters.GteTimestamp.UTC())
}

func TestGetMeta_NotFound(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/logs/42/meta", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	req = httptest.NewRequest(fiber.MethodGet, "/logs/zero/meta", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteAllLogs(t *testing.T) {
	app, st := newTestApp(t)
	ctx := context.Background()

	st.PostLogs([]models.LogEntry{{Timestamp: time.Now().UTC(), Hostname: "web-1", Source: "app", Level: "info", Message: "x"}})
	require.NoError(t, st.Flush(ctx))

	req := httptest.NewRequest(fiber.MethodDelete, "/logs", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	logs, err := st.GetLogs(ctx, models.LogFilter{})
	require.NoError(t, err)
	require.Empty(t, logs)
}
