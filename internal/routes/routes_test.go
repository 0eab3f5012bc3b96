package routes

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-logstore/internal/bootstrap"
	"go-logstore/internal/config"
	"go-logstore/internal/database"
	"go-logstore/internal/middleware"
	"go-logstore/internal/store"

	"github.com/gofiber/fiber/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *fiber.App {
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

	cfg := &config.Config{JWTSecret: "route-test-secret"}
	logger := zap.NewNop()
	components := bootstrap.InitializeAppComponents(cfg, logger, st)

	app := fiber.New()
	app.Use(middleware.RequestLogger(logger))
	SetupRoutes(app, cfg, logger, components, db)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body, token string) (int, map[string]json.RawMessage) {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestRegister_FirstRunThenAuthenticatedCreation(t *testing.T) {
	app := newTestRouter(t)

	// First-run setup: open registration while no users exist.
	status, _ := postJSON(t, app, "/api/v1/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"s3cret1","role":"admin"}`, "")
	require.Equal(t, fiber.StatusCreated, status)

	// With a user present, the open route is closed.
	status, _ = postJSON(t, app, "/api/v1/auth/register",
		`{"name":"Grace","email":"grace@example.com","password":"s3cret2"}`, "")
	require.Equal(t, fiber.StatusForbidden, status)

	status, body := postJSON(t, app, "/api/v1/auth/login",
		`{"email":"ada@example.com","password":"s3cret1"}`, "")
	require.Equal(t, fiber.StatusOK, status)
	var token string
	require.NoError(t, json.Unmarshal(body["token"], &token))
	require.NotEmpty(t, token)

	// An authenticated admin can still create users through the protected
	// route.
	status, _ = postJSON(t, app, "/api/v1/users/",
		`{"name":"Grace","email":"grace@example.com","password":"s3cret2","role":"viewer"}`, token)
	require.Equal(t, fiber.StatusCreated, status)

	// Without a token the protected route is out of reach.
	status, _ = postJSON(t, app, "/api/v1/users/",
		`{"name":"Eve","email":"eve@example.com","password":"s3cret3"}`, "")
	require.Equal(t, fiber.StatusUnauthorized, status)
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	app := newTestRouter(t)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/logs/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestRouter(t)

	req := httptest.NewRequest(fiber.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "healthy", body["status"])
	require.Equal(t, "connected", body["database"])
}
