package routes

import (
	"database/sql"
	"time"

	"go-logstore/internal/bootstrap"
	"go-logstore/internal/config"
	mw "go-logstore/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SetupRoutes configures the application routes.
func SetupRoutes(
	app *fiber.App,
	cfg *config.Config,
	logger *zap.Logger,
	components *bootstrap.AppComponents,
	db *sql.DB, // Pass DB handle for health check
) {
	logger.Info("Setting up application routes...")

	// --- Public Routes ---

	// Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		healthStatus := fiber.Map{"status": "healthy", "timestamp": time.Now().UTC()}
		if db != nil {
			if err := db.PingContext(c.Context()); err == nil {
				healthStatus["database"] = "connected"
			} else {
				healthStatus["status"] = "degraded"
				healthStatus["database"] = "disconnected"
				mw.GetRequestLogger(c).Warn("Health check: database ping failed", zap.Error(err))
			}
		} else {
			healthStatus["database"] = "uninitialized"
		}
		return c.Status(fiber.StatusOK).JSON(healthStatus)
	})

	// --- API v1 Routes ---
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/login", components.AuthHandler.Login)
	// Open only for first-run setup; the handler closes registration once a
	// user exists.
	auth.Post("/register", components.AuthHandler.Register)

	// --- Protected Routes ---
	protected := api.Group("", mw.Protected(cfg.JWTSecret))

	logs := protected.Group("/logs")
	logs.Post("/", components.LogHandler.PostLogs)
	logs.Get("/", components.LogHandler.GetLogs)
	logs.Get("/search", components.LogHandler.SearchLogs)
	logs.Get("/hostnames", components.LogHandler.GetHostnames)
	logs.Get("/:id/meta", components.LogHandler.GetMeta)
	logs.Delete("/", components.LogHandler.DeleteAllLogs)

	protected.Post("/notifications", components.LogHandler.InsertNotification)

	configGroup := protected.Group("/config")
	configGroup.Get("/:key", components.ConfigHandler.GetConfig)
	configGroup.Put("/:key", components.ConfigHandler.SetConfig)
	configGroup.Delete("/:key", components.ConfigHandler.DeleteConfig)

	users := protected.Group("/users")
	// Authenticated user creation; the register handler sees the JWT
	// identity set by Protected and bypasses the first-run-only check.
	users.Post("/", components.AuthHandler.Register)
	users.Get("/", components.UserHandler.ListUsers)
	users.Get("/count", components.UserHandler.CountUsers)
	users.Get("/:email", components.UserHandler.GetUser)
	users.Put("/:email", components.UserHandler.UpdateUser)
	users.Put("/:email/password", components.UserHandler.UpdatePassword)
	users.Delete("/:id", components.UserHandler.DeleteUser)

	logger.Info("Application routes configured.")
}
