package bootstrap

import (
	"go-logstore/internal/config"
	"go-logstore/internal/handlers"
	"go-logstore/internal/services"
	"go-logstore/internal/store"

	"go.uber.org/zap"
)

// AppComponents holds the initialized handlers and services.
type AppComponents struct {
	AuthHandler   *handlers.AuthHandler
	LogHandler    *handlers.LogHandler
	ConfigHandler *handlers.ConfigHandler
	UserHandler   *handlers.UserHandler
	Store         *store.Store
}

// InitializeAppComponents creates and wires up the application's services
// and handlers around the initialized store.
func InitializeAppComponents(cfg *config.Config, logger *zap.Logger, st *store.Store) *AppComponents {
	logger.Info("Initializing application components: Services, Handlers...")

	// --- Services ---
	authService := services.NewAuthService(st, logger, cfg.JWTSecret)
	logger.Info("Services initialized.")

	// --- Handlers ---
	components := &AppComponents{
		AuthHandler:   handlers.NewAuthHandler(authService),
		LogHandler:    handlers.NewLogHandler(st),
		ConfigHandler: handlers.NewConfigHandler(st),
		UserHandler:   handlers.NewUserHandler(st),
		Store:         st,
	}
	logger.Info("Handlers initialized.")

	return components
}
