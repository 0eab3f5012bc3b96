package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go-logstore/internal/bootstrap"
	"go-logstore/internal/config"
	"go-logstore/internal/database"
	"go-logstore/internal/logging"
	"go-logstore/internal/middleware"
	"go-logstore/internal/routes"
	"go-logstore/internal/store"
	"go-logstore/internal/utils"

	"github.com/DeRuina/timberjack"
	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Run initializes and starts the application
func Run() {
	initAppStartTime := time.Now()

	// --- 1. Load Configuration ---
	tempConfigLogger, _ := zap.NewProduction(zap.ErrorOutput(zapcore.Lock(os.Stderr)))
	defer tempConfigLogger.Sync()

	cfg, err := config.LoadConfig(tempConfigLogger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- 2. Create File Writer/Syncer for timberjack ---
	logDir := filepath.Dir(cfg.LogFilePath)
	if logDir != "." && logDir != "/" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: Failed to ensure log directory %s exists: %v\n", logDir, err)
			os.Exit(1)
		}
	}
	timberJackLogger := &timberjack.Logger{
		Filename:         cfg.LogFilePath,
		MaxSize:          cfg.LogMaxSize,
		MaxBackups:       cfg.LogMaxBackups,
		MaxAge:           cfg.LogMaxAge,
		Compress:         cfg.LogCompress,
		LocalTime:        true,
		RotationInterval: time.Duration(cfg.LogRotateInterval) * time.Hour,
	}
	fileSyncer := zapcore.AddSync(timberJackLogger)

	// --- 3. Initialize Application Logger ---
	logger, err := logging.InitLogger(cfg, fileSyncer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize application logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobalLogger(logger)
	utils.TraceConfigDetails(logger, cfg)

	// --- 4. Open Database ---
	db, dialect, err := database.Open(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	// --- 5. Initialize Log Store ---
	st := store.New(db, dialect, store.OptionsFromConfig(cfg), logger)
	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	if err := st.Initialize(initCtx); err != nil {
		cancelInit()
		logger.Fatal("Failed to initialize log store", zap.Error(err))
	}
	cancelInit()

	// Surface background flush/sweep failures in the application log.
	go func() {
		for err := range st.Errors() {
			logger.Error("Background store error", zap.Error(err))
		}
	}()

	// --- 6. Initialize Fiber App ---
	logger.Info("Initializing Fiber application...")
	appFiber := fiber.New(fiber.Config{
		AppName: "go-logstore",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			lg := middleware.GetRequestLogger(c)
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) && e != nil {
				code = e.Code
			}
			fields := []zap.Field{
				zap.Int("status", code),
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
				zap.String("ip", c.IP()),
				zap.Error(err),
			}
			if reqIDStr, ok := c.Locals(middleware.RequestIDKey).(string); ok && reqIDStr != "" {
				fields = append(fields, zap.String("request_id", reqIDStr))
			}
			if code == fiber.StatusNotFound {
				lg.Warn("Resource not found", fields...)
			} else {
				lg.Error("Generic ErrorHandler", fields...)
			}
			resp := fiber.Map{"error": "An unexpected error occurred"}
			if cfg.AppEnv != "production" && err != nil {
				resp["detail"] = err.Error()
			}
			return c.Status(code).JSON(resp)
		},
	})

	// --- 7. Initialize Application Components ---
	components := bootstrap.InitializeAppComponents(cfg, logger, st)

	// --- 8. Register Middleware ---
	appFiber.Use(recover.New(recover.Config{
		EnableStackTrace: strings.ToLower(cfg.LogLevel) == "debug",
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			middleware.GetRequestLogger(c).Error("Panic recovered", zap.Any("panic_value", e))
		},
	}))
	logger.Info("Configuring CORS", zap.String("origins", cfg.CORSAllowOrigins), zap.String("methods", cfg.CORSAllowMethods), zap.String("headers", cfg.CORSAllowHeaders))
	appFiber.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: cfg.CORSAllowMethods,
		AllowHeaders: cfg.CORSAllowHeaders,
	}))
	appFiber.Use(middleware.RequestLogger(logger))
	appFiber.Use(fiberzap.New(fiberzap.Config{
		Logger: logger,
		Fields: []string{"status", "method", "url", "ip", "latency", "error"},
		FieldsFunc: func(c *fiber.Ctx) []zap.Field {
			fields := []zap.Field{zap.String("log_type", "access")}
			if idVal, ok := c.Locals(middleware.RequestIDKey).(string); ok && idVal != "" {
				fields = append(fields, zap.String("request_id", idVal))
			}
			return fields
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))

	// --- 9. Setup Application Routes ---
	routes.SetupRoutes(appFiber, cfg, logger, components, db)

	// --- 10. Start Server & Graceful Shutdown ---
	serverCtx, cancelServerCtx := context.WithCancel(context.Background())
	defer cancelServerCtx()
	serverStopped := make(chan struct{})

	initAppDurationMs := time.Since(initAppStartTime).Milliseconds()

	go func() {
		defer close(serverStopped)
		listenAddr := ":" + cfg.Port
		logger.Info(fmt.Sprintf("Completed initialization application in %d ms.", initAppDurationMs))
		logger.Info("Starting Fiber server...",
			zap.String("address", listenAddr),
			zap.Int("pid", os.Getpid()),
			zap.String("app_env", cfg.AppEnv),
		)

		if err := appFiber.Listen(listenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server listener failed", zap.String("address", listenAddr), zap.Error(err))
			cancelServerCtx()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	select {
	case s := <-sig:
		logger.Info("Shutdown signal received.", zap.String("signal", s.String()))
	case <-serverCtx.Done():
		logger.Info("Server context cancelled, initiating shutdown.")
	}

	logger.Info("Initiating graceful shutdown...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancelShutdown()

	if err := appFiber.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Fiber server shutdown failed", zap.Error(err))
	} else {
		logger.Info("Fiber server gracefully stopped.")
	}

	// Stop the store last so in-flight requests could still buffer; Stop
	// performs a final flush of whatever remains.
	if err := st.Stop(shutdownCtx); err != nil {
		logger.Error("Log store shutdown flush failed", zap.Error(err))
	} else {
		logger.Info("Log store stopped.")
	}

	<-serverStopped
	logger.Info("Application shut down.")
	logger.Sync()
}
