package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap" // Use logger for loading errors
)

// Config holds all configuration for the application
type Config struct {
	AppEnv           string
	Port             string
	CORSAllowOrigins string
	CORSAllowMethods string
	CORSAllowHeaders string
	JWTSecret        string

	// Database settings. Driver is "sqlite3" or "postgres".
	DBDriver              string
	DBDSN                 string
	DBMaxOpenConns        int
	DBMaxIdleConns        int
	DBConnLifetimeMinutes int

	// Application log (zap) settings.
	LogFilePath       string
	LogLevel          string
	LogRotateInterval int // Hour
	LogMaxSize        int // MB
	LogMaxBackups     int
	LogMaxAge         int // Days
	LogCompress       bool

	// Write-buffer / flush settings.
	FlushBatchSize int           // Buffered entries that trigger a flush
	FlushInterval  time.Duration // Timer-based flush period

	// Retention settings.
	SweepInterval  time.Duration // Cadence of the retention sweepers
	SweepBatchSize int           // Max rows deleted per statement
	SweepDelay     time.Duration // Pause between delete batches
	DefaultTTLMs   int64         // Seeded logsTTL value, milliseconds

	// Delivery policy: re-queue a drained batch when its flush fails
	// (at-least-once) instead of dropping it (at-most-once, the default).
	FlushRequeueOnFailure bool
}

// LoadConfig reads configuration from environment variables or .env file
func LoadConfig(logger *zap.Logger) (*Config, error) { // logger can be nil here
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "local" // Default to local if not set
	}

	envFileName := fmt.Sprintf(".env.%s", appEnv)
	if _, err := os.Stat(envFileName); err == nil {
		if err := godotenv.Load(envFileName); err != nil {
			if logger != nil {
				logger.Warn("Error loading .env file, continuing with environment variables", zap.String("file", envFileName), zap.Error(err))
			}
		} else if logger != nil {
			logger.Info("Loaded configuration", zap.String("file", envFileName))
		}
	} else if appEnv == "local" {
		if _, err := os.Stat(".env.local"); err == nil {
			if err := godotenv.Load(".env.local"); err != nil && logger != nil {
				logger.Warn("Error loading .env.local file", zap.Error(err))
			}
		} else if logger != nil {
			logger.Warn(".env.local not found, relying on environment variables or defaults")
		}
	} else if logger != nil {
		logger.Warn("No specific .env file found for environment, relying on environment variables or defaults", zap.String("environment", appEnv))
	}

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "local"),
		Port:      getEnv("PORT", "3000"),
		JWTSecret: getEnv("JWT_SECRET", "default-secret"),

		DBDriver:              strings.ToLower(getEnv("DB_DRIVER", "sqlite3")),
		DBDSN:                 getEnv("DB_DSN", "./data/logstore.db"),
		DBMaxOpenConns:        getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:        getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		DBConnLifetimeMinutes: getEnvAsInt("DB_CONN_LIFETIME_MINUTES", 60),

		LogFilePath:       getEnv("LOG_FILE_PATH", "./logs/app.log"),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogRotateInterval: getEnvAsInt("LOG_ROTATE_INTERVAL", 1),
		LogMaxSize:        getEnvAsInt("LOG_MAX_SIZE", 100),
		LogMaxBackups:     getEnvAsInt("LOG_MAX_BACKUPS", 5),
		LogMaxAge:         getEnvAsInt("LOG_MAX_AGE", 30),
		LogCompress:       getEnvAsBool("LOG_COMPRESS", false),

		FlushBatchSize: getEnvAsInt("FLUSH_BATCH_SIZE", 100),

		SweepBatchSize: getEnvAsInt("SWEEP_BATCH_SIZE", 1000),
		DefaultTTLMs:   int64(getEnvAsInt("DEFAULT_LOGS_TTL_MS", 30*24*60*60*1000)),

		FlushRequeueOnFailure: getEnvAsBool("FLUSH_REQUEUE_ON_FAILURE", false),

		// Default AllowOrigins to "*" for local, empty for others (forcing explicit setting)
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", func() string {
			if getEnv("APP_ENV", "local") == "local" || getEnv("APP_ENV", "local") == "development" {
				return "*" // Be permissive in local/dev
			}
			return "" // Force setting in prod/other envs
		}()),
		CORSAllowMethods: getEnv("CORS_ALLOW_METHODS", "GET,POST,HEAD,PUT,DELETE,PATCH"),
		CORSAllowHeaders: getEnv("CORS_ALLOW_HEADERS", "Origin,Content-Type,Accept,Authorization"),
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "dpanic": true, "panic": true, "fatal": true}
	if !validLevels[cfg.LogLevel] {
		if logger != nil {
			logger.Warn("Invalid LOG_LEVEL specified, defaulting to 'info'", zap.String("invalidLevel", cfg.LogLevel))
		}
		cfg.LogLevel = "info" // Reset to default if invalid
	}

	cfg.FlushInterval = time.Duration(getEnvAsInt("FLUSH_INTERVAL_MS", 1000)) * time.Millisecond
	cfg.SweepInterval = time.Duration(getEnvAsInt("SWEEP_INTERVAL_MINUTES", 60)) * time.Minute
	cfg.SweepDelay = time.Duration(getEnvAsInt("SWEEP_DELAY_SECONDS", 10)) * time.Second

	if cfg.DBDriver != "sqlite3" && cfg.DBDriver != "postgres" {
		if logger != nil {
			logger.Error("Unsupported DB_DRIVER", zap.String("driver", cfg.DBDriver))
		}
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want sqlite3 or postgres)", cfg.DBDriver)
	}
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}
	if cfg.JWTSecret == "default-secret" && logger != nil {
		logger.Warn("JWT_SECRET is using the default value. Please set a strong secret in production.")
	}
	// Add warning for default/empty CORS origins in production
	if cfg.AppEnv != "local" && cfg.AppEnv != "development" && (cfg.CORSAllowOrigins == "*" || cfg.CORSAllowOrigins == "") {
		if logger != nil {
			logger.Warn("CORS_ALLOW_ORIGINS is set to '*' or is empty in a non-local/dev environment. This is insecure. Set specific origins for production.")
		}
		return nil, fmt.Errorf("CORS_ALLOW_ORIGINS must be set explicitly in production environments")
	}

	return cfg, nil
}

// Helper function to get env var or default
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Helper function to get env var as int or default
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// Helper function to get env var as bool or default
func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
