package utils

import (
	"fmt"

	"go-logstore/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TraceConfigDetails logs the loaded configuration with secrets masked.
func TraceConfigDetails(logger *zap.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		fmt.Println("[WARN] logger or config is nil in TraceConfigDetails")
		return
	}

	maskedJWTSecret := "*** MASKED ***"
	if cfg.JWTSecret == "default-secret" {
		maskedJWTSecret = "default-secret (!!! WARNING: Using default JWT secret !!!)"
	} else if cfg.JWTSecret == "" {
		maskedJWTSecret = "--- EMPTY (!!! WARNING: JWT Secret is empty !!!) ---"
	}

	fields := []zapcore.Field{
		zap.String("AppEnv", cfg.AppEnv),
		zap.String("Port", cfg.Port),
		zap.String("JWTSecret", maskedJWTSecret),
		zap.String("DBDriver", cfg.DBDriver),
		zap.String("DBDSN", MaskDSN(cfg.DBDSN)),
		zap.Int("DBMaxOpenConns", cfg.DBMaxOpenConns),
		zap.Int("DBMaxIdleConns", cfg.DBMaxIdleConns),
		zap.Int("DBConnLifetimeMinutes", cfg.DBConnLifetimeMinutes),
		zap.String("LogFilePath", cfg.LogFilePath),
		zap.String("LogLevel", cfg.LogLevel),
		zap.Int("LogRotateIntervalHours", cfg.LogRotateInterval),
		zap.Int("LogMaxSizeMB", cfg.LogMaxSize),
		zap.Int("LogMaxBackups", cfg.LogMaxBackups),
		zap.Int("LogMaxAgeDays", cfg.LogMaxAge),
		zap.Bool("LogCompress", cfg.LogCompress),
		zap.Int("FlushBatchSize", cfg.FlushBatchSize),
		zap.Duration("FlushInterval", cfg.FlushInterval),
		zap.Bool("FlushRequeueOnFailure", cfg.FlushRequeueOnFailure),
		zap.Duration("SweepInterval", cfg.SweepInterval),
		zap.Int("SweepBatchSize", cfg.SweepBatchSize),
		zap.Duration("SweepDelay", cfg.SweepDelay),
		zap.Int64("DefaultTTLMs", cfg.DefaultTTLMs),
		zap.String("CORS_AllowOrigins", cfg.CORSAllowOrigins),
		zap.String("CORS_AllowMethods", cfg.CORSAllowMethods),
		zap.String("CORS_AllowHeaders", cfg.CORSAllowHeaders),
	}
	logger.Debug("Loaded application configuration details", fields...)
}
