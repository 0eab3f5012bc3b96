package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"           // Postgres driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"go-logstore/internal/config"
	"go.uber.org/zap"
)

// Open initializes the database connection pool for the configured driver
// and verifies connectivity. For SQLite it also creates the directory
// holding the database file if it does not exist.
func Open(cfg *config.Config, logger *zap.Logger) (*sql.DB, Dialect, error) {
	dialect, err := DialectFromDriver(cfg.DBDriver)
	if err != nil {
		return nil, 0, err
	}

	dsn := cfg.DBDSN
	if dialect == SQLite {
		if err := ensureSQLiteDir(dsn, logger); err != nil {
			return nil, 0, err
		}
		// WAL mode is generally good for concurrent reads/writes.
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}

	logger.Info("Opening database connection...", zap.String("driver", cfg.DBDriver))
	db, err := sql.Open(cfg.DBDriver, dsn)
	if err != nil {
		logger.Error("Failed to open database", zap.String("driver", cfg.DBDriver), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to open %s database: %w", cfg.DBDriver, err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.DBConnLifetimeMinutes) * time.Minute)
	if dialect == SQLite {
		// A single writer connection avoids SQLITE_BUSY on concurrent writes.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close() // Close if ping fails
		logger.Error("Failed to ping database after open", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to ping %s database: %w", cfg.DBDriver, err)
	}

	logger.Info("Database connection initialized successfully", zap.String("driver", cfg.DBDriver))
	return db, dialect, nil
}

func ensureSQLiteDir(path string, logger *zap.Logger) error {
	dbDir := filepath.Dir(path)
	if dbDir == "." || dbDir == "/" {
		return nil
	}
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		logger.Info("SQLite database directory does not exist, creating...", zap.String("path", dbDir))
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("Failed to create SQLite database directory", zap.String("path", dbDir), zap.Error(err))
			return fmt.Errorf("failed to create sqlite db directory %s: %w", dbDir, err)
		}
	} else if err != nil {
		logger.Error("Failed to check status of SQLite database directory", zap.String("path", dbDir), zap.Error(err))
		return fmt.Errorf("failed to check status of sqlite db directory %s: %w", dbDir, err)
	}
	return nil
}
