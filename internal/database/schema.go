package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var sqliteSchema = map[string][]string{
	"logs": {
		`CREATE TABLE IF NOT EXISTS logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			external_id INTEGER,
			hostname TEXT,
			pid INTEGER DEFAULT 0,
			source TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			level TEXT DEFAULT 'info',
			message TEXT NOT NULL,
			meta TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_source_level_id ON logs (source, level, id)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_hostname_pid_id ON logs (hostname, pid, id)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_timestamp ON logs (timestamp)`,
	},
	"users": {
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT,
			email TEXT UNIQUE NOT NULL,
			hashed_password TEXT NOT NULL,
			role TEXT
		)`,
	},
	"config": {
		`CREATE TABLE IF NOT EXISTS config (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			key TEXT UNIQUE NOT NULL,
			value TEXT NOT NULL
		)`,
	},
	"notifications": {
		`CREATE TABLE IF NOT EXISTS notifications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			external_id INTEGER,
			hostname TEXT,
			hashed_message TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_host_hash_time ON notifications (hostname, hashed_message, created_at)`,
	},
}

var postgresSchema = map[string][]string{
	"logs": {
		`CREATE TABLE IF NOT EXISTS logs (
			id BIGSERIAL PRIMARY KEY,
			external_id BIGINT,
			hostname TEXT,
			pid INTEGER DEFAULT 0,
			source TEXT,
			timestamp TIMESTAMPTZ DEFAULT NOW(),
			level TEXT DEFAULT 'info',
			message TEXT NOT NULL,
			meta TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_source_level_id ON logs (source, level, id)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_hostname_pid_id ON logs (hostname, pid, id)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_timestamp ON logs (timestamp)`,
	},
	"users": {
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			name TEXT,
			email TEXT UNIQUE NOT NULL,
			hashed_password TEXT NOT NULL,
			role TEXT
		)`,
	},
	"config": {
		`CREATE TABLE IF NOT EXISTS config (
			id BIGSERIAL PRIMARY KEY,
			key TEXT UNIQUE NOT NULL,
			value TEXT NOT NULL
		)`,
	},
	"notifications": {
		`CREATE TABLE IF NOT EXISTS notifications (
			id BIGSERIAL PRIMARY KEY,
			external_id BIGINT,
			hostname TEXT,
			hashed_message TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_host_hash_time ON notifications (hostname, hashed_message, created_at)`,
	},
}

// CreateTables ensures the logs, users, config and notifications tables and
// their indexes exist. Statements use create-if-absent semantics so the call
// is idempotent. The four table groups are issued in parallel and all
// awaited before returning.
func CreateTables(ctx context.Context, db *sql.DB, dialect Dialect, logger *zap.Logger) error {
	schema := sqliteSchema
	if dialect == Postgres {
		schema = postgresSchema
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(schema))
	for table, stmts := range schema {
		wg.Add(1)
		go func(table string, stmts []string) {
			defer wg.Done()
			for _, stmt := range stmts {
				if _, err := db.ExecContext(ctx, stmt); err != nil {
					logger.Error("Failed to create table or index", zap.String("table", table), zap.Error(err))
					errCh <- fmt.Errorf("create table %s: %w", table, err)
					return
				}
			}
			logger.Debug("Table verified/created", zap.String("table", table))
		}(table, stmts)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// TuneSession applies the session-level buffer tuning the write path relies
// on for large batched inserts.
func TuneSession(ctx context.Context, db *sql.DB, dialect Dialect, logger *zap.Logger) error {
	var stmt string
	switch dialect {
	case SQLite:
		stmt = `PRAGMA cache_size = -8192` // 8 MiB page cache
	case Postgres:
		stmt = `SET work_mem = '8MB'`
	default:
		return nil
	}
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		logger.Warn("Failed to tune database session", zap.String("stmt", stmt), zap.Error(err))
		return fmt.Errorf("tune session: %w", err)
	}
	return nil
}
