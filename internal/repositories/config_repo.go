package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-logstore/internal/database"
	"go-logstore/internal/models"
	"go.uber.org/zap"
)

// ConfigRepository defines the interface for config key/value operations
type ConfigRepository interface {
	// Get returns (nil, nil) when the key does not exist; absence is not an
	// error on the read path.
	Get(ctx context.Context, key string) (*models.ConfigEntry, error)
	// Set upserts the key and returns the stored entry re-read from the
	// table.
	Set(ctx context.Context, key, value string) (*models.ConfigEntry, error)
	// Delete fails with ErrNotFound when zero rows were affected.
	Delete(ctx context.Context, key string) error
}

type configRepositoryImpl struct {
	db      *sql.DB
	dialect database.Dialect
	logger  *zap.Logger
}

// NewConfigRepository creates a new ConfigRepository
func NewConfigRepository(db *sql.DB, dialect database.Dialect, logger *zap.Logger) ConfigRepository {
	return &configRepositoryImpl{db: db, dialect: dialect, logger: logger}
}

func (r *configRepositoryImpl) Get(ctx context.Context, key string) (*models.ConfigEntry, error) {
	if key == "" {
		return nil, fmt.Errorf("config key: %w", ErrValidation)
	}
	query := r.dialect.Rebind(`SELECT id, key, value FROM config WHERE key = ?`)
	entry := &models.ConfigEntry{}
	err := r.db.QueryRowContext(ctx, query, key).Scan(&entry.ID, &entry.Key, &entry.Value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Absent item, not an error
		}
		r.logger.Error("Failed to query config", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("query config %s failed: %w", key, err)
	}
	return entry, nil
}

func (r *configRepositoryImpl) Set(ctx context.Context, key, value string) (*models.ConfigEntry, error) {
	if key == "" {
		return nil, fmt.Errorf("config key: %w", ErrValidation)
	}
	// ON CONFLICT upsert is shared syntax between SQLite and Postgres.
	query := r.dialect.Rebind(`INSERT INTO config (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value`)
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		r.logger.Error("Failed to upsert config", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("upsert config %s failed: %w", key, err)
	}

	entry, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("config %s missing after upsert: %w", key, ErrNotFound)
	}
	return entry, nil
}

func (r *configRepositoryImpl) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("config key: %w", ErrValidation)
	}
	query := r.dialect.Rebind(`DELETE FROM config WHERE key = ?`)
	result, err := r.db.ExecContext(ctx, query, key)
	if err != nil {
		r.logger.Error("Failed to delete config", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("delete config %s failed: %w", key, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete config rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("config %s: %w", key, ErrNotFound)
	}
	return nil
}
