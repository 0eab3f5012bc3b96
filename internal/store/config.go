package store

import (
	"context"
	"strconv"

	"go-logstore/internal/models"

	"go.uber.org/zap"
)

// GetConfig returns the stored entry for key, or nil when the key does not
// exist. Absence is not an error on the read path.
func (s *Store) GetConfig(ctx context.Context, key string) (*models.ConfigEntry, error) {
	return s.configs.Get(ctx, key)
}

// SetConfig upserts key and returns the entry re-read from storage.
func (s *Store) SetConfig(ctx context.Context, key, value string) (*models.ConfigEntry, error) {
	return s.configs.Set(ctx, key, value)
}

// DeleteConfig removes key, ErrNotFound when no row was affected.
func (s *Store) DeleteConfig(ctx context.Context, key string) error {
	return s.configs.Delete(ctx, key)
}

// EnsureLogsTTL seeds the logsTTL config key with the default retention
// (milliseconds, as a string) when absent. An existing value is never
// altered.
func (s *Store) EnsureLogsTTL(ctx context.Context) error {
	entry, err := s.configs.Get(ctx, TTLConfigKey)
	if err != nil {
		return err
	}
	if entry != nil {
		return nil
	}

	seeded := strconv.FormatInt(s.opts.DefaultTTL.Milliseconds(), 10)
	if _, err := s.configs.Set(ctx, TTLConfigKey, seeded); err != nil {
		return err
	}
	s.logger.Info("Seeded default retention TTL", zap.String("key", TTLConfigKey), zap.String("value", seeded))
	return nil
}
