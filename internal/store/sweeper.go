package store

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// sweepTimeout bounds one delete batch, not the whole sweep.
const sweepTimeout = time.Minute

// SweepLogs deletes expired log rows in bounded batches until none remain.
// A second invocation while a sweep is active is a silent no-op: the
// running-flag is checked and set atomically at entry and cleared regardless
// of outcome.
func (s *Store) SweepLogs(ctx context.Context) {
	s.sweep(ctx, "logs", &s.logsSweeping, s.logs.DeleteExpired)
}

// SweepNotifications applies the same TTL sweep to notification records.
func (s *Store) SweepNotifications(ctx context.Context) {
	s.sweep(ctx, "notifications", &s.notificationsSweeping, s.notifications.DeleteExpired)
}

type deleteBatchFunc func(ctx context.Context, threshold time.Time, limit int) (int64, error)

func (s *Store) sweep(ctx context.Context, name string, running *atomic.Bool, deleteBatch deleteBatchFunc) {
	if !running.CompareAndSwap(false, true) {
		return // A sweep of this type is already active
	}
	defer running.Store(false)

	ttl := s.resolveTTL(ctx)
	// Whole-second threshold: sub-second precision is truncated.
	threshold := s.now().Add(-ttl).Truncate(time.Second)
	s.logger.Debug("Retention sweep started",
		zap.String("table", name),
		zap.Duration("ttl", ttl),
		zap.Time("threshold", threshold),
	)

	var total int64
	for {
		batchCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
		affected, err := deleteBatch(batchCtx, threshold, s.opts.SweepBatchSize)
		cancel()
		if err != nil {
			// Errors end the sweep early; the next scheduled trigger
			// retries. The running-flag is still cleared by the defer.
			s.reportError("sweep "+name, err)
			return
		}
		total += affected
		if affected == 0 {
			break
		}

		// Bounded batches with a cooldown keep each DELETE fast and yield
		// to concurrent traffic on a shared database.
		if s.opts.SweepDelay > 0 {
			select {
			case <-time.After(s.opts.SweepDelay):
			case <-s.stopCh:
				s.logger.Info("Retention sweep interrupted by stop signal", zap.String("table", name))
				return
			case <-ctx.Done():
				return
			}
		}
	}

	s.logger.Info("Retention sweep finished", zap.String("table", name), zap.Int64("rows_deleted", total))
}

// resolveTTL reads the logsTTL config value. An absent key or a value that
// is not a valid non-negative integer falls back to the default.
func (s *Store) resolveTTL(ctx context.Context) time.Duration {
	entry, err := s.configs.Get(ctx, TTLConfigKey)
	if err != nil || entry == nil {
		return s.opts.DefaultTTL
	}
	ms, err := strconv.ParseInt(entry.Value, 10, 64)
	if err != nil || ms < 0 {
		s.logger.Warn("Invalid logsTTL config value, using default", zap.String("value", entry.Value))
		return s.opts.DefaultTTL
	}
	return time.Duration(ms) * time.Millisecond
}

// runSweepers triggers both retention sweeps on the configured cadence.
func (s *Store) runSweepers() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SweepLogs(context.Background())
			s.SweepNotifications(context.Background())
		case <-s.stopCh:
			s.logger.Info("Retention loop received stop signal, exiting.")
			return
		}
	}
}
