package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go-logstore/internal/config"
	"go-logstore/internal/database"
	"go-logstore/internal/models"
	"go-logstore/internal/repositories"

	"go.uber.org/zap"
)

// TTLConfigKey is the config key holding the retention TTL in milliseconds.
const TTLConfigKey = "logsTTL"

// Options tune the write-buffering and retention behavior of a Store.
type Options struct {
	BatchSize      int           // Buffered entries that trigger a flush
	FlushInterval  time.Duration // Timer-based flush period
	SweepInterval  time.Duration // Cadence of the retention sweepers
	SweepBatchSize int           // Max rows deleted per statement
	SweepDelay     time.Duration // Pause between delete batches
	DefaultTTL     time.Duration // Seeded logsTTL value

	// RequeueOnFailure re-queues a drained batch when its flush fails
	// (at-least-once delivery). Off by default: a failed flush drops the
	// drained batch and the loss is observable only through Errors().
	RequeueOnFailure bool

	ErrorBufferSize int // Capacity of the Errors() channel
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		BatchSize:       100,
		FlushInterval:   time.Second,
		SweepInterval:   time.Hour,
		SweepBatchSize:  1000,
		SweepDelay:      10 * time.Second,
		DefaultTTL:      30 * 24 * time.Hour,
		ErrorBufferSize: 16,
	}
}

// OptionsFromConfig maps the loaded application configuration to Options.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg.FlushBatchSize > 0 {
		opts.BatchSize = cfg.FlushBatchSize
	}
	if cfg.FlushInterval > 0 {
		opts.FlushInterval = cfg.FlushInterval
	}
	if cfg.SweepInterval > 0 {
		opts.SweepInterval = cfg.SweepInterval
	}
	if cfg.SweepBatchSize > 0 {
		opts.SweepBatchSize = cfg.SweepBatchSize
	}
	opts.SweepDelay = cfg.SweepDelay
	if cfg.DefaultTTLMs > 0 {
		opts.DefaultTTL = time.Duration(cfg.DefaultTTLMs) * time.Millisecond
	}
	opts.RequeueOnFailure = cfg.FlushRequeueOnFailure
	return opts
}

// Store is the storage backend facade. One instance owns all mutable state:
// the pending buffer, the sweep running-flags and the background workers.
// Construct with New, then call Initialize before any writes reach storage.
type Store struct {
	db      *sql.DB
	dialect database.Dialect
	opts    Options
	logger  *zap.Logger

	logs          repositories.LogRepository
	configs       repositories.ConfigRepository
	users         repositories.UserRepository
	notifications repositories.NotificationRepository

	mu      sync.Mutex
	pending []models.LogEntry

	ready   chan struct{} // closed once the schema exists; gates all writes
	flushCh chan struct{}
	stopCh  chan struct{}
	wg      sync.WaitGroup
	started atomic.Bool
	stopped atomic.Bool

	logsSweeping          atomic.Bool
	notificationsSweeping atomic.Bool

	errCh chan error
	now   func() time.Time
}

// New creates a Store over an opened database handle. The returned Store is
// inert until Initialize is called.
func New(db *sql.DB, dialect database.Dialect, opts Options, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultOptions().BatchSize
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultOptions().FlushInterval
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultOptions().SweepInterval
	}
	if opts.SweepBatchSize <= 0 {
		opts.SweepBatchSize = DefaultOptions().SweepBatchSize
	}
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = DefaultOptions().DefaultTTL
	}
	if opts.ErrorBufferSize <= 0 {
		opts.ErrorBufferSize = DefaultOptions().ErrorBufferSize
	}

	return &Store{
		db:            db,
		dialect:       dialect,
		opts:          opts,
		logger:        logger,
		logs:          repositories.NewLogRepository(db, dialect, logger),
		configs:       repositories.NewConfigRepository(db, dialect, logger),
		users:         repositories.NewUserRepository(db, dialect, logger),
		notifications: repositories.NewNotificationRepository(db, dialect, logger),
		ready:         make(chan struct{}),
		flushCh:       make(chan struct{}, 1),
		stopCh:        make(chan struct{}),
		errCh:         make(chan error, opts.ErrorBufferSize),
		now:           time.Now,
	}
}

// Initialize runs the idempotent startup sequence: verify connectivity, tune
// the session buffer, ensure the schema and the default retention config,
// signal readiness, then arm the flush timer and the retention tickers.
func (s *Store) Initialize(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return nil // Already initialized
	}

	if err := s.db.PingContext(ctx); err != nil {
		s.started.Store(false)
		return fmt.Errorf("storage ping failed: %w", err)
	}

	// Session tuning is best-effort; TuneSession already logged the failure.
	_ = database.TuneSession(ctx, s.db, s.dialect, s.logger)

	if err := database.CreateTables(ctx, s.db, s.dialect, s.logger); err != nil {
		s.started.Store(false)
		return err
	}
	if err := s.EnsureLogsTTL(ctx); err != nil {
		s.started.Store(false)
		return err
	}

	close(s.ready)
	s.logger.Info("Log store initialized",
		zap.String("dialect", s.dialect.String()),
		zap.Int("batch_size", s.opts.BatchSize),
		zap.Duration("flush_interval", s.opts.FlushInterval),
		zap.Duration("sweep_interval", s.opts.SweepInterval),
	)

	s.wg.Add(2)
	go s.runFlusher()
	go s.runSweepers()
	return nil
}

// Ready returns a channel closed once the schema exists and writes may
// proceed. Flushes block on it instead of polling an in-progress flag.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Errors exposes background failures (flush, sweep) that have no
// synchronous caller. The channel is buffered; when nobody listens, errors
// are dropped after being logged.
func (s *Store) Errors() <-chan error {
	return s.errCh
}

// Stop halts the background workers and performs a final flush of whatever
// is still buffered.
func (s *Store) Stop(ctx context.Context) error {
	if !s.started.Load() || !s.stopped.CompareAndSwap(false, true) {
		return nil
	}
	close(s.stopCh)
	s.wg.Wait()
	return s.Flush(ctx)
}

// reportError logs err and publishes it on the error channel without
// blocking.
func (s *Store) reportError(op string, err error) {
	s.logger.Error("Background storage operation failed", zap.String("op", op), zap.Error(err))
	select {
	case s.errCh <- fmt.Errorf("%s: %w", op, err):
	default:
	}
}
