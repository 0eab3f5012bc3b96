package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-logstore/internal/database"
	"go-logstore/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// quietOptions keep both background loops out of the way so tests drive
// flushes and sweeps explicitly.
func quietOptions() Options {
	opts := DefaultOptions()
	opts.FlushInterval = time.Hour
	opts.SweepInterval = time.Hour
	opts.SweepDelay = 0
	return opts
}

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s := New(db, database.SQLite, opts, zap.NewNop())
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { s.Stop(context.Background()) })
	return s
}

func TestInitialize_SeedsDefaultTTL(t *testing.T) {
	s := newTestStore(t, quietOptions())

	entry, err := s.GetConfig(context.Background(), TTLConfigKey)
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Equal(t, "2592000000", entry.Value)
}

func TestInitialize_DoesNotOverwriteExistingTTL(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, database.CreateTables(ctx, db, database.SQLite, zap.NewNop()))
	_, err = db.ExecContext(ctx, `INSERT INTO config (key, value) VALUES ('logsTTL', '3600000')`)
	require.NoError(t, err)

	s := New(db, database.SQLite, quietOptions(), zap.NewNop())
	require.NoError(t, s.Initialize(ctx))
	t.Cleanup(func() { s.Stop(ctx) })

	entry, err := s.GetConfig(ctx, TTLConfigKey)
	require.NoError(t, err)
	require.Equal(t, "3600000", entry.Value)
}

func TestInitialize_Idempotent(t *testing.T) {
	s := newTestStore(t, quietOptions())
	// A second call must be a no-op, not a re-run of the startup sequence.
	require.NoError(t, s.Initialize(context.Background()))
}

func TestPostLogs_BuffersUntilFlush(t *testing.T) {
	s := newTestStore(t, quietOptions())
	ctx := context.Background()

	s.PostLogs([]models.LogEntry{
		{Timestamp: time.Now().UTC(), Hostname: "web-1", Source: "app", Level: "info", Message: "one"},
		{Timestamp: time.Now().UTC(), Hostname: "web-1", Source: "app", Level: "info", Message: "two"},
	})
	require.Equal(t, 2, s.PendingCount())

	// Nothing persisted before the flush.
	logs, err := s.GetLogs(ctx, models.LogFilter{})
	require.NoError(t, err)
	require.Empty(t, logs)

	require.NoError(t, s.Flush(ctx))
	require.Zero(t, s.PendingCount())

	logs, err = s.GetLogs(ctx, models.LogFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, "one", logs[0].Message)
	require.Equal(t, "two", logs[1].Message)
}

func TestPostLogs_SizeThresholdTriggersFlush(t *testing.T) {
	opts := quietOptions()
	opts.BatchSize = 5
	s := newTestStore(t, opts)

	entries := make([]models.LogEntry, 5)
	for i := range entries {
		entries[i] = models.LogEntry{Timestamp: time.Now().UTC(), Hostname: "web-1", Source: "app", Level: "info", Message: "burst"}
	}
	s.PostLogs(entries)

	require.Eventually(t, func() bool {
		logs, err := s.GetLogs(context.Background(), models.LogFilter{})
		return err == nil && len(logs) == 5 && s.PendingCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPostLogs_TimerFlushPreservesOrder(t *testing.T) {
	opts := quietOptions()
	opts.FlushInterval = 20 * time.Millisecond
	s := newTestStore(t, opts)

	s.PostLogs([]models.LogEntry{
		{Timestamp: time.Now().UTC(), Hostname: "web-1", Source: "app", Level: "info", Message: "first"},
		{Timestamp: time.Now().UTC(), Hostname: "web-1", Source: "app", Level: "info", Message: "second"},
	})
	s.PostLogs([]models.LogEntry{
		{Timestamp: time.Now().UTC(), Hostname: "web-1", Source: "app", Level: "info", Message: "third"},
	})

	require.Eventually(t, func() bool {
		return s.PendingCount() == 0
	}, 2*time.Second, 10*time.Millisecond)

	logs, err := s.GetLogs(context.Background(), models.LogFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	require.Equal(t, "first", logs[0].Message)
	require.Equal(t, "second", logs[1].Message)
	require.Equal(t, "third", logs[2].Message)
}

func TestFlush_EmptyBufferIsNoop(t *testing.T) {
	s := newTestStore(t, quietOptions())
	require.NoError(t, s.Flush(context.Background()))
}

func TestFlush_FailureDropsBatchByDefault(t *testing.T) {
	s := newTestStore(t, quietOptions())
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `DROP TABLE logs`)
	require.NoError(t, err)

	s.PostLogs([]models.LogEntry{{Timestamp: time.Now().UTC(), Message: "doomed"}})
	require.Error(t, s.Flush(ctx))
	require.Zero(t, s.PendingCount())
}

func TestFlush_FailureRequeuesWhenConfigured(t *testing.T) {
	opts := quietOptions()
	opts.RequeueOnFailure = true
	s := newTestStore(t, opts)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `DROP TABLE logs`)
	require.NoError(t, err)

	s.PostLogs([]models.LogEntry{{Timestamp: time.Now().UTC(), Message: "retryable"}})
	require.Error(t, s.Flush(ctx))
	require.Equal(t, 1, s.PendingCount())
}

func TestFlush_ReportsOnErrorChannel(t *testing.T) {
	opts := quietOptions()
	opts.FlushInterval = 20 * time.Millisecond
	s := newTestStore(t, opts)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `DROP TABLE logs`)
	require.NoError(t, err)

	s.PostLogs([]models.LogEntry{{Timestamp: time.Now().UTC(), Message: "doomed"}})

	select {
	case err := <-s.Errors():
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a background flush error")
	}
}

func TestStop_FlushesRemainingBuffer(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	s := New(db, database.SQLite, quietOptions(), zap.NewNop())
	require.NoError(t, s.Initialize(ctx))

	s.PostLogs([]models.LogEntry{{Timestamp: time.Now().UTC(), Hostname: "web-1", Source: "app", Level: "info", Message: "parting words"}})
	require.NoError(t, s.Stop(ctx))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM logs`).Scan(&count))
	require.Equal(t, 1, count)

	// Stop is idempotent.
	require.NoError(t, s.Stop(ctx))
}

func TestConfigRoundTrip(t *testing.T) {
	s := newTestStore(t, quietOptions())
	ctx := context.Background()

	entry, err := s.SetConfig(ctx, "alertUrl", "https://hooks.example.com/a")
	require.NoError(t, err)
	require.Equal(t, "https://hooks.example.com/a", entry.Value)

	entry, err = s.SetConfig(ctx, "alertUrl", "https://hooks.example.com/b")
	require.NoError(t, err)
	require.Equal(t, "https://hooks.example.com/b", entry.Value)

	require.NoError(t, s.DeleteConfig(ctx, "alertUrl"))

	entry, err = s.GetConfig(ctx, "alertUrl")
	require.NoError(t, err)
	require.Nil(t, entry)

	err = s.DeleteConfig(ctx, "alertUrl")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestGetMeta_RejectsNonPositiveID(t *testing.T) {
	s := newTestStore(t, quietOptions())

	_, err := s.GetMeta(context.Background(), 0)
	require.True(t, errors.Is(err, ErrValidation))
}
