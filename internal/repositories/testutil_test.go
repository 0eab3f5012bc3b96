package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-logstore/internal/database"
	"go-logstore/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestDB opens an in-memory SQLite database with the full schema. One
// connection max: each new in-memory connection would be a fresh empty db.
func newTestDB(t *testing.T) (*sql.DB, database.Dialect) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.CreateTables(context.Background(), db, database.SQLite, zap.NewNop()))
	return db, database.SQLite
}

func seedLogs(t *testing.T, repo LogRepository, base time.Time, n int) {
	t.Helper()

	entries := make([]models.LogEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, models.LogEntry{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Hostname:  "web-1",
			Pid:       4242,
			Source:    "app",
			Level:     "info",
			Message:   "request served",
		})
	}
	require.NoError(t, repo.InsertBatch(context.Background(), entries))
}

func entryIDs(entries []models.LogEntry) []int64 {
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}
