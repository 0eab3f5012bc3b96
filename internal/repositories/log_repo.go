package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-logstore/internal/database"
	"go-logstore/internal/models"
	"go.uber.org/zap"
)

// SearchWindow is the synthesized bound applied by SearchLogs when only one
// of the timestamp pair is provided.
const SearchWindow = 24 * time.Hour

// LogRepository defines the interface for log data operations
type LogRepository interface {
	InsertBatch(ctx context.Context, entries []models.LogEntry) error
	GetLogs(ctx context.Context, filter models.LogFilter) ([]models.LogEntry, error)
	SearchLogs(ctx context.Context, terms []string, filter models.LogFilter) ([]models.LogEntry, models.LogFilter, error)
	GetMeta(ctx context.Context, id int64) (string, error)
	Hostnames(ctx context.Context) ([]string, error)
	DeleteAll(ctx context.Context) error
	DeleteExpired(ctx context.Context, threshold time.Time, limit int) (int64, error)
}

type logRepositoryImpl struct {
	db      *sql.DB
	dialect database.Dialect
	logger  *zap.Logger
}

// NewLogRepository creates a new LogRepository
func NewLogRepository(db *sql.DB, dialect database.Dialect, logger *zap.Logger) LogRepository {
	if logger == nil {
		fallbackLogger, _ := zap.NewDevelopment()
		logger = fallbackLogger
		logger.Warn("NewLogRepository received nil logger, using fallback.")
	}
	return &logRepositoryImpl{db: db, dialect: dialect, logger: logger}
}

// InsertBatch persists all entries in a single multi-row INSERT statement.
// Individual per-row failures are not distinguished; a write failure affects
// the whole batch.
func (r *logRepositoryImpl) InsertBatch(ctx context.Context, entries []models.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO logs (external_id, hostname, pid, source, timestamp, level, message, meta) VALUES `)
	args := make([]interface{}, 0, len(entries)*8)
	for i, entry := range entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")
		ts := entry.Timestamp
		if ts.IsZero() {
			ts = time.Now().UTC()
		}
		var externalID interface{}
		if entry.ExternalID != 0 {
			externalID = entry.ExternalID
		}
		args = append(args, externalID, entry.Hostname, entry.Pid, entry.Source, ts, entry.Level, entry.Message, entry.Meta)
	}

	query := r.dialect.Rebind(sb.String())
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to insert log batch", zap.Int("batch_size", len(entries)), zap.Error(err))
		return fmt.Errorf("insert log batch failed: %w", err)
	}
	return nil
}

// GetLogs constructs a filtered, paginated read over persisted logs. The
// returned slice is always ascending by id: descending fetches (lt_id,
// lte_timestamp, or no pagination at all) are reversed before returning so
// the caller gets a chronological page.
func (r *logRepositoryImpl) GetLogs(ctx context.Context, filter models.LogFilter) ([]models.LogEntry, error) {
	conds, args := buildLogConds(filter)
	return r.fetchLogs(ctx, conds, args, filter)
}

// SearchLogs matches message content against all provided terms (all
// required) before applying the same filter set as GetLogs. When only one of
// the timestamp pair is given, the missing bound is synthesized at exactly
// 24 hours from the given one and reported in the returned effective filter.
func (r *logRepositoryImpl) SearchLogs(ctx context.Context, terms []string, filter models.LogFilter) ([]models.LogEntry, models.LogFilter, error) {
	effective := filter
	if effective.LteTimestamp != nil && effective.GteTimestamp == nil {
		gte := effective.LteTimestamp.Add(-SearchWindow)
		effective.GteTimestamp = &gte
	} else if effective.GteTimestamp != nil && effective.LteTimestamp == nil {
		lte := effective.GteTimestamp.Add(SearchWindow)
		effective.LteTimestamp = &lte
	}

	conds, args := buildLogConds(effective)
	for _, term := range terms {
		if term == "" {
			continue
		}
		conds = append(conds, "message LIKE ?")
		args = append(args, "%"+term+"%")
	}

	items, err := r.fetchLogs(ctx, conds, args, effective)
	if err != nil {
		return nil, effective, err
	}
	return items, effective, nil
}

func (r *logRepositoryImpl) fetchLogs(ctx context.Context, conds []string, args []interface{}, filter models.LogFilter) ([]models.LogEntry, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, external_id, hostname, pid, source, timestamp, level, message FROM logs`)
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	// Descending fetch gives the most recent page; it is reversed below so
	// the caller always receives ascending ids.
	descending := true
	if filter.GtID > 0 || (filter.LtID == 0 && filter.LteTimestamp == nil && filter.GteTimestamp != nil) {
		descending = false
	}
	if descending {
		sb.WriteString(" ORDER BY id DESC")
	} else {
		sb.WriteString(" ORDER BY id ASC")
	}
	sb.WriteString(" LIMIT ?")
	args = append(args, filter.EffectiveLimit())

	query := r.dialect.Rebind(sb.String())
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query logs", zap.Error(err))
		return nil, fmt.Errorf("query logs failed: %w", err)
	}
	defer rows.Close()

	var logs []models.LogEntry
	for rows.Next() {
		var entry models.LogEntry
		var externalID sql.NullInt64
		var hostname, source, level sql.NullString
		var pid sql.NullInt64
		if err := rows.Scan(&entry.ID, &externalID, &hostname, &pid, &source, &entry.Timestamp, &level, &entry.Message); err != nil {
			r.logger.Error("Failed to scan log row", zap.Error(err))
			return nil, fmt.Errorf("scan log row failed: %w", err)
		}
		if externalID.Valid {
			entry.ExternalID = externalID.Int64
		}
		entry.Hostname = hostname.String
		entry.Pid = int(pid.Int64)
		entry.Source = source.String
		entry.Level = level.String
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error during iteration over log rows", zap.Error(err))
		return nil, fmt.Errorf("log row iteration error: %w", err)
	}

	if descending {
		for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
			logs[i], logs[j] = logs[j], logs[i]
		}
	}
	return logs, nil
}

// buildLogConds translates a LogFilter into WHERE clauses with '?'
// placeholders. LevelJSON pairs are OR'd among themselves and OR'd with the
// external-id match; everything else is AND'd.
func buildLogConds(f models.LogFilter) ([]string, []interface{}) {
	var conds []string
	var args []interface{}

	switch {
	case len(f.Hostnames) > 0:
		conds = append(conds, "hostname IN ("+placeholders(len(f.Hostnames))+")")
		for _, h := range f.Hostnames {
			args = append(args, h)
		}
	case f.Hostname != "":
		conds = append(conds, "hostname = ?")
		args = append(args, f.Hostname)
	}

	if f.Pid != 0 {
		conds = append(conds, "pid = ?")
		args = append(args, f.Pid)
	}

	switch {
	case len(f.Sources) > 0:
		conds = append(conds, "source IN ("+placeholders(len(f.Sources))+")")
		for _, s := range f.Sources {
			args = append(args, s)
		}
	case f.Source != "":
		conds = append(conds, "source = ?")
		args = append(args, f.Source)
	}

	switch {
	case len(f.Levels) > 0:
		conds = append(conds, "level IN ("+placeholders(len(f.Levels))+")")
		for _, l := range f.Levels {
			args = append(args, l)
		}
	case f.Level != "":
		conds = append(conds, "level = ?")
		args = append(args, f.Level)
	}

	if len(f.LevelJSON) > 0 || f.ExternalID > 0 {
		var ors []string
		for _, pair := range f.LevelJSON {
			ors = append(ors, "(source = ? AND level = ?)")
			args = append(args, pair.Source, pair.Level)
		}
		if f.ExternalID > 0 {
			ors = append(ors, "external_id = ?")
			args = append(args, f.ExternalID)
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	if f.LtID > 0 {
		conds = append(conds, "id < ?")
		args = append(args, f.LtID)
	}
	if f.GtID > 0 {
		conds = append(conds, "id > ?")
		args = append(args, f.GtID)
	}
	if f.LteTimestamp != nil {
		conds = append(conds, "timestamp <= ?")
		args = append(args, *f.LteTimestamp)
	}
	if f.GteTimestamp != nil {
		conds = append(conds, "timestamp >= ?")
		args = append(args, *f.GteTimestamp)
	}

	return conds, args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// GetMeta fetches the opaque meta blob for one log row.
func (r *logRepositoryImpl) GetMeta(ctx context.Context, id int64) (string, error) {
	query := r.dialect.Rebind(`SELECT meta FROM logs WHERE id = ?`)
	var meta sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(&meta)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("log entry %d: %w", id, ErrNotFound)
		}
		r.logger.Error("Failed to query log meta", zap.Int64("id", id), zap.Error(err))
		return "", fmt.Errorf("query log meta failed: %w", err)
	}
	return meta.String, nil
}

// Hostnames returns the distinct non-empty hostnames observed in stored
// logs, sorted.
func (r *logRepositoryImpl) Hostnames(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT hostname FROM logs WHERE hostname IS NOT NULL AND hostname != '' ORDER BY hostname ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query hostnames", zap.Error(err))
		return nil, fmt.Errorf("query hostnames failed: %w", err)
	}
	defer rows.Close()

	var hostnames []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scan hostname failed: %w", err)
		}
		hostnames = append(hostnames, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("hostname row iteration error: %w", err)
	}
	return hostnames, nil
}

// DeleteAll unconditionally clears the log table.
func (r *logRepositoryImpl) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM logs`); err != nil {
		r.logger.Error("Failed to delete all logs", zap.Error(err))
		return fmt.Errorf("delete all logs failed: %w", err)
	}
	return nil
}

// DeleteExpired removes up to limit rows older than threshold in one
// statement and reports the affected-row count. The id-subquery form keeps
// the statement bounded on dialects without DELETE ... LIMIT.
func (r *logRepositoryImpl) DeleteExpired(ctx context.Context, threshold time.Time, limit int) (int64, error) {
	query := r.dialect.Rebind(`DELETE FROM logs WHERE id IN (SELECT id FROM logs WHERE timestamp < ? LIMIT ?)`)
	result, err := r.db.ExecContext(ctx, query, threshold, limit)
	if err != nil {
		r.logger.Error("Failed to delete expired logs", zap.Error(err))
		return 0, fmt.Errorf("delete expired logs failed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired logs rows affected: %w", err)
	}
	return affected, nil
}
