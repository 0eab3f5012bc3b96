package store

import (
	"context"

	"go-logstore/internal/models"
)

// GetLogs returns a filtered, paginated page of persisted logs, ascending
// by id. Storage errors propagate unchanged; no partial results.
func (s *Store) GetLogs(ctx context.Context, filter models.LogFilter) ([]models.LogEntry, error) {
	return s.logs.GetLogs(ctx, filter)
}

// SearchLogs matches message content against all terms and applies the same
// filters as GetLogs. The returned filter is the effective one, including
// any synthesized timestamp bound.
func (s *Store) SearchLogs(ctx context.Context, terms []string, filter models.LogFilter) ([]models.LogEntry, models.LogFilter, error) {
	return s.logs.SearchLogs(ctx, terms, filter)
}

// GetMeta fetches the opaque meta blob for one log row, ErrNotFound when
// the row is absent.
func (s *Store) GetMeta(ctx context.Context, id int64) (string, error) {
	if id <= 0 {
		return "", ErrValidation
	}
	return s.logs.GetMeta(ctx, id)
}

// GetHostnames returns the distinct non-empty hostnames observed in stored
// logs, sorted.
func (s *Store) GetHostnames(ctx context.Context) ([]string, error) {
	return s.logs.Hostnames(ctx)
}

// DeleteAllLogs unconditionally clears the log table.
func (s *Store) DeleteAllLogs(ctx context.Context) error {
	return s.logs.DeleteAll(ctx)
}

// InsertNotificationItem stores an alert-deduplication record and returns
// the previous matching record plus today's count for that message hash,
// which the host uses to decide alert suppression.
func (s *Store) InsertNotificationItem(ctx context.Context, n *models.Notification) (*models.NotificationReceipt, error) {
	return s.notifications.Insert(ctx, n)
}
