package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-logstore/internal/database"
	"go-logstore/internal/models"
	"go.uber.org/zap"
)

// NotificationRepository defines the interface for alert-deduplication
// records.
type NotificationRepository interface {
	// Insert stores the notification and returns the previous matching
	// record (if any) and today's count for that hostname+hash, with the
	// count reflecting the just-inserted row.
	Insert(ctx context.Context, n *models.Notification) (*models.NotificationReceipt, error)
	DeleteExpired(ctx context.Context, threshold time.Time, limit int) (int64, error)
}

type notificationRepositoryImpl struct {
	db      *sql.DB
	dialect database.Dialect
	logger  *zap.Logger
	now     func() time.Time
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *sql.DB, dialect database.Dialect, logger *zap.Logger) NotificationRepository {
	return &notificationRepositoryImpl{db: db, dialect: dialect, logger: logger, now: time.Now}
}

// Insert runs inside one explicit transaction: the count of today's
// notifications for this message must reflect the just-inserted row
// consistently with the previously-fetched row. Any step failure rolls the
// whole transaction back.
func (r *notificationRepositoryImpl) Insert(ctx context.Context, n *models.Notification) (*models.NotificationReceipt, error) {
	if n == nil || n.HashedMessage == "" {
		return nil, fmt.Errorf("notification hashed_message: %w", ErrValidation)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin notification transaction", zap.Error(err))
		return nil, fmt.Errorf("begin notification tx failed: %w", err)
	}
	defer tx.Rollback()

	// 1. Previous matching record, most recent first.
	prevQuery := r.dialect.Rebind(`SELECT id, external_id, hostname, hashed_message, created_at, updated_at
		FROM notifications WHERE hostname = ? AND hashed_message = ? ORDER BY created_at DESC LIMIT 1`)
	var previous *models.Notification
	prev := models.Notification{}
	var externalID sql.NullInt64
	var hostname sql.NullString
	err = tx.QueryRowContext(ctx, prevQuery, n.Hostname, n.HashedMessage).Scan(
		&prev.ID, &externalID, &hostname, &prev.HashedMessage, &prev.CreatedAt, &prev.UpdatedAt)
	switch {
	case err == nil:
		prev.ExternalID = externalID.Int64
		prev.Hostname = hostname.String
		previous = &prev
	case errors.Is(err, sql.ErrNoRows):
		// First notification for this hostname+hash.
	default:
		r.logger.Error("Failed to fetch previous notification", zap.Error(err))
		return nil, fmt.Errorf("fetch previous notification failed: %w", err)
	}

	// 2. Insert the new record.
	now := r.now().UTC()
	insertQuery := r.dialect.Rebind(`INSERT INTO notifications (external_id, hostname, hashed_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`)
	var extArg interface{}
	if n.ExternalID != 0 {
		extArg = n.ExternalID
	}
	if _, err := tx.ExecContext(ctx, insertQuery, extArg, n.Hostname, n.HashedMessage, now, now); err != nil {
		r.logger.Error("Failed to insert notification", zap.Error(err))
		return nil, fmt.Errorf("insert notification failed: %w", err)
	}

	// 3. Count today's notifications for this message, including the row
	// just inserted.
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	endOfDay := startOfDay.Add(24 * time.Hour)
	countQuery := r.dialect.Rebind(`SELECT COUNT(*) FROM notifications
		WHERE hostname = ? AND hashed_message = ? AND created_at >= ? AND created_at < ?`)
	var todayCount int
	if err := tx.QueryRowContext(ctx, countQuery, n.Hostname, n.HashedMessage, startOfDay, endOfDay).Scan(&todayCount); err != nil {
		r.logger.Error("Failed to count today's notifications", zap.Error(err))
		return nil, fmt.Errorf("count notifications failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit notification transaction", zap.Error(err))
		return nil, fmt.Errorf("commit notification tx failed: %w", err)
	}

	return &models.NotificationReceipt{Previous: previous, TodayCount: todayCount}, nil
}

// DeleteExpired removes up to limit notification rows created before
// threshold and reports the affected-row count.
func (r *notificationRepositoryImpl) DeleteExpired(ctx context.Context, threshold time.Time, limit int) (int64, error) {
	query := r.dialect.Rebind(`DELETE FROM notifications WHERE id IN (SELECT id FROM notifications WHERE created_at < ? LIMIT ?)`)
	result, err := r.db.ExecContext(ctx, query, threshold, limit)
	if err != nil {
		r.logger.Error("Failed to delete expired notifications", zap.Error(err))
		return 0, fmt.Errorf("delete expired notifications failed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired notifications rows affected: %w", err)
	}
	return affected, nil
}
