package store

import (
	"context"
	"time"

	"go-logstore/internal/models"

	"go.uber.org/zap"
)

// flushTimeout bounds a single background flush attempt.
const flushTimeout = 30 * time.Second

// PostLogs appends entries to the pending buffer, preserving submission
// order. It performs no I/O inline and never blocks the caller: when the
// buffer reaches the batch-size threshold, a flush is triggered
// fire-and-forget. Flush failures are observable only through Errors().
func (s *Store) PostLogs(entries []models.LogEntry) {
	if len(entries) == 0 {
		return
	}

	s.mu.Lock()
	s.pending = append(s.pending, entries...)
	full := len(s.pending) >= s.opts.BatchSize
	s.mu.Unlock()

	if full {
		// Non-blocking wake; a pending signal already covers this batch.
		select {
		case s.flushCh <- struct{}{}:
		default:
		}
	}
}

// PendingCount reports how many entries are buffered and not yet flushed.
func (s *Store) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush drains the pending buffer and persists the drained entries in one
// batched write. The buffer is swapped out before any I/O begins, so
// entries posted during the flush land in the next batch, never lost and
// never duplicated. An empty drain is a no-op.
//
// On failure the drained entries are dropped unless RequeueOnFailure is
// set, in which case they are placed back ahead of newer entries.
func (s *Store) Flush(ctx context.Context) error {
	// Wait for the schema readiness signal; entries stay buffered until
	// tables exist.
	select {
	case <-s.ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	drained := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(drained) == 0 {
		return nil
	}

	if err := s.logs.InsertBatch(ctx, drained); err != nil {
		if s.opts.RequeueOnFailure {
			s.mu.Lock()
			s.pending = append(drained, s.pending...)
			s.mu.Unlock()
			s.logger.Warn("Flush failed, batch re-queued", zap.Int("count", len(drained)))
		} else {
			s.logger.Warn("Flush failed, batch dropped", zap.Int("count", len(drained)))
		}
		return err
	}

	s.logger.Debug("Flushed log batch", zap.Int("count", len(drained)))
	return nil
}

// runFlusher is the background flush loop: a fixed-period timer and the
// size-trigger channel race, whichever fires first drains the buffer.
func (s *Store) runFlusher() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flushOnce()
		case <-s.flushCh:
			s.flushOnce()
		case <-s.stopCh:
			s.logger.Info("Flush loop received stop signal, exiting.")
			return
		}
	}
}

func (s *Store) flushOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		s.reportError("flush", err)
	}
}
