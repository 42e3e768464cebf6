package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/fieldvault/internal/audit/domain"
	"github.com/allisson/fieldvault/internal/database"
	"github.com/allisson/fieldvault/internal/diff"
	apperrors "github.com/allisson/fieldvault/internal/errors"
	"github.com/allisson/fieldvault/internal/metrics"
)

// writeTimeout bounds a single batch write. The caller's context cannot be
// used: the caller may have returned (or committed its own transaction) long
// before the batch is picked up.
const writeTimeout = 30 * time.Second

// batch is one unit of work for the background worker: all audit rows
// produced by a single Record call.
type batch struct {
	entityID string
	entries  []*auditDomain.AuditLog
}

// AuditWriter implements AuditLogUseCase with an explicit background task
// queue. Record builds the rows synchronously (capturing the timestamp at call
// time) and hands them to a single worker goroutine through a buffered
// channel; the caller is never blocked by, and never observes, audit
// persistence. This is a deliberate best-effort, at-most-once delivery
// guarantee: a full queue or a failed insert costs audit completeness, not
// primary-path availability.
type AuditWriter struct {
	auditLogRepo AuditLogRepository
	txManager    database.TxManager
	logger       *slog.Logger
	metrics      metrics.BusinessMetrics

	queue chan batch

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAuditWriter creates an AuditWriter with the provided dependencies.
// queueSize bounds the number of pending batches; when the queue is full new
// batches are dropped and logged. Start must be called before batches are
// consumed.
func NewAuditWriter(
	auditLogRepo AuditLogRepository,
	txManager database.TxManager,
	logger *slog.Logger,
	businessMetrics metrics.BusinessMetrics,
	queueSize int,
) *AuditWriter {
	if queueSize < 1 {
		queueSize = 1
	}
	return &AuditWriter{
		auditLogRepo: auditLogRepo,
		txManager:    txManager,
		logger:       logger,
		metrics:      businessMetrics,
		queue:        make(chan batch, queueSize),
	}
}

// Start launches the background worker. The worker runs until Close is called
// and drains any queued batches before exiting. There is no cancellation for
// an in-flight write; each write is bounded by writeTimeout instead.
func (w *AuditWriter) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for b := range w.queue {
			w.write(b)
		}
	}()
}

// Record submits one batched audit write. Empty changes produce no write.
// The call never blocks: if the queue is full the batch is dropped with an
// error log. Failures on the write path are observed by the worker's
// completion handling, never by the caller.
func (w *AuditWriter) Record(
	entityType, entityID string,
	changes []diff.FieldChange,
	changedByID *string,
) {
	if len(changes) == 0 {
		return
	}

	now := time.Now().UTC()
	entries := make([]*auditDomain.AuditLog, 0, len(changes))
	for _, change := range changes {
		entries = append(entries, &auditDomain.AuditLog{
			ID:              uuid.Must(uuid.NewV7()),
			EntityType:      entityType,
			EntityID:        entityID,
			Field:           change.Field,
			OldValue:        change.Old,
			OldValueDefined: change.OldDefined,
			NewValue:        change.New,
			ChangedByID:     changedByID,
			CreatedAt:       now,
		})
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.logDrop(entityID, len(entries), "writer closed")
		return
	}

	select {
	case w.queue <- batch{entityID: entityID, entries: entries}:
	default:
		w.logDrop(entityID, len(entries), "queue full")
	}
}

// List retrieves audit logs ordered by created_at descending (newest first)
// with pagination and optional time-based filtering.
func (w *AuditWriter) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	auditLogs, err := w.auditLogRepo.List(ctx, offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}

	return auditLogs, nil
}

// DeleteOlderThan removes audit logs older than the given number of days.
// Retention cleanup is an operator command, not part of the write path.
func (w *AuditWriter) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	olderThan := time.Now().UTC().AddDate(0, 0, -days)

	count, err := w.auditLogRepo.DeleteOlderThan(ctx, olderThan, dryRun)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit logs")
	}

	return count, nil
}

// Close stops accepting new batches, drains the queue, and waits for the
// worker to finish. Safe to call more than once.
func (w *AuditWriter) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	w.wg.Wait()
}

// write persists one batch inside a transaction so all rows land or none do.
// A persistence failure produces exactly one error log line with the entity id
// and change count, plus a failure metric; it is never propagated.
func (w *AuditWriter) write(b batch) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	err := w.txManager.WithTx(ctx, func(ctx context.Context) error {
		return w.auditLogRepo.CreateBatch(ctx, b.entries)
	})
	if err != nil {
		w.logger.Error("failed to write audit batch",
			slog.String("entity_id", b.entityID),
			slog.Int("change_count", len(b.entries)),
			slog.Any("error", err),
		)
		w.metrics.RecordOperation(ctx, "audit", "batch_write", "error")
		return
	}

	w.metrics.RecordOperation(ctx, "audit", "batch_write", "success")
}

// logDrop reports a discarded batch.
func (w *AuditWriter) logDrop(entityID string, changeCount int, reason string) {
	w.logger.Error("dropped audit batch",
		slog.String("entity_id", entityID),
		slog.Int("change_count", changeCount),
		slog.String("reason", reason),
	)
	w.metrics.RecordOperation(context.Background(), "audit", "batch_write", "dropped")
}
