// Package usecase implements the audit trail business logic, including the
// background writer that detaches audit persistence from the primary
// data-mutation path.
package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/fieldvault/internal/audit/domain"
	"github.com/allisson/fieldvault/internal/diff"
)

// AuditLogRepository defines audit log persistence operations.
type AuditLogRepository interface {
	// CreateBatch inserts a batch of audit logs as one atomic unit.
	CreateBatch(ctx context.Context, auditLogs []*auditDomain.AuditLog) error

	// List retrieves audit logs ordered by created_at descending with
	// pagination and optional inclusive time filters (nil means no filter).
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.AuditLog, error)

	// DeleteOlderThan removes audit logs created before the given time.
	DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// AuditLogUseCase defines the audit trail operations exposed to the rest of
// the application.
type AuditLogUseCase interface {
	// Record submits one batched audit write for the given field changes.
	// It never blocks and never fails from the caller's perspective: the
	// write happens on a background worker, and a persistence failure is
	// logged, not propagated. Empty changes are a no-op. A nil changedByID
	// marks a system-initiated change.
	Record(entityType, entityID string, changes []diff.FieldChange, changedByID *string)

	// List retrieves audit logs with pagination and optional time filters.
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.AuditLog, error)

	// DeleteOlderThan removes audit logs older than the given number of days.
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)
}
