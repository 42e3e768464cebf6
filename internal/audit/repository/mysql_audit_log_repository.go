package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	auditDomain "github.com/allisson/fieldvault/internal/audit/domain"
	"github.com/allisson/fieldvault/internal/database"
	apperrors "github.com/allisson/fieldvault/internal/errors"
)

// MySQLAuditLogRepository implements AuditLog persistence for MySQL.
// UUIDs are stored as CHAR(36) strings since MySQL lacks a native UUID type.
type MySQLAuditLogRepository struct {
	db *sql.DB
}

// CreateBatch inserts a batch of audit logs as a single multi-row INSERT.
// See PostgreSQLAuditLogRepository.CreateBatch for the value column semantics.
func (m *MySQLAuditLogRepository) CreateBatch(
	ctx context.Context,
	auditLogs []*auditDomain.AuditLog,
) error {
	if len(auditLogs) == 0 {
		return nil
	}

	querier := database.GetTx(ctx, m.db)

	var sb strings.Builder
	sb.WriteString(`INSERT INTO audit_logs (id, entity_type, entity_id, field, old_value, new_value, changed_by_id, created_at) VALUES `)

	args := make([]any, 0, len(auditLogs)*8)
	for i, auditLog := range auditLogs {
		oldValue, err := marshalValue(auditLog.OldValue, auditLog.OldValueDefined)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit log old value")
		}
		newValue, err := marshalValue(auditLog.NewValue, true)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit log new value")
		}

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")

		args = append(args,
			auditLog.ID.String(),
			auditLog.EntityType,
			auditLog.EntityID,
			auditLog.Field,
			oldValue,
			newValue,
			auditLog.ChangedByID,
			auditLog.CreatedAt,
		)
	}

	if _, err := querier.ExecContext(ctx, sb.String(), args...); err != nil {
		return apperrors.Wrap(err, "failed to create audit logs")
	}

	return nil
}

// List retrieves audit logs ordered by created_at descending (newest first)
// with pagination and optional inclusive time-based filtering.
func (m *MySQLAuditLogRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, entity_type, entity_id, field, old_value, new_value, changed_by_id, created_at
			  FROM audit_logs`

	var conditions []string
	var args []any

	if createdAtFrom != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *createdAtFrom)
	}
	if createdAtTo != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *createdAtTo)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanAuditLogs(rows)
}

// DeleteOlderThan removes audit logs created before the given time. With
// dryRun set, it only counts the rows that would be removed.
func (m *MySQLAuditLogRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(
			ctx,
			`SELECT COUNT(*) FROM audit_logs WHERE created_at < ?`,
			olderThan,
		).Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit logs")
		}
		return count, nil
	}

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM audit_logs WHERE created_at < ?`,
		olderThan,
	)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit logs")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows")
	}

	return count, nil
}

// NewMySQLAuditLogRepository creates a new MySQL AuditLog repository.
func NewMySQLAuditLogRepository(db *sql.DB) *MySQLAuditLogRepository {
	return &MySQLAuditLogRepository{db: db}
}
