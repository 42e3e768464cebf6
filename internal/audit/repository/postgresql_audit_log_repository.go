// Package repository implements audit log persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	auditDomain "github.com/allisson/fieldvault/internal/audit/domain"
	"github.com/allisson/fieldvault/internal/database"
	apperrors "github.com/allisson/fieldvault/internal/errors"
)

// PostgreSQLAuditLogRepository implements AuditLog persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLAuditLogRepository struct {
	db *sql.DB
}

// CreateBatch inserts a batch of audit logs as a single multi-row INSERT.
// The caller wraps this in a transaction so the batch lands as one atomic
// unit: all rows or none. An undefined old value is stored as SQL NULL while
// an explicit null is stored as JSON null.
func (p *PostgreSQLAuditLogRepository) CreateBatch(
	ctx context.Context,
	auditLogs []*auditDomain.AuditLog,
) error {
	if len(auditLogs) == 0 {
		return nil
	}

	querier := database.GetTx(ctx, p.db)

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
		base := i * 8
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8)

		args = append(args,
			auditLog.ID,
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
// with pagination and optional inclusive time-based filtering (nil means no
// filter). Returns empty slice if no audit logs found.
func (p *PostgreSQLAuditLogRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, entity_type, entity_id, field, old_value, new_value, changed_by_id, created_at
			  FROM audit_logs`

	var conditions []string
	var args []any

	if createdAtFrom != nil {
		args = append(args, *createdAtFrom)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if createdAtTo != nil {
		args = append(args, *createdAtTo)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

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
// dryRun set, it only counts the rows that would be removed. Returns the
// affected (or would-be affected) row count.
func (p *PostgreSQLAuditLogRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(
			ctx,
			`SELECT COUNT(*) FROM audit_logs WHERE created_at < $1`,
			olderThan,
		).Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit logs")
		}
		return count, nil
	}

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM audit_logs WHERE created_at < $1`,
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

// NewPostgreSQLAuditLogRepository creates a new PostgreSQL AuditLog repository.
func NewPostgreSQLAuditLogRepository(db *sql.DB) *PostgreSQLAuditLogRepository {
	return &PostgreSQLAuditLogRepository{db: db}
}

// marshalValue serializes an audit value column. An undefined value (field
// absent from the snapshot) becomes SQL NULL; everything else, including an
// explicit nil, is JSON-encoded.
func marshalValue(value any, defined bool) ([]byte, error) {
	if !defined {
		return nil, nil
	}
	return json.Marshal(value)
}

// scanAuditLogs reads audit log rows, mapping NULL value columns back to the
// undefined state.
func scanAuditLogs(rows *sql.Rows) ([]*auditDomain.AuditLog, error) {
	auditLogs := make([]*auditDomain.AuditLog, 0)

	for rows.Next() {
		var auditLog auditDomain.AuditLog
		var oldValue, newValue []byte

		err := rows.Scan(
			&auditLog.ID,
			&auditLog.EntityType,
			&auditLog.EntityID,
			&auditLog.Field,
			&oldValue,
			&newValue,
			&auditLog.ChangedByID,
			&auditLog.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit log")
		}

		if oldValue != nil {
			auditLog.OldValueDefined = true
			if err := json.Unmarshal(oldValue, &auditLog.OldValue); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal audit log old value")
			}
		}
		if newValue != nil {
			if err := json.Unmarshal(newValue, &auditLog.NewValue); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal audit log new value")
			}
		}

		auditLogs = append(auditLogs, &auditLog)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit logs")
	}

	return auditLogs, nil
}
