// Package domain contains the audit trail entities.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is one append-only audit record of a field-level change or access
// to sensitive or regulated data. Rows are created by the audit writer and are
// never updated or deleted by this subsystem (retention cleanup is a separate
// operator command).
//
// OldValue and NewValue hold arbitrary scalar/JSON values. OldValueDefined
// false means the field was absent from the previous snapshot, which the
// repository persists as SQL NULL; an explicit null value is persisted as
// JSON null. A nil ChangedByID signals a system-initiated (non-human) change.
type AuditLog struct {
	ID              uuid.UUID
	EntityType      string
	EntityID        string
	Field           string
	OldValue        any
	OldValueDefined bool
	NewValue        any
	ChangedByID     *string
	CreatedAt       time.Time
}
