// Package dto contains response types for the audit trail HTTP API.
package dto

import (
	"time"

	auditDomain "github.com/allisson/fieldvault/internal/audit/domain"
)

// AuditLogResponse represents an audit log entry in API responses.
// OldValueDefined false means the field was absent from the previous
// snapshot, which is distinct from an explicit null old value.
type AuditLogResponse struct {
	ID              string    `json:"id"`
	EntityType      string    `json:"entity_type"`
	EntityID        string    `json:"entity_id"`
	Field           string    `json:"field"`
	OldValue        any       `json:"old_value"`
	OldValueDefined bool      `json:"old_value_defined"`
	NewValue        any       `json:"new_value"`
	ChangedByID     *string   `json:"changed_by_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// MapAuditLogToResponse converts a domain audit log to an API response.
func MapAuditLogToResponse(auditLog *auditDomain.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:              auditLog.ID.String(),
		EntityType:      auditLog.EntityType,
		EntityID:        auditLog.EntityID,
		Field:           auditLog.Field,
		OldValue:        auditLog.OldValue,
		OldValueDefined: auditLog.OldValueDefined,
		NewValue:        auditLog.NewValue,
		ChangedByID:     auditLog.ChangedByID,
		CreatedAt:       auditLog.CreatedAt,
	}
}

// ListAuditLogsResponse represents a paginated list of audit logs in API responses.
type ListAuditLogsResponse struct {
	Data []AuditLogResponse `json:"data"`
}

// MapAuditLogsToListResponse converts a slice of domain audit logs to a list API response.
func MapAuditLogsToListResponse(auditLogs []*auditDomain.AuditLog) ListAuditLogsResponse {
	auditLogResponses := make([]AuditLogResponse, 0, len(auditLogs))
	for _, auditLog := range auditLogs {
		auditLogResponses = append(auditLogResponses, MapAuditLogToResponse(auditLog))
	}
	return ListAuditLogsResponse{
		Data: auditLogResponses,
	}
}
