// Package http provides HTTP handlers for sensitive-field record operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	"github.com/allisson/fieldvault/internal/diff"
	"github.com/allisson/fieldvault/internal/httputil"
	recordsDomain "github.com/allisson/fieldvault/internal/records/domain"
	"github.com/allisson/fieldvault/internal/records/http/dto"
	recordsService "github.com/allisson/fieldvault/internal/records/service"
	customValidation "github.com/allisson/fieldvault/internal/validation"
)

// ActorHeader carries the optional identifier of the user making the change.
// An absent or blank header marks the change as system-initiated.
const ActorHeader = "X-Actor-Id"

// AuditRecorder submits field changes for asynchronous audit persistence.
type AuditRecorder interface {
	Record(entityType, entityID string, changes []diff.FieldChange, changedByID *string)
}

// RecordHandler handles HTTP requests for record encryption, decryption, and
// change tracking.
type RecordHandler struct {
	recordCipher recordsService.RecordCipher
	audit        AuditRecorder
	logger       *slog.Logger
}

// NewRecordHandler creates a new record handler with required dependencies.
func NewRecordHandler(
	recordCipher recordsService.RecordCipher,
	audit AuditRecorder,
	logger *slog.Logger,
) *RecordHandler {
	return &RecordHandler{
		recordCipher: recordCipher,
		audit:        audit,
		logger:       logger,
	}
}

// EncryptHandler encrypts every sensitive field of the submitted record.
// POST /v1/records/:entity_type/:entity_id/encrypt
// Returns 200 OK with the encrypted record, or 422 when any sensitive value
// fails validation (in which case no field was encrypted).
func (h *RecordHandler) EncryptHandler(c *gin.Context) {
	entityType, entityID, ok := h.entityParams(c)
	if !ok {
		return
	}

	req, ok := h.bindRecordRequest(c)
	if !ok {
		return
	}

	record, err := h.recordCipher.EncryptSensitive(
		c.Request.Context(),
		entityType,
		entityID,
		recordsDomain.Record(req.Record),
		actorFromHeader(c),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RecordResponse{
		EntityType: entityType,
		EntityID:   entityID,
		Record:     record,
	})
}

// DecryptHandler decrypts every sensitive field of the submitted record.
// POST /v1/records/:entity_type/:entity_id/decrypt
// Returns 200 OK with the decrypted record. Fields that fail authentication
// are passed through unchanged as legacy plaintext.
func (h *RecordHandler) DecryptHandler(c *gin.Context) {
	entityType, entityID, ok := h.entityParams(c)
	if !ok {
		return
	}

	req, ok := h.bindRecordRequest(c)
	if !ok {
		return
	}

	record, err := h.recordCipher.DecryptSensitive(
		c.Request.Context(),
		entityType,
		entityID,
		recordsDomain.Record(req.Record),
		actorFromHeader(c),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RecordResponse{
		EntityType: entityType,
		EntityID:   entityID,
		Record:     record,
	})
}

// ChangesHandler diffs two snapshots of an entity and records the detected
// changes in the audit trail.
// POST /v1/records/:entity_type/:entity_id/changes
// Returns 200 OK with the detected changes. The audit write is asynchronous:
// a 200 response means the changes were accepted, not yet persisted.
func (h *RecordHandler) ChangesHandler(c *gin.Context) {
	entityType, entityID, ok := h.entityParams(c)
	if !ok {
		return
	}

	var req dto.ChangesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	changes := diff.ByKeys(req.Old, req.New, req.Namespace)
	if len(changes) > 0 {
		h.audit.Record(entityType, entityID, changes, actorFromHeader(c))
	}

	c.JSON(http.StatusOK, dto.MapChangesToResponse(changes))
}

// entityParams extracts and validates the entity_type and entity_id URL
// parameters, writing the error response itself on failure.
func (h *RecordHandler) entityParams(c *gin.Context) (entityType, entityID string, ok bool) {
	entityType = c.Param("entity_type")
	entityID = c.Param("entity_id")

	err := validation.Errors{
		"entity_type": validation.Validate(entityType, validation.Required, customValidation.EntityType),
		"entity_id":   validation.Validate(entityID, validation.Required, customValidation.NotBlank),
	}.Filter()
	if err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return "", "", false
	}

	return entityType, entityID, true
}

// bindRecordRequest parses and validates the common record payload, writing
// the error response itself on failure.
func (h *RecordHandler) bindRecordRequest(c *gin.Context) (dto.EncryptRecordRequest, bool) {
	var req dto.EncryptRecordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid JSON body: %w", err), h.logger)
		return req, false
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return req, false
	}

	return req, true
}

// actorFromHeader extracts the optional actor identifier from the request.
func actorFromHeader(c *gin.Context) *string {
	actor := strings.TrimSpace(c.GetHeader(ActorHeader))
	if actor == "" {
		return nil
	}
	return &actor
}
