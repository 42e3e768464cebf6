package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
	"github.com/allisson/fieldvault/internal/diff"
	apperrors "github.com/allisson/fieldvault/internal/errors"
	"github.com/allisson/fieldvault/internal/metrics"
	recordsDomain "github.com/allisson/fieldvault/internal/records/domain"
	"github.com/allisson/fieldvault/internal/taxid"
)

// Audit trail markers. Plaintext values never reach the audit store; these
// placeholders record that an encryption or access event happened.
const (
	encryptedMarker = "[ENCRYPTED]"
	decryptedMarker = "[DECRYPTED_FOR_VIEW]"

	encryptedSuffix = "_encrypted"
	accessedSuffix  = "_accessed"

	entityAuditDomain = "records"
)

// AuditRecorder is the subset of the audit trail consumed by the walker:
// a non-blocking, best-effort batched write.
type AuditRecorder interface {
	Record(entityType, entityID string, changes []diff.FieldChange, changedByID *string)
}

// Walker implements RecordCipher over untyped records.
//
// Fields are discovered by the domain classifier: top-level keys matching the
// sensitive marker, plus the same rule applied to each sub-record of the
// dependents list. Keys are visited in sorted order so the audit batch is
// deterministic. Both walks perform exactly zero or one audit write per call,
// and that write is fire-and-forget: it cannot block the walk and its failure
// cannot affect the returned record.
type Walker struct {
	codec   cryptoService.EnvelopeCodec
	audit   AuditRecorder
	logger  *slog.Logger
	metrics metrics.BusinessMetrics
}

// NewWalker creates a Walker with the provided dependencies.
func NewWalker(
	codec cryptoService.EnvelopeCodec,
	audit AuditRecorder,
	logger *slog.Logger,
	businessMetrics metrics.BusinessMetrics,
) *Walker {
	return &Walker{
		codec:   codec,
		audit:   audit,
		logger:  logger,
		metrics: businessMetrics,
	}
}

// target is one sensitive field located by the walk, with enough context to
// replace its value in the cloned record.
type target struct {
	path  string // audit path, e.g. "ssn" or "dependents[0].ssn"
	key   string
	sub   map[string]any // nil for top-level fields
	value string
}

// EncryptSensitive validates and encrypts every sensitive field of the record.
//
// All sensitive values are validated before any field is mutated: a malformed
// value rejects the whole operation and the caller's record is left untouched,
// so a partially encrypted record can never be persisted. Empty and non-string
// sensitive values are skipped. On success, one batched audit write lists each
// processed field suffixed "_encrypted".
func (w *Walker) EncryptSensitive(
	ctx context.Context,
	entityType, entityID string,
	record recordsDomain.Record,
	changedByID *string,
) (recordsDomain.Record, error) {
	result := record.Clone()
	targets := collectTargets(result)

	// Validate everything up front: no mutation may happen before the whole
	// record is known to be well-formed.
	for _, tgt := range targets {
		if !taxid.Validate(tgt.value) {
			w.metrics.RecordOperation(ctx, entityAuditDomain, "field_encrypt", "error")
			return nil, fmt.Errorf("%w: field %s", recordsDomain.ErrInvalidSensitiveValue, tgt.path)
		}
	}

	changes := make([]diff.FieldChange, 0, len(targets))
	for _, tgt := range targets {
		envelope, err := w.codec.Seal(tgt.value)
		if err != nil {
			w.metrics.RecordOperation(ctx, entityAuditDomain, "field_encrypt", "error")
			return nil, apperrors.Wrap(err, fmt.Sprintf("failed to encrypt field %s", tgt.path))
		}

		setValue(result, tgt, envelope)
		changes = append(changes, diff.FieldChange{
			Field:      tgt.path + encryptedSuffix,
			Old:        nil,
			OldDefined: true,
			New:        encryptedMarker,
		})
	}

	if len(changes) > 0 {
		w.audit.Record(entityType, entityID, changes, changedByID)
	}

	w.metrics.RecordOperation(ctx, entityAuditDomain, "field_encrypt", "success")
	return result, nil
}

// DecryptSensitive decrypts every sensitive field of the record.
//
// Each per-field Open is isolated: an envelope that fails to authenticate is
// treated as legacy plaintext from before encryption at rest was introduced,
// the original value is kept, and a warning is logged. Only a configuration
// error (missing or malformed key) aborts the walk. Successfully decrypted
// fields produce one batched audit write suffixed "_accessed".
func (w *Walker) DecryptSensitive(
	ctx context.Context,
	entityType, entityID string,
	record recordsDomain.Record,
	changedByID *string,
) (recordsDomain.Record, error) {
	result := record.Clone()
	targets := collectTargets(result)

	changes := make([]diff.FieldChange, 0, len(targets))
	for _, tgt := range targets {
		plaintext, err := w.codec.Open(tgt.value)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrConfiguration) {
				w.metrics.RecordOperation(ctx, entityAuditDomain, "field_decrypt", "error")
				return nil, err
			}

			// Soft-fail migration shim: the stored value predates encryption
			// at rest. Keep it as-is.
			w.logger.Warn("field failed decryption, treating as legacy plaintext",
				slog.String("entity_id", entityID),
				slog.String("field", tgt.path),
			)
			w.metrics.RecordOperation(ctx, entityAuditDomain, "decrypt_fallback", "success")
			continue
		}

		setValue(result, tgt, plaintext)
		changes = append(changes, diff.FieldChange{
			Field:      tgt.path + accessedSuffix,
			Old:        nil,
			OldDefined: true,
			New:        decryptedMarker,
		})
	}

	if len(changes) > 0 {
		w.audit.Record(entityType, entityID, changes, changedByID)
	}

	w.metrics.RecordOperation(ctx, entityAuditDomain, "field_decrypt", "success")
	return result, nil
}

// collectTargets walks the record and returns every sensitive field holding a
// non-empty string, in deterministic (sorted-key) order.
func collectTargets(record recordsDomain.Record) []target {
	var targets []target

	for _, key := range sortedKeys(record) {
		value := record[key]

		switch recordsDomain.Classify(key, value) {
		case recordsDomain.FieldSensitive:
			if s, ok := value.(string); ok && s != "" {
				targets = append(targets, target{path: key, key: key, value: s})
			}

		case recordsDomain.FieldNestedList:
			for i, element := range value.([]any) {
				sub, ok := element.(map[string]any)
				if !ok {
					continue
				}
				for _, subKey := range sortedKeys(sub) {
					if recordsDomain.Classify(subKey, sub[subKey]) != recordsDomain.FieldSensitive {
						continue
					}
					if s, ok := sub[subKey].(string); ok && s != "" {
						targets = append(targets, target{
							path:  fmt.Sprintf("%s[%d].%s", key, i, subKey),
							key:   subKey,
							sub:   sub,
							value: s,
						})
					}
				}
			}
		}
	}

	return targets
}

// setValue writes the replacement value back into the cloned record.
func setValue(record recordsDomain.Record, tgt target, value string) {
	if tgt.sub != nil {
		tgt.sub[tgt.key] = value
		return
	}
	record[tgt.key] = value
}

// sortedKeys returns the map keys in sorted order for deterministic walks.
func sortedKeys[M ~map[string]any](m M) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
