package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
	"github.com/allisson/fieldvault/internal/diff"
	apperrors "github.com/allisson/fieldvault/internal/errors"
	"github.com/allisson/fieldvault/internal/metrics"
	recordsDomain "github.com/allisson/fieldvault/internal/records/domain"
)

const testHexKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// recordingAudit captures audit batches for assertions.
type recordingAudit struct {
	batches [][]diff.FieldChange
	actors  []*string
}

func (r *recordingAudit) Record(entityType, entityID string, changes []diff.FieldChange, changedByID *string) {
	r.batches = append(r.batches, changes)
	r.actors = append(r.actors, changedByID)
}

func newTestWalker(t *testing.T) (*Walker, *recordingAudit, *cryptoService.AESGCMEnvelopeCodec, *bytes.Buffer) {
	t.Helper()
	codec := cryptoService.NewAESGCMEnvelopeCodec(cryptoDomain.NewKeyProvider(testHexKey))
	audit := &recordingAudit{}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	walker := NewWalker(codec, audit, logger, metrics.NewNoOpBusinessMetrics())
	return walker, audit, codec, &buf
}

func TestWalker_EncryptSensitive(t *testing.T) {
	ctx := context.Background()

	t.Run("EncryptsTopLevelField", func(t *testing.T) {
		walker, audit, codec, _ := newTestWalker(t)

		record := recordsDomain.Record{"ssn": "123-45-6789", "name": "Ada"}
		result, err := walker.EncryptSensitive(ctx, "tax_return", "return-42", record, nil)
		require.NoError(t, err)

		// The scalar field is untouched; the sensitive field is an envelope.
		assert.Equal(t, "Ada", result["name"])
		assert.NotEqual(t, "123-45-6789", result["ssn"])

		plaintext, err := codec.Open(result["ssn"].(string))
		require.NoError(t, err)
		assert.Equal(t, "123-45-6789", plaintext)

		// One batched audit write of size 1.
		require.Len(t, audit.batches, 1)
		require.Len(t, audit.batches[0], 1)
		change := audit.batches[0][0]
		assert.Equal(t, "ssn_encrypted", change.Field)
		assert.Nil(t, change.Old)
		assert.True(t, change.OldDefined)
		assert.Equal(t, "[ENCRYPTED]", change.New)
	})

	t.Run("CallerRecordIsNotMutated", func(t *testing.T) {
		walker, _, _, _ := newTestWalker(t)

		record := recordsDomain.Record{"ssn": "123-45-6789"}
		_, err := walker.EncryptSensitive(ctx, "tax_return", "return-42", record, nil)
		require.NoError(t, err)

		assert.Equal(t, "123-45-6789", record["ssn"])
	})

	t.Run("MarkerMatchIsCaseInsensitiveSubstring", func(t *testing.T) {
		walker, audit, _, _ := newTestWalker(t)

		record := recordsDomain.Record{
			"spouseSSN": "234-56-7890",
			"SsnLast4":  "345-67-8901",
		}
		result, err := walker.EncryptSensitive(ctx, "tax_return", "return-42", record, nil)
		require.NoError(t, err)

		assert.NotEqual(t, "234-56-7890", result["spouseSSN"])
		assert.NotEqual(t, "345-67-8901", result["SsnLast4"])

		require.Len(t, audit.batches, 1)
		assert.Len(t, audit.batches[0], 2)
	})

	t.Run("EncryptsDependentsSubRecords", func(t *testing.T) {
		walker, audit, codec, _ := newTestWalker(t)

		record := recordsDomain.Record{
			"ssn": "123-45-6789",
			"dependents": []any{
				map[string]any{"name": "Kid One", "ssn": "234-56-7890"},
				map[string]any{"name": "Kid Two", "ssn": "345-67-8901"},
			},
		}
		result, err := walker.EncryptSensitive(ctx, "tax_return", "return-42", record, nil)
		require.NoError(t, err)

		dependents := result["dependents"].([]any)
		first := dependents[0].(map[string]any)
		second := dependents[1].(map[string]any)

		assert.Equal(t, "Kid One", first["name"])
		plaintext, err := codec.Open(first["ssn"].(string))
		require.NoError(t, err)
		assert.Equal(t, "234-56-7890", plaintext)

		plaintext, err = codec.Open(second["ssn"].(string))
		require.NoError(t, err)
		assert.Equal(t, "345-67-8901", plaintext)

		require.Len(t, audit.batches, 1)
		fields := make([]string, 0)
		for _, change := range audit.batches[0] {
			fields = append(fields, change.Field)
		}
		assert.Equal(t, []string{
			"dependents[0].ssn_encrypted",
			"dependents[1].ssn_encrypted",
			"ssn_encrypted",
		}, fields)
	})

	t.Run("ValidationFailureRejectsWholeOperation", func(t *testing.T) {
		walker, audit, _, _ := newTestWalker(t)

		// First field valid, second invalid: nothing may be encrypted and no
		// audit write may happen.
		record := recordsDomain.Record{
			"ssn":       "123-45-6789",
			"spouseSsn": "000-12-3456",
		}
		result, err := walker.EncryptSensitive(ctx, "tax_return", "return-42", record, nil)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Contains(t, err.Error(), "spouseSsn")

		assert.Equal(t, "123-45-6789", record["ssn"])
		assert.Empty(t, audit.batches)
	})

	t.Run("InvalidDependentValueRejectsWholeOperation", func(t *testing.T) {
		walker, audit, _, _ := newTestWalker(t)

		record := recordsDomain.Record{
			"dependents": []any{
				map[string]any{"ssn": "123-00-4567"},
			},
		}
		_, err := walker.EncryptSensitive(ctx, "tax_return", "return-42", record, nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Contains(t, err.Error(), "dependents[0].ssn")
		assert.Empty(t, audit.batches)
	})

	t.Run("EmptyAndNonStringSensitiveValuesAreSkipped", func(t *testing.T) {
		walker, audit, _, _ := newTestWalker(t)

		record := recordsDomain.Record{
			"ssn":       "",
			"spouseSsn": 123456789,
			"name":      "Ada",
		}
		result, err := walker.EncryptSensitive(ctx, "tax_return", "return-42", record, nil)
		require.NoError(t, err)

		assert.Equal(t, "", result["ssn"])
		assert.Equal(t, 123456789, result["spouseSsn"])

		// Nothing processed: no audit write at all.
		assert.Empty(t, audit.batches)
	})

	t.Run("ActorIsForwardedToAudit", func(t *testing.T) {
		walker, audit, _, _ := newTestWalker(t)

		actor := "preparer-7"
		record := recordsDomain.Record{"ssn": "123-45-6789"}
		_, err := walker.EncryptSensitive(ctx, "tax_return", "return-42", record, &actor)
		require.NoError(t, err)

		require.Len(t, audit.actors, 1)
		require.NotNil(t, audit.actors[0])
		assert.Equal(t, "preparer-7", *audit.actors[0])
	})

	t.Run("MissingKeySurfacesConfigurationError", func(t *testing.T) {
		codec := cryptoService.NewAESGCMEnvelopeCodec(cryptoDomain.NewKeyProvider(""))
		audit := &recordingAudit{}
		walker := NewWalker(codec, audit, slog.New(slog.DiscardHandler), metrics.NewNoOpBusinessMetrics())

		record := recordsDomain.Record{"ssn": "123-45-6789"}
		_, err := walker.EncryptSensitive(ctx, "tax_return", "return-42", record, nil)
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
		assert.Empty(t, audit.batches)
	})
}

func TestWalker_DecryptSensitive(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTripWithAuditTrail", func(t *testing.T) {
		walker, audit, _, _ := newTestWalker(t)

		record := recordsDomain.Record{"ssn": "123-45-6789"}
		encrypted, err := walker.EncryptSensitive(ctx, "tax_return", "return-42", record, nil)
		require.NoError(t, err)

		decrypted, err := walker.DecryptSensitive(ctx, "tax_return", "return-42", encrypted, nil)
		require.NoError(t, err)
		assert.Equal(t, "123-45-6789", decrypted["ssn"])

		// Exactly one batch of size 1 per walk: first _encrypted, then _accessed.
		require.Len(t, audit.batches, 2)
		require.Len(t, audit.batches[0], 1)
		require.Len(t, audit.batches[1], 1)
		assert.Equal(t, "ssn_encrypted", audit.batches[0][0].Field)
		assert.Equal(t, "ssn_accessed", audit.batches[1][0].Field)
		assert.Equal(t, "[DECRYPTED_FOR_VIEW]", audit.batches[1][0].New)
	})

	t.Run("LegacyPlaintextIsLeftUnchanged", func(t *testing.T) {
		walker, audit, _, buf := newTestWalker(t)

		// Value stored before encryption at rest was introduced.
		record := recordsDomain.Record{"ssn": "123-45-6789"}
		result, err := walker.DecryptSensitive(ctx, "tax_return", "return-42", record, nil)
		require.NoError(t, err)

		assert.Equal(t, "123-45-6789", result["ssn"])
		assert.Empty(t, audit.batches)

		logOutput := buf.String()
		assert.Contains(t, logOutput, "legacy plaintext")
		assert.Contains(t, logOutput, "field=ssn")
		// The value itself must never be logged.
		assert.NotContains(t, logOutput, "123-45-6789")
	})

	t.Run("MixedLegacyAndEncryptedFields", func(t *testing.T) {
		walker, audit, codec, _ := newTestWalker(t)

		envelope, err := codec.Seal("234-56-7890")
		require.NoError(t, err)

		record := recordsDomain.Record{
			"ssn":       "123-45-6789", // legacy
			"spouseSsn": envelope,
		}
		result, err := walker.DecryptSensitive(ctx, "tax_return", "return-42", record, nil)
		require.NoError(t, err)

		assert.Equal(t, "123-45-6789", result["ssn"])
		assert.Equal(t, "234-56-7890", result["spouseSsn"])

		require.Len(t, audit.batches, 1)
		require.Len(t, audit.batches[0], 1)
		assert.Equal(t, "spouseSsn_accessed", audit.batches[0][0].Field)
	})

	t.Run("DecryptsDependentsSubRecords", func(t *testing.T) {
		walker, audit, _, _ := newTestWalker(t)

		record := recordsDomain.Record{
			"dependents": []any{
				map[string]any{"name": "Kid One", "ssn": "234-56-7890"},
			},
		}
		encrypted, err := walker.EncryptSensitive(ctx, "tax_return", "return-42", record, nil)
		require.NoError(t, err)

		decrypted, err := walker.DecryptSensitive(ctx, "tax_return", "return-42", encrypted, nil)
		require.NoError(t, err)

		dependent := decrypted["dependents"].([]any)[0].(map[string]any)
		assert.Equal(t, "234-56-7890", dependent["ssn"])

		require.Len(t, audit.batches, 2)
		assert.Equal(t, "dependents[0].ssn_accessed", audit.batches[1][0].Field)
	})

	t.Run("MissingKeySurfacesConfigurationError", func(t *testing.T) {
		codec := cryptoService.NewAESGCMEnvelopeCodec(cryptoDomain.NewKeyProvider(""))
		walker := NewWalker(codec, &recordingAudit{}, slog.New(slog.DiscardHandler), metrics.NewNoOpBusinessMetrics())

		record := recordsDomain.Record{"ssn": "123-45-6789"}
		_, err := walker.DecryptSensitive(ctx, "tax_return", "return-42", record, nil)
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	})
}
