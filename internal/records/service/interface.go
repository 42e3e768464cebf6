// Package service implements the sensitive-field walker that applies the
// envelope codec to untyped tax records.
package service

import (
	"context"

	recordsDomain "github.com/allisson/fieldvault/internal/records/domain"
)

// RecordCipher walks an untyped record, encrypting or decrypting its
// sensitive fields in place of their plaintext values.
type RecordCipher interface {
	// EncryptSensitive validates and encrypts every sensitive field of the
	// record, returning a new record with envelope strings in place of
	// plaintext. A validation failure rejects the whole operation before any
	// field is mutated.
	EncryptSensitive(
		ctx context.Context,
		entityType, entityID string,
		record recordsDomain.Record,
		changedByID *string,
	) (recordsDomain.Record, error)

	// DecryptSensitive decrypts every sensitive field of the record. A field
	// that fails authentication is treated as legacy plaintext and returned
	// unchanged.
	DecryptSensitive(
		ctx context.Context,
		entityType, entityID string,
		record recordsDomain.Record,
		changedByID *string,
	) (recordsDomain.Record, error)
}
