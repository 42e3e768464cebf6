package domain

import (
	"github.com/allisson/fieldvault/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// to provide context for cryptographic failures. All errors are mapped to
// appropriate HTTP status codes by the error handling layer.
var (
	// ErrFieldKeyNotSet indicates FIELD_ENCRYPTION_KEY is not configured.
	//
	// The key is resolved lazily: this error surfaces on the first cryptographic
	// operation, not at process startup. It is fatal for the triggering request
	// and requires a configuration fix plus a process restart.
	ErrFieldKeyNotSet = errors.Wrap(errors.ErrConfiguration, "field encryption key not set")

	// ErrInvalidFieldKey indicates the configured key is not a 64-character
	// hexadecimal string (256 bits).
	ErrInvalidFieldKey = errors.Wrap(errors.ErrConfiguration, "invalid field encryption key")

	// ErrAuthenticationFailed indicates an envelope failed authenticated decryption.
	//
	// This error can occur due to:
	//   - Wrong decryption key used
	//   - Envelope has been truncated or tampered with
	//   - Corrupted base64 payload
	//
	// For security reasons, the specific cause is not disclosed to prevent
	// information leakage that could aid attackers.
	ErrAuthenticationFailed = errors.New("envelope authentication failed")

	// ErrInvalidEnvelope indicates the envelope string cannot be parsed
	// (bad base64 or shorter than nonce plus authentication tag).
	ErrInvalidEnvelope = errors.New("invalid envelope format")
)
