// Package service provides the cryptographic envelope codec used to protect
// sensitive record fields at rest.
package service

// EnvelopeCodec defines authenticated encryption of field values to and from
// their transport string form.
type EnvelopeCodec interface {
	// Seal encrypts a plaintext field value into an envelope string.
	Seal(plaintext string) (string, error)

	// Open decrypts an envelope string back into the plaintext field value.
	Open(envelope string) (string, error)
}
