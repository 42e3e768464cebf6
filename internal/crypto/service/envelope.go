package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// Envelope wire format constants. The byte layout is a compatibility contract
// with previously encrypted data and must never change.
const (
	// NonceSize is the size of the random nonce in bytes (96 bits).
	NonceSize = 12
	// TagSize is the size of the GCM authentication tag in bytes (128 bits).
	TagSize = 16
	// minEnvelopeSize is the smallest valid decoded envelope (empty ciphertext).
	minEnvelopeSize = NonceSize + TagSize
)

// AESGCMEnvelopeCodec implements EnvelopeCodec using AES-256-GCM.
//
// Each encrypted value is serialized as base64(nonce[12] || tag[16] || ciphertext).
// Note the tag placement: Go's GCM implementation appends the tag to the end of
// the ciphertext, so Seal and Open reorder bytes to preserve the wire layout.
//
// A fresh random nonce is generated per Seal call, so sealing the same
// plaintext twice yields two different envelope strings. The codec is stateless
// apart from the shared KeyProvider and is safe for concurrent use.
type AESGCMEnvelopeCodec struct {
	keys *cryptoDomain.KeyProvider
}

// NewAESGCMEnvelopeCodec creates an envelope codec backed by the given key provider.
// The key is not resolved here; the first Seal or Open triggers resolution, and
// a missing or malformed key surfaces as a configuration error at that point.
func NewAESGCMEnvelopeCodec(keys *cryptoDomain.KeyProvider) *AESGCMEnvelopeCodec {
	return &AESGCMEnvelopeCodec{keys: keys}
}

// Seal encrypts a plaintext field value and returns the base64 envelope string.
// An empty plaintext is a no-op returning an empty string, used to represent
// "field not set".
func (c *AESGCMEnvelopeCodec) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	aead, err := c.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// sealed = ciphertext || tag
	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-TagSize]
	tag := sealed[len(sealed)-TagSize:]

	envelope := make([]byte, 0, NonceSize+len(sealed))
	envelope = append(envelope, nonce...)
	envelope = append(envelope, tag...)
	envelope = append(envelope, ciphertext...)

	return base64.StdEncoding.EncodeToString(envelope), nil
}

// Open decrypts a base64 envelope string and returns the plaintext field value.
// An empty envelope is a no-op returning an empty string. Truncated, corrupted,
// or wrong-key envelopes fail with ErrAuthenticationFailed; no partial
// plaintext is ever returned.
func (c *AESGCMEnvelopeCodec) Open(envelope string) (string, error) {
	if envelope == "" {
		return "", nil
	}

	aead, err := c.aead()
	if err != nil {
		return "", err
	}

	decoded, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return "", fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidEnvelope, err)
	}
	if len(decoded) < minEnvelopeSize {
		return "", fmt.Errorf(
			"%w: decoded length %d below minimum %d",
			cryptoDomain.ErrInvalidEnvelope,
			len(decoded),
			minEnvelopeSize,
		)
	}

	nonce := decoded[:NonceSize]
	tag := decoded[NonceSize:minEnvelopeSize]
	ciphertext := decoded[minEnvelopeSize:]

	// Rebuild the ciphertext || tag order expected by Go's GCM.
	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", cryptoDomain.ErrAuthenticationFailed, err)
	}

	return string(plaintext), nil
}

// aead resolves the key and builds the AES-256-GCM primitive.
func (c *AESGCMEnvelopeCodec) aead() (cipher.AEAD, error) {
	key, err := c.keys.Key()
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return aead, nil
}
