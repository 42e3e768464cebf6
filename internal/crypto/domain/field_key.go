package domain

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"sync"
)

// fieldKeyPattern matches a 256-bit key encoded as 64 hexadecimal characters.
var fieldKeyPattern = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// KeyProvider resolves, validates, and caches the process-wide field encryption key.
//
// The key material is supplied by configuration as a 64-character hexadecimal
// string and decoded to 32 raw bytes on first use. Resolution is lazy: a missing
// or malformed key surfaces as a configuration error on the first cryptographic
// operation rather than at startup. Once resolved, the key is immutable for the
// process lifetime and may be read concurrently without synchronization. There
// is no invalidation path; a key compromise requires a restart with new
// configuration.
//
// The provider exclusively owns the cached key material. Callers must not
// retain or persist the returned slice.
type KeyProvider struct {
	hexKey string

	once sync.Once
	key  []byte
	err  error
}

// NewKeyProvider creates a KeyProvider for the given hex-encoded key string.
// The value is not validated here; validation happens on the first Key call.
func NewKeyProvider(hexKey string) *KeyProvider {
	return &KeyProvider{hexKey: hexKey}
}

// Key returns the 32-byte field encryption key, resolving and caching it on
// first call. Subsequent calls return the cached result, including a cached
// resolution error.
func (p *KeyProvider) Key() ([]byte, error) {
	p.once.Do(func() {
		p.key, p.err = p.resolve()
	})
	return p.key, p.err
}

// resolve validates the configured hex string and decodes it to raw bytes.
func (p *KeyProvider) resolve() ([]byte, error) {
	if p.hexKey == "" {
		return nil, ErrFieldKeyNotSet
	}

	if !fieldKeyPattern.MatchString(p.hexKey) {
		return nil, fmt.Errorf("%w: must be 64 hexadecimal characters, got %d", ErrInvalidFieldKey, len(p.hexKey))
	}

	key, err := hex.DecodeString(p.hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFieldKey, err)
	}

	return key, nil
}

// Close zeroes the cached key material. The provider must not be used after
// Close; it is intended for application shutdown.
func (p *KeyProvider) Close() {
	// Force resolution state so a later Key call cannot re-materialize the key.
	p.once.Do(func() {})
	Zero(p.key)
	p.key = nil
	p.hexKey = ""
	if p.err == nil {
		p.err = ErrFieldKeyNotSet
	}
}
