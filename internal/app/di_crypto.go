package app

import (
	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
)

// KeyProvider returns the field encryption key provider. The key material is
// resolved lazily on first cryptographic use, not here, so a misconfigured
// key surfaces as a request-time error instead of a startup failure.
func (c *Container) KeyProvider() *cryptoDomain.KeyProvider {
	c.keyProviderInit.Do(func() {
		c.keyProvider = cryptoDomain.NewKeyProvider(c.config.FieldEncryptionKey)
	})
	return c.keyProvider
}

// EnvelopeCodec returns the AES-256-GCM envelope codec.
func (c *Container) EnvelopeCodec() cryptoService.EnvelopeCodec {
	c.envelopeCodecInit.Do(func() {
		c.envelopeCodec = cryptoService.NewAESGCMEnvelopeCodec(c.KeyProvider())
	})
	return c.envelopeCodec
}
