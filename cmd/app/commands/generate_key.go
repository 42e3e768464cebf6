package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// RunGenerateKey generates a cryptographically secure 256-bit field encryption
// key and prints it as 64 hexadecimal characters, ready to paste into the
// FIELD_ENCRYPTION_KEY environment variable. Key material is zeroed from
// memory after encoding.
func RunGenerateKey(out io.Writer) error {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate field encryption key: %w", err)
	}

	encoded := hex.EncodeToString(key)
	cryptoDomain.Zero(key)

	fmt.Fprintln(out, "# Field Encryption Key Configuration")
	fmt.Fprintln(out, "# Copy this environment variable to your .env file or secrets manager")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "FIELD_ENCRYPTION_KEY=\"%s\"\n", encoded)

	return nil
}
