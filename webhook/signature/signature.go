package signature

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// SecretPrefix marks an encoded subscription signing secret
	SecretPrefix = "whsec_"

	// DefaultSecretBytes is the size used for newly created subscriptions (256 bits)
	DefaultSecretBytes = 32

	// MinSecretBytes is the minimum accepted secret size (192 bits)
	MinSecretBytes = 24

	// MaxSecretBytes is the maximum accepted secret size (512 bits)
	MaxSecretBytes = 64
)

// Secret is the per-subscription HMAC key
type Secret struct {
	raw     []byte
	encoded string
}

// GenerateSecret creates a new cryptographically secure signing secret
// between MinSecretBytes and MaxSecretBytes in size.
func GenerateSecret(size int) (Secret, error) {
	if size < MinSecretBytes || size > MaxSecretBytes {
		return Secret{}, fmt.Errorf("secret size must be between %d and %d bytes", MinSecretBytes, MaxSecretBytes)
	}

	bytes := make([]byte, size)
	if _, err := rand.Read(bytes); err != nil {
		return Secret{}, fmt.Errorf("generating random bytes: %w", err)
	}

	return Secret{
		raw:     bytes,
		encoded: SecretPrefix + base64.StdEncoding.EncodeToString(bytes),
	}, nil
}

// ParseSecret parses a base64-encoded secret with the whsec_ prefix
func ParseSecret(encoded string) (Secret, error) {
	if !strings.HasPrefix(encoded, SecretPrefix) {
		return Secret{}, fmt.Errorf("secret must start with %s prefix", SecretPrefix)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(encoded, SecretPrefix))
	if err != nil {
		return Secret{}, fmt.Errorf("decoding base64 secret: %w", err)
	}

	if len(raw) < MinSecretBytes || len(raw) > MaxSecretBytes {
		return Secret{}, fmt.Errorf("secret size must be between %d and %d bytes", MinSecretBytes, MaxSecretBytes)
	}

	return Secret{
		raw:     raw,
		encoded: encoded,
	}, nil
}

// String returns the encoded secret with prefix
func (s Secret) String() string {
	return s.encoded
}

// Bytes returns the raw secret bytes
func (s Secret) Bytes() []byte {
	return s.raw
}

// IsZero reports whether the secret was never set
func (s Secret) IsZero() bool {
	return len(s.raw) == 0
}

// Masked returns a form safe to show after creation: prefix, first and last four characters
func (s Secret) Masked() string {
	body := strings.TrimPrefix(s.encoded, SecretPrefix)
	if len(body) <= 8 {
		return SecretPrefix + "****"
	}
	return SecretPrefix + body[:4] + "..." + body[len(body)-4:]
}

// Sign computes the hex encoded HMAC-SHA256 of payload keyed with the secret.
// The payload must be the exact bytes put on the wire.
func Sign(secret Secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret.Bytes())
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature of payload and compares it with sig in constant time.
// Receivers must pass the unparsed request body.
func Verify(secret Secret, payload []byte, sig string) bool {
	given, err := hex.DecodeString(strings.TrimSpace(sig))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, secret.Bytes())
	mac.Write(payload)
	return hmac.Equal(given, mac.Sum(nil))
}
