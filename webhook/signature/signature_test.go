package signature

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	knownSecret    = "whsec_AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8="
	knownPayload   = `{"event":"survey.completed","score":9}`
	knownSignature = "46338b2defe91e648bfa7a33fceeb7377cf986021328fc86363d343bc86d2da3"
)

func TestGenerateSecret(t *testing.T) {
	t.Run("success - default size", func(t *testing.T) {
		secret, err := GenerateSecret(DefaultSecretBytes)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(secret.String(), SecretPrefix))
		assert.Equal(t, DefaultSecretBytes, len(secret.Bytes()))
		assert.False(t, secret.IsZero())
	})

	t.Run("success - maximum size", func(t *testing.T) {
		secret, err := GenerateSecret(MaxSecretBytes)
		require.NoError(t, err)
		assert.Equal(t, MaxSecretBytes, len(secret.Bytes()))
	})

	t.Run("error - too small", func(t *testing.T) {
		_, err := GenerateSecret(MinSecretBytes - 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret size must be between")
	})

	t.Run("error - too large", func(t *testing.T) {
		_, err := GenerateSecret(MaxSecretBytes + 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret size must be between")
	})

	t.Run("randomness - generates different secrets", func(t *testing.T) {
		secret1, err1 := GenerateSecret(32)
		secret2, err2 := GenerateSecret(32)
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.NotEqual(t, secret1.String(), secret2.String())
	})
}

func TestParseSecret(t *testing.T) {
	t.Run("success - round trip", func(t *testing.T) {
		original, err := GenerateSecret(32)
		require.NoError(t, err)

		parsed, err := ParseSecret(original.String())
		require.NoError(t, err)
		assert.Equal(t, original.String(), parsed.String())
		assert.Equal(t, original.Bytes(), parsed.Bytes())
	})

	t.Run("error - missing prefix", func(t *testing.T) {
		_, err := ParseSecret("dGVzdHNlY3JldA==")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must start with")
	})

	t.Run("error - invalid base64", func(t *testing.T) {
		_, err := ParseSecret(SecretPrefix + "not-valid-base64!!!")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decoding base64")
	})

	t.Run("error - secret too small", func(t *testing.T) {
		_, err := ParseSecret(SecretPrefix + "dGVzdA==")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret size must be between")
	})
}

func TestMasked(t *testing.T) {
	secret, err := ParseSecret(knownSecret)
	require.NoError(t, err)

	masked := secret.Masked()
	assert.Equal(t, "whsec_AAEC...Hh8=", masked)
	assert.NotContains(t, masked, "BAUGBwgJ")

	assert.Equal(t, SecretPrefix+"****", Secret{}.Masked())
}

func TestSign(t *testing.T) {
	secret, err := ParseSecret(knownSecret)
	require.NoError(t, err)

	t.Run("matches known vector", func(t *testing.T) {
		assert.Equal(t, knownSignature, Sign(secret, []byte(knownPayload)))
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Sign(secret, []byte(knownPayload)), Sign(secret, []byte(knownPayload)))
	})

	t.Run("hex encoded sha256 length", func(t *testing.T) {
		assert.Len(t, Sign(secret, []byte("{}")), 64)
	})
}

func TestVerify(t *testing.T) {
	secret, err := GenerateSecret(32)
	require.NoError(t, err)
	payload := []byte(`{"event":"journey.stage_changed","data":{"stage":"follow_up"}}`)

	t.Run("success - round trip", func(t *testing.T) {
		assert.True(t, Verify(secret, payload, Sign(secret, payload)))
	})

	t.Run("success - known vector", func(t *testing.T) {
		known, err := ParseSecret(knownSecret)
		require.NoError(t, err)
		assert.True(t, Verify(known, []byte(knownPayload), knownSignature))
	})

	t.Run("failure - wrong secret", func(t *testing.T) {
		other, err := GenerateSecret(32)
		require.NoError(t, err)
		assert.False(t, Verify(other, payload, Sign(secret, payload)))
	})

	t.Run("failure - mutated payload", func(t *testing.T) {
		sig := Sign(secret, payload)
		mutated := append([]byte{}, payload...)
		mutated[len(mutated)-2] = ' '
		assert.False(t, Verify(secret, mutated, sig))
	})

	t.Run("failure - reformatted json", func(t *testing.T) {
		sig := Sign(secret, []byte(`{"a":1}`))
		assert.False(t, Verify(secret, []byte(`{"a": 1}`), sig))
	})

	t.Run("failure - malformed hex", func(t *testing.T) {
		assert.False(t, Verify(secret, payload, "zz-not-hex"))
	})

	t.Run("failure - empty signature", func(t *testing.T) {
		assert.False(t, Verify(secret, payload, ""))
	})
}
