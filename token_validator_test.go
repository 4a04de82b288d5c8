package identity_test

import (
	"testing"

	"github.com/pairloom/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiTokenValidator(t *testing.T) {
	okValidator := identity.TokenValidatorFunc(func(tokenString string) (identity.AuthClaims, error) {
		return sampleClaims(), nil
	})
	malformed := identity.TokenValidatorFunc(func(tokenString string) (identity.AuthClaims, error) {
		return nil, identity.ErrTokenMalformed
	})
	expired := identity.TokenValidatorFunc(func(tokenString string) (identity.AuthClaims, error) {
		return nil, identity.ErrTokenExpired
	})

	t.Run("first success wins", func(t *testing.T) {
		v := identity.NewMultiTokenValidator(okValidator, malformed)

		claims, err := v.Validate("token")

		require.NoError(t, err)
		assert.Equal(t, "firebase-uid-1", claims.Subject())
	})

	t.Run("malformed falls through to the next validator", func(t *testing.T) {
		v := identity.NewMultiTokenValidator(malformed, okValidator)

		claims, err := v.Validate("token")

		require.NoError(t, err)
		assert.NotNil(t, claims)
	})

	t.Run("expired stops the chain", func(t *testing.T) {
		v := identity.NewMultiTokenValidator(expired, okValidator)

		_, err := v.Validate("token")

		assert.True(t, identity.IsTokenExpiredError(err))
	})

	t.Run("all malformed reports the last error", func(t *testing.T) {
		v := identity.NewMultiTokenValidator(malformed, malformed)

		_, err := v.Validate("token")

		assert.True(t, identity.IsMalformedError(err))
	})

	t.Run("no validators", func(t *testing.T) {
		v := identity.NewMultiTokenValidator(nil, nil)

		_, err := v.Validate("token")

		assert.Error(t, err)
	})
}

func TestSimpleConfigDefaults(t *testing.T) {
	cfg := &identity.SimpleConfig{SigningKey: "secret"}

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "HS256", cfg.GetSigningMethod())
	assert.Equal(t, "user", cfg.GetContextKey())
	assert.Equal(t, identity.DefaultTokenExpiration, cfg.GetTokenExpiration())
	assert.Equal(t, "header:Authorization", cfg.GetTokenLookup())
	assert.Equal(t, "Bearer", cfg.GetAuthScheme())
	assert.Equal(t, identity.DefaultIssuer, cfg.GetIssuer())
	assert.Equal(t, []string{identity.DefaultAudience}, cfg.GetAudience())

	blank := &identity.SimpleConfig{}
	assert.Error(t, blank.Validate())
}
