package identity_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pairloom/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIdentity implements identity.Identity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Email() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Roles() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

// MockLogger implements identity.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

func testConfig() *identity.SimpleConfig {
	return &identity.SimpleConfig{
		SigningKey: "test-signing-key",
		Issuer:     "test-issuer",
		Audience:   []string{"test-audience"},
	}
}

func testIdentity() *MockIdentity {
	id := &MockIdentity{}
	id.On("ID").Return("user-123")
	id.On("Email").Return("test@example.com")
	id.On("Roles").Return([]string{"admin", "member"})
	return id
}

func TestNewTokenService(t *testing.T) {
	t.Run("creates token service", func(t *testing.T) {
		service, err := identity.NewTokenService(testConfig())

		assert.NoError(t, err)
		assert.NotNil(t, service)
	})

	t.Run("fails with nil config", func(t *testing.T) {
		service, err := identity.NewTokenService(nil)

		assert.Error(t, err)
		assert.Nil(t, service)
	})

	t.Run("fails with blank signing key", func(t *testing.T) {
		cfg := testConfig()
		cfg.SigningKey = "   "

		service, err := identity.NewTokenService(cfg)

		assert.Error(t, err)
		assert.Nil(t, service)
	})
}

func TestTokenService_Issue(t *testing.T) {
	service, err := identity.NewTokenService(testConfig())
	require.NoError(t, err)

	t.Run("issues a signed token", func(t *testing.T) {
		tokenString, err := service.Issue(testIdentity())

		assert.NoError(t, err)
		assert.NotEmpty(t, tokenString)
		assert.Len(t, strings.Split(tokenString, "."), 3)
	})

	t.Run("fails with nil identity", func(t *testing.T) {
		_, err := service.Issue(nil)
		assert.Error(t, err)
	})

	t.Run("sets registered and extension claims", func(t *testing.T) {
		tokenString, err := service.Issue(testIdentity())
		require.NoError(t, err)

		claims, err := service.Validate(tokenString)
		require.NoError(t, err)

		assert.Equal(t, "user-123", claims.Subject())
		assert.Equal(t, "test@example.com", claims.Email())
		assert.Equal(t, []string{"admin", "member"}, claims.Roles())
		assert.True(t, claims.HasRole("admin"))
		assert.False(t, claims.HasRole("owner"))
	})

	t.Run("expires seven days out by default", func(t *testing.T) {
		tokenString, err := service.Issue(testIdentity())
		require.NoError(t, err)

		claims, err := service.Validate(tokenString)
		require.NoError(t, err)

		expected := time.Now().Add(7 * 24 * time.Hour)
		assert.WithinDuration(t, expected, claims.Expires(), time.Minute)
		assert.WithinDuration(t, time.Now(), claims.IssuedAt(), time.Minute)
	})

	t.Run("assigns a unique token id", func(t *testing.T) {
		first, err := service.Issue(testIdentity())
		require.NoError(t, err)
		second, err := service.Issue(testIdentity())
		require.NoError(t, err)

		firstClaims := parseRawClaims(t, first)
		secondClaims := parseRawClaims(t, second)

		assert.NotEmpty(t, firstClaims.ID)
		assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
	})
}

func TestTokenService_Validate(t *testing.T) {
	cfg := testConfig()
	service, err := identity.NewTokenService(cfg)
	require.NoError(t, err)

	t.Run("round trip succeeds", func(t *testing.T) {
		tokenString, err := service.Issue(testIdentity())
		require.NoError(t, err)

		claims, err := service.Validate(tokenString)

		assert.NoError(t, err)
		assert.Equal(t, "user-123", claims.Subject())
	})

	t.Run("expired token reports token_expired", func(t *testing.T) {
		tokenString := signedTokenAt(t, service, time.Now().Add(-time.Hour))

		_, err := service.Validate(tokenString)

		assert.Error(t, err)
		assert.True(t, identity.IsTokenExpiredError(err))
	})

	t.Run("near boundary expiration still verifies", func(t *testing.T) {
		tokenString := signedTokenAt(t, service, time.Now().Add(2*time.Second))

		_, err := service.Validate(tokenString)

		assert.NoError(t, err)
	})

	t.Run("tampered payload is malformed, not expired", func(t *testing.T) {
		tokenString, err := service.Issue(testIdentity())
		require.NoError(t, err)

		parts := strings.Split(tokenString, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + "." + flipChar(parts[1]) + "." + parts[2]

		_, err = service.Validate(tampered)

		assert.Error(t, err)
		assert.False(t, identity.IsTokenExpiredError(err))
		assert.True(t, identity.IsMalformedError(err))
	})

	t.Run("tampered signature is malformed, never expired", func(t *testing.T) {
		tokenString, err := service.Issue(testIdentity())
		require.NoError(t, err)

		parts := strings.Split(tokenString, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + "." + parts[1] + "." + flipChar(parts[2])

		_, err = service.Validate(tampered)

		assert.Error(t, err)
		assert.False(t, identity.IsTokenExpiredError(err))
		assert.True(t, identity.IsMalformedError(err))
	})

	t.Run("token signed with another key is rejected", func(t *testing.T) {
		otherCfg := testConfig()
		otherCfg.SigningKey = "another-signing-key"
		other, err := identity.NewTokenService(otherCfg)
		require.NoError(t, err)

		tokenString, err := other.Issue(testIdentity())
		require.NoError(t, err)

		_, err = service.Validate(tokenString)

		assert.Error(t, err)
		assert.True(t, identity.IsMalformedError(err))
	})

	t.Run("wrong issuer is rejected", func(t *testing.T) {
		otherCfg := testConfig()
		otherCfg.Issuer = "someone-else"
		other, err := identity.NewTokenService(otherCfg)
		require.NoError(t, err)

		tokenString, err := other.Issue(testIdentity())
		require.NoError(t, err)

		_, err = service.Validate(tokenString)

		assert.Error(t, err)
		assert.True(t, identity.IsMalformedError(err))
	})

	t.Run("wrong audience is rejected", func(t *testing.T) {
		otherCfg := testConfig()
		otherCfg.Audience = []string{"other-audience"}
		other, err := identity.NewTokenService(otherCfg)
		require.NoError(t, err)

		tokenString, err := other.Issue(testIdentity())
		require.NoError(t, err)

		_, err = service.Validate(tokenString)

		assert.Error(t, err)
		assert.True(t, identity.IsMalformedError(err))
	})

	t.Run("garbage input is malformed", func(t *testing.T) {
		_, err := service.Validate("not-a-token")

		assert.Error(t, err)
		assert.True(t, identity.IsMalformedError(err))
	})
}

func TestTokenService_SessionFromToken(t *testing.T) {
	service, err := identity.NewTokenService(testConfig())
	require.NoError(t, err)

	tokenString, err := service.Issue(testIdentity())
	require.NoError(t, err)

	session, err := service.SessionFromToken(tokenString)
	require.NoError(t, err)

	assert.Equal(t, "user-123", session.GetUserID())
	assert.Equal(t, "test@example.com", session.GetEmail())
	assert.Equal(t, []string{"admin", "member"}, session.GetRoles())
	assert.Equal(t, "test-issuer", session.GetIssuer())
	assert.Contains(t, session.GetAudience(), "test-audience")
	require.NotNil(t, session.GetExpiration())
	assert.True(t, session.GetExpiration().After(time.Now()))
}

func TestTokenService_ClaimsDecorator(t *testing.T) {
	decorator := identity.ClaimsDecoratorFunc(func(ctx context.Context, id identity.Identity, claims *identity.SessionClaims) error {
		if claims.Metadata == nil {
			claims.Metadata = map[string]any{}
		}
		claims.Metadata["tenant"] = "acme"
		return nil
	})

	service, err := identity.NewTokenService(testConfig(), identity.WithClaimsDecorator(decorator))
	require.NoError(t, err)

	tokenString, err := service.Issue(testIdentity())
	require.NoError(t, err)

	claims, err := service.Validate(tokenString)
	require.NoError(t, err)

	sessionClaims, ok := claims.(*identity.SessionClaims)
	require.True(t, ok)
	assert.Equal(t, "acme", sessionClaims.Metadata["tenant"])
}

func signedTokenAt(t *testing.T, service identity.TokenService, expiresAt time.Time) string {
	t.Helper()

	claims := &identity.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Subject:   "user-123",
			Audience:  jwt.ClaimStrings{"test-audience"},
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserEmail: "test@example.com",
	}

	tokenString, err := service.SignClaims(claims)
	require.NoError(t, err)
	return tokenString
}

func parseRawClaims(t *testing.T, tokenString string) *identity.SessionClaims {
	t.Helper()

	claims := &identity.SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte("test-signing-key"), nil
	})
	require.NoError(t, err)
	return claims
}

func flipChar(s string) string {
	b := []byte(s)
	if b[0] == 'A' {
		b[0] = 'B'
	} else {
		b[0] = 'A'
	}
	return string(b)
}
