package jwtware_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"

	"github.com/pairloom/identity/middleware/jwtware"
)

type stubClaims struct {
	subject string
	email   string
	roles   []string
}

func (s stubClaims) Subject() string { return s.subject }
func (s stubClaims) Email() string   { return s.email }
func (s stubClaims) Roles() []string { return s.roles }
func (s stubClaims) HasRole(role string) bool {
	for _, r := range s.roles {
		if r == role {
			return true
		}
	}
	return false
}

type stubValidator struct {
	lastToken string
	claims    jwtware.AuthClaims
	err       error
}

func (s *stubValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	s.lastToken = tokenString
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func baseConfig(validator jwtware.TokenValidator) jwtware.Config {
	return jwtware.Config{
		SigningKey: jwtware.SigningKey{
			Key:    []byte("test-secret"),
			JWTAlg: "HS256",
		},
		TokenValidator: validator,
		ErrorHandler: func(ctx router.Context, err error) error {
			return err
		},
	}
}

func TestJWTWare_BasicHeaderExtraction(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "12345"}}
	middleware := jwtware.New(baseConfig(validator))
	handler := middleware(func(ctx router.Context) error { return ctx.Next() })

	// valid bearer header
	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer raw.jwt.token"
	ctx.On("GetString", "Authorization", "").Return("Bearer raw.jwt.token")
	ctx.On("Locals", "user", mock.Anything).Return(nil)

	err := handler(ctx)
	if err != nil {
		t.Fatalf("unexpected error for valid token: %v", err)
	}
	if !ctx.NextCalled {
		t.Errorf("expected NextCalled to be true, but got false")
	}
	if validator.lastToken != "raw.jwt.token" {
		t.Errorf("expected scheme to be stripped, validator got %q", validator.lastToken)
	}

	// missing header
	ctx = router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("")
	err = handler(ctx)
	if err == nil {
		t.Fatal("expected error for missing token, got nil")
	}
	if !strings.Contains(err.Error(), jwtware.ErrJWTMissingOrMalformed.Error()) {
		t.Errorf("expected missing token error, got: %v", err)
	}
}

func TestJWTWare_ValidatorFailurePropagates(t *testing.T) {
	validator := &stubValidator{err: errors.New("token is malformed")}
	middleware := jwtware.New(baseConfig(validator))
	handler := middleware(func(ctx router.Context) error { return ctx.Next() })

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer bad.token.here"
	ctx.On("GetString", "Authorization", "").Return("Bearer bad.token.here")

	err := handler(ctx)
	if err == nil {
		t.Fatal("expected error for rejected token, got nil")
	}
	if ctx.NextCalled {
		t.Errorf("expected handler chain to stop on validation failure")
	}
}

func TestJWTWare_RequiredRole(t *testing.T) {
	t.Run("role present", func(t *testing.T) {
		cfg := baseConfig(&stubValidator{claims: stubClaims{subject: "1", roles: []string{"admin"}}})
		cfg.RequiredRole = "admin"
		handler := jwtware.New(cfg)(func(ctx router.Context) error { return ctx.Next() })

		ctx := router.NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer raw.jwt.token"
		ctx.On("GetString", "Authorization", "").Return("Bearer raw.jwt.token")
		ctx.On("Locals", "user", mock.Anything).Return(nil)

		if err := handler(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("role missing", func(t *testing.T) {
		cfg := baseConfig(&stubValidator{claims: stubClaims{subject: "1", roles: []string{"member"}}})
		cfg.RequiredRole = "admin"
		handler := jwtware.New(cfg)(func(ctx router.Context) error { return ctx.Next() })

		ctx := router.NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer raw.jwt.token"
		ctx.On("GetString", "Authorization", "").Return("Bearer raw.jwt.token")

		err := handler(ctx)
		if err == nil {
			t.Fatal("expected access denied error")
		}
		if !strings.Contains(err.Error(), "access denied") {
			t.Errorf("expected access denied error, got: %v", err)
		}
	})
}

func TestJWTWare_CustomTokenLookup(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "12345"}}
	cfg := baseConfig(validator)
	cfg.TokenLookup = "query:token,param:jwt,cookie:jwt_cookie"
	handler := jwtware.New(cfg)(func(ctx router.Context) error { return ctx.Next() })

	// query parameter
	ctx := router.NewMockContext()
	ctx.QueriesM["token"] = "from.query.token"
	ctx.On("Locals", "user", mock.Anything).Return(nil)
	if err := handler(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// url parameter
	ctx = router.NewMockContext()
	ctx.ParamsM["jwt"] = "from.param.token"
	ctx.On("Locals", "user", mock.Anything).Return(nil)
	if err := handler(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// cookie
	ctx = router.NewMockContext()
	ctx.CookiesM["jwt_cookie"] = "from.cookie.token"
	ctx.On("Locals", "user", mock.Anything).Return(nil)
	if err := handler(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestJWTWare_FilterSkipsAuth(t *testing.T) {
	validator := &stubValidator{err: errors.New("should not be called")}
	cfg := baseConfig(validator)
	cfg.Filter = func(ctx router.Context) bool { return true }
	handler := jwtware.New(cfg)(func(ctx router.Context) error { return ctx.Next() })

	ctx := router.NewMockContext()

	if err := handler(ctx); err != nil {
		t.Fatalf("expected filtered request to pass through, got %v", err)
	}
	if !ctx.NextCalled {
		t.Errorf("expected Next to be invoked for filtered request")
	}
	if validator.lastToken != "" {
		t.Errorf("validator should not run for filtered requests")
	}
}
