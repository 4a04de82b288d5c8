package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Session holds attributes that are part of an auth session
type Session interface {
	GetUserID() string
	GetUserUUID() (uuid.UUID, error)
	GetEmail() string
	GetRoles() []string
	GetAudience() []string
	GetIssuer() string
	GetIssuedAt() *time.Time
	GetExpiration() *time.Time
	GetData() map[string]any
}

// Identity is the subject a session token is issued for.
type Identity interface {
	ID() string
	Email() string
	Roles() []string
}

// TokenService issues and validates self-signed session tokens.
type TokenService interface {
	Issue(identity Identity) (string, error)
	SignClaims(claims *SessionClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
	SessionFromToken(tokenString string) (Session, error)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
}

// PrincipalVerifier verifies provider-issued identity tokens and derives a
// request principal from them. Implemented by provider/firebase.
type PrincipalVerifier interface {
	Verify(ctx context.Context, tokenString string) (*Principal, error)
	VerifyOrNil(ctx context.Context, tokenString string) *Principal
}

// Identities is the store behind identity synchronization. Lookups return
// (nil, nil) for missing records, and touch/delete report affected rows
// instead of failing, so absence is never an error at this layer.
type Identities interface {
	CreateOrUpdate(ctx context.Context, subjectID, email string, phone *string) (*IdentityRecord, bool, error)
	FindByID(ctx context.Context, subjectID string) (*IdentityRecord, error)
	FindByEmail(ctx context.Context, email string) (*IdentityRecord, error)
	TouchLastActive(ctx context.Context, subjectID string) (int64, error)
	Delete(ctx context.Context, subjectID string) (int64, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] IDENTITY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] IDENTITY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] IDENTITY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
