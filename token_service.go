package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	decorator  ClaimsDecorator
	logger     Logger
}

// TokenServiceOption configures optional TokenService collaborators.
type TokenServiceOption func(*TokenServiceImpl)

// WithTokenLogger overrides the default logger.
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

// WithClaimsDecorator registers a decorator applied before signing.
func WithClaimsDecorator(decorator ClaimsDecorator) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		ts.decorator = normalizeClaimsDecorator(decorator)
	}
}

// NewTokenService creates a new TokenService instance. A blank signing key
// is a configuration error and fails here, not at call time.
func NewTokenService(cfg Config, opts ...TokenServiceOption) (TokenService, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig.Clone().
			WithMetadata(map[string]any{"reason": "config is required"})
	}

	if strings.TrimSpace(cfg.GetSigningKey()) == "" {
		return nil, ErrInvalidConfig.Clone().
			WithMetadata(map[string]any{
				"field":  "signing_key",
				"reason": "must not be blank",
			})
	}

	ttl := time.Duration(DefaultTokenExpiration) * time.Hour
	if cfg.GetTokenExpiration() > 0 {
		ttl = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	ts := &TokenServiceImpl{
		signingKey: []byte(cfg.GetSigningKey()),
		ttl:        ttl,
		issuer:     cfg.GetIssuer(),
		audience:   jwt.ClaimStrings(cfg.GetAudience()),
		decorator:  noopClaimsDecorator{},
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts, nil
}

// Issue creates a session token for the identity with iat=now and
// exp=now+TTL (7 days by default).
func (ts *TokenServiceImpl) Issue(identity Identity) (string, error) {
	return ts.IssueContext(context.Background(), identity)
}

// IssueContext is Issue with a caller-provided context for claim decorators.
func (ts *TokenServiceImpl) IssueContext(ctx context.Context, identity Identity) (string, error) {
	if identity == nil {
		return "", errors.New("identity is required", errors.CategoryBadInput)
	}

	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
		UserEmail: identity.Email(),
		UserRoles: append([]string(nil), identity.Roles()...),
	}

	ensureTokenID(&claims.RegisteredClaims)

	if err := ts.decorator.Decorate(ctx, identity, claims); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "claims decoration failed")
	}

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary session claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *SessionClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims.
// Expiry is reported as ErrTokenExpired; every other failure, including
// signature and issuer/audience mismatch, as ErrTokenMalformed.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, ErrTokenMalformed
}

// SessionFromToken validates the token and projects its claims into a
// Session. The projection only reads what Validate produced; claim shape has
// a single source of truth.
func (ts *TokenServiceImpl) SessionFromToken(tokenString string) (Session, error) {
	claims, err := ts.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	sessionClaims, ok := claims.(*SessionClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}

	return sessionFromClaims(sessionClaims), nil
}
