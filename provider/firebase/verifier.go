package firebase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pairloom/identity"
)

// Verify interface compliance
var _ identity.PrincipalVerifier = &IdentityVerifier{}

// IdentityVerifier implements identity.PrincipalVerifier backed by a
// provider token client.
type IdentityVerifier struct {
	client  TokenClient
	timeout time.Duration
	logger  identity.Logger
}

// Verify checks the token with the provider and maps its claims to a
// Principal. Every provider failure collapses to a verification error;
// the underlying cause is logged and kept in metadata, never surfaced to
// callers as a distinct outcome.
func (v *IdentityVerifier) Verify(ctx context.Context, tokenString string) (*identity.Principal, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, identity.ErrVerificationFailed.Clone().
			WithMetadata(map[string]any{
				"reason": "empty token",
			})
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	claims, err := v.client.VerifyIDToken(ctx, tokenString)
	if err != nil {
		return nil, v.verificationError(err)
	}

	subject := stringClaim(claims, "sub")
	if subject == "" {
		subject = stringClaim(claims, "user_id")
	}
	if subject == "" {
		return nil, identity.ErrVerificationFailed.Clone().
			WithMetadata(map[string]any{
				"reason": "token has no subject",
			})
	}

	principal := identity.NewPrincipal(
		subject,
		stringClaim(claims, "email"),
		stringClaim(claims, "phone_number"),
		boolClaim(claims, "email_verified"),
		claims,
	)

	return principal, nil
}

// VerifyOrNil runs the same check but reports every failure as absence.
// Use it on routes where an anonymous caller is acceptable.
func (v *IdentityVerifier) VerifyOrNil(ctx context.Context, tokenString string) *identity.Principal {
	principal, err := v.Verify(ctx, tokenString)
	if err != nil {
		return nil
	}
	return principal
}

func (v *IdentityVerifier) verificationError(cause error) error {
	v.logger.Info("token verification failed: %s", cause)

	richErr := identity.ErrVerificationFailed.Clone().
		WithMetadata(map[string]any{
			"cause": cause.Error(),
		})
	richErr.Source = cause

	if errors.Is(cause, context.DeadlineExceeded) {
		richErr = richErr.WithMetadata(map[string]any{
			"cause":    cause.Error(),
			"deadline": v.timeout.String(),
		})
	}

	return richErr
}

func stringClaim(claims map[string]any, name string) string {
	if raw, ok := claims[name]; ok {
		if s, ok := raw.(string); ok {
			return s
		}
	}
	return ""
}

func boolClaim(claims map[string]any, name string) bool {
	if raw, ok := claims[name]; ok {
		if b, ok := raw.(bool); ok {
			return b
		}
	}
	return false
}
