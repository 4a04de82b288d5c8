package identity

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeTokenExpired       = "token_expired"
	TextCodeTokenMalformed     = "token_malformed"
	TextCodeVerificationFailed = "identity_verification_failed"
	TextCodeIdentityConflict   = "identity_conflict"
	TextCodeIdentityNotFound   = "identity_not_found"
	TextCodeAlreadyInitialized = "provider_already_initialized"
	TextCodeInvalidConfig      = "invalid_config"
	TextCodeEmailRequired      = "identity_email_required"
)

// ErrTokenExpired is returned when a session token is past its expiry.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed covers bad signatures, garbled structure, and
// issuer/audience mismatches. Anything that is not a clean expiry.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrVerificationFailed is the single outcome for every provider-token
// failure: expired, revoked, malformed, or a network timeout. Callers never
// learn which; the cause travels in metadata for server-side logs.
var ErrVerificationFailed = errors.New("identity verification failed", errors.CategoryAuth).
	WithTextCode(TextCodeVerificationFailed).
	WithCode(errors.CodeUnauthorized)

// ErrIdentityConflict is returned when a sync write violates the email or
// phone uniqueness constraint.
var ErrIdentityConflict = errors.New("identity conflicts with an existing record", errors.CategoryConflict).
	WithTextCode(TextCodeIdentityConflict).
	WithCode(errors.CodeConflict)

// ErrIdentityNotFound is the error for lookups that require a record.
// Plain lookups return nil instead; see Identities.
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeNotFound)

// ErrAlreadyInitialized is returned on a second provider initialization.
var ErrAlreadyInitialized = errors.New("identity provider already initialized", errors.CategoryConflict).
	WithTextCode(TextCodeAlreadyInitialized).
	WithCode(errors.CodeConflict)

// ErrInvalidConfig is fatal at construction time, never at call time.
var ErrInvalidConfig = errors.New("invalid configuration", errors.CategoryInternal).
	WithTextCode(TextCodeInvalidConfig).
	WithCode(errors.CodeInternal)

// ErrEmailRequired is returned when a verified principal carries no email.
// The provider permits email-less accounts; a usable identity record does not.
var ErrEmailRequired = errors.New("principal email is required", errors.CategoryBadInput).
	WithTextCode(TextCodeEmailRequired).
	WithCode(errors.CodeBadRequest)

// ErrNoEmptyString rejects blank passwords before hashing.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the uniform password comparison failure.
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsConflictError reports whether err is a uniqueness conflict.
func IsConflictError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.Category == errors.CategoryConflict
	}
	return false
}

// IsVerificationError reports whether err is a provider verification failure.
func IsVerificationError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == TextCodeVerificationFailed
	}
	return false
}
