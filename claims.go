package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// AuthClaims represents structured session token claims
type AuthClaims interface {
	Subject() string
	Email() string
	Roles() []string
	HasRole(role string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// SessionClaims is the concrete implementation of AuthClaims
type SessionClaims struct {
	jwt.RegisteredClaims
	UserEmail string         `json:"email,omitempty"`
	UserRoles []string       `json:"roles,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"` // extension payload
}

// Verify interface compliance
var _ AuthClaims = (*SessionClaims)(nil)

// Subject returns the subject claim
func (c *SessionClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Email returns the email claim
func (c *SessionClaims) Email() string {
	return c.UserEmail
}

// Roles returns the roles claim in issuance order
func (c *SessionClaims) Roles() []string {
	return c.UserRoles
}

// HasRole checks if the claims carry a specific role
func (c *SessionClaims) HasRole(role string) bool {
	for _, r := range c.UserRoles {
		if r == role {
			return true
		}
	}
	return false
}

// ClaimsMetadata exposes metadata extensions for optional context enrichment.
func (c *SessionClaims) ClaimsMetadata() map[string]any {
	return c.Metadata
}

// Expires returns the expiration time
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *SessionClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// SubjectUUID returns a UUID for the subject. Provider subject ids are not
// UUIDs, so when parsing fails we derive a deterministic UUID from the id,
// giving uuid-keyed collaborators a stable handle for the same subject.
func (c *SessionClaims) SubjectUUID() (uuid.UUID, error) {
	subject := c.Subject()
	if parsed, err := uuid.Parse(subject); err == nil {
		return parsed, nil
	}
	return hashid.NewUUID(subject)
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
