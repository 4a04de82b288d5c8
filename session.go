package identity

import (
	"time"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

var _ Session = &SessionObject{}

// SessionObject is the projection of validated session claims handed to
// request handlers. It is rebuilt per request and never cached.
type SessionObject struct {
	UserID         string         `json:"user_id,omitempty"`
	Email          string         `json:"email,omitempty"`
	Roles          []string       `json:"roles,omitempty"`
	Audience       []string       `json:"audience,omitempty"`
	Issuer         string         `json:"issuer,omitempty"`
	IssuedAt       *time.Time     `json:"issued_at,omitempty"`
	ExpirationDate *time.Time     `json:"expiration_date,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	if parsed, err := uuid.Parse(s.UserID); err == nil {
		return parsed, nil
	}
	return hashid.NewUUID(s.UserID)
}

func (s *SessionObject) GetEmail() string {
	return s.Email
}

func (s *SessionObject) GetRoles() []string {
	return s.Roles
}

func (s *SessionObject) GetAudience() []string {
	return s.Audience
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetExpiration() *time.Time {
	return s.ExpirationDate
}

func (s *SessionObject) GetData() map[string]any {
	return s.Data
}

// sessionFromClaims projects validated claims into a SessionObject. It only
// reads fields the validator already checked; the claim shape has a single
// source of truth in SessionClaims.
func sessionFromClaims(claims *SessionClaims) *SessionObject {
	session := &SessionObject{
		UserID:   claims.Subject(),
		Email:    claims.Email(),
		Roles:    claims.Roles(),
		Audience: claims.RegisteredClaims.Audience,
		Issuer:   claims.RegisteredClaims.Issuer,
	}

	if issuedAt := claims.IssuedAt(); !issuedAt.IsZero() {
		session.IssuedAt = &issuedAt
	}

	if expires := claims.Expires(); !expires.IsZero() {
		session.ExpirationDate = &expires
	}

	if len(claims.Metadata) > 0 {
		session.Data = claims.Metadata
	}

	return session
}
