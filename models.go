package identity

import (
	"time"

	"github.com/uptrace/bun"
)

// IdentityRecord is the local row synchronized from a verified provider
// identity. The primary key is the provider subject id; email and phone are
// unique across all records, with email stored lower-cased so the unique
// index doubles as the case-insensitive lookup index.
type IdentityRecord struct {
	bun.BaseModel `bun:"table:identities,alias:idn"`

	ID           string     `bun:"id,pk" json:"id"`
	Email        string     `bun:"email,notnull,unique" json:"email"`
	Phone        *string    `bun:"phone,unique,nullzero" json:"phone,omitempty"`
	CreatedAt    time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull" json:"updated_at"`
	LastActiveAt *time.Time `bun:"last_active_at,nullzero" json:"last_active_at,omitempty"`
}

// PhoneNumber returns the phone or "" when unset.
func (r *IdentityRecord) PhoneNumber() string {
	if r == nil || r.Phone == nil {
		return ""
	}
	return *r.Phone
}
