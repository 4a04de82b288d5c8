package identity

import "strings"

const (
	// DefaultIssuer is used when the host app does not configure one.
	DefaultIssuer = "pairloom.identity"
	// DefaultAudience is used when the host app does not configure one.
	DefaultAudience = "pairloom.app"
	// DefaultTokenExpiration is the session token lifetime in hours (7 days).
	DefaultTokenExpiration = 7 * 24
)

// SimpleConfig is a plain Config implementation for hosts that do not bring
// their own configuration layer.
type SimpleConfig struct {
	SigningKey      string
	SigningMethod   string
	ContextKey      string
	TokenExpiration int
	TokenLookup     string
	AuthScheme      string
	Issuer          string
	Audience        []string
}

var _ Config = (*SimpleConfig)(nil)

// Validate fails fast on configuration that would make every token
// operation fail later. Called by NewTokenService at construction.
func (c *SimpleConfig) Validate() error {
	if strings.TrimSpace(c.SigningKey) == "" {
		return ErrInvalidConfig.Clone().
			WithMetadata(map[string]any{
				"field":  "signing_key",
				"reason": "must not be blank",
			})
	}
	return nil
}

func (c *SimpleConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *SimpleConfig) GetSigningMethod() string {
	if c.SigningMethod == "" {
		return "HS256"
	}
	return c.SigningMethod
}

func (c *SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "user"
	}
	return c.ContextKey
}

func (c *SimpleConfig) GetTokenExpiration() int {
	if c.TokenExpiration <= 0 {
		return DefaultTokenExpiration
	}
	return c.TokenExpiration
}

func (c *SimpleConfig) GetTokenLookup() string {
	if c.TokenLookup == "" {
		return "header:Authorization"
	}
	return c.TokenLookup
}

func (c *SimpleConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

func (c *SimpleConfig) GetIssuer() string {
	if c.Issuer == "" {
		return DefaultIssuer
	}
	return c.Issuer
}

func (c *SimpleConfig) GetAudience() []string {
	if len(c.Audience) == 0 {
		return []string{DefaultAudience}
	}
	return c.Audience
}
