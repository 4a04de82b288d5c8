package identity

// Principal is the verified identity asserted by a provider token for the
// current request. It contains facts only, no decisions: producing one is
// the job of a PrincipalVerifier, and it lives for a single request.
type Principal struct {
	Subject       string
	Email         string
	PhoneNumber   string
	EmailVerified bool
	claims        map[string]any
}

// NewPrincipal builds a Principal with a defensive copy of the raw claim
// set, so later mutation of the source map cannot leak into the request.
func NewPrincipal(subject, email, phoneNumber string, emailVerified bool, claims map[string]any) *Principal {
	var copied map[string]any
	if claims != nil {
		copied = make(map[string]any, len(claims))
		for k, v := range claims {
			copied[k] = v
		}
	}

	return &Principal{
		Subject:       subject,
		Email:         email,
		PhoneNumber:   phoneNumber,
		EmailVerified: emailVerified,
		claims:        copied,
	}
}

// Claim returns a raw provider claim by name.
func (p *Principal) Claim(name string) (any, bool) {
	if p == nil || p.claims == nil {
		return nil, false
	}
	value, ok := p.claims[name]
	return value, ok
}

// Claims returns a copy of the raw provider claim set.
func (p *Principal) Claims() map[string]any {
	if p == nil || p.claims == nil {
		return nil
	}
	out := make(map[string]any, len(p.claims))
	for k, v := range p.claims {
		out[k] = v
	}
	return out
}
