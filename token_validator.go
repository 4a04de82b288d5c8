package identity

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(tokenString)
}

// MultiTokenValidator tries validators in order until one succeeds.
// It treats malformed tokens as "try next" and returns the last malformed
// error if all validators fail. Expired tokens stop the chain: a token that
// parsed under one validator is not retried against another.
type MultiTokenValidator struct {
	chain []TokenValidator
}

// NewMultiTokenValidator filters nil validators and returns a composite validator.
func NewMultiTokenValidator(validators ...TokenValidator) *MultiTokenValidator {
	mv := &MultiTokenValidator{chain: make([]TokenValidator, 0, len(validators))}
	for _, v := range validators {
		if v != nil {
			mv.chain = append(mv.chain, v)
		}
	}
	return mv
}

// Validate satisfies the TokenValidator interface.
func (m *MultiTokenValidator) Validate(tokenString string) (AuthClaims, error) {
	lastErr := error(nil)

	for _, v := range m.chain {
		claims, err := v.Validate(tokenString)
		switch {
		case err == nil:
			return claims, nil
		case IsMalformedError(err):
			lastErr = err
		default:
			return nil, err
		}
	}

	if lastErr == nil {
		lastErr = ErrTokenMalformed
	}
	return nil, lastErr
}
