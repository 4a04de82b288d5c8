package identity

import (
	"strings"
	"time"
	"unicode"

	"github.com/go-ozzo/ozzo-validation/is"
)

// EmailRule checks presence and syntactic validity. A blank value reports
// only the required code, never the format one.
type EmailRule struct {
	Value string
}

func (r EmailRule) Validate() []Code {
	if strings.TrimSpace(r.Value) == "" {
		return []Code{CodeEmailRequired}
	}
	if err := is.Email.Validate(r.Value); err != nil {
		return []Code{CodeEmailInvalid}
	}
	return nil
}

// PasswordRule reports every applicable weakness in one pass. An empty
// password yields the required code alone; any non-empty password is
// checked against all remaining clauses.
type PasswordRule struct {
	Value     string
	MinLength int
}

func (r PasswordRule) Validate() []Code {
	if r.Value == "" {
		return []Code{CodePasswordRequired}
	}

	minLen := r.MinLength
	if minLen <= 0 {
		minLen = MinPasswordLength
	}

	var codes []Code
	if strings.ContainsFunc(r.Value, unicode.IsSpace) {
		codes = append(codes, CodePasswordWhitespace)
	}
	if len([]rune(r.Value)) < minLen {
		codes = append(codes, CodePasswordTooShort)
	}
	if !strings.ContainsFunc(r.Value, unicode.IsUpper) {
		codes = append(codes, CodePasswordNoUppercase)
	}
	if !strings.ContainsFunc(r.Value, unicode.IsLower) {
		codes = append(codes, CodePasswordNoLowercase)
	}
	if !strings.ContainsFunc(r.Value, unicode.IsDigit) {
		codes = append(codes, CodePasswordNoDigit)
	}
	if !strings.ContainsAny(r.Value, PasswordSymbols) {
		codes = append(codes, CodePasswordNoSymbol)
	}
	return codes
}

// PhoneRule accepts E.164 style numbers: a leading plus, a non-zero first
// digit, and a bounded digit count. Optional rules skip blank values.
type PhoneRule struct {
	Value    string
	Optional bool
}

func (r PhoneRule) Validate() []Code {
	value := strings.TrimSpace(r.Value)
	if value == "" {
		if r.Optional {
			return nil
		}
		return []Code{CodePhoneRequired}
	}

	var codes []Code
	digits := value
	if strings.HasPrefix(value, "+") {
		digits = value[1:]
	} else {
		codes = append(codes, CodePhoneMissingPlus)
	}

	if digits == "" || is.Digit.Validate(digits) != nil {
		codes = append(codes, CodePhoneNonDigit)
		return codes
	}
	if digits[0] == '0' {
		codes = append(codes, CodePhoneLeadingZero)
	}
	if len(digits) < MinPhoneDigits || len(digits) > MaxPhoneDigits {
		codes = append(codes, CodePhoneLength)
	}
	return codes
}

// OTPRule checks one-time codes: all digits, length inside the policy
// range. Zero bounds fall back to the default exact length.
type OTPRule struct {
	Value     string
	MinLength int
	MaxLength int
}

func (r OTPRule) Validate() []Code {
	if r.Value == "" {
		return []Code{CodeOTPRequired}
	}

	minLen, maxLen := r.MinLength, r.MaxLength
	if minLen <= 0 {
		minLen = DefaultOTPLength
	}
	if maxLen <= 0 {
		maxLen = DefaultOTPLength
	}

	var codes []Code
	if is.Digit.Validate(r.Value) != nil {
		codes = append(codes, CodeOTPNonDigit)
	}
	if len(r.Value) < minLen || len(r.Value) > maxLen {
		codes = append(codes, CodeOTPLength)
	}
	return codes
}

// AgeRule parses a birth date and enforces a minimum age. The age check is
// calendar exact: someone turns 18 on their birthday, not a day sooner.
type AgeRule struct {
	Value string
	Min   int
	// Now overrides the reference instant in tests. Zero means time.Now.
	Now time.Time
}

func (r AgeRule) Validate() []Code {
	value := strings.TrimSpace(r.Value)
	if value == "" {
		return []Code{CodeBirthDateInvalid}
	}
	birth, err := time.Parse(BirthDateLayout, value)
	if err != nil {
		return []Code{CodeBirthDateInvalid}
	}

	minAge := r.Min
	if minAge <= 0 {
		minAge = MinimumAge
	}
	now := r.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	cutoff := birth.AddDate(minAge, 0, 0)
	ny, nm, nd := now.Date()
	cy, cm, cd := cutoff.Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	turns := time.Date(cy, cm, cd, 0, 0, 0, 0, time.UTC)
	if today.Before(turns) {
		return []Code{CodeUnderage}
	}
	return nil
}
