package identity

import "strings"

// Code identifies one distinct validation failure. The set is closed: the
// boundary maps codes to client messages and must never meet an unknown one.
type Code string

const (
	CodeEmailRequired Code = "email_required"
	CodeEmailInvalid  Code = "email_invalid"

	CodePasswordRequired    Code = "password_required"
	CodePasswordWhitespace  Code = "password_whitespace"
	CodePasswordTooShort    Code = "password_too_short"
	CodePasswordNoUppercase Code = "password_no_uppercase"
	CodePasswordNoLowercase Code = "password_no_lowercase"
	CodePasswordNoDigit     Code = "password_no_digit"
	CodePasswordNoSymbol    Code = "password_no_symbol"

	CodePhoneRequired    Code = "phone_required"
	CodePhoneMissingPlus Code = "phone_missing_plus"
	CodePhoneNonDigit    Code = "phone_non_digit"
	CodePhoneLeadingZero Code = "phone_leading_zero"
	CodePhoneLength      Code = "phone_length"

	CodeOTPRequired Code = "otp_required"
	CodeOTPNonDigit Code = "otp_non_digit"
	CodeOTPLength   Code = "otp_length"

	CodeBirthDateInvalid Code = "birth_date_invalid"
	CodeUnderage         Code = "underage"
)

var knownCodes = map[Code]struct{}{
	CodeEmailRequired:       {},
	CodeEmailInvalid:        {},
	CodePasswordRequired:    {},
	CodePasswordWhitespace:  {},
	CodePasswordTooShort:    {},
	CodePasswordNoUppercase: {},
	CodePasswordNoLowercase: {},
	CodePasswordNoDigit:     {},
	CodePasswordNoSymbol:    {},
	CodePhoneRequired:       {},
	CodePhoneMissingPlus:    {},
	CodePhoneNonDigit:       {},
	CodePhoneLeadingZero:    {},
	CodePhoneLength:         {},
	CodeOTPRequired:         {},
	CodeOTPNonDigit:         {},
	CodeOTPLength:           {},
	CodeBirthDateInvalid:    {},
	CodeUnderage:            {},
}

// ParseCode is the single canonicalizing lookup from wire text to a Code.
// Matching is case-insensitive; unknown text reports ok=false rather than
// minting a new code.
func ParseCode(s string) (Code, bool) {
	candidate := Code(strings.ToLower(strings.TrimSpace(s)))
	_, ok := knownCodes[candidate]
	if !ok {
		return "", false
	}
	return candidate, true
}

// Validation policy knobs. Ranges are inclusive.
const (
	MinPasswordLength = 8
	PasswordSymbols   = "!@#$%^&*()-_=+[]{};:,.<>?/|~"

	MinPhoneDigits = 8
	MaxPhoneDigits = 15

	DefaultOTPLength = 6
	MinOTPLength     = 4
	MaxOTPLength     = 8

	MinimumAge = 18

	// BirthDateLayout is the accepted wire format for birth dates.
	BirthDateLayout = "2006-01-02"
)

// Result is the aggregated outcome of running every rule in a chain.
// Errors preserve rule declaration order so clients always see a
// deterministic list.
type Result struct {
	Valid  bool   `json:"valid"`
	Errors []Code `json:"errors,omitempty"`
}

// FieldRule validates one field and reports zero or more codes. Rules run
// independently: a failing rule never suppresses its siblings.
type FieldRule interface {
	Validate() []Code
}

// Chain runs its rules in declaration order and collects every code.
type Chain []FieldRule

// Run never short-circuits: all configured rules run and all applicable
// codes are collected.
func (c Chain) Run() Result {
	var codes []Code
	for _, rule := range c {
		if rule == nil {
			continue
		}
		codes = append(codes, rule.Validate()...)
	}
	return Result{
		Valid:  len(codes) == 0,
		Errors: codes,
	}
}
