package identity

// LoginRequest carries email/password credentials for a password login.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (r LoginRequest) Validate() Result {
	return Chain{
		EmailRule{Value: r.Email},
		PasswordRule{Value: r.Password},
	}.Run()
}

// RegistrationRequest is the full signup payload. Phone is optional at
// registration; the birth date is mandatory and age gated.
type RegistrationRequest struct {
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password"`
	Phone     string `json:"phone,omitempty" form:"phone"`
	BirthDate string `json:"birth_date" form:"birth_date"`
}

func (r RegistrationRequest) Validate() Result {
	return Chain{
		EmailRule{Value: r.Email},
		PasswordRule{Value: r.Password},
		PhoneRule{Value: r.Phone, Optional: true},
		AgeRule{Value: r.BirthDate},
	}.Run()
}

// PhoneVerificationRequest carries a phone number and the one-time code
// sent to it.
type PhoneVerificationRequest struct {
	Phone string `json:"phone" form:"phone"`
	OTP   string `json:"otp" form:"otp"`
}

func (r PhoneVerificationRequest) Validate() Result {
	return Chain{
		PhoneRule{Value: r.Phone},
		OTPRule{Value: r.OTP},
	}.Run()
}
