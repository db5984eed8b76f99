package model

import "time"

// OTPTTL is how long an issued code stays valid.
const OTPTTL = 10 * time.Minute

// OTPPurpose says what a code proves. Only registration activates an account.
type OTPPurpose string

const (
	OTPPurposeRegistration  OTPPurpose = "registration"
	OTPPurposePasswordReset OTPPurpose = "password_reset"
)

// OrDefault returns registration for an empty purpose.
func (p OTPPurpose) OrDefault() OTPPurpose {
	if p == "" {
		return OTPPurposeRegistration
	}
	return p
}

// SendOTPRequest is the payload for issuing a code.
type SendOTPRequest struct {
	Email   string     `json:"email" binding:"required,email,max=255"`
	Purpose OTPPurpose `json:"purpose" binding:"omitempty,oneof=registration password_reset"`
}

// VerifyOTPRequest is the payload for consuming a code.
type VerifyOTPRequest struct {
	Email   string     `json:"email" binding:"required,email,max=255"`
	OTP     string     `json:"otp" binding:"required,len=6,numeric"`
	Purpose OTPPurpose `json:"purpose" binding:"omitempty,oneof=registration password_reset"`
}
