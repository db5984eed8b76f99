package service

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/gsmp/mentorship-backend/internal/model"
)

const otpDigits = 6

// OTPIssuer generates and checks one-time codes on an account. It only
// mutates the account; callers persist it.
type OTPIssuer struct {
	now func() time.Time
}

// NewOTPIssuer creates a new OTPIssuer.
func NewOTPIssuer() *OTPIssuer {
	return &OTPIssuer{now: time.Now}
}

// Issue replaces any outstanding code with a fresh 6-digit one.
func (o *OTPIssuer) Issue(a *model.Account) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	code := fmt.Sprintf("%0*d", otpDigits, n.Int64())
	issued := o.now()
	a.EmailOTP = &code
	a.OTPCreatedAt = &issued
	return code, nil
}

// Verify consumes a code. Only the registration purpose activates the account.
func (o *OTPIssuer) Verify(a *model.Account, code string, purpose model.OTPPurpose) error {
	if a.EmailOTP == nil || a.OTPCreatedAt == nil {
		return ErrOTPMismatch
	}
	if !o.now().Before(a.OTPCreatedAt.Add(model.OTPTTL)) {
		return ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(*a.EmailOTP), []byte(code)) != 1 {
		return ErrOTPMismatch
	}

	a.EmailOTP = nil
	a.OTPCreatedAt = nil
	if purpose.OrDefault() == model.OTPPurposeRegistration {
		a.IsActive = true
	}
	return nil
}
