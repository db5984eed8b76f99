package service

import (
	"errors"

	"github.com/gsmp/mentorship-backend/internal/repository"
)

// Common service errors. Handlers map them to API codes with errors.Is.
var (
	ErrNotFound = repository.ErrNotFound

	// Login and password lifecycle.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrFirstLoginRequired = errors.New("first login required")
	ErrPasswordExpired    = errors.New("password expired")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrResetNotAuthorized = errors.New("password reset not authorized")

	// OTP.
	ErrOTPExpired      = errors.New("otp expired")
	ErrOTPMismatch     = errors.New("otp mismatch")
	ErrAlreadyVerified = errors.New("account already verified")

	// Tokens.
	ErrTokenInvalid       = errors.New("invalid token")
	ErrSessionInvalidated = errors.New("session invalidated")

	// Roles and ownership.
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRole    = errors.New("invalid role for this operation")
	ErrInvalidPairing = errors.New("pairing must link a mentor and a student")
	ErrConflict       = errors.New("resource already exists")

	// ErrEmptyMessage rejects chat text that is blank after trimming.
	ErrEmptyMessage = errors.New("message text is empty")

	// ErrUpstream wraps failures of email delivery or the messaging bridge.
	ErrUpstream = errors.New("upstream service failed")
)
