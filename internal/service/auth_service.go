package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/rs/zerolog"
)

// ResetGrantTTL is how long a verified password_reset OTP authorizes a reset.
const ResetGrantTTL = 15 * time.Minute

// LoginResult is returned by a successful login.
type LoginResult struct {
	Tokens          *TokenPair            `json:"tokens"`
	Account         model.AccountSnapshot `json:"account"`
	PasswordExpired bool                  `json:"password_expired"`
	IsFirstLogin    bool                  `json:"is_first_login"`
}

// AuthService drives login, OTP and password lifecycle transitions.
type AuthService struct {
	accounts         AccountStore
	creator          *AccountService
	hasher           *PasswordHasher
	otp              *OTPIssuer
	tokens           *TokenService
	sessions         SessionStore
	notifier         Notifier
	resetRequiresOTP bool
	log              zerolog.Logger
	now              func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	accounts AccountStore,
	creator *AccountService,
	hasher *PasswordHasher,
	otp *OTPIssuer,
	tokens *TokenService,
	sessions SessionStore,
	notifier Notifier,
	resetRequiresOTP bool,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		accounts:         accounts,
		creator:          creator,
		hasher:           hasher,
		otp:              otp,
		tokens:           tokens,
		sessions:         sessions,
		notifier:         notifier,
		resetRequiresOTP: resetRequiresOTP,
		log:              log,
		now:              time.Now,
	}
}

// Login authenticates by email and password. Students go through the
// first-login and expiry checks; other roles get a plain credential check.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login lookup: %w", err)
	}

	result := &LoginResult{}
	if st, ok := a.Student(); ok {
		if !s.hasher.Matches(a.PasswordHash, password) {
			return nil, ErrInvalidCredentials
		}
		if !a.IsActive {
			return nil, ErrFirstLoginRequired
		}
		if st.PasswordExpired(s.now()) {
			return nil, ErrPasswordExpired
		}

		result.IsFirstLogin = st.IsFirstLogin
		if st.PasswordExpiry != nil || st.IsFirstLogin {
			st.PasswordExpiry = nil
			st.IsFirstLogin = false
			if err := s.accounts.SaveAuthState(ctx, a); err != nil {
				return nil, fmt.Errorf("save login state: %w", err)
			}
		}
	} else {
		if !s.hasher.Matches(a.PasswordHash, password) || !a.IsActive {
			return nil, ErrInvalidCredentials
		}
	}

	pair, err := s.tokens.IssuePair(ctx, a)
	if err != nil {
		return nil, err
	}
	result.Tokens = pair
	result.Account = a.Snapshot()

	s.log.Info().Int("account_id", a.ID).Str("role", string(a.Role())).Msg("Login succeeded")
	return result, nil
}

// SendOTP issues a code and emails it. An unknown email gets an inactive
// placeholder account when the purpose is registration.
func (s *AuthService) SendOTP(ctx context.Context, email string, purpose model.OTPPurpose) error {
	purpose = purpose.OrDefault()

	a, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		if purpose != model.OTPPurposeRegistration {
			return ErrNotFound
		}
		a, _, err = s.creator.Create(ctx, NewAccount{
			Email:   email,
			Profile: &model.MentorProfile{},
		})
		if err != nil {
			return fmt.Errorf("create placeholder: %w", err)
		}
	case err != nil:
		return fmt.Errorf("send otp lookup: %w", err)
	case purpose == model.OTPPurposeRegistration && a.IsActive:
		return ErrAlreadyVerified
	}

	code, err := s.otp.Issue(a)
	if err != nil {
		return err
	}
	if err := s.accounts.SaveAuthState(ctx, a); err != nil {
		return fmt.Errorf("save otp: %w", err)
	}

	if err := s.notifier.SendOTP(ctx, a.Email, a.FullName(), code, purpose); err != nil {
		s.log.Error().Err(err).Int("account_id", a.ID).Msg("Failed to deliver OTP")
		return fmt.Errorf("%w: deliver otp: %v", ErrUpstream, err)
	}
	return nil
}

// VerifyOTP consumes a code. A verified password_reset code records a reset grant.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string, purpose model.OTPPurpose) (*model.Account, error) {
	purpose = purpose.OrDefault()

	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.otp.Verify(a, code, purpose); err != nil {
		return nil, err
	}
	if err := s.accounts.SaveAuthState(ctx, a); err != nil {
		return nil, fmt.Errorf("save otp verification: %w", err)
	}

	if purpose == model.OTPPurposePasswordReset {
		if err := s.sessions.GrantPasswordReset(ctx, a.ID, ResetGrantTTL); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// ResetPassword sets a new password. Students are additionally activated
// and leave the first-login state.
func (s *AuthService) ResetPassword(ctx context.Context, req model.PasswordResetRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}

	a, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	if s.resetRequiresOTP {
		granted, err := s.sessions.ConsumePasswordResetGrant(ctx, a.ID)
		if err != nil {
			return err
		}
		if !granted {
			return ErrResetNotAuthorized
		}
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	if st, ok := a.Student(); ok {
		st.PasswordExpiry = nil
		st.IsFirstLogin = false
		a.IsActive = true
	}
	if err := s.accounts.SaveAuthState(ctx, a); err != nil {
		return fmt.Errorf("save password reset: %w", err)
	}

	if err := s.tokens.RevokeAll(ctx, a.ID); err != nil {
		s.log.Warn().Err(err).Int("account_id", a.ID).Msg("Failed to revoke refresh tokens after reset")
	}
	s.log.Info().Int("account_id", a.ID).Msg("Password reset")
	return nil
}

// Refresh rotates a refresh token into a new pair.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (*TokenPair, error) {
	claims, err := s.tokens.Consume(ctx, refresh)
	if err != nil {
		return nil, err
	}
	a, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrSessionInvalidated
		}
		return nil, err
	}
	if !a.IsActive {
		return nil, ErrSessionInvalidated
	}
	return s.tokens.IssuePair(ctx, a)
}

// Logout revokes a refresh token. Revoking an already revoked token succeeds.
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	_, err := s.tokens.Consume(ctx, refresh)
	if errors.Is(err, ErrSessionInvalidated) {
		return nil
	}
	return err
}
