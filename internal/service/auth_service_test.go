package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gsmp/mentorship-backend/internal/model"
)

type authHarness struct {
	svc      *AuthService
	accounts *fakeAccounts
	sessions *fakeSessions
	mail     *fakeNotifier
	tokens   *TokenService
	clock    *clock
}

func newAuthHarness(t *testing.T, resetRequiresOTP bool) *authHarness {
	t.Helper()
	accounts := newFakeAccounts()
	sessions := newFakeSessions()
	mail := &fakeNotifier{}
	clk := newClock()
	hasher := testHasher()

	creator := NewAccountService(accounts, hasher, testLogger())
	otp := newTestIssuer(clk)
	tokens := NewTokenService("test-secret", 30*time.Minute, 7*24*time.Hour, sessions)
	tokens.now = clk.now

	svc := NewAuthService(accounts, creator, hasher, otp, tokens, sessions, mail, resetRequiresOTP, testLogger())
	svc.now = clk.now
	return &authHarness{svc: svc, accounts: accounts, sessions: sessions, mail: mail, tokens: tokens, clock: clk}
}

func (h *authHarness) stored(t *testing.T, id int) *model.Account {
	t.Helper()
	a, err := h.accounts.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load account %d: %v", id, err)
	}
	return a
}

func studentProfile(firstLogin bool, expiry *time.Time) *model.StudentProfile {
	return &model.StudentProfile{IsFirstLogin: firstLogin, PasswordExpiry: expiry}
}

func TestLoginUnknownEmailIsInvalidCredentials(t *testing.T) {
	h := newAuthHarness(t, false)
	_, err := h.svc.Login(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestStudentLoginInactiveRequiresFirstLogin(t *testing.T) {
	h := newAuthHarness(t, false)
	h.accounts.seed(t, "student@example.com", "Temp#Pass1", false, studentProfile(true, nil))

	_, err := h.svc.Login(context.Background(), "student@example.com", "Temp#Pass1")
	if !errors.Is(err, ErrFirstLoginRequired) {
		t.Fatalf("err = %v, want ErrFirstLoginRequired", err)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("first-login signal must not be InvalidCredentials")
	}
}

func TestStudentLoginWrongPassword(t *testing.T) {
	h := newAuthHarness(t, false)
	h.accounts.seed(t, "student@example.com", "Temp#Pass1", true, studentProfile(false, nil))

	_, err := h.svc.Login(context.Background(), "student@example.com", "nope")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v", err)
	}
}

func TestStudentLoginPasswordExpiry(t *testing.T) {
	h := newAuthHarness(t, false)
	now := h.clock.now()

	tests := []struct {
		name    string
		expiry  *time.Time
		wantErr error
	}{
		{"no expiry", nil, nil},
		{"future", ptr(now.Add(time.Hour)), nil},
		{"exactly now", ptr(now), nil},
		{"past", ptr(now.Add(-time.Second)), ErrPasswordExpired},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := "s" + string(rune('a'+i)) + "@example.com"
			a := h.accounts.seed(t, email, "Secret#123", true, studentProfile(false, tt.expiry))

			res, err := h.svc.Login(context.Background(), email, "Secret#123")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			st, _ := h.stored(t, a.ID).Student()
			if tt.wantErr != nil {
				if st.PasswordExpiry == nil {
					t.Fatal("failed login cleared expiry")
				}
				return
			}
			if st.PasswordExpiry != nil {
				t.Fatal("successful login kept password_expiry")
			}
			if res.Tokens == nil || res.Tokens.Access == "" || res.Tokens.Refresh == "" {
				t.Fatal("missing token pair")
			}
			if res.PasswordExpired {
				t.Fatal("password_expired reported on success")
			}
		})
	}
}

func TestStudentLoginReportsAndClearsFirstLogin(t *testing.T) {
	h := newAuthHarness(t, false)
	a := h.accounts.seed(t, "fresh@example.com", "Secret#123", true, studentProfile(true, nil))

	res, err := h.svc.Login(context.Background(), "fresh@example.com", "Secret#123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !res.IsFirstLogin {
		t.Fatal("is_first_login should report the pre-login value")
	}
	st, _ := h.stored(t, a.ID).Student()
	if st.IsFirstLogin {
		t.Fatal("is_first_login not cleared")
	}
	if res.Account.Role != model.RoleStudent || res.Account.Email != "fresh@example.com" {
		t.Fatalf("snapshot = %+v", res.Account)
	}
}

func TestMentorLoginInactiveIsInvalidCredentials(t *testing.T) {
	h := newAuthHarness(t, false)
	h.accounts.seed(t, "mentor@example.com", "Secret#123", false, &model.MentorProfile{})

	_, err := h.svc.Login(context.Background(), "mentor@example.com", "Secret#123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v", err)
	}
}

func TestAdminLoginSucceeds(t *testing.T) {
	h := newAuthHarness(t, false)
	h.accounts.seed(t, "Admin@Example.com", "Secret#123", true, &model.AdminProfile{})

	res, err := h.svc.Login(context.Background(), " admin@example.com ", "Secret#123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := h.tokens.Validate(res.Tokens.Access, TokenTypeAccess)
	if err != nil {
		t.Fatalf("validate access: %v", err)
	}
	if claims.Role != model.RoleAdmin {
		t.Fatalf("role claim = %q", claims.Role)
	}
}

func TestSendOTPUnknownEmailRegistrationCreatesPlaceholder(t *testing.T) {
	h := newAuthHarness(t, false)

	if err := h.svc.SendOTP(context.Background(), "new@example.com", model.OTPPurposeRegistration); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	a, err := h.accounts.GetByEmail(context.Background(), "new@example.com")
	if err != nil {
		t.Fatalf("placeholder not created: %v", err)
	}
	if a.IsActive {
		t.Fatal("placeholder must be inactive")
	}
	m, ok := a.Mentor()
	if !ok || !m.Placeholder() {
		t.Fatalf("profile = %#v", a.Profile)
	}
	if a.EmailOTP == nil {
		t.Fatal("no otp issued")
	}
	if mail := h.mail.last(t); mail.Kind != "otp" || mail.Payload != *a.EmailOTP {
		t.Fatalf("mail = %+v", mail)
	}
}

func TestSendOTPReissuesOnExistingPlaceholder(t *testing.T) {
	h := newAuthHarness(t, false)
	ctx := context.Background()

	if err := h.svc.SendOTP(ctx, "new@example.com", model.OTPPurposeRegistration); err != nil {
		t.Fatalf("first SendOTP: %v", err)
	}
	first, _ := h.accounts.GetByEmail(ctx, "new@example.com")

	h.clock.advance(time.Hour)
	if err := h.svc.SendOTP(ctx, "new@example.com", model.OTPPurposeRegistration); err != nil {
		t.Fatalf("second SendOTP: %v", err)
	}
	second, _ := h.accounts.GetByEmail(ctx, "new@example.com")

	if h.accounts.count() != 1 || second.ID != first.ID {
		t.Fatalf("expected the placeholder to be reused, have %d accounts", h.accounts.count())
	}
	if second.EmailOTP == nil || h.mail.last(t).Payload != *second.EmailOTP {
		t.Fatal("expected a fresh code to be mailed")
	}
	if _, err := h.svc.VerifyOTP(ctx, "new@example.com", *second.EmailOTP, model.OTPPurposeRegistration); err != nil {
		t.Fatalf("fresh code rejected after an hour: %v", err)
	}
}

func TestSendOTPUnknownEmailPasswordResetIsNotFound(t *testing.T) {
	h := newAuthHarness(t, false)

	err := h.svc.SendOTP(context.Background(), "ghost@example.com", model.OTPPurposePasswordReset)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if h.accounts.count() != 0 {
		t.Fatal("account created for password_reset")
	}
}

func TestSendOTPActiveAccountRegistrationAlreadyVerified(t *testing.T) {
	h := newAuthHarness(t, false)
	h.accounts.seed(t, "mentor@example.com", "Secret#123", true, &model.MentorProfile{})

	err := h.svc.SendOTP(context.Background(), "mentor@example.com", "")
	if !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("err = %v", err)
	}
	if err := h.svc.SendOTP(context.Background(), "mentor@example.com", model.OTPPurposePasswordReset); err != nil {
		t.Fatalf("password_reset otp for active account: %v", err)
	}
}

func TestSendOTPDeliveryFailureKeepsCode(t *testing.T) {
	h := newAuthHarness(t, false)
	h.mail.err = errors.New("smtp down")

	err := h.svc.SendOTP(context.Background(), "new@example.com", model.OTPPurposeRegistration)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
	a, err := h.accounts.GetByEmail(context.Background(), "new@example.com")
	if err != nil || a.EmailOTP == nil {
		t.Fatalf("account or code missing after delivery failure: %v", err)
	}
}

func TestVerifyOTPFlow(t *testing.T) {
	h := newAuthHarness(t, false)
	ctx := context.Background()
	if err := h.svc.SendOTP(ctx, "new@example.com", model.OTPPurposeRegistration); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	code := h.mail.last(t).Payload

	if _, err := h.svc.VerifyOTP(ctx, "unknown@example.com", code, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown email: err = %v", err)
	}

	a, err := h.svc.VerifyOTP(ctx, "new@example.com", code, model.OTPPurposeRegistration)
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if !a.IsActive || !h.stored(t, a.ID).IsActive {
		t.Fatal("registration verify did not activate")
	}
	if _, err := h.svc.VerifyOTP(ctx, "new@example.com", code, model.OTPPurposeRegistration); !errors.Is(err, ErrOTPMismatch) {
		t.Fatalf("reuse: err = %v", err)
	}
}

func TestVerifyOTPPasswordResetDoesNotActivate(t *testing.T) {
	h := newAuthHarness(t, false)
	ctx := context.Background()
	a := h.accounts.seed(t, "mentor@example.com", "Secret#123", false, &model.MentorProfile{AppliedAt: ptr(time.Now())})

	if err := h.svc.SendOTP(ctx, a.Email, model.OTPPurposePasswordReset); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	if _, err := h.svc.VerifyOTP(ctx, a.Email, h.mail.last(t).Payload, model.OTPPurposePasswordReset); err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if h.stored(t, a.ID).IsActive {
		t.Fatal("password_reset verify activated the account")
	}
}

func TestResetPasswordMismatchMutatesNothing(t *testing.T) {
	h := newAuthHarness(t, false)
	a := h.accounts.seed(t, "student@example.com", "Old#Pass1", false, studentProfile(true, nil))
	before := h.accounts.saves

	err := h.svc.ResetPassword(context.Background(), model.PasswordResetRequest{
		Email: a.Email, NewPassword: "New#Pass12", ConfirmPassword: "Other#Pass12",
	})
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("err = %v", err)
	}
	if h.accounts.saves != before {
		t.Fatal("mismatch wrote to the store")
	}
	if got := h.stored(t, a.ID); got.PasswordHash != a.PasswordHash || got.IsActive {
		t.Fatal("account mutated")
	}
}

func TestResetPasswordUnknownEmail(t *testing.T) {
	h := newAuthHarness(t, false)
	err := h.svc.ResetPassword(context.Background(), model.PasswordResetRequest{
		Email: "ghost@example.com", NewPassword: "New#Pass12", ConfirmPassword: "New#Pass12",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestResetPasswordStudentActivates(t *testing.T) {
	h := newAuthHarness(t, false)
	ctx := context.Background()
	a := h.accounts.seed(t, "student@example.com", "Old#Pass1", false, studentProfile(true, ptr(h.clock.now().Add(-time.Hour))))

	err := h.svc.ResetPassword(ctx, model.PasswordResetRequest{
		Email: a.Email, NewPassword: "New#Pass12", ConfirmPassword: "New#Pass12",
	})
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	got := h.stored(t, a.ID)
	st, _ := got.Student()
	if !got.IsActive || st.IsFirstLogin || st.PasswordExpiry != nil {
		t.Fatalf("student state after reset: active=%v first=%v expiry=%v", got.IsActive, st.IsFirstLogin, st.PasswordExpiry)
	}

	if _, err := h.svc.Login(ctx, a.Email, "New#Pass12"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestResetPasswordMentorKeepsActiveFlag(t *testing.T) {
	h := newAuthHarness(t, false)
	a := h.accounts.seed(t, "mentor@example.com", "Old#Pass1", false, &model.MentorProfile{AppliedAt: ptr(time.Now())})

	err := h.svc.ResetPassword(context.Background(), model.PasswordResetRequest{
		Email: a.Email, NewPassword: "New#Pass12", ConfirmPassword: "New#Pass12",
	})
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	got := h.stored(t, a.ID)
	if got.IsActive {
		t.Fatal("mentor activated by password reset")
	}
	if got.PasswordHash == a.PasswordHash {
		t.Fatal("password hash unchanged")
	}
}

func TestResetPasswordRequiresGrantWhenConfigured(t *testing.T) {
	h := newAuthHarness(t, true)
	ctx := context.Background()
	a := h.accounts.seed(t, "student@example.com", "Old#Pass1", true, studentProfile(false, nil))
	req := model.PasswordResetRequest{Email: a.Email, NewPassword: "New#Pass12", ConfirmPassword: "New#Pass12"}

	if err := h.svc.ResetPassword(ctx, req); !errors.Is(err, ErrResetNotAuthorized) {
		t.Fatalf("without grant: err = %v", err)
	}

	if err := h.svc.SendOTP(ctx, a.Email, model.OTPPurposePasswordReset); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	if _, err := h.svc.VerifyOTP(ctx, a.Email, h.mail.last(t).Payload, model.OTPPurposePasswordReset); err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if err := h.svc.ResetPassword(ctx, req); err != nil {
		t.Fatalf("with grant: %v", err)
	}
	if err := h.svc.ResetPassword(ctx, req); !errors.Is(err, ErrResetNotAuthorized) {
		t.Fatalf("grant reused: err = %v", err)
	}
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	h := newAuthHarness(t, false)
	ctx := context.Background()
	h.accounts.seed(t, "admin@example.com", "Secret#123", true, &model.AdminProfile{})

	res, err := h.svc.Login(ctx, "admin@example.com", "Secret#123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := h.svc.Refresh(ctx, res.Tokens.Access); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("access token accepted as refresh: %v", err)
	}

	pair, err := h.svc.Refresh(ctx, res.Tokens.Refresh)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, err := h.svc.Refresh(ctx, res.Tokens.Refresh); !errors.Is(err, ErrSessionInvalidated) {
		t.Fatalf("old refresh reused: %v", err)
	}

	if err := h.svc.Logout(ctx, pair.Refresh); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := h.svc.Logout(ctx, pair.Refresh); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if _, err := h.svc.Refresh(ctx, pair.Refresh); !errors.Is(err, ErrSessionInvalidated) {
		t.Fatalf("refresh after logout: %v", err)
	}
}

func TestRefreshTokenExpires(t *testing.T) {
	h := newAuthHarness(t, false)
	ctx := context.Background()
	h.accounts.seed(t, "admin@example.com", "Secret#123", true, &model.AdminProfile{})

	res, err := h.svc.Login(ctx, "admin@example.com", "Secret#123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	h.clock.advance(8 * 24 * time.Hour)
	if _, err := h.svc.Refresh(ctx, res.Tokens.Refresh); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expired refresh: err = %v", err)
	}
}
