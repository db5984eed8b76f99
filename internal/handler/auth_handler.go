package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gsmp/mentorship-backend/internal/metrics"
	"github.com/gsmp/mentorship-backend/internal/middleware"
	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/gsmp/mentorship-backend/internal/response"
	"github.com/gsmp/mentorship-backend/internal/service"
	"github.com/gsmp/mentorship-backend/internal/validator"
	"github.com/rs/zerolog"
)

// AuthHandler handles login, OTP and password endpoints.
type AuthHandler struct {
	authService *service.AuthService
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler. m may be nil.
func NewAuthHandler(authService *service.AuthService, m *metrics.Metrics, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, metrics: m, log: log}
}

// Login godoc
// POST /api/v1/login
// Role-aware login. Students get FIRST_LOGIN_REQUIRED or PASSWORD_EXPIRED
// instead of INVALID_CREDENTIALS when the password is right.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		failValidation(c, fields)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_, code := classify(err)
		h.metrics.AuthEvent("login", string(code))
		fail(c, h.log, err)
		return
	}
	h.metrics.AuthEvent("login", "ok")

	response.Success(c, http.StatusOK, gin.H{
		"refresh":          result.Tokens.Refresh,
		"access":           result.Tokens.Access,
		"password_expired": result.PasswordExpired,
		"is_first_login":   result.IsFirstLogin,
		"user":             result.Account,
	})
}

// SendOTP godoc
// POST /api/v1/send-otp
// Issues a one-time code and emails it.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req model.SendOTPRequest
	if fields := validator.Bind(c, &req); fields != nil {
		failValidation(c, fields)
		return
	}

	purpose := req.Purpose.OrDefault()
	if err := h.authService.SendOTP(c.Request.Context(), req.Email, purpose); err != nil {
		_, code := classify(err)
		h.metrics.AuthEvent("send_otp", string(code))
		fail(c, h.log, err)
		return
	}
	h.metrics.AuthEvent("send_otp", "ok")

	response.Success(c, http.StatusOK, gin.H{
		"email":   model.NormalizeEmail(req.Email),
		"purpose": purpose,
	})
}

// VerifyOTP godoc
// POST /api/v1/verify-otp
// Consumes a one-time code. Only the registration purpose activates the account.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req model.VerifyOTPRequest
	if fields := validator.Bind(c, &req); fields != nil {
		failValidation(c, fields)
		return
	}

	purpose := req.Purpose.OrDefault()
	account, err := h.authService.VerifyOTP(c.Request.Context(), req.Email, req.OTP, purpose)
	if err != nil {
		_, code := classify(err)
		h.metrics.AuthEvent("verify_otp", string(code))
		fail(c, h.log, err)
		return
	}
	h.metrics.AuthEvent("verify_otp", "ok")

	response.Success(c, http.StatusOK, gin.H{
		"verified":  true,
		"purpose":   purpose,
		"is_active": account.IsActive,
	})
}

// ResetPassword godoc
// POST /api/v1/password-reset
// Sets a new password. Students are activated and leave the first-login state.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.PasswordResetRequest
	if fields := validator.Bind(c, &req); fields != nil {
		failValidation(c, fields)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req); err != nil {
		_, code := classify(err)
		h.metrics.AuthEvent("password_reset", string(code))
		fail(c, h.log, err)
		return
	}
	h.metrics.AuthEvent("password_reset", "ok")

	response.Success(c, http.StatusOK, gin.H{"reset": true})
}

// Refresh godoc
// POST /api/v1/token/refresh
// Rotates a refresh token into a new token pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if fields := validator.Bind(c, &req); fields != nil {
		failValidation(c, fields)
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, pair)
}

// Logout godoc
// POST /api/v1/logout
// Revokes a refresh token. Repeating the call succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req model.RefreshRequest
	if fields := validator.Bind(c, &req); fields != nil {
		failValidation(c, fields)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.Refresh); err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/me
// Returns the profile of the authenticated account.
func (h *AuthHandler) Me(c *gin.Context) {
	account := middleware.GetAccount(c)
	if account == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, account.Snapshot())
}
