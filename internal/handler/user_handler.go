package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gsmp/mentorship-backend/internal/middleware"
	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/gsmp/mentorship-backend/internal/response"
	"github.com/gsmp/mentorship-backend/internal/service"
	"github.com/gsmp/mentorship-backend/internal/validator"
	"github.com/rs/zerolog"
)

// UserHandler serves account listings, pairings and admin account actions.
type UserHandler struct {
	accounts *service.AccountService
	pairings *service.PairingService
	urls     MediaURLs
	log      zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(accounts *service.AccountService, pairings *service.PairingService, urls MediaURLs, log zerolog.Logger) *UserHandler {
	return &UserHandler{accounts: accounts, pairings: pairings, urls: urls, log: log}
}

// ListStudents godoc
// GET /api/v1/students
func (h *UserHandler) ListStudents(c *gin.Context) {
	students, err := h.accounts.ListActiveStudents(c.Request.Context())
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, publicAccounts(c, h.urls, students))
}

// GetUser godoc
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	account, err := h.accounts.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, publicAccount(c, h.urls, account))
}

// ListPairings godoc
// GET /api/v1/pairings
// Mentors get their students, students get their mentors.
func (h *UserHandler) ListPairings(c *gin.Context) {
	account := middleware.GetAccount(c)
	if account == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	partners, err := h.pairings.ListPartners(c.Request.Context(), account)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	key := "paired_students"
	if account.Role() == model.RoleStudent {
		key = "paired_mentors"
	}
	response.Success(c, http.StatusOK, gin.H{key: publicAccounts(c, h.urls, partners)})
}

// CreatePairing godoc
// POST /api/v1/admin/pairings
func (h *UserHandler) CreatePairing(c *gin.Context) {
	var req model.PairingRequest
	if fields := validator.Bind(c, &req); fields != nil {
		failValidation(c, fields)
		return
	}

	pairing, err := h.pairings.Pair(c.Request.Context(), req.MentorID, req.StudentID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, pairing)
}

// DeletePairing godoc
// DELETE /api/v1/admin/pairings
func (h *UserHandler) DeletePairing(c *gin.Context) {
	var req model.PairingRequest
	if fields := validator.Bind(c, &req); fields != nil {
		failValidation(c, fields)
		return
	}

	if err := h.pairings.Unpair(c.Request.Context(), req.MentorID, req.StudentID); err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// ActivateAccount godoc
// POST /api/v1/admin/accounts/:id/activate
// Approves a mentor application or re-enables an account.
func (h *UserHandler) ActivateAccount(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	account, err := h.accounts.Activate(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"user":      publicAccount(c, h.urls, account),
		"is_active": account.IsActive,
	})
}
