package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/gsmp/mentorship-backend/internal/response"
	"github.com/gsmp/mentorship-backend/internal/service"
	"github.com/gsmp/mentorship-backend/internal/validator"
	"github.com/rs/zerolog"
)

// IntroVideoField is the multipart part carrying a mentor intro video.
const IntroVideoField = "mentor_intro_video"

// RegistrationHandler handles mentor self-registration.
type RegistrationHandler struct {
	registration *service.RegistrationService
	urls         MediaURLs
	log          zerolog.Logger
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(registration *service.RegistrationService, urls MediaURLs, log zerolog.Logger) *RegistrationHandler {
	return &RegistrationHandler{registration: registration, urls: urls, log: log}
}

// RegisterMentor godoc
// POST /api/v1/register/mentor
// Multipart mentor application with an optional intro video. The account is
// created inactive and waits for admin approval.
func (h *RegistrationHandler) RegisterMentor(c *gin.Context) {
	var req model.MentorRegistrationRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		failValidation(c, fields)
		return
	}

	video, err := optionalFile(c, IntroVideoField)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	account, err := h.registration.RegisterMentor(c.Request.Context(), req, video)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user":      publicAccount(c, h.urls, account),
		"is_active": account.IsActive,
	})
}

// optionalFile returns the named upload or nil when the request has none.
func optionalFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	header, err := c.FormFile(field)
	switch {
	case err == nil:
		return header, nil
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, nil
	default:
		return nil, err
	}
}
