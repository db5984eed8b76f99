package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gsmp/mentorship-backend/internal/importer"
	"github.com/gsmp/mentorship-backend/internal/response"
	"github.com/gsmp/mentorship-backend/internal/service"
	"github.com/rs/zerolog"
)

type errorMapping struct {
	err    error
	status int
	code   response.ErrCode
}

// errorTable maps service sentinels to envelope codes. Order matters only
// for errors that wrap more than one sentinel.
var errorTable = []errorMapping{
	{service.ErrNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
	{service.ErrFirstLoginRequired, http.StatusForbidden, response.ErrFirstLoginRequired},
	{service.ErrPasswordExpired, http.StatusForbidden, response.ErrPasswordExpired},
	{service.ErrPasswordMismatch, http.StatusBadRequest, response.ErrPasswordMismatch},
	{service.ErrResetNotAuthorized, http.StatusForbidden, response.ErrResetNotAuthorized},
	{service.ErrOTPExpired, http.StatusBadRequest, response.ErrOTPExpired},
	{service.ErrOTPMismatch, http.StatusBadRequest, response.ErrOTPMismatch},
	{service.ErrAlreadyVerified, http.StatusBadRequest, response.ErrAlreadyVerified},
	{service.ErrTokenInvalid, http.StatusUnauthorized, response.ErrTokenInvalid},
	{service.ErrSessionInvalidated, http.StatusUnauthorized, response.ErrSessionInvalidated},
	{service.ErrForbidden, http.StatusForbidden, response.ErrForbidden},
	{service.ErrInvalidRole, http.StatusBadRequest, response.ErrInvalidRole},
	{service.ErrInvalidPairing, http.StatusBadRequest, response.ErrInvalidPairing},
	{service.ErrConflict, http.StatusConflict, response.ErrConflict},
	{service.ErrFileRequired, http.StatusBadRequest, response.ErrFileRequired},
	{service.ErrUnsupportedFileType, http.StatusBadRequest, response.ErrUnsupportedFile},
	{importer.ErrUnsupportedFormat, http.StatusBadRequest, response.ErrUnsupportedFile},
	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge},
	{service.ErrUpstream, http.StatusBadGateway, response.ErrUpstream},
}

// classify returns the status and code for err. Unknown errors are internal.
func classify(err error) (int, response.ErrCode) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, response.ErrInternal
}

// fail answers err through the envelope. Internal and upstream failures are
// logged with the request id; their detail never reaches the client.
func fail(c *gin.Context, log zerolog.Logger, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("request_id", response.RequestID(c)).
			Str("path", c.FullPath()).
			Msg("Request failed")
	}
	response.Fail(c, status, code)
}

// paramID parses a positive integer path parameter.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

func failValidation(c *gin.Context, fields map[string]string) {
	response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
}
