package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gsmp/mentorship-backend/internal/middleware"
	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/gsmp/mentorship-backend/internal/response"
	"github.com/gsmp/mentorship-backend/internal/service"
	"github.com/gsmp/mentorship-backend/internal/validator"
	"github.com/rs/zerolog"
)

// MessageHandler bridges chat traffic to the external messaging store.
type MessageHandler struct {
	messaging *service.MessagingService
	log       zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messaging *service.MessagingService, log zerolog.Logger) *MessageHandler {
	return &MessageHandler{messaging: messaging, log: log}
}

// SendMessage godoc
// POST /api/v1/send-message
func (h *MessageHandler) SendMessage(c *gin.Context) {
	account := middleware.GetAccount(c)
	if account == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SendMessageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		failValidation(c, fields)
		return
	}

	msg, err := h.messaging.SendMessage(c.Request.Context(), account, req.ChatID, req.Text)
	if errors.Is(err, service.ErrEmptyMessage) {
		failValidation(c, map[string]string{"text": "text is a required field"})
		return
	}
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "Message sent", "message": msg})
}

// FirebaseToken godoc
// GET /api/v1/firebase-token
// Mints a custom token for the caller's messaging identity.
func (h *MessageHandler) FirebaseToken(c *gin.Context) {
	account := middleware.GetAccount(c)
	if account == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	token, err := h.messaging.BridgeToken(c.Request.Context(), account)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"firebase_token": token,
		"uid":            service.BridgeUID(account.ID),
	})
}
