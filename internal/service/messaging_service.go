package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/rs/zerolog"
)

// MessagingService forwards chat traffic to the external messaging bridge.
// A nil bridge means messaging is not configured.
type MessagingService struct {
	bridge MessageBridge
	log    zerolog.Logger
	now    func() time.Time
}

// NewMessagingService creates a new MessagingService.
func NewMessagingService(bridge MessageBridge, log zerolog.Logger) *MessagingService {
	return &MessagingService{bridge: bridge, log: log, now: time.Now}
}

// BridgeUID is the external identity of an account.
func BridgeUID(accountID int) string {
	return "user_" + strconv.Itoa(accountID)
}

// SendMessage appends a message from sender to a chat. Surrounding
// whitespace is trimmed from text.
func (s *MessagingService) SendMessage(ctx context.Context, sender *model.Account, chatID, text string) (*model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if s.bridge == nil {
		return nil, fmt.Errorf("%w: messaging bridge not configured", ErrUpstream)
	}
	msg := model.ChatMessage{
		Text:       text,
		SenderID:   sender.ID,
		SenderName: sender.FullName(),
		Timestamp:  s.now().UTC(),
	}
	if err := s.bridge.AppendMessage(ctx, chatID, msg); err != nil {
		s.log.Error().Err(err).Str("chat_id", chatID).Int("sender_id", sender.ID).Msg("Failed to append chat message")
		return nil, fmt.Errorf("%w: append message: %v", ErrUpstream, err)
	}
	return &msg, nil
}

// BridgeToken mints a custom token the client uses to sign in to the bridge.
func (s *MessagingService) BridgeToken(ctx context.Context, a *model.Account) (string, error) {
	if s.bridge == nil {
		return "", fmt.Errorf("%w: messaging bridge not configured", ErrUpstream)
	}
	claims := map[string]interface{}{
		"full_name":  a.FullName(),
		"email":      a.Email,
		"first_name": a.FirstName,
		"last_name":  a.LastName,
		"role":       string(a.Role()),
	}
	token, err := s.bridge.CustomToken(ctx, BridgeUID(a.ID), claims)
	if err != nil {
		s.log.Error().Err(err).Int("account_id", a.ID).Msg("Failed to mint bridge token")
		return "", fmt.Errorf("%w: mint token: %v", ErrUpstream, err)
	}
	return token, nil
}
