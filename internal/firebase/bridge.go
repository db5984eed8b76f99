// Package firebase connects the messaging bridge to Firestore and Firebase Auth.
package firebase

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/firestore"
	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/gsmp/mentorship-backend/internal/config"
	"github.com/gsmp/mentorship-backend/internal/model"
	"google.golang.org/api/option"
)

const (
	chatsCollection    = "chats"
	messagesCollection = "messages"
)

// Bridge appends chat messages and mints custom tokens. Build it once at
// startup and Close it at shutdown.
type Bridge struct {
	store *firestore.Client
	auth  *auth.Client
}

// New initializes the Firebase app from the service-account bundle.
func New(ctx context.Context, cfg config.FirebaseConfig) (*Bridge, error) {
	creds, err := credentialsJSON(cfg)
	if err != nil {
		return nil, err
	}

	app, err := fb.NewApp(ctx, &fb.Config{ProjectID: cfg.ProjectID}, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	store, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}

	return &Bridge{store: store, auth: authClient}, nil
}

// AppendMessage adds msg to chats/<chatID>/messages.
func (b *Bridge) AppendMessage(ctx context.Context, chatID string, msg model.ChatMessage) error {
	_, _, err := b.store.Collection(chatsCollection).Doc(chatID).Collection(messagesCollection).Add(ctx, msg)
	if err != nil {
		return fmt.Errorf("append to chat %s: %w", chatID, err)
	}
	return nil
}

// CustomToken mints a Firebase custom token for uid carrying claims.
func (b *Bridge) CustomToken(ctx context.Context, uid string, claims map[string]interface{}) (string, error) {
	token, err := b.auth.CustomTokenWithClaims(ctx, uid, claims)
	if err != nil {
		return "", fmt.Errorf("mint custom token: %w", err)
	}
	return token, nil
}

// Close releases the Firestore connection.
func (b *Bridge) Close() error {
	return b.store.Close()
}

func credentialsJSON(cfg config.FirebaseConfig) ([]byte, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("firebase credentials incomplete: project id, private key and client email are required")
	}
	if cfg.Type == "" {
		cfg.Type = "service_account"
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode firebase credentials: %w", err)
	}
	return b, nil
}
