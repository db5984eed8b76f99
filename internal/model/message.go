package model

import "time"

// ChatMessage is the document appended to chats/<chat_id>/messages.
type ChatMessage struct {
	Text       string    `firestore:"text" json:"text"`
	SenderID   int       `firestore:"senderId" json:"senderId"`
	SenderName string    `firestore:"senderName" json:"senderName"`
	Timestamp  time.Time `firestore:"timestamp" json:"timestamp"`
}

// SendMessageRequest is the payload for forwarding a chat message.
type SendMessageRequest struct {
	ChatID string `json:"chat_id" binding:"required,max=128,excludesall=/"`
	Text   string `json:"text" binding:"required,max=4000"`
}
