package store

import (
	"time"

	"ai-meetnotes/pkg/markup"
)

// Message is a chat turn as the UI renders it.
type Message struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	IsUser    bool           `json:"is_user"`
	Timestamp time.Time      `json:"timestamp"`
	Parts     []markup.Block `json:"parts,omitempty"` // derived from Content, never persisted
}

// StreamState lives for exactly one model invocation.
type StreamState struct {
	IsGenerating bool   `json:"is_generating"`
	MessageID    string `json:"message_id,omitempty"`
	Text         string `json:"text,omitempty"`
}

const (
	ChangeSessionUpdated  = "session.updated"
	ChangeSessionDeleted  = "session.deleted"
	ChangeMessagesUpdated = "messages.updated"
	ChangeStreamUpdated   = "stream.updated"
	ChangeNotification    = "notification"
)

// Change is broadcast to subscribers after every store mutation.
type Change struct {
	Kind    string `json:"kind"`
	Key     string `json:"key"`
	UserID  string `json:"user_id"`
	Payload any    `json:"payload,omitempty"`
}

// Notification is a one-shot dialog pushed to the user.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}
