// Package client implements the polling side of the messenger: heartbeat
// presence reporting, chat-list refresh with flag reconciliation, and
// conversation-scoped presence/message pollers. There is no push channel;
// these loops are the delivery mechanism, and a failed tick is simply
// retried by the next one.
package client

import (
	"context"
	"time"
)

// ChatSummary is one conversation in the list. IsUnread and IsMuted are
// local-only display flags the server never persists; IsArchived is
// authoritative only when the server returns it.
type ChatSummary struct {
	ID             string     `json:"id"`
	OtherUserID    string     `json:"otherUserId"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	AvatarURL      *string    `json:"avatarUrl"`
	Preview        *string    `json:"preview"`
	LastActivityAt time.Time  `json:"lastActivityAt"`
	LastSeenAt     *time.Time `json:"lastSeenAt"`
	IsUnread       bool       `json:"isUnread"`
	IsArchived     bool       `json:"isArchived"`
	IsMuted        bool       `json:"-"`
}

// Message mirrors the server's message view
type Message struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Kind        string    `json:"type"`
	CreatedAt   time.Time `json:"createdAt"`
	SenderID    string    `json:"senderId"`
	SenderName  string    `json:"senderName"`
	SenderImage *string   `json:"senderImage"`
}

// Contact is one entry of the new-message contact picker
type Contact struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatarUrl"`
}

// ChatInfo is the find-or-create result for a conversation
type ChatInfo struct {
	ChatID    string   `json:"chatId"`
	OtherUser *Contact `json:"otherUser"`
}

// SearchResult is one global search hit
type SearchResult struct {
	MessageID    string    `json:"messageId"`
	ChatID       string    `json:"chatId"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
	ContactName  *string   `json:"contactName"`
	ContactImage *string   `json:"contactImage"`
}

// SendRequest is the write payload for a new message. SenderID is only
// honored for call-log entries, to attribute a declined incoming call to
// the counterpart.
type SendRequest struct {
	Content  string `json:"content"`
	Kind     string `json:"type"`
	SenderID string `json:"senderId,omitempty"`
}

// Service is the API surface the pollers run against. The HTTP client
// implements it; tests substitute fakes.
type Service interface {
	ListChats(ctx context.Context) ([]ChatSummary, error)
	CreateChat(ctx context.Context, otherUserID string) (*ChatInfo, error)
	LeaveChat(ctx context.Context, chatID string) error
	History(ctx context.Context, chatID string) ([]Message, error)
	SendMessage(ctx context.Context, chatID string, req SendRequest) (*Message, error)
	DeleteMessage(ctx context.Context, chatID, messageID string) error
	CounterpartLastSeen(ctx context.Context, chatID string) (*time.Time, error)
	SetPresence(ctx context.Context, online bool) error
	ListContacts(ctx context.Context) ([]Contact, error)
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// Default poll periods. They are deliberately different so the loops
// interleave instead of bursting together.
const (
	HeartbeatInterval = 8 * time.Second
	ChatListInterval  = 3 * time.Second
	PresenceInterval  = 2 * time.Second
	MessageInterval   = 4 * time.Second
)
