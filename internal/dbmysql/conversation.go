package dbmysql

import (
	"time"
)

// Conversation is a two-party message thread. LastActivityAt is bumped in the
// same transaction as every message insert and never moves backwards.
type Conversation struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	LastActivityAt time.Time `gorm:"column:last_activity_at;index" json:"last_activity_at"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// ConversationMember pairs a participant with a conversation. IsArchived is
// the only display flag the server persists; unread and mute live in the
// client overlay only.
type ConversationMember struct {
	ConversationID string    `gorm:"primaryKey;size:36" json:"conversation_id"`
	UserID         string    `gorm:"primaryKey;size:36;index" json:"user_id"`
	IsArchived     bool      `gorm:"column:is_archived;default:false" json:"is_archived"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
