package dbmysql

import (
	"time"
)

// Message is immutable once created except for hard deletion. Content is an
// opaque string; for file/audio kinds it is a serialized {url, fileName}
// object and for call kind a serialized call-log record.
type Message struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	ConversationID string    `gorm:"index;size:36;not null" json:"conversation_id"`
	SenderID       string    `gorm:"index;size:36;not null" json:"sender_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Kind           string    `gorm:"column:kind;size:10;default:'text'" json:"kind"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}
