package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"whispr/internal/dbmysql"
)

type ChatRepository interface {
	CreateConversation(ctx context.Context, convo *dbmysql.Conversation, members []*dbmysql.ConversationMember) error
	FindConversationWith(ctx context.Context, userID, otherUserID string) (*dbmysql.Conversation, error)
	GetConversation(ctx context.Context, conversationID string) (*dbmysql.Conversation, error)
	Membership(ctx context.Context, conversationID, userID string) (*dbmysql.ConversationMember, error)
	Members(ctx context.Context, conversationID string) ([]*dbmysql.ConversationMember, error)
	ListMemberships(ctx context.Context, userID string) ([]*dbmysql.ConversationMember, error)
	RemoveMember(ctx context.Context, conversationID, userID string) error

	SaveMessage(ctx context.Context, msg *dbmysql.Message) error
	FetchHistory(ctx context.Context, conversationID string) ([]*dbmysql.Message, error)
	LatestMessage(ctx context.Context, conversationID string) (*dbmysql.Message, error)
	FindMessage(ctx context.Context, conversationID, messageID string) (*dbmysql.Message, error)
	DeleteMessage(ctx context.Context, messageID string) error
	SearchMessages(ctx context.Context, conversationIDs []string, query string, limit int) ([]*dbmysql.Message, error)
}

type chatRepo struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepo{db: db}
}

// CreateConversation inserts the conversation and its two members atomically
func (r *chatRepo) CreateConversation(ctx context.Context, convo *dbmysql.Conversation, members []*dbmysql.ConversationMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(convo).Error; err != nil {
			return err
		}
		for _, m := range members {
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindConversationWith returns the conversation both users are members of
func (r *chatRepo) FindConversationWith(ctx context.Context, userID, otherUserID string) (*dbmysql.Conversation, error) {
	var convo dbmysql.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN conversation_members m1 ON m1.conversation_id = conversations.id AND m1.user_id = ?", userID).
		Joins("JOIN conversation_members m2 ON m2.conversation_id = conversations.id AND m2.user_id = ?", otherUserID).
		First(&convo).Error
	if err != nil {
		return nil, err
	}
	return &convo, nil
}

func (r *chatRepo) GetConversation(ctx context.Context, conversationID string) (*dbmysql.Conversation, error) {
	var convo dbmysql.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", conversationID).First(&convo).Error
	if err != nil {
		return nil, err
	}
	return &convo, nil
}

func (r *chatRepo) Membership(ctx context.Context, conversationID, userID string) (*dbmysql.ConversationMember, error) {
	var member dbmysql.ConversationMember
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *chatRepo) Members(ctx context.Context, conversationID string) ([]*dbmysql.ConversationMember, error) {
	var members []*dbmysql.ConversationMember
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Find(&members).Error
	return members, err
}

// ListMemberships returns the user's non-archived memberships
func (r *chatRepo) ListMemberships(ctx context.Context, userID string) ([]*dbmysql.ConversationMember, error) {
	var members []*dbmysql.ConversationMember
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_archived = ?", userID, false).
		Find(&members).Error
	return members, err
}

// RemoveMember deletes the membership. When the last member leaves, the
// conversation and all its messages go with it — both or neither.
func (r *chatRepo) RemoveMember(ctx context.Context, conversationID, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ? AND user_id = ?", conversationID, userID).
			Delete(&dbmysql.ConversationMember{}).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&dbmysql.ConversationMember{}).
			Where("conversation_id = ?", conversationID).
			Count(&remaining).Error; err != nil {
			return err
		}

		if remaining == 0 {
			if err := tx.Where("conversation_id = ?", conversationID).
				Delete(&dbmysql.Message{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id = ?", conversationID).
				Delete(&dbmysql.Conversation{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveMessage inserts the message and bumps the conversation's last-activity
// timestamp in one transaction, so ordering never goes stale relative to the
// conversation's own messages.
func (r *chatRepo) SaveMessage(ctx context.Context, msg *dbmysql.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&dbmysql.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("last_activity_at", msg.CreatedAt).Error
	})
}

func (r *chatRepo) FetchHistory(ctx context.Context, conversationID string) ([]*dbmysql.Message, error) {
	var messages []*dbmysql.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

func (r *chatRepo) LatestMessage(ctx context.Context, conversationID string) (*dbmysql.Message, error) {
	var msg dbmysql.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *chatRepo) FindMessage(ctx context.Context, conversationID, messageID string) (*dbmysql.Message, error) {
	var msg dbmysql.Message
	err := r.db.WithContext(ctx).
		Where("id = ? AND conversation_id = ?", messageID, conversationID).
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *chatRepo) DeleteMessage(ctx context.Context, messageID string) error {
	return r.db.WithContext(ctx).Where("id = ?", messageID).Delete(&dbmysql.Message{}).Error
}

// SearchMessages runs a case-insensitive substring match over message content
// in the given conversations, newest first.
func (r *chatRepo) SearchMessages(ctx context.Context, conversationIDs []string, query string, limit int) ([]*dbmysql.Message, error) {
	if len(conversationIDs) == 0 {
		return nil, nil
	}
	pattern := "%" + strings.ToLower(query) + "%"
	var messages []*dbmysql.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id IN ?", conversationIDs).
		Where("LOWER(content) LIKE ?", pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}
