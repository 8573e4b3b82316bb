package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"whispr/internal/chat/repository"
	"whispr/internal/common"
	"whispr/internal/dbmysql"
	"whispr/internal/presence"
	"whispr/internal/user"
)

var (
	ErrChatNotFound    = errors.New("chat not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrEmptyContent    = errors.New("content required")
	ErrBadCounterpart  = errors.New("otherUserId required and must differ from current user")
	ErrMessageNotFound = errors.New("message not found")
)

// ChatSummary is one entry of the conversation list, shaped for the poller
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
}

// MessageView is a message joined with its sender's display identity
type MessageView struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Kind        string    `json:"type"`
	CreatedAt   time.Time `json:"createdAt"`
	SenderID    string    `json:"senderId"`
	SenderName  string    `json:"senderName"`
	SenderImage *string   `json:"senderImage"`
}

// ChatInfo is the find-or-create result for a conversation by counterpart
type ChatInfo struct {
	ChatID    string       `json:"chatId"`
	OtherUser *ContactInfo `json:"otherUser"`
}

type ContactInfo struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatarUrl"`
}

// SearchResult is one global search hit with counterpart identity attached
type SearchResult struct {
	MessageID    string    `json:"messageId"`
	ChatID       string    `json:"chatId"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
	ContactName  *string   `json:"contactName"`
	ContactImage *string   `json:"contactImage"`
}

const searchLimit = 80

// ChatService defines the interface exposed to the handler layer
type ChatService interface {
	ListChats(ctx context.Context, userID string) ([]*ChatSummary, error)
	CreateOrGetChat(ctx context.Context, userID, otherUserID string) (*ChatInfo, error)
	LeaveChat(ctx context.Context, userID, chatID string) error
	History(ctx context.Context, userID, chatID string) ([]*MessageView, error)
	SendMessage(ctx context.Context, userID, chatID, content, kind, callSenderID string) (*MessageView, error)
	DeleteMessage(ctx context.Context, userID, chatID, messageID string) error
	CounterpartLastSeen(ctx context.Context, userID, chatID string) (*time.Time, error)
	Search(ctx context.Context, userID, query string) ([]*SearchResult, error)
}

type chatService struct {
	repo     repository.ChatRepository
	users    user.UserRepository
	presence presence.Store
}

// Constructor used in DI/wire
func NewChatService(repo repository.ChatRepository, users user.UserRepository, store presence.Store) ChatService {
	return &chatService{repo: repo, users: users, presence: store}
}

// ListChats returns the caller's non-archived conversations with counterpart
// identity, latest-message preview and the counterpart's last-seen where the
// presence store can resolve it. Presence read failures degrade to null.
func (s *chatService) ListChats(ctx context.Context, userID string) ([]*ChatSummary, error) {
	memberships, err := s.repo.ListMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]*ChatSummary, 0, len(memberships))
	for _, m := range memberships {
		convo, err := s.repo.GetConversation(ctx, m.ConversationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}

		other, err := s.counterpart(ctx, m.ConversationID, userID)
		if err != nil {
			continue
		}

		summary := &ChatSummary{
			ID:             convo.ID,
			OtherUserID:    other.ID,
			Name:           other.DisplayName(),
			Email:          other.Email,
			AvatarURL:      other.Image,
			LastActivityAt: convo.LastActivityAt,
			IsArchived:     m.IsArchived,
		}

		if last, err := s.repo.LatestMessage(ctx, m.ConversationID); err == nil && last != nil {
			preview := last.Content
			summary.Preview = &preview
			summary.LastActivityAt = last.CreatedAt
		}

		// Presence is an approximation; a failed read renders as unknown,
		// never as an error.
		if lastSeen, err := s.presence.LastSeen(ctx, other.ID); err == nil {
			summary.LastSeenAt = lastSeen
		}

		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastActivityAt.After(summaries[j].LastActivityAt)
	})
	return summaries, nil
}

// CreateOrGetChat finds the conversation shared with otherUserID or lazily
// creates one with exactly two members.
func (s *chatService) CreateOrGetChat(ctx context.Context, userID, otherUserID string) (*ChatInfo, error) {
	if otherUserID == "" || otherUserID == userID {
		return nil, ErrBadCounterpart
	}

	other, err := s.users.GetUserByID(ctx, otherUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	info := &ChatInfo{
		OtherUser: &ContactInfo{
			ID:        other.ID,
			Name:      other.DisplayName(),
			Email:     other.Email,
			AvatarURL: other.Image,
		},
	}

	existing, err := s.repo.FindConversationWith(ctx, userID, otherUserID)
	if err == nil {
		info.ChatID = existing.ID
		return info, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	convo := &dbmysql.Conversation{
		ID:             uuid.NewString(),
		LastActivityAt: time.Now().UTC(),
	}
	members := []*dbmysql.ConversationMember{
		{ConversationID: convo.ID, UserID: userID},
		{ConversationID: convo.ID, UserID: otherUserID},
	}
	if err := s.repo.CreateConversation(ctx, convo, members); err != nil {
		return nil, err
	}

	info.ChatID = convo.ID
	return info, nil
}

// LeaveChat removes the caller's membership; when the last member leaves the
// conversation and its messages are deleted together.
func (s *chatService) LeaveChat(ctx context.Context, userID, chatID string) error {
	if _, err := s.membershipOr404(ctx, chatID, userID); err != nil {
		return err
	}
	return s.repo.RemoveMember(ctx, chatID, userID)
}

func (s *chatService) History(ctx context.Context, userID, chatID string) ([]*MessageView, error) {
	if _, err := s.membershipOr404(ctx, chatID, userID); err != nil {
		return nil, err
	}

	messages, err := s.repo.FetchHistory(ctx, chatID)
	if err != nil {
		return nil, err
	}

	views := make([]*MessageView, 0, len(messages))
	senders := map[string]*dbmysql.User{}
	for _, msg := range messages {
		sender, ok := senders[msg.SenderID]
		if !ok {
			sender, _ = s.users.GetUserByID(ctx, msg.SenderID)
			senders[msg.SenderID] = sender
		}
		views = append(views, newMessageView(msg, sender))
	}
	return views, nil
}

// SendMessage validates and persists a message. For call-log entries the
// sender may be attributed to the counterpart (membership-checked) so a
// declined incoming call lands on the right side of the history.
func (s *chatService) SendMessage(ctx context.Context, userID, chatID, content, kind, callSenderID string) (*MessageView, error) {
	if _, err := s.membershipOr404(ctx, chatID, userID); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	msgKind := common.NormalizeKind(kind)

	senderID := userID
	if msgKind == common.KindCall && callSenderID != "" {
		if _, err := s.repo.Membership(ctx, chatID, callSenderID); err == nil {
			senderID = callSenderID
		}
	}

	msg := &dbmysql.Message{
		ID:             uuid.NewString(),
		ConversationID: chatID,
		SenderID:       senderID,
		Content:        content,
		Kind:           msgKind.String(),
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}

	sender, err := s.users.GetUserByID(ctx, senderID)
	if err != nil {
		log.Printf("send message: sender %s lookup failed: %v", senderID, err)
	}
	return newMessageView(msg, sender), nil
}

func (s *chatService) DeleteMessage(ctx context.Context, userID, chatID, messageID string) error {
	if _, err := s.membershipOr404(ctx, chatID, userID); err != nil {
		return err
	}

	if _, err := s.repo.FindMessage(ctx, chatID, messageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	return s.repo.DeleteMessage(ctx, messageID)
}

// CounterpartLastSeen resolves the other member's last-seen timestamp for the
// per-conversation presence poll. A nil result means "never observed online".
func (s *chatService) CounterpartLastSeen(ctx context.Context, userID, chatID string) (*time.Time, error) {
	if _, err := s.membershipOr404(ctx, chatID, userID); err != nil {
		return nil, err
	}

	other, err := s.counterpart(ctx, chatID, userID)
	if err != nil {
		return nil, ErrChatNotFound
	}

	lastSeen, err := s.presence.LastSeen(ctx, other.ID)
	if err != nil {
		// unknown, not an error
		return nil, nil
	}
	return lastSeen, nil
}

// Search matches the query case-insensitively against message content across
// the caller's non-archived conversations, newest first.
func (s *chatService) Search(ctx context.Context, userID, query string) ([]*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*SearchResult{}, nil
	}

	memberships, err := s.repo.ListMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}
	chatIDs := make([]string, 0, len(memberships))
	for _, m := range memberships {
		chatIDs = append(chatIDs, m.ConversationID)
	}

	messages, err := s.repo.SearchMessages(ctx, chatIDs, query, searchLimit)
	if err != nil {
		return nil, err
	}

	contacts := map[string]*dbmysql.User{}
	results := make([]*SearchResult, 0, len(messages))
	for _, msg := range messages {
		contact, ok := contacts[msg.ConversationID]
		if !ok {
			contact, _ = s.counterpart(ctx, msg.ConversationID, userID)
			contacts[msg.ConversationID] = contact
		}

		result := &SearchResult{
			MessageID: msg.ID,
			ChatID:    msg.ConversationID,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		}
		if contact != nil {
			name := contact.DisplayName()
			result.ContactName = &name
			result.ContactImage = contact.Image
		}
		results = append(results, result)
	}
	return results, nil
}

// counterpart returns the other member's user record
func (s *chatService) counterpart(ctx context.Context, chatID, userID string) (*dbmysql.User, error) {
	members, err := s.repo.Members(ctx, chatID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.UserID != userID {
			return s.users.GetUserByID(ctx, m.UserID)
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// membershipOr404 collapses "no such chat" and "not a member" into the same
// not-found error so outsiders can't probe for conversation existence.
func (s *chatService) membershipOr404(ctx context.Context, chatID, userID string) (*dbmysql.ConversationMember, error) {
	member, err := s.repo.Membership(ctx, chatID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return member, nil
}

func newMessageView(msg *dbmysql.Message, sender *dbmysql.User) *MessageView {
	view := &MessageView{
		ID:         msg.ID,
		Content:    msg.Content,
		Kind:       msg.Kind,
		CreatedAt:  msg.CreatedAt,
		SenderID:   msg.SenderID,
		SenderName: "Unknown",
	}
	if sender != nil {
		view.SenderName = sender.DisplayName()
		view.SenderImage = sender.Image
	}
	return view
}
