package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"

	repomocks "whispr/internal/chat/repository/mocks"
	"whispr/internal/dbmysql"
	presmocks "whispr/internal/presence/mocks"
	usermocks "whispr/internal/user/mocks"
)

type serviceFixture struct {
	repo     *repomocks.MockChatRepository
	users    *usermocks.MockUserRepository
	presence *presmocks.MockStore
	svc      ChatService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	ctrl := gomock.NewController(t)
	repo := repomocks.NewMockChatRepository(ctrl)
	users := usermocks.NewMockUserRepository(ctrl)
	store := presmocks.NewMockStore(ctrl)
	return &serviceFixture{
		repo:     repo,
		users:    users,
		presence: store,
		svc:      NewChatService(repo, users, store),
	}
}

func testUser(id, email string) *dbmysql.User {
	name := "User " + id
	return &dbmysql.User{ID: id, Email: email, Name: &name}
}

func TestChatService_SendMessage(t *testing.T) {
	member := &dbmysql.ConversationMember{ConversationID: "chat-1", UserID: "alice"}

	tests := []struct {
		name      string
		content   string
		kind      string
		mockSetup func(f *serviceFixture)
		checkMsg  func(t *testing.T, msg *MessageView)
		wantErr   error
	}{
		{
			name:    "successful text send",
			content: "  hello there  ",
			kind:    "text",
			mockSetup: func(f *serviceFixture) {
				f.repo.EXPECT().Membership(gomock.Any(), "chat-1", "alice").Return(member, nil)
				f.repo.EXPECT().SaveMessage(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, msg *dbmysql.Message) error {
						assert.Equal(t, "hello there", msg.Content)
						assert.Equal(t, "text", msg.Kind)
						assert.Equal(t, "alice", msg.SenderID)
						assert.NotEmpty(t, msg.ID)
						assert.WithinDuration(t, time.Now().UTC(), msg.CreatedAt, time.Second)
						return nil
					})
				f.users.EXPECT().GetUserByID(gomock.Any(), "alice").Return(testUser("alice", "alice@x.com"), nil)
			},
			checkMsg: func(t *testing.T, msg *MessageView) {
				assert.Equal(t, "hello there", msg.Content)
				assert.Equal(t, "User alice", msg.SenderName)
			},
		},
		{
			name:    "unknown kind falls back to text",
			content: "hi",
			kind:    "sticker",
			mockSetup: func(f *serviceFixture) {
				f.repo.EXPECT().Membership(gomock.Any(), "chat-1", "alice").Return(member, nil)
				f.repo.EXPECT().SaveMessage(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, msg *dbmysql.Message) error {
						assert.Equal(t, "text", msg.Kind)
						return nil
					})
				f.users.EXPECT().GetUserByID(gomock.Any(), "alice").Return(testUser("alice", "alice@x.com"), nil)
			},
		},
		{
			name:    "whitespace-only content rejected",
			content: "   ",
			kind:    "text",
			mockSetup: func(f *serviceFixture) {
				f.repo.EXPECT().Membership(gomock.Any(), "chat-1", "alice").Return(member, nil)
			},
			wantErr: ErrEmptyContent,
		},
		{
			name:    "non-member collapses to chat not found",
			content: "hi",
			kind:    "text",
			mockSetup: func(f *serviceFixture) {
				f.repo.EXPECT().Membership(gomock.Any(), "chat-1", "alice").
					Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr: ErrChatNotFound,
		},
		{
			name:    "save failure propagates",
			content: "hi",
			kind:    "text",
			mockSetup: func(f *serviceFixture) {
				f.repo.EXPECT().Membership(gomock.Any(), "chat-1", "alice").Return(member, nil)
				f.repo.EXPECT().SaveMessage(gomock.Any(), gomock.Any()).
					Return(errors.New("deadlock"))
			},
			wantErr: errors.New("deadlock"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			tt.mockSetup(f)

			msg, err := f.svc.SendMessage(context.Background(), "alice", "chat-1", tt.content, tt.kind, "")

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				assert.Nil(t, msg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, msg)
			if tt.checkMsg != nil {
				tt.checkMsg(t, msg)
			}
		})
	}
}

func TestChatService_SendMessage_CallAttribution(t *testing.T) {
	member := &dbmysql.ConversationMember{ConversationID: "chat-1", UserID: "alice"}
	otherMember := &dbmysql.ConversationMember{ConversationID: "chat-1", UserID: "bob"}
	callContent := `{"type":"audio","direction":"incoming","status":"declined"}`

	t.Run("call log attributed to counterpart when they are a member", func(t *testing.T) {
		f := newServiceFixture(t)
		f.repo.EXPECT().Membership(gomock.Any(), "chat-1", "alice").Return(member, nil)
		f.repo.EXPECT().Membership(gomock.Any(), "chat-1", "bob").Return(otherMember, nil)
		f.repo.EXPECT().SaveMessage(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, msg *dbmysql.Message) error {
				assert.Equal(t, "bob", msg.SenderID)
				return nil
			})
		f.users.EXPECT().GetUserByID(gomock.Any(), "bob").Return(testUser("bob", "bob@x.com"), nil)

		msg, err := f.svc.SendMessage(context.Background(), "alice", "chat-1", callContent, "call", "bob")
		require.NoError(t, err)
		assert.Equal(t, "bob", msg.SenderID)
	})

	t.Run("attribution to a non-member falls back to the caller", func(t *testing.T) {
		f := newServiceFixture(t)
		f.repo.EXPECT().Membership(gomock.Any(), "chat-1", "alice").Return(member, nil)
		f.repo.EXPECT().Membership(gomock.Any(), "chat-1", "mallory").
			Return(nil, gorm.ErrRecordNotFound)
		f.repo.EXPECT().SaveMessage(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, msg *dbmysql.Message) error {
				assert.Equal(t, "alice", msg.SenderID)
				return nil
			})
		f.users.EXPECT().GetUserByID(gomock.Any(), "alice").Return(testUser("alice", "alice@x.com"), nil)

		msg, err := f.svc.SendMessage(context.Background(), "alice", "chat-1", callContent, "call", "mallory")
		require.NoError(t, err)
		assert.Equal(t, "alice", msg.SenderID)
	})

	t.Run("text messages never honor sender attribution", func(t *testing.T) {
		f := newServiceFixture(t)
		f.repo.EXPECT().Membership(gomock.Any(), "chat-1", "alice").Return(member, nil)
		f.repo.EXPECT().SaveMessage(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, msg *dbmysql.Message) error {
				assert.Equal(t, "alice", msg.SenderID)
				return nil
			})
		f.users.EXPECT().GetUserByID(gomock.Any(), "alice").Return(testUser("alice", "alice@x.com"), nil)

		_, err := f.svc.SendMessage(context.Background(), "alice", "chat-1", "hi", "text", "bob")
		require.NoError(t, err)
	})
}

func TestChatService_ListChats(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	seen := now.Add(-30 * time.Second)

	f := newServiceFixture(t)
	f.repo.EXPECT().ListMemberships(gomock.Any(), "alice").Return([]*dbmysql.ConversationMember{
		{ConversationID: "chat-1", UserID: "alice"},
		{ConversationID: "chat-2", UserID: "alice", IsArchived: true},
	}, nil)

	// chat-1: bob, recent message
	f.repo.EXPECT().GetConversation(gomock.Any(), "chat-1").
		Return(&dbmysql.Conversation{ID: "chat-1", LastActivityAt: now.Add(-time.Hour)}, nil)
	f.repo.EXPECT().Members(gomock.Any(), "chat-1").Return([]*dbmysql.ConversationMember{
		{ConversationID: "chat-1", UserID: "alice"},
		{ConversationID: "chat-1", UserID: "bob"},
	}, nil)
	f.users.EXPECT().GetUserByID(gomock.Any(), "bob").Return(testUser("bob", "bob@x.com"), nil)
	f.repo.EXPECT().LatestMessage(gomock.Any(), "chat-1").
		Return(&dbmysql.Message{ID: "m1", Content: "latest", CreatedAt: now}, nil)
	f.presence.EXPECT().LastSeen(gomock.Any(), "bob").Return(&seen, nil)

	// chat-2: carol, no messages, presence read fails
	f.repo.EXPECT().GetConversation(gomock.Any(), "chat-2").
		Return(&dbmysql.Conversation{ID: "chat-2", LastActivityAt: now.Add(-2 * time.Hour)}, nil)
	f.repo.EXPECT().Members(gomock.Any(), "chat-2").Return([]*dbmysql.ConversationMember{
		{ConversationID: "chat-2", UserID: "alice"},
		{ConversationID: "chat-2", UserID: "carol"},
	}, nil)
	f.users.EXPECT().GetUserByID(gomock.Any(), "carol").Return(testUser("carol", "carol@x.com"), nil)
	f.repo.EXPECT().LatestMessage(gomock.Any(), "chat-2").Return(nil, gorm.ErrRecordNotFound)
	f.presence.EXPECT().LastSeen(gomock.Any(), "carol").Return(nil, errors.New("redis down"))

	summaries, err := f.svc.ListChats(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// newest activity first
	assert.Equal(t, "chat-1", summaries[0].ID)
	assert.Equal(t, "bob", summaries[0].OtherUserID)
	assert.Equal(t, "User bob", summaries[0].Name)
	require.NotNil(t, summaries[0].Preview)
	assert.Equal(t, "latest", *summaries[0].Preview)
	assert.Equal(t, now, summaries[0].LastActivityAt)
	require.NotNil(t, summaries[0].LastSeenAt)
	assert.Equal(t, seen, *summaries[0].LastSeenAt)
	assert.False(t, summaries[0].IsArchived)

	// presence failure renders as unknown, never an error
	assert.Equal(t, "chat-2", summaries[1].ID)
	assert.Nil(t, summaries[1].Preview)
	assert.Nil(t, summaries[1].LastSeenAt)
	assert.True(t, summaries[1].IsArchived)
}

func TestChatService_CreateOrGetChat(t *testing.T) {
	t.Run("empty counterpart rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.svc.CreateOrGetChat(context.Background(), "alice", "")
		assert.ErrorIs(t, err, ErrBadCounterpart)
	})

	t.Run("self chat rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.svc.CreateOrGetChat(context.Background(), "alice", "alice")
		assert.ErrorIs(t, err, ErrBadCounterpart)
	})

	t.Run("unknown counterpart", func(t *testing.T) {
		f := newServiceFixture(t)
		f.users.EXPECT().GetUserByID(gomock.Any(), "ghost").Return(nil, gorm.ErrRecordNotFound)
		_, err := f.svc.CreateOrGetChat(context.Background(), "alice", "ghost")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("existing conversation reused", func(t *testing.T) {
		f := newServiceFixture(t)
		f.users.EXPECT().GetUserByID(gomock.Any(), "bob").Return(testUser("bob", "bob@x.com"), nil)
		f.repo.EXPECT().FindConversationWith(gomock.Any(), "alice", "bob").
			Return(&dbmysql.Conversation{ID: "chat-existing"}, nil)

		info, err := f.svc.CreateOrGetChat(context.Background(), "alice", "bob")
		require.NoError(t, err)
		assert.Equal(t, "chat-existing", info.ChatID)
		require.NotNil(t, info.OtherUser)
		assert.Equal(t, "bob", info.OtherUser.ID)
	})

	t.Run("new conversation created with both members", func(t *testing.T) {
		f := newServiceFixture(t)
		f.users.EXPECT().GetUserByID(gomock.Any(), "bob").Return(testUser("bob", "bob@x.com"), nil)
		f.repo.EXPECT().FindConversationWith(gomock.Any(), "alice", "bob").
			Return(nil, gorm.ErrRecordNotFound)
		f.repo.EXPECT().CreateConversation(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, convo *dbmysql.Conversation, members []*dbmysql.ConversationMember) error {
				assert.NotEmpty(t, convo.ID)
				require.Len(t, members, 2)
				assert.Equal(t, "alice", members[0].UserID)
				assert.Equal(t, "bob", members[1].UserID)
				return nil
			})

		info, err := f.svc.CreateOrGetChat(context.Background(), "alice", "bob")
		require.NoError(t, err)
		assert.NotEmpty(t, info.ChatID)
	})
}

func TestChatService_CounterpartLastSeen(t *testing.T) {
	member := &dbmysql.ConversationMember{ConversationID: "chat-1", UserID: "alice"}
	members := []*dbmysql.ConversationMember{
		{ConversationID: "chat-1", UserID: "alice"},
		{ConversationID: "chat-1", UserID: "bob"},
	}

	t.Run("store failure degrades to unknown", func(t *testing.T) {
		f := newServiceFixture(t)
		f.repo.EXPECT().Membership(gomock.Any(), "chat-1", "alice").Return(member, nil)
		f.repo.EXPECT().Members(gomock.Any(), "chat-1").Return(members, nil)
		f.users.EXPECT().GetUserByID(gomock.Any(), "bob").Return(testUser("bob", "bob@x.com"), nil)
		f.presence.EXPECT().LastSeen(gomock.Any(), "bob").Return(nil, errors.New("redis down"))

		lastSeen, err := f.svc.CounterpartLastSeen(context.Background(), "alice", "chat-1")
		assert.NoError(t, err)
		assert.Nil(t, lastSeen)
	})

	t.Run("resolved timestamp returned", func(t *testing.T) {
		seen := time.Date(2026, 3, 14, 11, 59, 0, 0, time.UTC)
		f := newServiceFixture(t)
		f.repo.EXPECT().Membership(gomock.Any(), "chat-1", "alice").Return(member, nil)
		f.repo.EXPECT().Members(gomock.Any(), "chat-1").Return(members, nil)
		f.users.EXPECT().GetUserByID(gomock.Any(), "bob").Return(testUser("bob", "bob@x.com"), nil)
		f.presence.EXPECT().LastSeen(gomock.Any(), "bob").Return(&seen, nil)

		lastSeen, err := f.svc.CounterpartLastSeen(context.Background(), "alice", "chat-1")
		require.NoError(t, err)
		require.NotNil(t, lastSeen)
		assert.Equal(t, seen, *lastSeen)
	})

	t.Run("outsider gets chat not found", func(t *testing.T) {
		f := newServiceFixture(t)
		f.repo.EXPECT().Membership(gomock.Any(), "chat-1", "mallory").
			Return(nil, gorm.ErrRecordNotFound)

		_, err := f.svc.CounterpartLastSeen(context.Background(), "mallory", "chat-1")
		assert.ErrorIs(t, err, ErrChatNotFound)
	})
}

func TestChatService_DeleteMessage(t *testing.T) {
	member := &dbmysql.ConversationMember{ConversationID: "chat-1", UserID: "alice"}

	t.Run("message gone", func(t *testing.T) {
		f := newServiceFixture(t)
		f.repo.EXPECT().Membership(gomock.Any(), "chat-1", "alice").Return(member, nil)
		f.repo.EXPECT().FindMessage(gomock.Any(), "chat-1", "m1").
			Return(nil, gorm.ErrRecordNotFound)

		err := f.svc.DeleteMessage(context.Background(), "alice", "chat-1", "m1")
		assert.ErrorIs(t, err, ErrMessageNotFound)
	})

	t.Run("successful delete", func(t *testing.T) {
		f := newServiceFixture(t)
		f.repo.EXPECT().Membership(gomock.Any(), "chat-1", "alice").Return(member, nil)
		f.repo.EXPECT().FindMessage(gomock.Any(), "chat-1", "m1").
			Return(&dbmysql.Message{ID: "m1"}, nil)
		f.repo.EXPECT().DeleteMessage(gomock.Any(), "m1").Return(nil)

		assert.NoError(t, f.svc.DeleteMessage(context.Background(), "alice", "chat-1", "m1"))
	})
}

func TestChatService_LeaveChat(t *testing.T) {
	t.Run("outsider gets chat not found", func(t *testing.T) {
		f := newServiceFixture(t)
		f.repo.EXPECT().Membership(gomock.Any(), "chat-1", "mallory").
			Return(nil, gorm.ErrRecordNotFound)

		err := f.svc.LeaveChat(context.Background(), "mallory", "chat-1")
		assert.ErrorIs(t, err, ErrChatNotFound)
	})

	t.Run("member removed", func(t *testing.T) {
		f := newServiceFixture(t)
		f.repo.EXPECT().Membership(gomock.Any(), "chat-1", "alice").
			Return(&dbmysql.ConversationMember{ConversationID: "chat-1", UserID: "alice"}, nil)
		f.repo.EXPECT().RemoveMember(gomock.Any(), "chat-1", "alice").Return(nil)

		assert.NoError(t, f.svc.LeaveChat(context.Background(), "alice", "chat-1"))
	})
}

func TestChatService_Search(t *testing.T) {
	t.Run("blank query short-circuits", func(t *testing.T) {
		f := newServiceFixture(t)
		results, err := f.svc.Search(context.Background(), "alice", "   ")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("results carry counterpart identity", func(t *testing.T) {
		now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
		f := newServiceFixture(t)
		f.repo.EXPECT().ListMemberships(gomock.Any(), "alice").Return([]*dbmysql.ConversationMember{
			{ConversationID: "chat-1", UserID: "alice"},
		}, nil)
		f.repo.EXPECT().SearchMessages(gomock.Any(), []string{"chat-1"}, "deploy", searchLimit).
			Return([]*dbmysql.Message{
				{ID: "m1", ConversationID: "chat-1", Content: "deploy done", CreatedAt: now},
				{ID: "m2", ConversationID: "chat-1", Content: "deploy started", CreatedAt: now.Add(-time.Minute)},
			}, nil)
		// counterpart resolved once per conversation
		f.repo.EXPECT().Members(gomock.Any(), "chat-1").Return([]*dbmysql.ConversationMember{
			{ConversationID: "chat-1", UserID: "alice"},
			{ConversationID: "chat-1", UserID: "bob"},
		}, nil)
		f.users.EXPECT().GetUserByID(gomock.Any(), "bob").Return(testUser("bob", "bob@x.com"), nil)

		results, err := f.svc.Search(context.Background(), "alice", " deploy ")
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "m1", results[0].MessageID)
		require.NotNil(t, results[0].ContactName)
		assert.Equal(t, "User bob", *results[0].ContactName)
	})
}
