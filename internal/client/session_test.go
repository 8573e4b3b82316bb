package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConversation struct {
	mu        sync.Mutex
	histories map[string][]Message
	histErr   error
	lastSeen  *time.Time
	presErr   error
	sendErr   error
	deleteErr error
	sent      []SendRequest
}

func (f *fakeConversation) History(ctx context.Context, chatID string) ([]Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.histErr != nil {
		return nil, f.histErr
	}
	history := f.histories[chatID]
	out := make([]Message, len(history))
	copy(out, history)
	return out, nil
}

func (f *fakeConversation) SendMessage(ctx context.Context, chatID string, req SendRequest) (*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, req)
	return &Message{
		ID:        "srv-msg",
		Content:   req.Content,
		Kind:      req.Kind,
		CreatedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		SenderID:  "me",
	}, nil
}

func (f *fakeConversation) DeleteMessage(ctx context.Context, chatID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteErr
}

func (f *fakeConversation) CounterpartLastSeen(ctx context.Context, chatID string) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.presErr != nil {
		return nil, f.presErr
	}
	return f.lastSeen, nil
}

func (f *fakeConversation) set(fn func(*fakeConversation)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (s *Session) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

func newSessionFixture(t *testing.T) (*fakeConversation, *Session) {
	t.Helper()
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	seen := base.Add(-time.Minute)
	fake := &fakeConversation{
		histories: map[string][]Message{
			"chat-a": {msgAt("a1", "alice", "text", base)},
			"chat-b": {msgAt("b1", "bob", "text", base), msgAt("b2", "bob", "text", base.Add(time.Second))},
		},
		lastSeen: &seen,
	}
	return fake, NewSession(fake, nil, nil)
}

func TestSession_SelectFetchesImmediately(t *testing.T) {
	_, s := newSessionFixture(t)
	defer s.Deselect()

	s.Select(context.Background(), "chat-a")

	assert.Eventually(t, func() bool {
		return len(s.Messages()) == 1 && s.LastSeen() != nil
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "chat-a", s.ChatID())
}

func TestSession_SelectReplacesPreviousConversation(t *testing.T) {
	_, s := newSessionFixture(t)
	defer s.Deselect()

	s.Select(context.Background(), "chat-a")
	require.Eventually(t, func() bool {
		return len(s.Messages()) == 1
	}, time.Second, 10*time.Millisecond)

	s.Select(context.Background(), "chat-b")
	require.Eventually(t, func() bool {
		return len(s.Messages()) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "chat-b", s.ChatID())
}

func TestSession_StaleFetchIsDropped(t *testing.T) {
	_, s := newSessionFixture(t)
	defer s.Deselect()

	s.Select(context.Background(), "chat-a")
	require.Eventually(t, func() bool {
		return len(s.Messages()) == 1
	}, time.Second, 10*time.Millisecond)
	staleEpoch := s.currentEpoch()

	s.Select(context.Background(), "chat-b")
	require.Eventually(t, func() bool {
		return len(s.Messages()) == 2
	}, time.Second, 10*time.Millisecond)

	// a late response for the old conversation must not land in the new one
	s.fetchMessages(context.Background(), "chat-a", staleEpoch)
	messages := s.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "b1", messages[0].ID)
}

func TestSession_PresenceFailureKeepsPreviousValue(t *testing.T) {
	fake, s := newSessionFixture(t)
	defer s.Deselect()

	s.Select(context.Background(), "chat-a")
	require.Eventually(t, func() bool {
		return s.LastSeen() != nil
	}, time.Second, 10*time.Millisecond)
	before := *s.LastSeen()

	fake.set(func(f *fakeConversation) { f.presErr = errors.New("timeout") })
	s.fetchPresence(context.Background(), "chat-a", s.currentEpoch())

	require.NotNil(t, s.LastSeen())
	assert.Equal(t, before, *s.LastSeen())
}

func TestSession_PresenceNilOnSuccessIsApplied(t *testing.T) {
	fake, s := newSessionFixture(t)
	defer s.Deselect()

	s.Select(context.Background(), "chat-a")
	require.Eventually(t, func() bool {
		return s.LastSeen() != nil
	}, time.Second, 10*time.Millisecond)

	// a successful poll reporting "never observed" is real data, not a failure
	fake.set(func(f *fakeConversation) { f.lastSeen = nil })
	s.fetchPresence(context.Background(), "chat-a", s.currentEpoch())

	assert.Nil(t, s.LastSeen())
}

func TestSession_SendAppendsAfterAck(t *testing.T) {
	fake, s := newSessionFixture(t)
	defer s.Deselect()

	s.Select(context.Background(), "chat-a")
	require.Eventually(t, func() bool {
		return len(s.Messages()) == 1
	}, time.Second, 10*time.Millisecond)

	msg, err := s.Send(context.Background(), SendRequest{Content: "hi", Kind: "text"})
	require.NoError(t, err)
	assert.Equal(t, "srv-msg", msg.ID)

	messages := s.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "srv-msg", messages[1].ID)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.sent, 1)
	assert.Equal(t, "hi", fake.sent[0].Content)
}

func TestSession_SendFailureLeavesHistoryUntouched(t *testing.T) {
	fake, s := newSessionFixture(t)
	defer s.Deselect()

	s.Select(context.Background(), "chat-a")
	require.Eventually(t, func() bool {
		return len(s.Messages()) == 1
	}, time.Second, 10*time.Millisecond)

	fake.set(func(f *fakeConversation) { f.sendErr = errors.New("503") })
	_, err := s.Send(context.Background(), SendRequest{Content: "hi", Kind: "text"})

	require.Error(t, err)
	assert.Len(t, s.Messages(), 1)
}

func TestSession_SendWithoutSelection(t *testing.T) {
	_, s := newSessionFixture(t)

	_, err := s.Send(context.Background(), SendRequest{Content: "hi", Kind: "text"})
	assert.ErrorIs(t, err, ErrNoSelection)

	err = s.Delete(context.Background(), "m1")
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestSession_DeleteRemovesFromSnapshot(t *testing.T) {
	_, s := newSessionFixture(t)
	defer s.Deselect()

	s.Select(context.Background(), "chat-b")
	require.Eventually(t, func() bool {
		return len(s.Messages()) == 2
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Delete(context.Background(), "b1"))

	messages := s.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "b2", messages[0].ID)
}

func TestSession_DeselectClearsState(t *testing.T) {
	_, s := newSessionFixture(t)

	s.Select(context.Background(), "chat-a")
	require.Eventually(t, func() bool {
		return len(s.Messages()) == 1
	}, time.Second, 10*time.Millisecond)

	s.Deselect()

	assert.Empty(t, s.ChatID())
	assert.Nil(t, s.LastSeen())
	assert.Empty(t, s.Messages())
}
