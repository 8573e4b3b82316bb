package client

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// ErrNoSelection is returned by Send and Delete when no conversation is open
var ErrNoSelection = errors.New("no conversation selected")

// ConversationFetcher is the API slice the session pollers need
type ConversationFetcher interface {
	History(ctx context.Context, chatID string) ([]Message, error)
	SendMessage(ctx context.Context, chatID string, req SendRequest) (*Message, error)
	DeleteMessage(ctx context.Context, chatID, messageID string) error
	CounterpartLastSeen(ctx context.Context, chatID string) (*time.Time, error)
}

// Session runs the two pollers scoped to the currently open conversation:
// counterpart presence every PresenceInterval and the message history
// every MessageInterval. Selecting a conversation always tears the
// previous pollers down first, so at most one pair is ever live and a
// late response for an old chat can never land in the new one.
type Session struct {
	svc        ConversationFetcher
	onPresence func(chatID string, lastSeen *time.Time)
	onMessages func(chatID string, messages []Message)

	mu       sync.Mutex
	chatID   string
	epoch    uint64
	cancel   context.CancelFunc
	lastSeen *time.Time
	messages []Message
	wg       sync.WaitGroup
}

func NewSession(svc ConversationFetcher, onPresence func(string, *time.Time), onMessages func(string, []Message)) *Session {
	return &Session{
		svc:        svc,
		onPresence: onPresence,
		onMessages: onMessages,
	}
}

// Select opens a conversation: previous pollers are cancelled, local
// state is cleared, and both loops fetch immediately before settling
// into their intervals.
func (s *Session) Select(ctx context.Context, chatID string) {
	s.mu.Lock()
	s.teardownLocked()
	s.chatID = chatID
	s.epoch++
	epoch := s.epoch
	s.lastSeen = nil
	s.messages = nil
	pollCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(2)
	go s.pollPresence(pollCtx, chatID, epoch)
	go s.pollMessages(pollCtx, chatID, epoch)
}

// Deselect closes the current conversation and stops both pollers
func (s *Session) Deselect() {
	s.mu.Lock()
	s.teardownLocked()
	s.chatID = ""
	s.epoch++
	s.lastSeen = nil
	s.messages = nil
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Session) teardownLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// ChatID returns the currently selected conversation, or ""
func (s *Session) ChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatID
}

// LastSeen returns the counterpart's last reported presence. Nil before
// the first successful poll and after a never-online counterpart alike.
func (s *Session) LastSeen() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Messages returns a copy of the current history snapshot
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Send posts a message and appends the server's echo to the local
// history. Nothing is shown optimistically; on error the history is
// unchanged and the error is returned to the caller.
func (s *Session) Send(ctx context.Context, req SendRequest) (*Message, error) {
	s.mu.Lock()
	chatID := s.chatID
	epoch := s.epoch
	s.mu.Unlock()
	if chatID == "" {
		return nil, ErrNoSelection
	}

	msg, err := s.svc.SendMessage(ctx, chatID, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.epoch == epoch {
		s.messages = append(s.messages, *msg)
		snapshot := make([]Message, len(s.messages))
		copy(snapshot, s.messages)
		s.mu.Unlock()
		s.notifyMessages(chatID, snapshot)
		return msg, nil
	}
	s.mu.Unlock()
	return msg, nil
}

// Delete removes a message server-side, then drops it from the snapshot
func (s *Session) Delete(ctx context.Context, messageID string) error {
	s.mu.Lock()
	chatID := s.chatID
	epoch := s.epoch
	s.mu.Unlock()
	if chatID == "" {
		return ErrNoSelection
	}

	if err := s.svc.DeleteMessage(ctx, chatID, messageID); err != nil {
		return err
	}

	s.mu.Lock()
	if s.epoch == epoch {
		kept := s.messages[:0]
		for _, m := range s.messages {
			if m.ID != messageID {
				kept = append(kept, m)
			}
		}
		s.messages = kept
		snapshot := make([]Message, len(s.messages))
		copy(snapshot, s.messages)
		s.mu.Unlock()
		s.notifyMessages(chatID, snapshot)
		return nil
	}
	s.mu.Unlock()
	return nil
}

func (s *Session) pollPresence(ctx context.Context, chatID string, epoch uint64) {
	defer s.wg.Done()
	s.fetchPresence(ctx, chatID, epoch)

	ticker := time.NewTicker(PresenceInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fetchPresence(ctx, chatID, epoch)
		}
	}
}

// fetchPresence keeps the previous value when the call fails: a dropped
// poll must not flap the counterpart to "never seen".
func (s *Session) fetchPresence(ctx context.Context, chatID string, epoch uint64) {
	lastSeen, err := s.svc.CounterpartLastSeen(ctx, chatID)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("presence poll for %s failed: %v", chatID, err)
		}
		return
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	s.lastSeen = lastSeen
	s.mu.Unlock()

	if s.onPresence != nil {
		s.onPresence(chatID, lastSeen)
	}
}

func (s *Session) pollMessages(ctx context.Context, chatID string, epoch uint64) {
	defer s.wg.Done()
	s.fetchMessages(ctx, chatID, epoch)

	ticker := time.NewTicker(MessageInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fetchMessages(ctx, chatID, epoch)
		}
	}
}

// fetchMessages replaces the whole snapshot with the server's history.
// Full replacement keeps deletions and cross-device edits simple at the
// cost of payload size, which is fine for two-person chats.
func (s *Session) fetchMessages(ctx context.Context, chatID string, epoch uint64) {
	history, err := s.svc.History(ctx, chatID)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("message poll for %s failed: %v", chatID, err)
		}
		return
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	s.messages = history
	snapshot := make([]Message, len(history))
	copy(snapshot, history)
	s.mu.Unlock()

	s.notifyMessages(chatID, snapshot)
}

func (s *Session) notifyMessages(chatID string, messages []Message) {
	if s.onMessages != nil {
		s.onMessages(chatID, messages)
	}
}
