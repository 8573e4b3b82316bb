package client

import (
	"context"
	"log"
	"sync"
	"time"
)

// ChatLister is the read half of the list poller
type ChatLister interface {
	ListChats(ctx context.Context) ([]ChatSummary, error)
}

// ChatListPoller refreshes the conversation list on a fixed interval and
// reconciles each fetch with flags the user flipped locally in between.
// A failed fetch leaves the current list untouched.
type ChatListPoller struct {
	svc      ChatLister
	interval time.Duration
	onUpdate func([]ChatSummary)

	mu     sync.Mutex
	items  []ChatSummary
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewChatListPoller builds a poller; onUpdate may be nil and is invoked
// after every applied refresh or local mutation.
func NewChatListPoller(svc ChatLister, onUpdate func([]ChatSummary)) *ChatListPoller {
	return &ChatListPoller{
		svc:      svc,
		interval: ChatListInterval,
		onUpdate: onUpdate,
	}
}

// Start fetches once immediately, then keeps polling until ctx is
// cancelled or Stop is called.
func (p *ChatListPoller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.pollOnce(pollCtx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				p.pollOnce(pollCtx)
			}
		}
	}()
}

func (p *ChatListPoller) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// Items returns a copy of the current list
func (p *ChatListPoller) Items() []ChatSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ChatSummary, len(p.items))
	copy(out, p.items)
	return out
}

// Refresh applies one fetch outside the ticker, e.g. after sending the
// first message of a new conversation.
func (p *ChatListPoller) Refresh(ctx context.Context) {
	p.pollOnce(ctx)
}

func (p *ChatListPoller) pollOnce(ctx context.Context) {
	fetched, err := p.svc.ListChats(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("chat list refresh failed: %v", err)
		}
		return
	}

	p.mu.Lock()
	p.items = MergeChatLists(p.items, fetched)
	snapshot := make([]ChatSummary, len(p.items))
	copy(snapshot, p.items)
	p.mu.Unlock()

	p.notify(snapshot)
}

// SetUnread flips the local unread marker on one conversation. Marking a
// chat unread pulls it out of the archive, since an archived chat would
// hide the badge.
func (p *ChatListPoller) SetUnread(chatID string, unread bool) {
	p.mutate(chatID, func(c *ChatSummary) {
		c.IsUnread = unread
		if unread {
			c.IsArchived = false
		}
	})
}

// SetArchived flips the local archived marker on one conversation.
// Archiving clears the unread badge.
func (p *ChatListPoller) SetArchived(chatID string, archived bool) {
	p.mutate(chatID, func(c *ChatSummary) {
		c.IsArchived = archived
		if archived {
			c.IsUnread = false
		}
	})
}

// ToggleMute flips notification muting; muting never leaves the client
func (p *ChatListPoller) ToggleMute(chatID string) {
	p.mutate(chatID, func(c *ChatSummary) { c.IsMuted = !c.IsMuted })
}

// Remove drops a conversation locally after the server confirmed leaving
func (p *ChatListPoller) Remove(chatID string) {
	p.mu.Lock()
	kept := p.items[:0]
	for _, c := range p.items {
		if c.ID != chatID {
			kept = append(kept, c)
		}
	}
	p.items = kept
	snapshot := make([]ChatSummary, len(p.items))
	copy(snapshot, p.items)
	p.mu.Unlock()
	p.notify(snapshot)
}

// UpdateLastSeen patches one entry's presence from the conversation
// poller, which runs on a faster cadence than the list fetch.
func (p *ChatListPoller) UpdateLastSeen(chatID string, lastSeen *time.Time) {
	p.mutate(chatID, func(c *ChatSummary) { c.LastSeenAt = lastSeen })
}

func (p *ChatListPoller) mutate(chatID string, fn func(*ChatSummary)) {
	p.mu.Lock()
	changed := false
	for i := range p.items {
		if p.items[i].ID == chatID {
			fn(&p.items[i])
			changed = true
			break
		}
	}
	var snapshot []ChatSummary
	if changed {
		snapshot = make([]ChatSummary, len(p.items))
		copy(snapshot, p.items)
	}
	p.mu.Unlock()
	if changed {
		p.notify(snapshot)
	}
}

func (p *ChatListPoller) notify(items []ChatSummary) {
	if p.onUpdate != nil {
		p.onUpdate(items)
	}
}

// MergeChatLists reconciles a fresh fetch with the list currently shown.
// Fetched entries win on content and ordering, but the unread and
// archived flags merge as a logical OR with the local copy so a flag the
// user just flipped is never lost to a racing response. Muting is local
// state and carries over untouched. Conversations archived locally that
// the fetch no longer returns are re-appended rather than dropped.
func MergeChatLists(local, fetched []ChatSummary) []ChatSummary {
	prev := make(map[string]ChatSummary, len(local))
	for _, c := range local {
		prev[c.ID] = c
	}

	merged := make([]ChatSummary, 0, len(fetched))
	seen := make(map[string]bool, len(fetched))
	for _, c := range fetched {
		if old, ok := prev[c.ID]; ok {
			c.IsUnread = c.IsUnread || old.IsUnread
			c.IsArchived = c.IsArchived || old.IsArchived
			c.IsMuted = old.IsMuted
		}
		merged = append(merged, c)
		seen[c.ID] = true
	}

	for _, c := range local {
		if c.IsArchived && !seen[c.ID] {
			merged = append(merged, c)
		}
	}
	return merged
}
