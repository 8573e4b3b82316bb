package client

import (
	"context"
	"log"
	"sync"
	"time"
)

// PresenceWriter is the single API call the heartbeat needs
type PresenceWriter interface {
	SetPresence(ctx context.Context, online bool) error
}

// Heartbeat keeps the server's view of this user fresh. While the client
// is active it reports online immediately and then on a fixed interval;
// on deactivation it stops the ticker and reports offline exactly once.
// Failed pings are logged and dropped: the next tick is the retry.
type Heartbeat struct {
	svc      PresenceWriter
	interval time.Duration

	mu         sync.Mutex
	active     bool
	tickCancel context.CancelFunc
	base       context.Context
	wg         sync.WaitGroup
}

func NewHeartbeat(svc PresenceWriter) *Heartbeat {
	return &Heartbeat{svc: svc, interval: HeartbeatInterval}
}

// Start records the base context and applies the initial activity state.
// The context governs every ping; cancelling it stops the heartbeat for
// good without an offline ping.
func (h *Heartbeat) Start(ctx context.Context, active bool) {
	h.mu.Lock()
	h.base = ctx
	h.mu.Unlock()
	h.SetActive(active)
}

// SetActive transitions the two-state machine. Repeating the current
// state is a no-op, so callers can feed it raw visibility events.
func (h *Heartbeat) SetActive(active bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.base == nil || active == h.active {
		return
	}
	h.active = active

	if active {
		tickCtx, cancel := context.WithCancel(h.base)
		h.tickCancel = cancel
		h.ping(h.base, true)
		h.wg.Add(1)
		go h.run(tickCtx)
		return
	}

	if h.tickCancel != nil {
		h.tickCancel()
		h.tickCancel = nil
	}
	// one offline ping, then silence until reactivated
	h.ping(h.base, false)
}

// Stop cancels the ticker without reporting offline. Presence then decays
// naturally on the server via the online threshold.
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	if h.tickCancel != nil {
		h.tickCancel()
		h.tickCancel = nil
	}
	h.active = false
	h.mu.Unlock()
	h.wg.Wait()
}

// Active reports the current state of the machine
func (h *Heartbeat) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

func (h *Heartbeat) run(ctx context.Context) {
	defer h.wg.Done()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.ping(ctx, true)
		}
	}
}

func (h *Heartbeat) ping(ctx context.Context, online bool) {
	if err := h.svc.SetPresence(ctx, online); err != nil {
		log.Printf("heartbeat: presence ping failed: %v", err)
	}
}
