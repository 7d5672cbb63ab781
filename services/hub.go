package services

import (
	"sync"
)

const sessionBuffer = 16

// Session is one live connection (one device/tab) subscribed to a user's
// channel. Notifications arrive on C; the transport drains it until the
// connection closes.
type Session struct {
	ExternalUserID string
	C              chan Notification
}

// Hub is the process-local connection registry: user id → set of live
// sessions. It implements Dispatcher. Sends are non-blocking — a session
// whose buffer is full misses the notification rather than stalling the
// reward engine.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Session]struct{}
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]map[*Session]struct{})}
}

// Subscribe registers a new session under the user's channel.
func (h *Hub) Subscribe(externalUserID string) *Session {
	s := &Session{
		ExternalUserID: externalUserID,
		C:              make(chan Notification, sessionBuffer),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[externalUserID]
	if !ok {
		set = make(map[*Session]struct{})
		h.sessions[externalUserID] = set
	}
	set[s] = struct{}{}
	return s
}

// Unsubscribe removes the session. Safe to call more than once.
func (h *Hub) Unsubscribe(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[s.ExternalUserID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.sessions, s.ExternalUserID)
	}
	close(s.C)
}

// Notify delivers n to every live session of the user. Sending to an absent
// subscriber is a no-op, not an error; slow sessions are skipped.
func (h *Hub) Notify(externalUserID string, n Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.sessions[externalUserID] {
		select {
		case s.C <- n:
		default:
			// buffer full — drop rather than block the caller
		}
	}
}

// SessionCount reports live sessions for a user (diagnostics).
func (h *Hub) SessionCount(externalUserID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[externalUserID])
}
