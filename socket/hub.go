// Package socket serves the live channel: a hub of per-user sessions fed by
// socket.io and plain WebSocket connections.
package socket

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vibin/models"
)

const sessionBuffer = 32

// Session is one connected client of a user.
type Session struct {
	ID     string
	UserID string
	Send   chan models.Message
}

// Hub routes messages to the sessions of their receiver and to the sender's
// other sessions. Delivery is best effort: a full session buffer drops the
// message for that session.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[string]*Session
	log      zerolog.Logger
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]map[string]*Session),
		log:      log.With().Str("component", "hub").Logger(),
	}
}

func (h *Hub) Subscribe(userID string) *Session {
	s := &Session{
		ID:     uuid.New().String(),
		UserID: userID,
		Send:   make(chan models.Message, sessionBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[userID] == nil {
		h.sessions[userID] = make(map[string]*Session)
	}
	h.sessions[userID][s.ID] = s
	h.log.Info().Str("user", userID).Str("session", s.ID).Msg("✅ Session connected")
	return s
}

// Unsubscribe removes s and closes its Send channel. Safe to call twice.
func (h *Hub) Unsubscribe(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	user := h.sessions[s.UserID]
	if _, ok := user[s.ID]; !ok {
		return
	}
	delete(user, s.ID)
	if len(user) == 0 {
		delete(h.sessions, s.UserID)
	}
	close(s.Send)
	h.log.Info().Str("user", s.UserID).Str("session", s.ID).Msg("❌ Session disconnected")
}

// Publish delivers msg and returns how many sessions received it. from is
// the originating session and never gets its own message back; it may be
// nil for server-originated messages.
func (h *Hub) Publish(from *Session, msg models.Message) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	deliver := func(s *Session) {
		if from != nil && s.ID == from.ID {
			return
		}
		select {
		case s.Send <- msg:
			delivered++
		default:
			h.log.Warn().Str("user", s.UserID).Str("session", s.ID).Msg("⚠️ Session buffer full, dropping message")
		}
	}

	for _, s := range h.sessions[msg.ReceiverID] {
		deliver(s)
	}
	for _, s := range h.sessions[msg.SenderID] {
		deliver(s)
	}
	h.log.Debug().Str("sender", msg.SenderID).Str("receiver", msg.ReceiverID).Int("count", delivered).Msg("📩 Message relayed")
	return delivered
}

// Sessions returns how many sessions userID has open.
func (h *Hub) Sessions(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

// relay validates an inbound sendMessage from s and publishes it.
func (h *Hub) relay(s *Session, msg models.Message) bool {
	if msg.SenderID != s.UserID {
		h.log.Warn().Str("user", s.UserID).Str("sender", msg.SenderID).Msg("⚠️ Rejected message sent on behalf of another user")
		return false
	}
	if !msg.Validate() {
		h.log.Warn().Str("user", s.UserID).Msg("⚠️ Rejected invalid message")
		return false
	}
	h.Publish(s, msg)
	return true
}
