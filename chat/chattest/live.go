package chattest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"vibin/chat"
	"vibin/models"
)

// Bus routes sendMessage emissions to the receiver's sessions as newMessage
// events, like the server hub does.
type Bus struct {
	mu       sync.Mutex
	sessions map[string][]*Session
}

func NewBus() *Bus {
	return &Bus{sessions: map[string][]*Session{}}
}

// Session opens a live channel for userID.
func (b *Bus) Session(userID string) *Session {
	s := &Session{bus: b, userID: userID, handlers: map[string]map[chat.ListenerID]chat.MessageHandler{}}
	b.mu.Lock()
	b.sessions[userID] = append(b.sessions[userID], s)
	b.mu.Unlock()
	return s
}

func (b *Bus) deliver(from *Session, msg models.Message) {
	b.mu.Lock()
	var targets []*Session
	targets = append(targets, b.sessions[msg.ReceiverID]...)
	for _, s := range b.sessions[msg.SenderID] {
		if s != from {
			targets = append(targets, s)
		}
	}
	b.mu.Unlock()

	for _, s := range targets {
		s.Dispatch(models.EventNewMessage, msg)
	}
}

// Session implements chat.LiveChannel.
type Session struct {
	bus    *Bus
	userID string

	mu       sync.Mutex
	handlers map[string]map[chat.ListenerID]chat.MessageHandler
	emitted  []models.Message
}

func (s *Session) On(event string, h chat.MessageHandler) chat.ListenerID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := chat.ListenerID(uuid.NewString())
	if s.handlers[event] == nil {
		s.handlers[event] = map[chat.ListenerID]chat.MessageHandler{}
	}
	s.handlers[event][id] = h
	return id
}

func (s *Session) Off(event string, id chat.ListenerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers[event], id)
}

func (s *Session) Emit(_ context.Context, event string, msg models.Message) error {
	s.mu.Lock()
	s.emitted = append(s.emitted, msg)
	s.mu.Unlock()

	if event == models.EventSendMessage && s.bus != nil {
		s.bus.deliver(s, msg)
	}
	return nil
}

// Dispatch invokes the handlers registered for event.
func (s *Session) Dispatch(event string, msg models.Message) {
	s.mu.Lock()
	handlers := make([]chat.MessageHandler, 0, len(s.handlers[event]))
	for _, h := range s.handlers[event] {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(msg)
	}
}

// Emitted returns everything emitted on this session.
func (s *Session) Emitted() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.emitted...)
}

// Handlers returns the number of handlers registered for event.
func (s *Session) Handlers(event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers[event])
}
