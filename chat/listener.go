package chat

import (
	"sync"

	"vibin/models"
)

type ListenerState int

const (
	Detached ListenerState = iota
	Attached
)

func (s ListenerState) String() string {
	if s == Attached {
		return "attached"
	}
	return "detached"
}

// Listener binds a handler to the live channel's newMessage event for the
// lifetime of an open conversation.
type Listener struct {
	mu      sync.Mutex
	live    LiveChannel
	handler MessageHandler
	state   ListenerState
	id      ListenerID
}

func NewListener(live LiveChannel, handler MessageHandler) *Listener {
	return &Listener{live: live, handler: handler}
}

// Attach registers the handler. Attaching twice is a no-op.
func (l *Listener) Attach() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == Attached || l.live == nil {
		return
	}
	l.id = l.live.On(models.EventNewMessage, l.deliver)
	l.state = Attached
}

// Detach deregisters the handler. No event is delivered after Detach returns.
func (l *Listener) Detach() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == Detached {
		return
	}
	l.live.Off(models.EventNewMessage, l.id)
	l.id = ""
	l.state = Detached
}

func (l *Listener) State() ListenerState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// deliver runs under the listener lock so that a concurrent Detach cannot
// return while an event is still being handed to a closed conversation.
func (l *Listener) deliver(msg models.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != Attached {
		return
	}
	l.handler(msg)
}
