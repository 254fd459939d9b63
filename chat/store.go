// Package chat holds the client-side chat core: conversation history,
// sending, live reconciliation and the turn-based inbox.
//
// Every operation takes the current user's id explicitly; nothing in this
// package reads ambient session state.
package chat

import (
	"context"
	"time"

	"vibin/models"
)

// MessageStore persists messages keyed by an unordered user pair.
type MessageStore interface {
	// History returns the messages between a and b in store order. A non-zero
	// since restricts the result to messages created after it.
	History(ctx context.Context, a, b string, since time.Time) ([]models.Message, error)
	// Send appends msg and returns the stored copy. Stores may leave
	// MessageID empty.
	Send(ctx context.Context, msg models.Message) (models.Message, error)
}

// LastMessageStore is implemented by stores that can read the newest message
// of a pair without loading the whole history.
type LastMessageStore interface {
	LastMessage(ctx context.Context, a, b string) (*models.Message, error)
}

// MessageHandler receives live message events.
type MessageHandler func(models.Message)

// ListenerID identifies a handler registered with On.
type ListenerID string

// LiveChannel is the per-session event channel.
type LiveChannel interface {
	On(event string, h MessageHandler) ListenerID
	Off(event string, id ListenerID)
	Emit(ctx context.Context, event string, msg models.Message) error
}
