package chat

import (
	"sync"
	"time"

	"vibin/models"
)

// Feed is the rendered message list of one open conversation. Appends never
// reorder existing entries and duplicates of an already rendered message are
// dropped.
type Feed struct {
	mu        sync.RWMutex
	messages  []models.Message
	tolerance time.Duration
}

func NewFeed(tolerance time.Duration) *Feed {
	return &Feed{tolerance: tolerance}
}

// Append adds msg at the end unless it is already rendered. It reports
// whether the feed grew.
func (f *Feed) Append(msg models.Message) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.indexOf(f.messages, msg) >= 0 {
		return false
	}
	f.messages = append(f.messages, msg)
	return true
}

// Replace swaps the rendered list for history. Rendered messages the
// history does not contain yet are kept after it, in their rendered order.
func (f *Feed) Replace(history []models.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := make([]models.Message, 0, len(history)+len(f.messages))
	next = append(next, history...)
	for _, m := range f.messages {
		if f.indexOf(history, m) < 0 {
			next = append(next, m)
		}
	}
	f.messages = next
}

func (f *Feed) Messages() []models.Message {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]models.Message, len(f.messages))
	copy(out, f.messages)
	return out
}

func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.messages)
}

func (f *Feed) indexOf(list []models.Message, msg models.Message) int {
	for i := range list {
		if sameMessage(list[i], msg, f.tolerance) {
			return i
		}
	}
	return -1
}

// sameMessage compares by idempotency key, then store id, then by content
// within the tolerance window when neither side carries a comparable key.
func sameMessage(a, b models.Message, tolerance time.Duration) bool {
	if a.ClientID != "" && b.ClientID != "" {
		return a.ClientID == b.ClientID
	}
	if a.MessageID != "" && b.MessageID != "" {
		return a.MessageID == b.MessageID
	}
	if a.SenderID != b.SenderID || a.ReceiverID != b.ReceiverID || a.Body != b.Body {
		return false
	}
	d := a.CreatedAt.Sub(b.CreatedAt)
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}
