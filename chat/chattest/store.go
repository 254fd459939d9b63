// Package chattest provides in-memory message stores and live channels for
// tests.
package chattest

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"vibin/models"
)

var ErrUnavailable = errors.New("store unavailable")

// MemoryStore is a MessageStore backed by a map of pair key to messages.
type MemoryStore struct {
	mu            sync.Mutex
	conversations map[string][]models.Message
	seq           int
	now           func() time.Time

	// FailHistory / FailSend make the next calls fail until reset.
	FailHistory bool
	FailSend    bool

	historyCalls int
	sendCalls    int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: map[string][]models.Message{},
		now:           time.Now,
	}
}

// SetClock overrides the timestamps assigned to stored messages.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) History(_ context.Context, a, b string, since time.Time) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.historyCalls++
	if s.FailHistory {
		return nil, ErrUnavailable
	}
	var out []models.Message
	for _, m := range s.conversations[models.PairKey(a, b)] {
		if since.IsZero() || m.CreatedAt.After(since) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MemoryStore) Send(_ context.Context, msg models.Message) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sendCalls++
	if s.FailSend {
		return models.Message{}, ErrUnavailable
	}
	s.seq++
	msg.MessageID = "m" + strconv.Itoa(s.seq)
	msg.CreatedAt = s.now().UTC()
	key := models.PairKey(msg.SenderID, msg.ReceiverID)
	s.conversations[key] = append(s.conversations[key], msg)
	return msg, nil
}

// HistoryCalls returns how many times History was called.
func (s *MemoryStore) HistoryCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyCalls
}

// SendCalls returns how many times Send was called.
func (s *MemoryStore) SendCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendCalls
}

// SetFailures toggles failure injection while other goroutines may be using
// the store.
func (s *MemoryStore) SetFailures(history, send bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailHistory = history
	s.FailSend = send
}

// Seed stores messages as-is, sorted by CreatedAt within each pair.
func (s *MemoryStore) Seed(messages ...models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range messages {
		key := models.PairKey(m.SenderID, m.ReceiverID)
		s.conversations[key] = append(s.conversations[key], m)
		list := s.conversations[key]
		sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	}
}
