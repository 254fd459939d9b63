package chat

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"vibin/apperrors"
	"vibin/config"
	"vibin/models"
)

// Turn says who is expected to write next in a conversation.
type Turn string

const (
	YourTurn  Turn = "yourTurn"
	TheirTurn Turn = "theirTurn"
)

// Entry is one match together with its conversation's last message.
type Entry struct {
	Match       models.MatchWithProfile `json:"match"`
	LastMessage *models.Message         `json:"lastMessage,omitempty"`
}

// Turn applies the last-sender rule: if currentUserID sent last it is their
// turn, otherwise (including an empty conversation) it is ours.
func (e Entry) Turn(currentUserID string) Turn {
	if e.LastMessage != nil && e.LastMessage.SenderID == currentUserID {
		return TheirTurn
	}
	return YourTurn
}

type Buckets struct {
	YourTurn  []Entry `json:"yourTurn"`
	TheirTurn []Entry `json:"theirTurn"`
}

func (b Buckets) Len() int { return len(b.YourTurn) + len(b.TheirTurn) }

// Categorizer partitions matches into your-turn and their-turn buckets.
type Categorizer struct {
	fetcher *Fetcher
	log     zerolog.Logger

	// Concurrency caps in-flight history fetches; <= 0 means unbounded.
	Concurrency int
	// SortByRecency orders each bucket by last message, newest first. When
	// false the input order is kept.
	SortByRecency bool
}

func NewCategorizer(fetcher *Fetcher, cfg config.ChatConfig) *Categorizer {
	return &Categorizer{
		fetcher:       fetcher,
		log:           log.With().Str("component", "categorizer").Logger(),
		Concurrency:   cfg.CategorizeConcurrency,
		SortByRecency: cfg.SortByRecency,
	}
}

// Categorize fetches every match's last message concurrently and waits for
// all of them before partitioning. A failed or empty fetch counts as your
// turn.
func (c *Categorizer) Categorize(ctx context.Context, currentUserID string, matches []models.MatchWithProfile) (Buckets, error) {
	if strings.TrimSpace(currentUserID) == "" {
		return Buckets{}, apperrors.ErrInvalidParticipants
	}

	entries := make([]Entry, len(matches))
	var g errgroup.Group
	if c.Concurrency > 0 {
		g.SetLimit(c.Concurrency)
	}
	for i := range matches {
		i := i
		entries[i].Match = matches[i]
		g.Go(func() error {
			other := matches[i].OtherUser(currentUserID)
			last, err := c.fetcher.LastMessage(ctx, currentUserID, other)
			if err != nil {
				c.log.Warn().Err(err).Str("matchId", matches[i].MatchID).Msg("⚠️ Skipping last message lookup")
				return nil
			}
			entries[i].LastMessage = last
			return nil
		})
	}
	_ = g.Wait()

	buckets := Buckets{YourTurn: []Entry{}, TheirTurn: []Entry{}}
	for _, e := range entries {
		if e.Turn(currentUserID) == TheirTurn {
			buckets.TheirTurn = append(buckets.TheirTurn, e)
		} else {
			buckets.YourTurn = append(buckets.YourTurn, e)
		}
	}
	if c.SortByRecency {
		sortByRecency(buckets.YourTurn)
		sortByRecency(buckets.TheirTurn)
	}

	c.log.Info().Str("user", currentUserID).Int("yourTurn", len(buckets.YourTurn)).Int("theirTurn", len(buckets.TheirTurn)).Msg("✅ Inbox categorized")
	return buckets, nil
}

func sortByRecency(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].LastMessage, entries[j].LastMessage
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
}

// RefreshPolicy decides when Focus recomputes the inbox. A new match list
// always triggers a recompute; single conversation changes never do.
type RefreshPolicy struct {
	OnFocus      bool
	MaxStaleness time.Duration
}

// Inbox caches the categorization for one user.
type Inbox struct {
	categorizer *Categorizer
	current     string
	policy      RefreshPolicy
	now         func() time.Time

	mu         sync.Mutex
	matches    []models.MatchWithProfile
	buckets    Buckets
	computedAt time.Time
	generation uint64
	loaded     bool
}

func NewInbox(categorizer *Categorizer, currentUserID string, policy RefreshPolicy) *Inbox {
	return &Inbox{
		categorizer: categorizer,
		current:     currentUserID,
		policy:      policy,
		now:         time.Now,
		buckets:     Buckets{YourTurn: []Entry{}, TheirTurn: []Entry{}},
	}
}

// SetMatches replaces the match list and recomputes.
func (i *Inbox) SetMatches(ctx context.Context, matches []models.MatchWithProfile) (Buckets, error) {
	i.mu.Lock()
	i.matches = append([]models.MatchWithProfile(nil), matches...)
	i.loaded = true
	i.generation++
	i.mu.Unlock()

	return i.recompute(ctx)
}

// Focus is called when the inbox becomes visible.
func (i *Inbox) Focus(ctx context.Context) (Buckets, error) {
	i.mu.Lock()
	refresh := i.loaded && (i.policy.OnFocus ||
		(i.policy.MaxStaleness > 0 && i.now().Sub(i.computedAt) >= i.policy.MaxStaleness))
	buckets := i.buckets
	i.mu.Unlock()

	if !refresh {
		return buckets, nil
	}
	return i.recompute(ctx)
}

func (i *Inbox) Buckets() Buckets {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.buckets
}

func (i *Inbox) recompute(ctx context.Context) (Buckets, error) {
	i.mu.Lock()
	matches := i.matches
	gen := i.generation
	i.mu.Unlock()

	buckets, err := i.categorizer.Categorize(ctx, i.current, matches)
	if err != nil {
		return Buckets{}, err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	// A newer match list may have been set while this one was computing.
	if gen == i.generation {
		i.buckets = buckets
		i.computedAt = i.now()
	}
	return i.buckets, nil
}
