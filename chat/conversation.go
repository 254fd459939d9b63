package chat

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vibin/config"
	"vibin/models"
)

// Messenger wires the fetcher, composer and live channel together and opens
// conversations.
type Messenger struct {
	Fetcher  *Fetcher
	Composer *Composer
	Live     LiveChannel

	// ReconcileDelay is how long after a send the history is re-fetched.
	ReconcileDelay time.Duration
	// DedupeTolerance bounds the timestamp skew for content-based dedupe.
	DedupeTolerance time.Duration
}

func NewMessenger(store MessageStore, live LiveChannel, cfg config.ChatConfig) *Messenger {
	return &Messenger{
		Fetcher:         NewFetcher(store),
		Composer:        NewComposer(store, live),
		Live:            live,
		ReconcileDelay:  cfg.ReconcileDelay,
		DedupeTolerance: cfg.DedupeTolerance,
	}
}

// Open attaches a listener for the pair and loads the full history.
func (m *Messenger) Open(ctx context.Context, currentUserID, otherUserID string) (*Conversation, error) {
	if err := checkParticipants(currentUserID, otherUserID); err != nil {
		return nil, err
	}

	c := &Conversation{
		current:  currentUserID,
		other:    otherUserID,
		m:        m,
		feed:     NewFeed(m.DedupeTolerance),
		changes:  make(chan struct{}, 1),
		log:      log.With().Str("component", "conversation").Str("user", currentUserID).Str("peer", otherUserID).Logger(),
		inflight: map[*time.Timer]struct{}{},
	}
	c.listener = NewListener(m.Live, c.onLive)

	// Attach before fetching so nothing sent in between is missed; the feed
	// drops the overlap.
	c.listener.Attach()
	c.Refresh(ctx)
	return c, nil
}

// Conversation is the state of one open conversation screen.
type Conversation struct {
	current, other string
	m              *Messenger
	feed           *Feed
	listener       *Listener
	changes        chan struct{}
	log            zerolog.Logger

	mu       sync.Mutex
	draft    string
	pending  *models.Message
	closed   bool
	inflight map[*time.Timer]struct{}
}

func (c *Conversation) Messages() []models.Message { return c.feed.Messages() }

// Changes signals (coalesced) whenever the rendered list changes.
func (c *Conversation) Changes() <-chan struct{} { return c.changes }

func (c *Conversation) ListenerState() ListenerState { return c.listener.State() }

func (c *Conversation) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Conversation) SetDraft(body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = body
}

// Pending returns the message of the last failed send, if any.
func (c *Conversation) Pending() *models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil
	}
	p := *c.pending
	return &p
}

// Send submits the current draft. The draft is cleared before the network
// call and restored if the store rejects the message.
func (c *Conversation) Send(ctx context.Context) Outcome {
	c.mu.Lock()
	if c.closed || !CanSend(c.current, c.other, c.draft) {
		c.mu.Unlock()
		return OutcomeSkipped
	}
	msg := c.m.Composer.Draft(c.current, c.other, c.draft)
	c.draft = ""
	c.mu.Unlock()

	return c.submit(ctx, msg)
}

// Retry resends the pending message with its original idempotency key.
func (c *Conversation) Retry(ctx context.Context) Outcome {
	c.mu.Lock()
	if c.closed || c.pending == nil {
		c.mu.Unlock()
		return OutcomeSkipped
	}
	msg := *c.pending
	if c.draft == msg.Body {
		c.draft = ""
	}
	c.mu.Unlock()

	return c.submit(ctx, msg)
}

func (c *Conversation) submit(ctx context.Context, msg models.Message) Outcome {
	stored, outcome := c.m.Composer.Resend(ctx, msg)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch outcome {
	case OutcomeFailed:
		c.pending = &msg
		if c.draft == "" {
			c.draft = msg.Body
		}
		c.log.Warn().Str("clientId", msg.ClientID).Msg("⚠️ Draft restored after failed send")
	case OutcomeSent:
		if c.pending != nil && c.pending.ClientID == msg.ClientID {
			c.pending = nil
		}
		if !c.closed {
			if c.feed.Append(stored) {
				c.notify()
			}
			c.scheduleReconcile()
		}
	}
	return outcome
}

// scheduleReconcile must be called with c.mu held.
func (c *Conversation) scheduleReconcile() {
	var t *time.Timer
	t = time.AfterFunc(c.m.ReconcileDelay, func() {
		c.mu.Lock()
		delete(c.inflight, t)
		c.mu.Unlock()
		c.Refresh(context.Background())
	})
	c.inflight[t] = struct{}{}
}

// Refresh re-fetches the full history and reconciles the rendered list. A
// fetch that completes after Close is dropped.
func (c *Conversation) Refresh(ctx context.Context) {
	history, err := c.m.Fetcher.FetchHistory(ctx, c.current, c.other)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.log.Debug().Msg("conversation closed, dropping fetched history")
		return
	}
	c.feed.Replace(history)
	c.notify()
}

func (c *Conversation) onLive(msg models.Message) {
	if !msg.Between(c.current, c.other) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.feed.Append(msg) {
		c.log.Debug().Str("sender", msg.SenderID).Msg("📩 Live message appended")
		c.notify()
	}
}

// notify must be called with c.mu held.
func (c *Conversation) notify() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

// Close detaches the listener and cancels pending reconciliations.
func (c *Conversation) Close() {
	c.listener.Detach()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for t := range c.inflight {
		t.Stop()
	}
	c.inflight = nil
}
