package chat

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vibin/models"
)

// Outcome is the result of a send attempt.
type Outcome int

const (
	// OutcomeSkipped means the preconditions did not hold and nothing was sent.
	OutcomeSkipped Outcome = iota
	// OutcomeSent means the store accepted the message.
	OutcomeSent
	// OutcomeFailed means the store rejected the message or was unreachable.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Composer validates and submits outgoing messages, then notifies the
// counterpart over the live channel.
type Composer struct {
	store MessageStore
	live  LiveChannel
	log   zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewComposer returns a composer. live may be nil, in which case nothing is
// emitted.
func NewComposer(store MessageStore, live LiveChannel) *Composer {
	return &Composer{
		store: store,
		live:  live,
		log:   log.With().Str("component", "composer").Logger(),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Draft builds the outgoing message with a fresh idempotency key.
func (c *Composer) Draft(currentUserID, otherUserID, body string) models.Message {
	return models.Message{
		ClientID:   c.newID(),
		SenderID:   currentUserID,
		ReceiverID: otherUserID,
		Body:       strings.TrimSpace(body),
		CreatedAt:  c.now().UTC(),
	}
}

// Send submits body from currentUserID to otherUserID. A blank body or a
// missing id is a silent no-op.
func (c *Composer) Send(ctx context.Context, currentUserID, otherUserID, body string) (models.Message, Outcome) {
	if !CanSend(currentUserID, otherUserID, body) {
		return models.Message{}, OutcomeSkipped
	}
	return c.Resend(ctx, c.Draft(currentUserID, otherUserID, body))
}

// Resend submits a previously drafted message, keeping its idempotency key.
func (c *Composer) Resend(ctx context.Context, msg models.Message) (models.Message, Outcome) {
	if !msg.Validate() {
		return models.Message{}, OutcomeSkipped
	}

	c.log.Info().Str("user", msg.SenderID).Str("peer", msg.ReceiverID).Str("clientId", msg.ClientID).Msg("📩 Sending message")
	stored, err := c.store.Send(ctx, msg)
	if err != nil {
		c.log.Error().Err(err).Str("user", msg.SenderID).Str("peer", msg.ReceiverID).Msg("❌ Failed to send message")
		return msg, OutcomeFailed
	}
	stored = mergeAck(msg, stored)

	if c.live != nil {
		if err := c.live.Emit(ctx, models.EventSendMessage, stored); err != nil {
			c.log.Warn().Err(err).Str("clientId", stored.ClientID).Msg("⚠️ Live emit failed, counterpart will see it on next fetch")
		}
	}
	return stored, OutcomeSent
}

// CanSend reports whether a send with these arguments would be attempted.
func CanSend(currentUserID, otherUserID, body string) bool {
	return checkParticipants(currentUserID, otherUserID) == nil &&
		currentUserID != otherUserID &&
		strings.TrimSpace(body) != ""
}

// mergeAck fills the fields a store ack may omit from the draft.
func mergeAck(draft, ack models.Message) models.Message {
	if ack.ClientID == "" {
		ack.ClientID = draft.ClientID
	}
	if ack.SenderID == "" {
		ack.SenderID = draft.SenderID
	}
	if ack.ReceiverID == "" {
		ack.ReceiverID = draft.ReceiverID
	}
	if ack.Body == "" {
		ack.Body = draft.Body
	}
	if ack.CreatedAt.IsZero() {
		ack.CreatedAt = draft.CreatedAt
	}
	return ack
}
