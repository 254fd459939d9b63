package chat

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vibin/apperrors"
	"vibin/models"
)

// Fetcher retrieves conversation history. Transport failures are logged and
// degrade to an empty history.
type Fetcher struct {
	store MessageStore
	log   zerolog.Logger
}

func NewFetcher(store MessageStore) *Fetcher {
	return &Fetcher{
		store: store,
		log:   log.With().Str("component", "fetcher").Logger(),
	}
}

// FetchHistory returns every message between currentUserID and otherUserID.
func (f *Fetcher) FetchHistory(ctx context.Context, currentUserID, otherUserID string) ([]models.Message, error) {
	return f.FetchSince(ctx, currentUserID, otherUserID, time.Time{})
}

// FetchSince returns the messages created after since; a zero since returns
// the full history.
func (f *Fetcher) FetchSince(ctx context.Context, currentUserID, otherUserID string, since time.Time) ([]models.Message, error) {
	if err := checkParticipants(currentUserID, otherUserID); err != nil {
		return nil, err
	}

	f.log.Debug().Str("user", currentUserID).Str("peer", otherUserID).Time("since", since).Msg("🔍 Fetching history")
	messages, err := f.store.History(ctx, currentUserID, otherUserID, since)
	if err != nil {
		f.log.Warn().Err(err).Str("user", currentUserID).Str("peer", otherUserID).Msg("⚠️ History fetch failed, showing empty conversation")
		return []models.Message{}, nil
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// LastMessage returns the newest message of the conversation, or nil when
// there is none (or the fetch failed).
func (f *Fetcher) LastMessage(ctx context.Context, currentUserID, otherUserID string) (*models.Message, error) {
	if ls, ok := f.store.(LastMessageStore); ok {
		if err := checkParticipants(currentUserID, otherUserID); err != nil {
			return nil, err
		}
		last, err := ls.LastMessage(ctx, currentUserID, otherUserID)
		if err != nil {
			f.log.Warn().Err(err).Str("user", currentUserID).Str("peer", otherUserID).Msg("⚠️ Last message fetch failed, treating conversation as empty")
			return nil, nil
		}
		return last, nil
	}

	messages, err := f.FetchHistory(ctx, currentUserID, otherUserID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}
	last := messages[len(messages)-1]
	return &last, nil
}

func checkParticipants(currentUserID, otherUserID string) error {
	if strings.TrimSpace(currentUserID) == "" || strings.TrimSpace(otherUserID) == "" {
		return apperrors.ErrInvalidParticipants
	}
	return nil
}
