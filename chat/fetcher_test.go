package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibin/apperrors"
	"vibin/chat"
	"vibin/chat/chattest"
	"vibin/models"
)

func TestFetchHistoryRequiresBothParticipants(t *testing.T) {
	store := chattest.NewMemoryStore()
	f := chat.NewFetcher(store)

	for _, ids := range [][2]string{{"", "u2"}, {"u1", ""}, {" ", "u2"}} {
		_, err := f.FetchHistory(context.Background(), ids[0], ids[1])
		assert.True(t, errors.Is(err, apperrors.ErrInvalidParticipants), "ids %q", ids)
	}
	assert.Zero(t, store.HistoryCalls())
}

func TestFetchHistoryIsPairSymmetric(t *testing.T) {
	store := chattest.NewMemoryStore()
	store.Seed(
		msg("1", "a", "b", "hi", 0),
		msg("2", "b", "a", "hello", time.Minute),
		msg("3", "a", "c", "other conversation", 2*time.Minute),
	)
	f := chat.NewFetcher(store)

	ab, err := f.FetchHistory(context.Background(), "a", "b")
	require.NoError(t, err)
	ba, err := f.FetchHistory(context.Background(), "b", "a")
	require.NoError(t, err)

	assert.Len(t, ab, 2)
	assert.ElementsMatch(t, ab, ba)
}

func TestFetchHistoryFailsSoft(t *testing.T) {
	store := chattest.NewMemoryStore()
	store.Seed(msg("1", "a", "b", "hi", 0))
	store.FailHistory = true

	messages, err := chat.NewFetcher(store).FetchHistory(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.NotNil(t, messages)
	assert.Empty(t, messages)
}

func TestFetchSince(t *testing.T) {
	store := chattest.NewMemoryStore()
	store.Seed(
		msg("1", "a", "b", "old", 0),
		msg("2", "b", "a", "new", time.Hour),
	)

	messages, err := chat.NewFetcher(store).FetchSince(context.Background(), "a", "b", t0.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "new", messages[0].Body)
}

func TestLastMessage(t *testing.T) {
	store := chattest.NewMemoryStore()
	f := chat.NewFetcher(store)

	last, err := f.LastMessage(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Nil(t, last)

	store.Seed(msg("1", "a", "b", "hi", 0), msg("2", "b", "a", "yo", time.Minute))
	last, err = f.LastMessage(context.Background(), "a", "b")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "b", last.SenderID)
}

// newestOnly answers LastMessage directly from last and err.
type newestOnly struct {
	*chattest.MemoryStore
	last *models.Message
	err  error
}

func (s newestOnly) LastMessage(context.Context, string, string) (*models.Message, error) {
	return s.last, s.err
}

func TestLastMessageUsesStoreShortcut(t *testing.T) {
	mem := chattest.NewMemoryStore()
	mem.Seed(msg("1", "a", "b", "old", 0))
	newest := msg("9", "b", "a", "newest", time.Hour)

	last, err := chat.NewFetcher(newestOnly{MemoryStore: mem, last: &newest}).LastMessage(context.Background(), "a", "b")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "newest", last.Body)
	assert.Zero(t, mem.HistoryCalls())

	last, err = chat.NewFetcher(newestOnly{MemoryStore: mem, err: errors.New("throttled")}).LastMessage(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Nil(t, last)

	_, err = chat.NewFetcher(newestOnly{MemoryStore: mem}).LastMessage(context.Background(), "", "b")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidParticipants))
	assert.Zero(t, mem.HistoryCalls())
}
