package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibin/chat"
	"vibin/chat/chattest"
	"vibin/config"
	"vibin/models"
)

var testChatConfig = config.ChatConfig{
	ReconcileDelay:        20 * time.Millisecond,
	CategorizeConcurrency: 4,
	DedupeTolerance:       2 * time.Second,
}

type peer struct {
	live      *chattest.Session
	messenger *chat.Messenger
}

func newPeer(store chat.MessageStore, bus *chattest.Bus, userID string) peer {
	live := bus.Session(userID)
	return peer{live: live, messenger: chat.NewMessenger(store, live, testChatConfig)}
}

func TestOpenRequiresParticipants(t *testing.T) {
	m := chat.NewMessenger(chattest.NewMemoryStore(), nil, testChatConfig)
	_, err := m.Open(context.Background(), "u1", "")
	assert.Error(t, err)
}

func TestOpenLoadsHistoryAndAttaches(t *testing.T) {
	store := chattest.NewMemoryStore()
	store.Seed(msg("1", "u1", "u2", "hi", 0), msg("2", "u2", "u1", "hey", time.Minute))
	p := newPeer(store, chattest.NewBus(), "u1")

	conv, err := p.messenger.Open(context.Background(), "u1", "u2")
	require.NoError(t, err)
	defer conv.Close()

	assert.Len(t, conv.Messages(), 2)
	assert.Equal(t, chat.Attached, conv.ListenerState())
	assert.Equal(t, 1, p.live.Handlers(models.EventNewMessage))
}

func TestLiveMessageReachesOpenConversation(t *testing.T) {
	store := chattest.NewMemoryStore()
	bus := chattest.NewBus()
	u1 := newPeer(store, bus, "U1")
	u2 := newPeer(store, bus, "U2")

	conv, err := u2.messenger.Open(context.Background(), "U2", "U1")
	require.NoError(t, err)
	defer conv.Close()
	before := len(conv.Messages())

	_, outcome := u1.messenger.Composer.Send(context.Background(), "U1", "U2", "hello")
	require.Equal(t, chat.OutcomeSent, outcome)

	after := conv.Messages()
	require.Len(t, after, before+1)
	last := after[len(after)-1]
	assert.Equal(t, "hello", last.Body)
	assert.Equal(t, "U1", last.SenderID)
}

func TestLiveEventsForOtherConversationsAreIgnored(t *testing.T) {
	bus := chattest.NewBus()
	p := newPeer(chattest.NewMemoryStore(), bus, "U2")
	conv, err := p.messenger.Open(context.Background(), "U2", "U1")
	require.NoError(t, err)
	defer conv.Close()

	p.live.Dispatch(models.EventNewMessage, msg("x", "U3", "U2", "hi from someone else", 0))
	assert.Empty(t, conv.Messages())
}

func TestLiveThenRefetchRendersOnce(t *testing.T) {
	store := chattest.NewMemoryStore()
	bus := chattest.NewBus()
	u1 := newPeer(store, bus, "U1")
	u2 := newPeer(store, bus, "U2")

	recv, err := u2.messenger.Open(context.Background(), "U2", "U1")
	require.NoError(t, err)
	defer recv.Close()
	sender, err := u1.messenger.Open(context.Background(), "U1", "U2")
	require.NoError(t, err)
	defer sender.Close()

	sender.SetDraft("hello")
	require.Equal(t, chat.OutcomeSent, sender.Send(context.Background()))
	assert.Equal(t, "", sender.Draft())

	// Wait for the delayed reconcile on the sender side, then refresh the
	// receiver which already has the live copy.
	assert.Eventually(t, func() bool { return store.HistoryCalls() >= 3 }, time.Second, 5*time.Millisecond)
	recv.Refresh(context.Background())

	assert.Len(t, sender.Messages(), 1)
	assert.Len(t, recv.Messages(), 1)
}

func TestFailedSendRestoresDraftAndRetries(t *testing.T) {
	store := chattest.NewMemoryStore()
	bus := chattest.NewBus()
	p := newPeer(store, bus, "U1")
	other := bus.Session("U2")

	conv, err := p.messenger.Open(context.Background(), "U1", "U2")
	require.NoError(t, err)
	defer conv.Close()

	store.SetFailures(false, true)
	conv.SetDraft("are you there?")
	assert.Equal(t, chat.OutcomeFailed, conv.Send(context.Background()))
	assert.Equal(t, "are you there?", conv.Draft())
	pending := conv.Pending()
	require.NotNil(t, pending)
	assert.Empty(t, conv.Messages())
	assert.Empty(t, other.Emitted())

	store.SetFailures(false, false)
	assert.Equal(t, chat.OutcomeSent, conv.Retry(context.Background()))
	assert.Nil(t, conv.Pending())
	assert.Equal(t, "", conv.Draft())

	messages := conv.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, pending.ClientID, messages[0].ClientID)
	assert.Equal(t, chat.OutcomeSkipped, conv.Retry(context.Background()))
}

func TestBlankDraftIsNoop(t *testing.T) {
	store := chattest.NewMemoryStore()
	p := newPeer(store, chattest.NewBus(), "U1")
	conv, err := p.messenger.Open(context.Background(), "U1", "U2")
	require.NoError(t, err)
	defer conv.Close()

	conv.SetDraft("   ")
	assert.Equal(t, chat.OutcomeSkipped, conv.Send(context.Background()))
	assert.Equal(t, "   ", conv.Draft())
	assert.Zero(t, store.SendCalls())
	assert.Empty(t, p.live.Emitted())
}

func TestCloseDetachesAndIgnoresLateEvents(t *testing.T) {
	store := chattest.NewMemoryStore()
	p := newPeer(store, chattest.NewBus(), "U2")
	conv, err := p.messenger.Open(context.Background(), "U2", "U1")
	require.NoError(t, err)

	conv.Close()
	assert.Equal(t, chat.Detached, conv.ListenerState())
	assert.Zero(t, p.live.Handlers(models.EventNewMessage))

	p.live.Dispatch(models.EventNewMessage, msg("1", "U1", "U2", "too late", 0))
	store.Seed(msg("2", "U1", "U2", "also late", time.Minute))
	conv.Refresh(context.Background())
	assert.Empty(t, conv.Messages())

	conv.Close()
}

func TestChangesSignalsOnAppend(t *testing.T) {
	p := newPeer(chattest.NewMemoryStore(), chattest.NewBus(), "U2")
	conv, err := p.messenger.Open(context.Background(), "U2", "U1")
	require.NoError(t, err)
	defer conv.Close()

	// Drain the signal from the initial load.
	select {
	case <-conv.Changes():
	default:
	}

	p.live.Dispatch(models.EventNewMessage, msg("1", "U1", "U2", "ping", 0))
	select {
	case <-conv.Changes():
	case <-time.After(time.Second):
		t.Fatal("expected a change signal")
	}
}
