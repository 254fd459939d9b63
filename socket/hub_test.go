package socket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibin/models"
	"vibin/utils"
)

func message(from, to, body string) models.Message {
	return models.Message{ClientID: "c-" + body, SenderID: from, ReceiverID: to, Body: body}
}

func TestPublishReachesReceiverAndSenderOtherSessions(t *testing.T) {
	hub := NewHub()
	alice := hub.Subscribe("alice")
	bobPhone := hub.Subscribe("bob")
	bobTablet := hub.Subscribe("bob")
	carol := hub.Subscribe("carol")

	n := hub.Publish(bobPhone, message("bob", "alice", "hi"))
	assert.Equal(t, 2, n)

	assert.Equal(t, "hi", (<-alice.Send).Body)
	assert.Equal(t, "hi", (<-bobTablet.Send).Body)
	assert.Empty(t, bobPhone.Send)
	assert.Empty(t, carol.Send)
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	alice := hub.Subscribe("alice")

	for i := 0; i < sessionBuffer; i++ {
		require.Equal(t, 1, hub.Publish(nil, message("bob", "alice", "x")))
	}
	assert.Equal(t, 0, hub.Publish(nil, message("bob", "alice", "overflow")))
	assert.Len(t, alice.Send, sessionBuffer)
}

func TestUnsubscribe(t *testing.T) {
	hub := NewHub()
	s := hub.Subscribe("alice")
	require.Equal(t, 1, hub.Sessions("alice"))

	hub.Unsubscribe(s)
	hub.Unsubscribe(s)
	assert.Equal(t, 0, hub.Sessions("alice"))

	_, ok := <-s.Send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Publish(nil, message("bob", "alice", "late")))
}

func TestRelayRejectsImpersonation(t *testing.T) {
	hub := NewHub()
	bob := hub.Subscribe("bob")
	alice := hub.Subscribe("alice")

	assert.False(t, hub.relay(bob, message("carol", "alice", "hi")))
	assert.False(t, hub.relay(bob, message("bob", "alice", "  ")))
	assert.True(t, hub.relay(bob, message("bob", "alice", "hi")))
	assert.Len(t, alice.Send, 1)
}

func dial(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	header.Set(utils.UserHeader, userID)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServeWSDeliversNewMessage(t *testing.T) {
	hub := NewHub()
	mux := http.NewServeMux()
	mux.Handle("/ws", ServeWS(hub, func(*http.Request) bool { return true }))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	alice := dial(t, srv, "alice")
	bob := dial(t, srv, "bob")

	env, err := models.NewEnvelope(models.EventSendMessage, message("bob", "alice", "are we still on?"))
	require.NoError(t, err)
	require.NoError(t, bob.WriteJSON(env))

	require.NoError(t, alice.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got models.Envelope
	require.NoError(t, alice.ReadJSON(&got))
	assert.Equal(t, models.EventNewMessage, got.Event)

	msg, err := got.Message()
	require.NoError(t, err)
	assert.Equal(t, "are we still on?", msg.Body)
	assert.Equal(t, "bob", msg.SenderID)
}

func TestServeWSRequiresAuthenticatedUser(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(ServeWS(hub, nil))
	defer srv.Close()

	for _, path := range []string{"", "/?userId=alice"} {
		_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+path, nil)
		require.Error(t, err)
		require.NotNil(t, resp, path)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
	assert.Equal(t, 0, hub.Sessions("alice"))
}
