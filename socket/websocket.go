package socket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"vibin/models"
	"vibin/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// ServeWS upgrades /ws connections and attaches them to hub as the user of
// the X-User-Id header. Frames are models.Envelope values.
func ServeWS(hub *Hub, checkOrigin func(r *http.Request) bool) http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}

	return utils.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := utils.ActingUser(r)

		// Subscribe before the handshake completes so nothing published
		// after the client sees the upgrade is missed.
		session := hub.Subscribe(userID)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.Unsubscribe(session)
			log.Error().Err(err).Str("user", userID).Msg("❌ WebSocket upgrade failed")
			return
		}

		go writePump(conn, session)
		readPump(hub, conn, session)
	}))
}

func readPump(hub *Hub, conn *websocket.Conn, session *Session) {
	defer func() {
		hub.Unsubscribe(session)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env models.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("user", session.UserID).Msg("⚠️ WebSocket closed unexpectedly")
			}
			return
		}
		if env.Event != models.EventSendMessage {
			log.Debug().Str("event", env.Event).Msg("🔍 Ignoring unknown event")
			continue
		}
		msg, err := env.Message()
		if err != nil {
			log.Warn().Err(err).Str("user", session.UserID).Msg("⚠️ Malformed sendMessage payload")
			continue
		}
		hub.relay(session, msg)
	}
}

func writePump(conn *websocket.Conn, session *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-session.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			env, err := models.NewEnvelope(models.EventNewMessage, msg)
			if err != nil {
				log.Error().Err(err).Msg("❌ Error encoding live message")
				continue
			}
			if err := conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
