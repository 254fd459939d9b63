package socket

import (
	"strings"

	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"

	"vibin/models"
	"vibin/utils"
)

// NewSocketIOServer initializes a Socket.IO server on top of hub. The
// connecting user comes from the X-User-Id header set by the auth gateway;
// clients emit sendMessage and receive newMessage.
func NewSocketIOServer(hub *Hub) *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		userID := strings.TrimSpace(c.RemoteHeader().Get(utils.UserHeader))
		if userID == "" {
			log.Warn().Str("conn", c.ID()).Msg("❌ Socket connected without an authenticated user")
			return c.Close()
		}

		session := hub.Subscribe(userID)
		c.SetContext(session)
		go func() {
			for msg := range session.Send {
				c.Emit(models.EventNewMessage, msg)
			}
		}()
		log.Info().Str("conn", c.ID()).Str("user", userID).Msg("✅ Socket connected")
		return nil
	})

	server.OnEvent("/", models.EventSendMessage, func(c socketio.Conn, msg models.Message) {
		session, ok := c.Context().(*Session)
		if !ok {
			return
		}
		hub.relay(session, msg)
	})

	server.OnError("/", func(c socketio.Conn, err error) {
		log.Error().Err(err).Msg("❌ Socket error")
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		if session, ok := c.Context().(*Session); ok {
			hub.Unsubscribe(session)
		}
		log.Info().Str("conn", c.ID()).Str("reason", reason).Msg("❌ Socket disconnected")
	})

	return server
}
