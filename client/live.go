package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vibin/apperrors"
	"vibin/chat"
	"vibin/config"
	"vibin/models"
)

var _ chat.LiveChannel = (*Live)(nil)

// Live is the session's WebSocket live channel. Handlers run on the read
// goroutine, one event at a time.
type Live struct {
	conn *websocket.Conn
	log  zerolog.Logger

	mu       sync.Mutex
	handlers map[string]map[chat.ListenerID]chat.MessageHandler

	writeMu sync.Mutex
	done    chan struct{}
}

// DialLive connects to /ws on the configured server as cfg.UserID.
func DialLive(ctx context.Context, cfg config.ClientConfig) (*Live, error) {
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/ws")
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	header := http.Header{}
	header.Set(userHeader, cfg.UserID)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, apperrors.TransportFailure("live channel unavailable", errors.Wrapf(err, "dial %s", u.Redacted()))
	}

	l := &Live{
		conn:     conn,
		log:      log.With().Str("component", "live").Str("user", cfg.UserID).Logger(),
		handlers: make(map[string]map[chat.ListenerID]chat.MessageHandler),
		done:     make(chan struct{}),
	}
	go l.readLoop()
	return l, nil
}

func (l *Live) On(event string, h chat.MessageHandler) chat.ListenerID {
	id := chat.ListenerID(uuid.New().String())

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handlers[event] == nil {
		l.handlers[event] = make(map[chat.ListenerID]chat.MessageHandler)
	}
	l.handlers[event][id] = h
	return id
}

func (l *Live) Off(event string, id chat.ListenerID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.handlers[event], id)
}

func (l *Live) Emit(ctx context.Context, event string, msg models.Message) error {
	env, err := models.NewEnvelope(event, msg)
	if err != nil {
		return errors.Wrap(err, "encode event")
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(10 * time.Second)
	}
	if err := l.conn.SetWriteDeadline(deadline); err != nil {
		return apperrors.TransportFailure("live channel closed", err)
	}
	if err := l.conn.WriteJSON(env); err != nil {
		return apperrors.TransportFailure("emit failed", errors.Wrapf(err, "emit %s", event))
	}
	return nil
}

// Done is closed when the connection ends.
func (l *Live) Done() <-chan struct{} { return l.done }

func (l *Live) Close() error {
	l.writeMu.Lock()
	_ = l.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	l.writeMu.Unlock()
	return l.conn.Close()
}

func (l *Live) readLoop() {
	defer close(l.done)

	for {
		var env models.Envelope
		if err := l.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				l.log.Warn().Err(err).Msg("⚠️ Live channel dropped")
			}
			return
		}
		msg, err := env.Message()
		if err != nil {
			l.log.Warn().Err(err).Str("event", env.Event).Msg("⚠️ Malformed live event")
			continue
		}
		l.dispatch(env.Event, msg)
	}
}

func (l *Live) dispatch(event string, msg models.Message) {
	l.mu.Lock()
	handlers := make([]chat.MessageHandler, 0, len(l.handlers[event]))
	for _, h := range l.handlers[event] {
		handlers = append(handlers, h)
	}
	l.mu.Unlock()

	for _, h := range handlers {
		h(msg)
	}
}
