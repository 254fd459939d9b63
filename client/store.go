// Package client is the app-side SDK: a REST message store and a WebSocket
// live channel that plug into the chat core.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vibin/apperrors"
	"vibin/chat"
	"vibin/config"
	"vibin/models"
)

const userHeader = "X-User-Id"

var _ chat.MessageStore = (*Store)(nil)

// Store talks to the vibin REST API as one user.
type Store struct {
	baseURL string
	userID  string
	http    *http.Client
	log     zerolog.Logger
}

func NewStore(cfg config.ClientConfig) *Store {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Store{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		userID:  cfg.UserID,
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "client").Str("user", cfg.UserID).Logger(),
	}
}

type sendRequest struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Body       string `json:"body"`
	ClientID   string `json:"clientId"`
}

type sendResponse struct {
	Status    string         `json:"status"`
	MessageID string         `json:"messageId"`
	Message   models.Message `json:"message"`
}

type apiError struct {
	Error string         `json:"error"`
	Code  apperrors.Code `json:"code"`
}

func (s *Store) History(ctx context.Context, a, b string, since time.Time) ([]models.Message, error) {
	q := url.Values{}
	q.Set("senderId", a)
	q.Set("receiverId", b)
	if !since.IsZero() {
		q.Set("since", since.UTC().Format(time.RFC3339Nano))
	}

	var messages []models.Message
	if err := s.do(ctx, http.MethodGet, "/api/chat/history?"+q.Encode(), nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *Store) Send(ctx context.Context, msg models.Message) (models.Message, error) {
	var resp sendResponse
	err := s.do(ctx, http.MethodPost, "/api/chat/messages", sendRequest{
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Body:       msg.Body,
		ClientID:   msg.ClientID,
	}, &resp)
	if err != nil {
		return models.Message{}, err
	}
	if resp.Message.MessageID == "" {
		// Older servers only return the id.
		msg.MessageID = resp.MessageID
		return msg, nil
	}
	return resp.Message, nil
}

// FetchMatches loads the user's matches with profiles.
func (s *Store) FetchMatches(ctx context.Context, userID string) ([]models.MatchWithProfile, error) {
	var matches []models.MatchWithProfile
	if err := s.do(ctx, http.MethodGet, "/api/match?userId="+url.QueryEscape(userID), nil, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// Inbox asks the server to categorize the user's matches.
func (s *Store) Inbox(ctx context.Context, userID string, byRecency bool) (chat.Buckets, error) {
	q := url.Values{}
	q.Set("userId", userID)
	if byRecency {
		q.Set("sort", "recency")
	}
	var buckets chat.Buckets
	err := s.do(ctx, http.MethodGet, "/api/chat/inbox?"+q.Encode(), nil, &buckets)
	return buckets, err
}

// Like likes receiver and returns the match id when it was mutual.
func (s *Store) Like(ctx context.Context, receiver string) (string, error) {
	var resp struct {
		Status  string `json:"status"`
		MatchID string `json:"matchId"`
	}
	err := s.do(ctx, http.MethodPost, "/api/interactions/like", map[string]string{
		"senderHandle":   s.userID,
		"receiverHandle": receiver,
	}, &resp)
	return resp.MatchID, err
}

func (s *Store) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return errors.Wrapf(err, "build %s %s", method, path)
	}
	req.Header.Set(userHeader, s.userID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("⚠️ Request failed")
		return apperrors.TransportFailure("request failed", errors.Wrapf(err, "%s %s", method, path))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr apiError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		code := apiErr.Code
		if code == "" {
			code = apperrors.FromHTTPStatus(resp.StatusCode)
		}
		if apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return errors.Wrapf(apperrors.New(code, apiErr.Error), "%s %s", method, path)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.TransportFailure("invalid response", errors.Wrapf(err, "decode %s", path))
	}
	return nil
}
