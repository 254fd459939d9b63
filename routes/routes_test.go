package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibin/apperrors"
	"vibin/chat"
	"vibin/chat/chattest"
	"vibin/config"
	"vibin/controllers"
	"vibin/models"
	"vibin/routes"
	"vibin/utils"
)

var t0 = time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)

type fakeMatches map[string][]models.MatchWithProfile

func (f fakeMatches) GetMatchesWithProfiles(_ context.Context, userHandle string) ([]models.MatchWithProfile, error) {
	return f[userHandle], nil
}

type fakeInteractions struct {
	matchID string
	roseErr error
}

func (f fakeInteractions) Like(context.Context, string, string) (string, error) { return f.matchID, nil }

func (f fakeInteractions) Rose(context.Context, string, string, *string) error { return f.roseErr }

type fakeProfiles map[string]models.UserProfile

func (f fakeProfiles) GetUserProfile(_ context.Context, userHandle string) (*models.UserProfile, error) {
	p, ok := f[userHandle]
	if !ok {
		return nil, apperrors.NotFound("profile " + userHandle + " not found")
	}
	return &p, nil
}

type fakePhotos struct{}

func (fakePhotos) GenerateUploadURL(_ context.Context, fileName, _ string) (string, string, error) {
	return "https://photos.example/" + fileName, "profile-pics/" + fileName, nil
}

func (fakePhotos) GenerateReadURL(_ context.Context, key string) (string, error) {
	return "https://photos.example/" + key, nil
}

func matchOf(id, a, b string) models.MatchWithProfile {
	return models.MatchWithProfile{
		Match:      models.Match{MatchID: id, User1Handle: a, User2Handle: b, Status: models.StatusActive},
		UserHandle: b,
	}
}

type server struct {
	handler http.Handler
	store   *chattest.MemoryStore
}

func newServer(interactions controllers.Interactions) *server {
	store := chattest.NewMemoryStore()
	store.SetClock(func() time.Time { return t0 })
	matches := fakeMatches{
		"alice": {matchOf("m-bob", "alice", "bob"), matchOf("m-carol", "alice", "carol"), matchOf("m-dave", "alice", "dave")},
	}
	router := routes.NewRouter(routes.Services{
		Chat:         store,
		Categorizer:  chat.NewCategorizer(chat.NewFetcher(store), config.ChatConfig{CategorizeConcurrency: 2}),
		Matches:      matches,
		Interactions: interactions,
		Profiles:     fakeProfiles{"bob": {UserHandle: "bob", Name: "Bob"}},
		Photos:       fakePhotos{},
	})
	return &server{handler: router, store: store}
}

func (s *server) do(t *testing.T, method, target, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if user != "" {
		req.Header.Set(utils.UserHeader, user)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) apperrors.Code {
	return decode[utils.ErrorResponse](t, rec).Code
}

func TestHealth(t *testing.T) {
	rec := newServer(fakeInteractions{}).do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRequiresUser(t *testing.T) {
	rec := newServer(fakeInteractions{}).do(t, http.MethodGet, "/api/chat/history?senderId=alice&receiverId=bob", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperrors.CodeUnauthenticated, errorCode(t, rec))
}

func TestSendThenHistory(t *testing.T) {
	s := newServer(fakeInteractions{})

	rec := s.do(t, http.MethodPost, "/api/chat/messages", "bob", controllers.SendMessageRequest{
		SenderID: "bob", ReceiverID: "alice", Body: "drinks on friday?", ClientID: "c-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	sent := decode[controllers.SendMessageResponse](t, rec)
	assert.Equal(t, "success", sent.Status)
	assert.Equal(t, "m1", sent.MessageID)

	rec = s.do(t, http.MethodGet, "/api/chat/history?senderId=alice&receiverId=bob", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]models.Message](t, rec)
	require.Len(t, history, 1)
	assert.Equal(t, "drinks on friday?", history[0].Body)
	assert.Equal(t, "c-1", history[0].ClientID)

	since := url.QueryEscape(t0.Format(time.RFC3339Nano))
	rec = s.do(t, http.MethodGet, "/api/chat/history?senderId=alice&receiverId=bob&since="+since, "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Message](t, rec))
}

func TestChatScoping(t *testing.T) {
	s := newServer(fakeInteractions{})

	rec := s.do(t, http.MethodPost, "/api/chat/messages", "bob", controllers.SendMessageRequest{
		SenderID: "alice", ReceiverID: "carol", Body: "hi", ClientID: "c-2",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/chat/history?senderId=alice&receiverId=bob", "carol", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, s.store.SendCalls())
	assert.Equal(t, 0, s.store.HistoryCalls())
}

func TestSendValidation(t *testing.T) {
	s := newServer(fakeInteractions{})

	rec := s.do(t, http.MethodPost, "/api/chat/messages", "bob", controllers.SendMessageRequest{
		SenderID: "bob", ReceiverID: "alice", Body: "   ",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeInvalidArgument, errorCode(t, rec))

	rec = s.do(t, http.MethodPost, "/api/chat/messages", "bob", controllers.SendMessageRequest{
		SenderID: "bob", Body: "hello",
	})
	assert.Equal(t, apperrors.CodeInvalidParticipants, errorCode(t, rec))

	rec = s.do(t, http.MethodGet, "/api/chat/history?senderId=bob", "bob", nil)
	assert.Equal(t, apperrors.CodeInvalidParticipants, errorCode(t, rec))
	assert.Equal(t, 0, s.store.SendCalls())
}

func TestSendStoreFailure(t *testing.T) {
	s := newServer(fakeInteractions{})
	s.store.SetFailures(false, true)

	rec := s.do(t, http.MethodPost, "/api/chat/messages", "bob", controllers.SendMessageRequest{
		SenderID: "bob", ReceiverID: "alice", Body: "hello", ClientID: "c-3",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, apperrors.CodeTransportFailure, errorCode(t, rec))
}

func TestInbox(t *testing.T) {
	s := newServer(fakeInteractions{})
	s.store.Seed(
		models.Message{MessageID: "1", SenderID: "alice", ReceiverID: "bob", Body: "hey", CreatedAt: t0},
		models.Message{MessageID: "2", SenderID: "bob", ReceiverID: "alice", Body: "hey you", CreatedAt: t0.Add(time.Minute)},
		models.Message{MessageID: "3", SenderID: "alice", ReceiverID: "carol", Body: "hi carol", CreatedAt: t0},
	)

	rec := s.do(t, http.MethodGet, "/api/chat/inbox?userId=alice", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	buckets := decode[chat.Buckets](t, rec)

	var yours, theirs []string
	for _, e := range buckets.YourTurn {
		yours = append(yours, e.Match.MatchID)
	}
	for _, e := range buckets.TheirTurn {
		theirs = append(theirs, e.Match.MatchID)
	}
	assert.Equal(t, []string{"m-bob", "m-dave"}, yours)
	assert.Equal(t, []string{"m-carol"}, theirs)
	require.NotNil(t, buckets.YourTurn[0].LastMessage)
	assert.Equal(t, "hey you", buckets.YourTurn[0].LastMessage.Body)
	assert.Nil(t, buckets.YourTurn[1].LastMessage)

	rec = s.do(t, http.MethodGet, "/api/chat/inbox?userId=alice", "bob", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInboxSortByRecency(t *testing.T) {
	s := newServer(fakeInteractions{})
	s.store.Seed(
		models.Message{MessageID: "1", SenderID: "bob", ReceiverID: "alice", Body: "old", CreatedAt: t0},
		models.Message{MessageID: "2", SenderID: "dave", ReceiverID: "alice", Body: "new", CreatedAt: t0.Add(time.Hour)},
	)

	rec := s.do(t, http.MethodGet, "/api/chat/inbox?userId=alice&sort=recency", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	buckets := decode[chat.Buckets](t, rec)

	var yours []string
	for _, e := range buckets.YourTurn {
		yours = append(yours, e.Match.MatchID)
	}
	assert.Equal(t, []string{"m-dave", "m-bob", "m-carol"}, yours)
	assert.Empty(t, buckets.TheirTurn)
}

func TestMatches(t *testing.T) {
	s := newServer(fakeInteractions{})
	rec := s.do(t, http.MethodGet, "/api/match?userId=alice", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.MatchWithProfile](t, rec), 3)
}

func TestLike(t *testing.T) {
	rec := newServer(fakeInteractions{matchID: "match-1"}).do(t, http.MethodPost, "/api/interactions/like", "alice",
		controllers.InteractionRequest{SenderHandle: "alice", ReceiverHandle: "bob"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[controllers.InteractionResponse](t, rec)
	assert.Equal(t, models.StatusMatch, resp.Status)
	assert.Equal(t, "match-1", resp.MatchID)

	rec = newServer(fakeInteractions{}).do(t, http.MethodPost, "/api/interactions/like", "alice",
		controllers.InteractionRequest{SenderHandle: "alice", ReceiverHandle: "bob"})
	assert.Equal(t, models.StatusPending, decode[controllers.InteractionResponse](t, rec).Status)
}

func TestRoseWithoutSubscription(t *testing.T) {
	s := newServer(fakeInteractions{roseErr: apperrors.Unauthorized("roses require a subscription")})
	rec := s.do(t, http.MethodPost, "/api/interactions/rose", "alice",
		controllers.InteractionRequest{SenderHandle: "alice", ReceiverHandle: "bob"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperrors.CodeUnauthenticated, errorCode(t, rec))
}

func TestProfile(t *testing.T) {
	s := newServer(fakeInteractions{})

	rec := s.do(t, http.MethodGet, "/api/profile/bob", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bob", decode[models.UserProfile](t, rec).Name)

	rec = s.do(t, http.MethodGet, "/api/profile/zed", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPhotoUploadURL(t *testing.T) {
	rec := newServer(fakeInteractions{}).do(t, http.MethodPost, "/api/photos/upload-url", "alice",
		map[string]string{"fileName": "me.jpg", "fileType": "image/jpeg"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "profile-pics/me.jpg", body["fileName"])
}
