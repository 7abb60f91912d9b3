package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/ragchat/chat"
	"github.com/poiesic/ragchat/core"
	"github.com/poiesic/ragchat/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeResponder struct {
	respondErr  error
	feedbackErr error

	sessionID string
	query     string
	timestamp int64
	feedback  core.Feedback
}

func (f *fakeResponder) Respond(_ context.Context, sessionID, query string) (*chat.Response, error) {
	f.sessionID, f.query = sessionID, query
	if f.respondErr != nil {
		return nil, f.respondErr
	}
	return &chat.Response{Text: "answer to " + query, SessionID: sessionID, Timestamp: 1700000000123}, nil
}

func (f *fakeResponder) Feedback(_ context.Context, sessionID string, timestamp int64, feedback core.Feedback) error {
	f.sessionID, f.timestamp, f.feedback = sessionID, timestamp, feedback
	return f.feedbackErr
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, New(&fakeResponder{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestChatResponse(t *testing.T) {
	bot := &fakeResponder{}
	rec := do(t, New(bot), http.MethodPost, "/chat-response", `{"query":"what passed?","session_id":"s1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ChatResponse{Response: "answer to what passed?", SessionID: "s1", Timestamp: 1700000000123},
		decode[ChatResponse](t, rec))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestChatResponse_MintsSessionID(t *testing.T) {
	bot := &fakeResponder{}
	s := New(bot, WithSessionIDs(func() string { return "fresh" }))

	rec := do(t, s, http.MethodPost, "/chat-response", `{"query":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fresh", bot.sessionID)
	assert.Equal(t, "fresh", decode[ChatResponse](t, rec).SessionID)
}

func TestChatResponse_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
	}{
		{"malformed json", `{"query":`, nil},
		{"missing query", `{"session_id":"s1"}`, nil},
		{"upstream failure", `{"query":"q"}`, errors.New("index unavailable")},
		{"invalid query", `{"query":"   "}`, core.ErrEmptyQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, New(&fakeResponder{respondErr: tt.err}), http.MethodPost, "/chat-response", tt.body)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, ChatErrorBody, decode[string](t, rec))
		})
	}
}

func TestFeedback(t *testing.T) {
	bot := &fakeResponder{}
	rec := do(t, New(bot), http.MethodPost, "/feedback",
		`{"session_id":"s1","timestamp":1700000000123,"rating":"thumbs_up"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Feedback saved", decode[map[string]string](t, rec)["message"])
	assert.Equal(t, "s1", bot.sessionID)
	assert.Equal(t, int64(1700000000123), bot.timestamp)
	assert.Equal(t, core.Feedback{Rating: core.RatingThumbsUp}, bot.feedback)
}

func TestFeedback_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
	}{
		{"malformed json", `not json`, nil},
		{"missing timestamp", `{"session_id":"s1","rating":"thumbs_up"}`, nil},
		{"unknown message", `{"session_id":"s1","timestamp":5,"rating":"thumbs_up"}`, storage.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, New(&fakeResponder{feedbackErr: tt.err}), http.MethodPost, "/feedback", tt.body)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, FeedbackErrorBody, decode[string](t, rec))
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	s := New(&fakeResponder{}, WithAllowOrigin("https://app.example.com"))
	rec := do(t, s, http.MethodOptions, "/chat-response", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(&fakeResponder{}).Run(ctx, "127.0.0.1:0")
	}()
	cancel()
	assert.NoError(t, <-done)
}
