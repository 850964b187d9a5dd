package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/stretchr/testify/require"

	"chat-relay/domain/event"
	"chat-relay/infrastructure/http/server"
	"chat-relay/infrastructure/http/wire"
	"chat-relay/moderation"
	"chat-relay/projection"
	"chat-relay/repositories"
	"chat-relay/runtime/workers"
	"chat-relay/services"
)

var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)

// newTestHandler boots the real stack behind the HTTP surface: store,
// moderator, search index and a running fanout feeding it.
func newTestHandler(t *testing.T, dictionary []string) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := repositories.NewMessageRepository(log)
	moderator, err := moderation.NewModerator(dictionary, '*', log)
	require.NoError(t, err)

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	index := projection.NewSearchIndex(writer, log)

	events := make(chan event.DomainEvent, 64)
	service := services.NewChatService(store, moderator, index, events, 0, log)

	fanout := workers.NewEventFanout(log, events, time.Second).Add(index)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = fanout.Run(ctx) }()

	return server.NewChatServer(log, service).Routes()
}

func postJSON(handler http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	handler.ServeHTTP(rec, req)
	return rec
}

func get(handler http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	handler.ServeHTTP(rec, req)
	return rec
}

func Test_Send_Then_Fetch(t *testing.T) {
	req := require.New(t)
	handler := newTestHandler(t, nil)

	rec := postJSON(handler, "/send", `{"username":"Alice","message":"hello world"}`)
	req.Equal(http.StatusOK, rec.Code)
	req.Equal("application/json", rec.Header().Get("Content-Type"))
	req.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))

	var sent wire.PostMessageResponse
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &sent))
	req.True(sent.Success)
	req.Equal(0, sent.Message.ID)
	req.Equal("Alice", sent.Message.Username)
	req.Equal("hello world", sent.Message.Message)
	req.Regexp(timestampPattern, sent.Message.Timestamp)

	rec = get(handler, "/messages")
	req.Equal(http.StatusOK, rec.Code)
	var fetched wire.MessagesResponse
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &fetched))
	req.Equal(1, fetched.Total)
	req.Len(fetched.Messages, 1)
	req.Equal(sent.Message, fetched.Messages[0])
}

func Test_Messages_Since_Offset(t *testing.T) {
	req := require.New(t)
	handler := newTestHandler(t, nil)

	for _, text := range []string{"one", "two", "three"} {
		rec := postJSON(handler, "/send", `{"username":"Alice","message":"`+text+`"}`)
		req.Equal(http.StatusOK, rec.Code)
	}

	rec := get(handler, "/messages?since=2")
	var fetched wire.MessagesResponse
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &fetched))
	req.Equal(3, fetched.Total)
	req.Len(fetched.Messages, 1)
	req.Equal("three", fetched.Messages[0].Message)

	// Unparsable offsets rewind to the start
	rec = get(handler, "/messages?since=banana")
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &fetched))
	req.Len(fetched.Messages, 3)
}

func Test_Messages_Empty_History_Serializes_As_Array(t *testing.T) {
	req := require.New(t)
	handler := newTestHandler(t, nil)

	rec := get(handler, "/messages")
	req.Equal(http.StatusOK, rec.Code)
	req.Equal(`{"messages":[],"total":0}`, strings.TrimSpace(rec.Body.String()))
}

func Test_Send_Rejects_Empty_Message(t *testing.T) {
	req := require.New(t)
	handler := newTestHandler(t, nil)

	for _, body := range []string{
		`{"username":"Alice","message":""}`,
		`{"username":"Alice","message":"   "}`,
		`{"username":"Alice"}`,
		`{}`,
	} {
		rec := postJSON(handler, "/send", body)
		req.Equal(http.StatusBadRequest, rec.Code, "body=%s", body)
		req.Equal(`{"error":"Message cannot be empty"}`, strings.TrimSpace(rec.Body.String()))
	}

	// Rejected posts never reach the store
	rec := get(handler, "/status")
	req.Equal(`{"status":"online","message_count":0}`, strings.TrimSpace(rec.Body.String()))
}

func Test_Send_Rejects_Invalid_JSON(t *testing.T) {
	req := require.New(t)
	handler := newTestHandler(t, nil)

	for _, body := range []string{"{not json", "", "42 oranges"} {
		rec := postJSON(handler, "/send", body)
		req.Equal(http.StatusBadRequest, rec.Code, "body=%s", body)
		req.Equal(`{"error":"Invalid JSON"}`, strings.TrimSpace(rec.Body.String()))
	}
}

func Test_Send_Defaults_To_Anonymous(t *testing.T) {
	req := require.New(t)
	handler := newTestHandler(t, nil)

	for _, body := range []string{
		`{"message":"no name given"}`,
		`{"username":"","message":"empty name"}`,
		`{"username":"   ","message":"blank name"}`,
	} {
		rec := postJSON(handler, "/send", body)
		req.Equal(http.StatusOK, rec.Code)

		var sent wire.PostMessageResponse
		req.NoError(json.Unmarshal(rec.Body.Bytes(), &sent))
		req.Equal("Anonymous", sent.Message.Username)
	}
}

func Test_Send_Censors_Content(t *testing.T) {
	req := require.New(t)
	handler := newTestHandler(t, []string{"ratburger"})

	rec := postJSON(handler, "/send", `{"username":"Alice","message":"this ratburger will self destruct in 5 seconds"}`)
	req.Equal(http.StatusOK, rec.Code)

	var sent wire.PostMessageResponse
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &sent))
	req.Equal("this ********* will self destruct in 5 seconds", sent.Message.Message)
}

func Test_Status_Reports_Count(t *testing.T) {
	req := require.New(t)
	handler := newTestHandler(t, nil)

	rec := get(handler, "/status")
	req.Equal(http.StatusOK, rec.Code)
	req.Equal(`{"status":"online","message_count":0}`, strings.TrimSpace(rec.Body.String()))

	postJSON(handler, "/send", `{"username":"Alice","message":"bump"}`)
	postJSON(handler, "/send", `{"username":"Bob","message":"bump too"}`)

	rec = get(handler, "/status")
	req.Equal(`{"status":"online","message_count":2}`, strings.TrimSpace(rec.Body.String()))
}

func Test_Unknown_Paths_And_Wrong_Methods_Get_JSON_404(t *testing.T) {
	req := require.New(t)
	handler := newTestHandler(t, nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/nope"},
		{http.MethodGet, "/messages/extra"},
		{http.MethodPost, "/messages"},
		{http.MethodPost, "/status"},
		{http.MethodGet, "/send"},
		{http.MethodDelete, "/"},
		{http.MethodPost, "/search"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		req.Equal(http.StatusNotFound, rec.Code, "%s %s", tt.method, tt.path)
		req.Equal(`{"error":"Not found"}`, strings.TrimSpace(rec.Body.String()), "%s %s", tt.method, tt.path)
		req.Equal("application/json", rec.Header().Get("Content-Type"))
	}
}

func Test_Index_Page_Served_Without_CORS(t *testing.T) {
	req := require.New(t)
	handler := newTestHandler(t, nil)

	rec := get(handler, "/")
	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Header().Get("Content-Type"), "text/html")
	req.Empty(rec.Header().Get("Access-Control-Allow-Origin"))
	req.Contains(rec.Body.String(), "<!DOCTYPE html>")
	req.Contains(rec.Body.String(), "/messages?since=")
}

func Test_Search_Finds_Sent_Messages(t *testing.T) {
	req := require.New(t)
	handler := newTestHandler(t, nil)

	postJSON(handler, "/send", `{"username":"Alice","message":"release the kraken tomorrow"}`)
	postJSON(handler, "/send", `{"username":"Bob","message":"a quiet day otherwise"}`)
	// Two async hops: fanout delivery then index visibility
	time.Sleep(100 * time.Millisecond)

	rec := get(handler, "/search?q=kraken")
	req.Equal(http.StatusOK, rec.Code)
	req.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))

	var found wire.SearchResponse
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &found))
	req.Equal(1, found.Count)
	req.Len(found.Results, 1)
	req.Equal("release the kraken tomorrow", found.Results[0].Message)
	req.Equal("Alice", found.Results[0].Username)
}

func Test_Search_Requires_Terms(t *testing.T) {
	req := require.New(t)
	handler := newTestHandler(t, nil)

	for _, path := range []string{"/search", "/search?q=", "/search?q=%20%20"} {
		rec := get(handler, path)
		req.Equal(http.StatusBadRequest, rec.Code, "path=%s", path)
		req.Equal(`{"error":"Invalid input"}`, strings.TrimSpace(rec.Body.String()))
	}
}

func Test_Search_Limit_Caps_Results(t *testing.T) {
	req := require.New(t)
	handler := newTestHandler(t, nil)

	for i := 0; i < 5; i++ {
		postJSON(handler, "/send", `{"username":"Alice","message":"kraken sighting number `+string(rune('0'+i))+`"}`)
	}
	time.Sleep(100 * time.Millisecond)

	rec := get(handler, "/search?q=kraken&limit=2")
	var found wire.SearchResponse
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &found))
	req.Equal(2, found.Count)
	req.Len(found.Results, 2)
}
