package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"chat-relay/domain"
	"chat-relay/domain/search"
	"chat-relay/errors"
	"chat-relay/infrastructure/http/wire"
	"chat-relay/services"
)

// ChatServer exposes the relay over plain HTTP and JSON.
//
// Routing stays on explicit path matches: an unknown path and a wrong
// method both answer the same JSON 404, so clients only ever parse one
// error shape. JSON responses carry a permissive CORS header, the HTML
// page does not.
type ChatServer struct {
	chatService services.IChatService
	log         *slog.Logger
}

func NewChatServer(log *slog.Logger, chatService services.IChatService) *ChatServer {
	return &ChatServer{chatService: chatService, log: log}
}

func (s *ChatServer) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/send", s.handleSend)
	mux.HandleFunc("/messages", s.handleMessages)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/search", s.handleSearch)
	return RequestLogger(s.log, mux)
}

// handleIndex serves the embedded web page. The "/" pattern is also the
// catch-all, everything unrouted lands here and gets the JSON 404.
func (s *ChatServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || r.Method != http.MethodGet {
		s.writeError(w, errors.ErrNotFound)
		return
	}
	s.renderPage(w)
}

func (s *ChatServer) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, errors.ErrNotFound)
		return
	}
	var req wire.PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.ErrInvalidJSON)
		return
	}
	if err := validate.Struct(req); err != nil {
		// The only constraint on the body is a non empty message
		s.writeError(w, errors.ErrEmptyMessage)
		return
	}

	message, err := s.chatService.PostMessage(r.Context(), domain.PostMessageCommand{
		Username: req.Username,
		Text:     req.Message,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, wire.PostMessageResponse{Success: true, Message: toWireMessage(message)})
}

func (s *ChatServer) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, errors.ErrNotFound)
		return
	}
	// Anything unparsable counts as "from the beginning"
	since, _ := strconv.Atoi(r.URL.Query().Get("since"))
	messages, total := s.chatService.GetMessages(since)
	s.writeJSON(w, http.StatusOK, wire.MessagesResponse{Messages: toWireMessages(messages), Total: total})
}

func (s *ChatServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, errors.ErrNotFound)
		return
	}
	status := s.chatService.GetStatus()
	s.writeJSON(w, http.StatusOK, wire.StatusResponse{Status: wire.StatusOnline, MessageCount: status.MessageCount})
}

func (s *ChatServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, errors.ErrNotFound)
		return
	}
	terms := r.URL.Query().Get("q")
	limit := search.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	results, err := s.chatService.Search(r.Context(), terms, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, wire.SearchResponse{Results: toWireMessages(results), Count: len(results)})
}

func (s *ChatServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("Failed to encode response", "error", err)
	}
}

func (s *ChatServer) writeError(w http.ResponseWriter, err error) {
	httpErr := errors.MapToHTTPError(err)
	s.writeJSON(w, httpErr.Status, wire.ErrorResponse{Error: httpErr.Message})
}
