package e2e

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"

	"chat-relay/domain/event"
	"chat-relay/infrastructure/http/server"
	"chat-relay/moderation"
	"chat-relay/projection"
	"chat-relay/repositories"
	"chat-relay/runtime/workers"
	"chat-relay/services"
)

type BaseHTTPSuite struct {
	suite.Suite
	Config  Config
	BaseURL string

	own    *httptest.Server
	cancel context.CancelFunc
}

// SetupSuite loads the environment configuration, then either targets the
// configured relay or boots a private one.
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	s.BaseURL = s.Config.ServerURL
	if s.BaseURL == "" {
		s.bootRelay()
		s.BaseURL = s.own.URL
	}
}

func (s *BaseHTTPSuite) TearDownSuite() {
	if s.own != nil {
		s.own.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}
}

// bootRelay assembles the full serving stack in-process: store, moderator,
// search index, running fanout and the HTTP surface on a loopback port.
func (s *BaseHTTPSuite) bootRelay() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := repositories.NewMessageRepository(log)
	moderator, err := moderation.NewModerator(nil, '*', log)
	s.Require().NoError(err)

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(s.T().TempDir()))
	s.Require().NoError(err)
	index := projection.NewSearchIndex(writer, log)

	events := make(chan event.DomainEvent, 64)
	service := services.NewChatService(store, moderator, index, events, 0, log)

	fanout := workers.NewEventFanout(log, events, time.Second).Add(index)
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() { _ = fanout.Run(ctx) }()

	s.own = httptest.NewServer(server.NewChatServer(log, service).Routes())
}

// Call performs one HTTP exchange with logging, colors, and JSON debugging.
func (s *BaseHTTPSuite) Call(t *testing.T, name, method, path string, body []byte) (*http.Response, []byte) {
	// 1. Print a colorized header for the step in logs
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	// 2. Perform the exchange with a bounded timeout
	ctx, cancelCall := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelCall()

	request, err := http.NewRequestWithContext(ctx, method, s.BaseURL+path, bytes.NewReader(body))
	s.Require().NoError(err)
	if len(body) > 0 {
		request.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	response, err := http.DefaultClient.Do(request)
	s.Require().NoError(err, "Failed to reach relay at "+s.BaseURL)
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	s.Require().NoError(err)

	// 3. Log the exchange, with full bodies if E2E_DEBUG_JSON is enabled
	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", method, path, response.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		fmt.Fprintln(&logBuilder, "\nREQUEST:")
		fmt.Fprintln(&logBuilder, string(body))
		fmt.Fprintln(&logBuilder, "RESPONSE:")
		fmt.Fprintln(&logBuilder, string(payload))
	}
	t.Log(logBuilder.String())

	return response, payload
}
