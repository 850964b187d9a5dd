package services

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/moderation"
	"chat-relay/projection"
	"chat-relay/repositories"
)

func newTestService(t *testing.T, dictionary []string, events chan event.DomainEvent, maxContentLength int) (*ChatService, *repositories.MessageRepository, *projection.SearchIndex) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	store := repositories.NewMessageRepository(log)
	moderator, err := moderation.NewModerator(dictionary, '*', log)
	require.NoError(t, err)

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	index := projection.NewSearchIndex(writer, log)

	return NewChatService(store, moderator, index, events, maxContentLength, log), store, index
}

func Test_PostMessage_Normalizes_Username(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 8)
	service, _, _ := newTestService(t, nil, events, 0)

	tests := []struct {
		name     string
		username string
		expected string
	}{
		{"Empty becomes Anonymous", "", "Anonymous"},
		{"Whitespace becomes Anonymous", "   ", "Anonymous"},
		{"Real name is trimmed", "  Alice  ", "Alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message, err := service.PostMessage(context.Background(), domain.PostMessageCommand{Username: tt.username, Text: "hello"})
			req.NoError(err)
			req.Equal(tt.expected, message.Username)
		})
	}
}

func Test_PostMessage_Rejects_Empty_Text(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 8)
	service, store, _ := newTestService(t, nil, events, 0)

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := service.PostMessage(context.Background(), domain.PostMessageCommand{Username: "Alice", Text: text})
		req.ErrorIs(err, errors.ErrEmptyMessage)
	}
	req.Zero(store.Count())
	req.Empty(events)
}

func Test_PostMessage_Censors_Before_Store(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 8)
	service, store, _ := newTestService(t, []string{"ratburger"}, events, 0)

	// When a forbidden word goes through
	message, err := service.PostMessage(context.Background(), domain.PostMessageCommand{
		Username: "Alice",
		Text:     "this ratburger will self destruct in 5 seconds",
	})
	req.NoError(err)

	// Then the store only ever sees the censored text
	req.Equal("this ********* will self destruct in 5 seconds", message.Text)
	stored, ok := store.Get(message.ID)
	req.True(ok)
	req.Equal(message.Text, stored.Text)

	// And so does the emitted event
	evt := <-events
	appended, ok := evt.(event.MessageAppended)
	req.True(ok)
	req.Equal(message, appended.Message)
}

func Test_PostMessage_Trims_Text_Before_Store(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 8)
	service, _, _ := newTestService(t, nil, events, 0)

	message, err := service.PostMessage(context.Background(), domain.PostMessageCommand{Username: "Bob", Text: "  spaced out \n"})
	req.NoError(err)
	req.Equal("spaced out", message.Text)
}

func Test_PostMessage_Stamps_Time_When_Missing(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 8)
	service, _, _ := newTestService(t, nil, events, 0)

	before := time.Now()
	message, err := service.PostMessage(context.Background(), domain.PostMessageCommand{Username: "Bob", Text: "no clock given"})
	req.NoError(err)
	req.False(message.At.Before(before))
	req.False(message.At.After(time.Now()))

	// An explicit timestamp is kept as is
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	message, err = service.PostMessage(context.Background(), domain.PostMessageCommand{Username: "Bob", Text: "fixed clock", At: at})
	req.NoError(err)
	req.Equal(at, message.At)
}

func Test_PostMessage_Enforces_Max_Content_Length(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 8)
	service, store, _ := newTestService(t, nil, events, 10)

	_, err := service.PostMessage(context.Background(), domain.PostMessageCommand{Username: "Alice", Text: strings.Repeat("x", 11)})
	req.ErrorIs(err, errors.ErrMessageTooLong)
	req.Zero(store.Count())

	// Limit counts runes, not bytes
	_, err = service.PostMessage(context.Background(), domain.PostMessageCommand{Username: "Alice", Text: strings.Repeat("é", 10)})
	req.NoError(err)
}

func Test_PostMessage_Drops_Event_When_Buffer_Full(t *testing.T) {
	req := require.New(t)
	// Nobody reads this channel, the service must not block on it
	events := make(chan event.DomainEvent)
	service, store, _ := newTestService(t, nil, events, 0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := service.PostMessage(context.Background(), domain.PostMessageCommand{Username: "Alice", Text: "still accepted"})
		req.NoError(err)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("PostMessage blocked on a full event buffer")
	}
	req.Equal(1, store.Count())
}

func Test_GetMessages_And_Status(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 8)
	service, _, _ := newTestService(t, nil, events, 0)

	for _, text := range []string{"one", "two", "three"} {
		_, err := service.PostMessage(context.Background(), domain.PostMessageCommand{Username: "Alice", Text: text})
		req.NoError(err)
	}

	messages, total := service.GetMessages(1)
	req.Equal(3, total)
	req.Len(messages, 2)
	req.Equal("two", messages[0].Text)

	req.Equal(domain.Status{MessageCount: 3}, service.GetStatus())
}

func Test_Search_Rejects_Blank_Terms(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 8)
	service, _, _ := newTestService(t, nil, events, 0)

	for _, terms := range []string{"", "   "} {
		_, err := service.Search(context.Background(), terms, 10)
		req.ErrorIs(err, errors.ErrInvalidInput)
	}
}

func Test_Search_Finds_Indexed_Messages(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 8)
	service, _, index := newTestService(t, nil, events, 0)

	message, err := service.PostMessage(context.Background(), domain.PostMessageCommand{Username: "Clara", Text: "deploy the kraken tomorrow"})
	req.NoError(err)

	// The fanout normally feeds the index, do it by hand here
	req.NoError(index.Index(message))
	time.Sleep(50 * time.Millisecond)

	results, err := service.Search(context.Background(), "kraken", 10)
	req.NoError(err)
	req.Len(results, 1)
	req.Equal(message.ID, results[0].ID)
}
