package services

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/moderation"
	"chat-relay/projection"
	"chat-relay/repositories"
)

type IChatService interface {
	PostMessage(ctx context.Context, cmd domain.PostMessageCommand) (domain.Message, error)
	GetMessages(since int) ([]domain.Message, int)
	GetStatus() domain.Status
	Search(ctx context.Context, terms string, limit int) ([]domain.Message, error)
}

// ChatService normalizes and moderates incoming messages before they reach
// the store, then hands the accepted fact to the event channel. The emit is
// non blocking: when the buffer is full the event is dropped and the live
// store stays the only source of truth.
type ChatService struct {
	store            repositories.IMessageRepository
	moderator        moderation.Moderator
	searcher         projection.ISearcher
	events           chan<- event.DomainEvent
	maxContentLength int
	log              *slog.Logger
}

func NewChatService(store repositories.IMessageRepository, moderator moderation.Moderator,
	searcher projection.ISearcher, events chan<- event.DomainEvent,
	maxContentLength int, log *slog.Logger) *ChatService {
	return &ChatService{
		store:            store,
		moderator:        moderator,
		searcher:         searcher,
		events:           events,
		maxContentLength: maxContentLength,
		log:              log,
	}
}

func (s *ChatService) PostMessage(_ context.Context, cmd domain.PostMessageCommand) (domain.Message, error) {
	username := strings.TrimSpace(cmd.Username)
	if username == "" {
		username = domain.AnonymousName
	}
	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		return domain.Message{}, errors.ErrEmptyMessage
	}
	if s.maxContentLength > 0 && utf8.RuneCountInString(text) > s.maxContentLength {
		return domain.Message{}, errors.ErrMessageTooLong
	}

	info := whatlanggo.Detect(text)
	langCode := info.Lang.Iso6391()

	censored, foundWords := s.moderator.Censor(text)
	if len(foundWords) > 0 {
		s.log.Warn("Censored message content",
			"author", username,
			"lang", langCode,
			"words", foundWords)
	}

	at := cmd.At
	if at.IsZero() {
		at = time.Now()
	}
	message, err := s.store.Append(domain.PostMessageCommand{Username: username, Text: censored, At: at})
	if err != nil {
		return domain.Message{}, err
	}

	select {
	case s.events <- event.MessageAppended{Message: message}:
	default:
		s.log.Warn("Event buffer full, dropping event", "id", message.ID)
	}

	s.log.Info("Message accepted", "id", message.ID, "author", username, "text", censored, "lang", langCode)
	return message, nil
}

func (s *ChatService) GetMessages(since int) ([]domain.Message, int) {
	return s.store.Since(since)
}

func (s *ChatService) GetStatus() domain.Status {
	return domain.Status{MessageCount: s.store.Count()}
}

func (s *ChatService) Search(ctx context.Context, terms string, limit int) ([]domain.Message, error) {
	if strings.TrimSpace(terms) == "" {
		return nil, errors.ErrInvalidInput
	}
	return s.searcher.Search(ctx, terms, limit)
}
