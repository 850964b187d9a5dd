//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"chat-relay/domain"
	"chat-relay/errors"
)

type IMessageRepository interface {
	Append(cmd domain.PostMessageCommand) (domain.Message, error)
	Since(offset int) ([]domain.Message, int)
	Get(id int) (domain.Message, bool)
	Count() int
}

// MessageRepository holds the live history in memory, append only.
// A message ID is its index in the backing slice, so IDs double as the
// polling offset: Since(n) returns everything appended after the first n
// messages. History is lost on restart, that's the deal.
type MessageRepository struct {
	mu       sync.Mutex
	messages []domain.Message
	log      *slog.Logger
}

func NewMessageRepository(log *slog.Logger) *MessageRepository {
	return &MessageRepository{log: log}
}

func (m *MessageRepository) Append(cmd domain.PostMessageCommand) (domain.Message, error) {
	if strings.TrimSpace(cmd.Text) == "" {
		return domain.Message{}, errors.ErrEmptyMessage
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	message := domain.Message{
		ID:       len(m.messages),
		Username: cmd.Username,
		Text:     cmd.Text,
		At:       cmd.At,
	}
	m.messages = append(m.messages, message)
	m.log.Debug(fmt.Sprintf("Message %d appended", message.ID))
	return message, nil
}

// Since returns a copy of every message with ID >= offset, plus the total
// count at read time. Negative offsets rewind to the start, offsets at or
// past the end return an empty slice with the current total.
func (m *MessageRepository) Since(offset int) ([]domain.Message, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := len(m.messages)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	out := make([]domain.Message, total-offset)
	copy(out, m.messages[offset:])
	return out, total
}

func (m *MessageRepository) Get(id int) (domain.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 0 || id >= len(m.messages) {
		return domain.Message{}, false
	}
	return m.messages[id], true
}

func (m *MessageRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}
