package event

import (
	"chat-relay/domain"
)

// DomainEvent is implemented by everything observable through the fanout.
type DomainEvent interface {
	Kind() string
}

// MessageAppended is emitted once a message has been accepted by the store.
// The embedded Message is the stored form: normalized username, trimmed and
// censored text, assigned ID.
type MessageAppended struct {
	Message domain.Message
}

func (m MessageAppended) Kind() string {
	return "message_appended"
}
