package server

import (
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"chat-relay/domain"
	"chat-relay/infrastructure/http/wire"
)

var validate = validator.New()

func toWireMessage(message domain.Message) wire.Message {
	return wire.Message{
		ID:        message.ID,
		Username:  message.Username,
		Message:   message.Text,
		Timestamp: message.At.Format(domain.WireTimeLayout),
	}
}

// toWireMessages never returns nil, an empty history must serialize as
// "[]" and not "null".
func toWireMessages(messages []domain.Message) []wire.Message {
	return lo.Map(messages, func(item domain.Message, _ int) wire.Message {
		return toWireMessage(item)
	})
}
