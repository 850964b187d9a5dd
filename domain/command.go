package domain

import (
	"time"
)

// PostMessageCommand carries a sender's intent to publish a message.
// Username and Text arrive as typed by the sender; normalization happens in
// the service, not at the transport boundary.
type PostMessageCommand struct {
	Username string
	Text     string
	At       time.Time
}
