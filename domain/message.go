// Package domain contains core concepts of the relay.
// A Message is immutable once stored; its ID is its position in the live
// store and doubles as the polling offset unit.
package domain

import (
	"time"
)

// WireTimeLayout is the timestamp format exposed on every wire surface.
const WireTimeLayout = time.DateTime

// AnonymousName is assigned when a sender provides no usable username.
const AnonymousName = "Anonymous"

// Message represents an immutable chat entry.
type Message struct {
	ID       int // position in the store at append time, never reassigned
	Username string
	Text     string
	At       time.Time
}

// Status is a snapshot of the relay state.
type Status struct {
	MessageCount int
}
