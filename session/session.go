// Package session holds the state one terminal user drags around:
// who they are and how much of the history they have already seen.
package session

import "sync"

// Session is shared between the console loop and the poller goroutine,
// every access goes through the mutex.
type Session struct {
	mu       sync.Mutex
	username string
	lastSeen int
}

func New(username string) *Session {
	return &Session{username: username}
}

func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

func (s *Session) Rename(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
}

func (s *Session) LastSeen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// AdvanceTo moves the seen offset forward, never backward. The poller and
// an optimistic send can race, the larger offset always wins so nothing is
// ever shown twice.
func (s *Session) AdvanceTo(offset int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset > s.lastSeen {
		s.lastSeen = offset
	}
}

// Increment bumps the offset by one, used right after a successful send so
// the poller does not echo the user's own message back.
func (s *Session) Increment() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen++
}
