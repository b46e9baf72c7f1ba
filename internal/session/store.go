package session

import (
	"errors"
	"time"

	"github.com/faust-ai/faust/internal/level"
)

var (
	// ErrDuplicateSession is returned when a user already has a session
	// with the requested name. The existing session is left untouched.
	ErrDuplicateSession = errors.New("a session with that name already exists")

	// ErrSessionNotFound is returned when no session matches the
	// user/name pair.
	ErrSessionNotFound = errors.New("session not found")
)

// Store abstracts session persistence. Sessions are addressed by the
// owning user plus the session name.
type Store interface {
	// Create inserts a new session; ErrDuplicateSession if the user
	// already has one with that name.
	Create(s *Session) error

	// Save persists the current state of an existing session.
	Save(s *Session) error

	// Load fetches a session by owner and name.
	Load(userID, name string) (*Session, error)

	// List returns the user's session summaries, most recently
	// active first.
	List(userID string) ([]SessionInfo, error)

	// Rename changes a session's name, keeping per-user uniqueness.
	Rename(userID, oldName, newName string) error

	// Delete removes a session permanently.
	Delete(userID, name string) error

	Close() error
}

// SessionInfo is a lightweight summary of a saved session (for listing).
type SessionInfo struct {
	Name      string
	Level     level.Level
	CreatedAt time.Time
	UpdatedAt time.Time
	Turns     int
	Tokens    int
}
