// Package session persists tutoring conversations. Each session belongs to
// one user, has a user-chosen name (unique per user) and an academic level,
// and stores its turns exactly as the model produced them. Math markup is
// rendered at display time only, so a session replayed later re-renders
// cleanly.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/faust-ai/faust/internal/level"
	"github.com/faust-ai/faust/internal/provider"
)

// Turn is one message in a session, in the raw form it was sent or received.
type Turn struct {
	Role      provider.Role `json:"role"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	// Incomplete marks an assistant turn whose stream was interrupted;
	// the partial text is kept but flagged.
	Incomplete bool `json:"incomplete,omitempty"`
}

// Session holds the conversation state for one named tutoring session.
type Session struct {
	ID         string
	UserID     string
	Name       string
	Level      level.Level
	Turns      []Turn
	CreatedAt  time.Time
	UpdatedAt  time.Time
	TokensUsed int
}

// New creates a session for the given user with a fresh unique ID.
func New(userID, name string, lvl level.Level) *Session {
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Level:     lvl,
		CreatedAt: time.Now(),
	}
}

// AddTurn appends a turn to the history, stamping it with the current time.
func (s *Session) AddTurn(role provider.Role, content string) {
	s.Turns = append(s.Turns, Turn{Role: role, Content: content, CreatedAt: time.Now()})
}

// AddIncompleteTurn appends an assistant turn flagged as interrupted.
func (s *Session) AddIncompleteTurn(content string) {
	s.Turns = append(s.Turns, Turn{
		Role:       provider.RoleAssistant,
		Content:    content,
		CreatedAt:  time.Now(),
		Incomplete: true,
	})
}

// Clear resets the turn history and token counter.
func (s *Session) Clear() {
	s.Turns = nil
	s.TokensUsed = 0
}

// Messages converts the turn history to provider messages for the next
// model call, trimmed to the most recent turns within charBudget characters
// so long sessions do not blow the context window. A charBudget <= 0 means
// no trimming.
func (s *Session) Messages(charBudget int) []provider.Message {
	turns := s.Turns
	if charBudget > 0 {
		total := 0
		start := len(turns)
		for i := len(turns) - 1; i >= 0; i-- {
			total += len(turns[i].Content)
			if total > charBudget {
				break
			}
			start = i
		}
		turns = turns[start:]
	}

	msgs := make([]provider.Message, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, provider.Message{Role: t.Role, Text: t.Content})
	}
	return msgs
}

// EstimateTokens returns a rough token estimate (total chars / 4).
func (s *Session) EstimateTokens() int {
	total := 0
	for _, t := range s.Turns {
		total += len(t.Content)
	}
	return total / 4
}
