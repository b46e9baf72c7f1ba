// Package tui defines the IO interface between the tutoring loop and the
// user interface layer, plus PlainIO (terminal fallback) and TuiIO (bubbletea).
package tui

import "github.com/faust-ai/faust/internal/level"

// Status is what the status bar shows about the current session.
type Status struct {
	Username string
	Session  string
	Level    level.Level
	Tokens   int
}

// IO is the contract between the tutoring loop and the UI layer.
// Every method maps to a distinct visual event — this separation ensures
// the loop never depends on any specific rendering implementation.
type IO interface {
	// ReadInput blocks until the user submits a line of input.
	// Returns ("", io.EOF) when the user quits.
	ReadInput() (string, error)

	// UserMessage displays the user's submitted message in the output area.
	UserMessage(text string)

	// ThinkingStart signals that the model has started processing.
	// Implementations should show a spinner or "Thinking..." indicator.
	ThinkingStart()

	// TextDelta appends an incremental display-ready text chunk. Math
	// markup has already been converted upstream.
	TextDelta(delta string)

	// TextDone signals that the current response is complete.
	// fullText contains the entire display text assembled from all deltas.
	// TUI implementations use this to trigger Markdown rendering.
	TextDone(fullText string)

	// SystemMessage displays a system-level notice (command feedback,
	// greetings, session status).
	SystemMessage(text string)

	// Error displays an error message with prominent styling.
	Error(msg string)

	// SetStatus updates the status area (user, session, level, tokens).
	SetStatus(s Status)
}
