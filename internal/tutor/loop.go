package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/faust-ai/faust/internal/level"
	"github.com/faust-ai/faust/internal/provider"
)

// turnCanceller is implemented by IO layers that let the user interrupt the
// in-flight response (Esc in the TUI).
type turnCanceller interface {
	SetTurnCancel(context.CancelFunc)
	ClearTurnCancel()
}

// runTurn sends one user question to the model and streams the reply:
//  1. Append the user turn and call Chat() with the level's system prompt
//  2. Feed text deltas through the math renderer, emitting display text
//  3. On completion, persist the raw assistant turn and save the session
//  4. On interruption, persist whatever arrived flagged as incomplete
func (t *Tutor) runTurn(ctx context.Context, input string) error {
	t.session.AddTurn(provider.RoleUser, input)

	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if tc, ok := t.io.(turnCanceller); ok {
		tc.SetTurnCancel(cancel)
		defer tc.ClearTurnCancel()
	}

	req := &provider.ChatRequest{
		Model:        t.config.Model,
		Messages:     t.session.Messages(t.config.HistoryBudget),
		SystemPrompt: level.SystemPrompt(t.session.Level),
		MaxTokens:    t.config.MaxTokens,
	}

	events, err := t.provider.Chat(turnCtx, req)
	if err != nil {
		// Nothing arrived; drop the user turn so history stays consistent.
		t.session.Turns = t.session.Turns[:len(t.session.Turns)-1]
		return fmt.Errorf("model call failed: %w", err)
	}

	// The renderer carries no state between turns.
	t.renderer.Reset()
	t.io.ThinkingStart()

	var raw, display strings.Builder
	var streamErr error

	for event := range events {
		switch event.Type {
		case provider.EventTextDelta:
			raw.WriteString(event.TextDelta)
			if out := t.renderer.Feed(event.TextDelta); out != "" {
				display.WriteString(out)
				t.io.TextDelta(out)
			}

		case provider.EventDone:
			if event.Usage != nil {
				t.session.TokensUsed += event.Usage.InputTokens + event.Usage.OutputTokens
			}

		case provider.EventError:
			streamErr = event.Error
		}
	}

	// An unterminated math span at stream end comes out as raw markup.
	if tail := t.renderer.Flush(); tail != "" {
		display.WriteString(tail)
		t.io.TextDelta(tail)
	}

	if streamErr != nil {
		return t.finishInterrupted(raw.String(), display.String(), streamErr)
	}

	t.session.AddTurn(provider.RoleAssistant, raw.String())
	if err := t.store.Save(t.session); err != nil {
		t.io.Error("Failed to save session: " + err.Error())
	}
	t.updateStatus()
	t.io.TextDone(display.String())
	return nil
}

// finishInterrupted persists a partial reply flagged as incomplete. The
// partial text is never silently discarded.
func (t *Tutor) finishInterrupted(raw, display string, streamErr error) error {
	if raw != "" {
		t.session.AddIncompleteTurn(raw)
	}
	if err := t.store.Save(t.session); err != nil {
		t.io.Error("Failed to save session: " + err.Error())
	}
	t.updateStatus()
	t.io.TextDone(display)

	if errors.Is(streamErr, context.Canceled) {
		// User-initiated interrupt: note it and keep the REPL alive.
		t.io.SystemMessage("Response interrupted. The partial answer was kept.")
		return nil
	}
	return fmt.Errorf("stream error: %w", streamErr)
}
