// Package tutor orchestrates the interactive loop between the student, the
// model, and the session store. It intercepts slash commands, streams the
// model's reply through the math renderer, and persists every turn.
package tutor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/faust-ai/faust/internal/auth"
	"github.com/faust-ai/faust/internal/config"
	"github.com/faust-ai/faust/internal/level"
	"github.com/faust-ai/faust/internal/mathfmt"
	"github.com/faust-ai/faust/internal/provider"
	"github.com/faust-ai/faust/internal/session"
	"github.com/faust-ai/faust/internal/tui"
)

// Tutor runs one user's tutoring REPL over a single active session.
type Tutor struct {
	provider provider.Provider
	config   *config.Config
	users    *auth.Service
	store    session.Store
	user     *auth.User
	session  *session.Session
	io       tui.IO
	renderer *mathfmt.StreamRenderer
}

// New creates a Tutor for the given user and active session.
func New(p provider.Provider, cfg *config.Config, users *auth.Service, store session.Store, user *auth.User, sess *session.Session, ui tui.IO) *Tutor {
	return &Tutor{
		provider: p,
		config:   cfg,
		users:    users,
		store:    store,
		user:     user,
		session:  sess,
		io:       ui,
		renderer: mathfmt.NewStreamRenderer(),
	}
}

// Run starts the interactive REPL loop.
func (t *Tutor) Run(ctx context.Context) error {
	t.updateStatus()
	if len(t.session.Turns) == 0 {
		t.io.SystemMessage(level.Greeting(t.session.Level))
	}

	for {
		input, err := t.io.ReadInput()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		if input == "" {
			continue
		}

		// Slash commands are intercepted before sending to the model.
		if strings.HasPrefix(input, "/") {
			handled, shouldQuit := t.handleSlashCommand(input)
			if shouldQuit {
				return nil
			}
			if handled {
				continue
			}
		}

		t.io.UserMessage(input)

		if err := t.runTurn(ctx, input); err != nil {
			if ctx.Err() != nil {
				t.io.SystemMessage("\nInterrupted.")
				_ = t.store.Save(t.session)
				return ctx.Err()
			}
			t.io.Error(err.Error())
		}
	}

	_ = t.store.Save(t.session)
	return nil
}

// RunOnce answers a single question and exits (non-interactive mode).
func (t *Tutor) RunOnce(ctx context.Context, question string) error {
	t.io.UserMessage(question)
	return t.runTurn(ctx, question)
}

// handleSlashCommand processes built-in commands.
// Returns (handled, shouldQuit).
func (t *Tutor) handleSlashCommand(input string) (bool, bool) {
	parts := strings.SplitN(strings.TrimSpace(input), " ", 2)
	cmd := parts[0]
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}

	switch cmd {
	case "/quit", "/exit", "/q":
		_ = t.store.Save(t.session)
		t.io.SystemMessage("Bye.")
		return true, true
	case "/help":
		return t.handleHelp(), false
	case "/level":
		return t.handleLevel(arg), false
	case "/new":
		return t.handleNew(arg), false
	case "/sessions":
		return t.handleSessions(), false
	case "/resume":
		return t.handleResume(arg), false
	case "/rename":
		return t.handleRename(arg), false
	case "/delete":
		return t.handleDelete(arg), false
	case "/history":
		t.io.SystemMessage(formatHistory(t.session.Turns))
		return true, false
	case "/clear":
		t.session.Clear()
		_ = t.store.Save(t.session)
		t.updateStatus()
		t.io.SystemMessage("Session cleared.")
		return true, false
	default:
		t.io.Error(fmt.Sprintf("Unknown command %q. Try /help.", cmd))
		return true, false
	}
}

func (t *Tutor) handleHelp() bool {
	help := `Available commands:
  /help               Show this help message
  /level              Show the current academic level
  /level set <name>   Change level (child | normal | academic)
  /new [name]         Save current session and start a new one
  /sessions           List your saved sessions
  /resume <name>      Switch to a saved session
  /rename <name>      Rename the current session
  /delete <name>      Delete a saved session
  /history            Show the conversation so far
  /clear              Clear the conversation history
  /quit               Save and exit`
	t.io.SystemMessage(help)
	return true
}

func (t *Tutor) handleLevel(arg string) bool {
	if arg == "" {
		var sb strings.Builder
		fmt.Fprintf(&sb, "Current level: %s — %s\n", t.session.Level, t.session.Level.Description())
		sb.WriteString("Available levels:\n")
		for _, l := range level.All() {
			fmt.Fprintf(&sb, "  %-9s %s\n", l, l.Description())
		}
		sb.WriteString("Usage: /level set <name>")
		t.io.SystemMessage(sb.String())
		return true
	}

	// Accept both "/level set academic" and the shorthand "/level academic".
	fields := strings.Fields(arg)
	if fields[0] == "set" {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		t.io.SystemMessage("Usage: /level set <child|normal|academic>")
		return true
	}

	lvl, err := level.Parse(fields[0])
	if err != nil {
		// Level stays unchanged on a bad name.
		t.io.Error(err.Error())
		return true
	}

	t.session.Level = lvl
	_ = t.store.Save(t.session)
	if err := t.users.SetLevel(t.user.ID, lvl); err == nil {
		t.user.Level = lvl
	}
	t.updateStatus()
	t.io.SystemMessage(fmt.Sprintf("Level set to %s (%s). Takes effect from the next question.", lvl, lvl.Description()))
	return true
}

func (t *Tutor) handleNew(name string) bool {
	if name == "" {
		name = "chat-" + time.Now().Format("20060102-150405")
	}

	fresh := session.New(t.user.ID, name, t.session.Level)
	if err := t.store.Create(fresh); err != nil {
		// An existing session with this name is left untouched.
		t.io.Error(err.Error())
		return true
	}

	_ = t.store.Save(t.session)
	t.session = fresh
	t.updateStatus()
	t.io.SystemMessage(fmt.Sprintf("Started session %q.", name))
	t.io.SystemMessage(level.Greeting(fresh.Level))
	return true
}

func (t *Tutor) handleSessions() bool {
	infos, err := t.store.List(t.user.ID)
	if err != nil {
		t.io.Error("Failed to list sessions: " + err.Error())
		return true
	}
	if len(infos) == 0 {
		t.io.SystemMessage("No saved sessions.")
		return true
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Saved sessions (%d):\n", len(infos))
	for i, info := range infos {
		if i >= 20 {
			fmt.Fprintf(&sb, "  ... and %d more\n", len(infos)-20)
			break
		}
		marker := " "
		if info.Name == t.session.Name {
			marker = "*"
		}
		fmt.Fprintf(&sb, "%s %-24s %-9s %s  %d turns\n",
			marker,
			info.Name,
			info.Level,
			info.UpdatedAt.Format("2006-01-02 15:04"),
			info.Turns,
		)
	}
	sb.WriteString("Use /resume <name> to switch.")
	t.io.SystemMessage(sb.String())
	return true
}

func (t *Tutor) handleResume(name string) bool {
	if name == "" {
		t.io.SystemMessage("Usage: /resume <session-name>")
		return true
	}

	target, ok := t.resolveName(name)
	if !ok {
		return true
	}
	if target == t.session.Name {
		t.io.SystemMessage(fmt.Sprintf("Already in session %q.", target))
		return true
	}

	loaded, err := t.store.Load(t.user.ID, target)
	if err != nil {
		t.io.Error("Failed to load session: " + err.Error())
		return true
	}

	_ = t.store.Save(t.session)
	t.session = loaded
	t.updateStatus()
	t.io.SystemMessage(fmt.Sprintf("Resumed session %q (%d turns, level %s).",
		loaded.Name, len(loaded.Turns), loaded.Level))
	return true
}

func (t *Tutor) handleRename(newName string) bool {
	if newName == "" {
		t.io.SystemMessage("Usage: /rename <new-name>")
		return true
	}
	if err := t.store.Rename(t.user.ID, t.session.Name, newName); err != nil {
		t.io.Error(err.Error())
		return true
	}
	old := t.session.Name
	t.session.Name = newName
	t.updateStatus()
	t.io.SystemMessage(fmt.Sprintf("Renamed %q to %q.", old, newName))
	return true
}

func (t *Tutor) handleDelete(name string) bool {
	if name == "" {
		t.io.SystemMessage("Usage: /delete <session-name>")
		return true
	}
	if name == t.session.Name {
		t.io.Error("Cannot delete the active session. Switch with /resume or /new first.")
		return true
	}
	if err := t.store.Delete(t.user.ID, name); err != nil {
		t.io.Error(err.Error())
		return true
	}
	t.io.SystemMessage(fmt.Sprintf("Deleted session %q.", name))
	return true
}

// resolveName matches a user-typed session name exactly, or by unique
// prefix when no exact match exists.
func (t *Tutor) resolveName(name string) (string, bool) {
	infos, err := t.store.List(t.user.ID)
	if err != nil {
		t.io.Error("Failed to list sessions: " + err.Error())
		return "", false
	}

	var matches []string
	for _, info := range infos {
		if info.Name == name {
			return name, true
		}
		if strings.HasPrefix(info.Name, name) {
			matches = append(matches, info.Name)
		}
	}

	switch len(matches) {
	case 0:
		t.io.Error(fmt.Sprintf("No session found matching %q.", name))
		return "", false
	case 1:
		return matches[0], true
	default:
		var sb strings.Builder
		fmt.Fprintf(&sb, "Ambiguous name %q matches %d sessions:\n", name, len(matches))
		for _, m := range matches {
			fmt.Fprintf(&sb, "  %s\n", m)
		}
		sb.WriteString("Type more of the name.")
		t.io.SystemMessage(sb.String())
		return "", false
	}
}

func (t *Tutor) updateStatus() {
	tokens := t.session.TokensUsed
	if tokens == 0 {
		// Providers do not always report usage; estimate from the transcript.
		tokens = t.session.EstimateTokens()
	}
	t.io.SetStatus(tui.Status{
		Username: t.user.Username,
		Session:  t.session.Name,
		Level:    t.session.Level,
		Tokens:   tokens,
	})
}

// formatHistory renders the turn history for /history, with math markup
// converted for display.
func formatHistory(turns []session.Turn) string {
	if len(turns) == 0 {
		return "No history."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n=== History (%d turns) ===\n", len(turns))
	for i, turn := range turns {
		who := "You"
		if turn.Role == provider.RoleAssistant {
			who = "Faust"
		}
		flag := ""
		if turn.Incomplete {
			flag = " [incomplete]"
		}
		fmt.Fprintf(&sb, "[%d] %s%s: %s\n", i, who, flag,
			truncate(mathfmt.Render(turn.Content), 200))
	}
	sb.WriteString("===")
	return sb.String()
}

// truncate cuts s to at most maxLen runes. Cutting on a rune boundary keeps
// rendered math glyphs intact.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
