package tui

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// RunTUI starts the bubbletea program in alt-screen mode and runs tutorFn
// concurrently. It blocks until either the tutor loop finishes or the user
// quits.
func RunTUI(tutorFn func(io IO) error) error {
	inputCh := make(chan inputResult, 1)
	model := NewModel(inputCh)

	// Create TuiIO early so the Esc handler can be wired before the model
	// is copied into the tea.Program.
	tuiIO := &TuiIO{
		inputCh: inputCh,
		done:    make(chan struct{}),
	}
	model.cancelTurnFn = tuiIO.CancelTurn

	p := tea.NewProgram(model, tea.WithAltScreen())
	tuiIO.program = p

	var (
		tutorErr error
		wg       sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		tutorErr = tutorFn(tuiIO)
		// Signal the TUI that the tutor loop is done
		p.Send(tutorDoneMsg{err: tutorErr})
	}()

	_, runErr := p.Run()

	// Unblock any ReadInput still waiting before joining the tutor goroutine,
	// or wg.Wait would deadlock after a mid-stream quit.
	close(tuiIO.done)
	wg.Wait()

	if runErr != nil {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return tutorErr
}
