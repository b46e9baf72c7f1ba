package tui

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestReadInputUnblocksAfterProgramExit(t *testing.T) {
	inputCh := make(chan inputResult, 1)
	model := NewModel(inputCh)

	tuiIO := &TuiIO{
		inputCh: inputCh,
		done:    make(chan struct{}),
	}
	p := tea.NewProgram(model, tea.WithInput(nil), tea.WithoutRenderer())
	tuiIO.program = p

	exited := make(chan struct{})
	go func() {
		_, _ = p.Run()
		close(tuiIO.done)
		close(exited)
	}()

	p.Quit()
	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("program did not exit")
	}

	// The tutor goroutine loops back into ReadInput after the program has
	// quit; it must see EOF instead of blocking forever.
	errCh := make(chan error, 1)
	go func() {
		_, err := tuiIO.ReadInput()
		errCh <- err
	}()

	select {
	case err := <-errCh:
		if err != io.EOF {
			t.Fatalf("ReadInput error = %v, want io.EOF", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ReadInput still blocked after the program exited")
	}
}
