package tui

import (
	"io"
	"strings"
	"sync"
)

// BufferIO is a silent IO implementation that captures text output without
// rendering to any terminal. Used in tests.
type BufferIO struct {
	mu     sync.Mutex
	buf    strings.Builder
	system []string
	errors []string
	inputs []string
	next   int
	status Status
}

var _ IO = (*BufferIO)(nil)

// NewBufferIO creates a BufferIO that will serve the given inputs from
// ReadInput, then io.EOF.
func NewBufferIO(inputs ...string) *BufferIO {
	return &BufferIO{inputs: inputs}
}

// Output returns all captured streamed text.
func (b *BufferIO) Output() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// SystemMessages returns captured system notices in order.
func (b *BufferIO) SystemMessages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.system...)
}

// Errors returns captured error messages in order.
func (b *BufferIO) Errors() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.errors...)
}

func (b *BufferIO) ReadInput() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.next >= len(b.inputs) {
		return "", io.EOF
	}
	in := b.inputs[b.next]
	b.next++
	return in, nil
}

func (b *BufferIO) UserMessage(_ string) {}
func (b *BufferIO) ThinkingStart()       {}

func (b *BufferIO) TextDelta(delta string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.WriteString(delta)
}

func (b *BufferIO) TextDone(_ string) {}

func (b *BufferIO) SystemMessage(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.system = append(b.system, text)
}

func (b *BufferIO) Error(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errors = append(b.errors, msg)
}

func (b *BufferIO) SetStatus(s Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = s
}

// LastStatus returns the most recently set status.
func (b *BufferIO) LastStatus() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}
