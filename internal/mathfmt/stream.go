package mathfmt

import "strings"

// streamState tracks where the renderer is inside a chunk stream.
type streamState int

const (
	// stateIdle: plain text, emitted immediately.
	stateIdle streamState = iota
	// stateSawDollar: one '$' seen; the next byte decides inline vs display.
	stateSawDollar
	// stateInline: buffering a $...$ span.
	stateInline
	// stateDisplay: buffering a $$...$$ span.
	stateDisplay
	// stateDisplayClosing: inside a display span, one closing '$' seen.
	stateDisplayClosing
)

// StreamRenderer rewrites math spans in a chunked text stream.
//
// Plain text passes through as soon as it arrives. Once a span delimiter is
// seen the span is buffered until its closing delimiter, then emitted
// rendered. Flush returns whatever is still buffered — an unterminated span
// at stream end is emitted as the raw original markup, never dropped.
//
// A StreamRenderer carries state across Feed calls, so delimiters split
// between chunks are handled. It must be Reset at the start of each new
// assistant turn.
type StreamRenderer struct {
	state streamState
	span  strings.Builder // span contents, without delimiters
	// escape is set when the last idle byte was a backslash, withheld so
	// "\$" can be emitted as a literal dollar sign.
	escape bool
}

// NewStreamRenderer returns a renderer in the idle state.
func NewStreamRenderer() *StreamRenderer {
	return &StreamRenderer{}
}

// Feed consumes the next chunk and returns the display-ready text produced
// by it. The returned string may be empty while a span is being buffered.
func (r *StreamRenderer) Feed(chunk string) string {
	var out strings.Builder
	for i := 0; i < len(chunk); i++ {
		c := chunk[i]

		switch r.state {
		case stateIdle:
			if r.escape {
				r.escape = false
				if c == '$' {
					out.WriteByte('$')
					continue
				}
				out.WriteByte('\\')
				// fall through to process c normally
			}
			switch c {
			case '\\':
				r.escape = true
			case '$':
				r.state = stateSawDollar
			default:
				out.WriteByte(c)
			}

		case stateSawDollar:
			if c == '$' {
				r.state = stateDisplay
			} else {
				r.state = stateInline
				r.span.WriteByte(c)
			}

		case stateInline:
			if c == '$' {
				out.WriteString(Expr(r.span.String()))
				r.resetSpan()
			} else {
				r.span.WriteByte(c)
			}

		case stateDisplay:
			if c == '$' {
				r.state = stateDisplayClosing
			} else {
				r.span.WriteByte(c)
			}

		case stateDisplayClosing:
			if c == '$' {
				out.WriteString("\n" + Expr(r.span.String()) + "\n")
				r.resetSpan()
			} else {
				// Lone '$' inside a display span belongs to the content.
				r.span.WriteByte('$')
				r.span.WriteByte(c)
				r.state = stateDisplay
			}
		}
	}
	return out.String()
}

// Flush ends the stream: any buffered span is returned as raw markup,
// delimiters included. The renderer is left ready for the next stream.
func (r *StreamRenderer) Flush() string {
	var out string
	switch r.state {
	case stateSawDollar:
		out = "$"
	case stateInline:
		out = "$" + r.span.String()
	case stateDisplay:
		out = "$$" + r.span.String()
	case stateDisplayClosing:
		out = "$$" + r.span.String() + "$"
	}
	if r.escape {
		out += "\\"
	}
	r.Reset()
	return out
}

// Reset discards all buffered state. Call before each new assistant turn so
// no partial span leaks between messages.
func (r *StreamRenderer) Reset() {
	r.state = stateIdle
	r.span.Reset()
	r.escape = false
}

func (r *StreamRenderer) resetSpan() {
	r.state = stateIdle
	r.span.Reset()
}
