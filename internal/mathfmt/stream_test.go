package mathfmt

import "testing"

// feedAll feeds chunks in order and returns everything emitted, Flush included.
func feedAll(t *testing.T, r *StreamRenderer, chunks ...string) string {
	t.Helper()
	var out string
	for _, c := range chunks {
		out += r.Feed(c)
	}
	return out + r.Flush()
}

func TestStreamPlainPassthrough(t *testing.T) {
	r := NewStreamRenderer()
	if got := r.Feed("Let us compute "); got != "Let us compute " {
		t.Errorf("Feed = %q, want immediate passthrough", got)
	}
	if got := r.Feed("the derivative."); got != "the derivative." {
		t.Errorf("Feed = %q, want immediate passthrough", got)
	}
	if got := r.Flush(); got != "" {
		t.Errorf("Flush = %q, want empty", got)
	}
}

func TestStreamInlineSpanSingleChunk(t *testing.T) {
	r := NewStreamRenderer()
	got := feedAll(t, r, `So $x^2$ grows.`)
	if got != "So x² grows." {
		t.Errorf("got %q", got)
	}
}

func TestStreamSpanSplitAcrossChunks(t *testing.T) {
	r := NewStreamRenderer()
	got := feedAll(t, r, `The value $\fr`, `ac{1}{2}$ here`)
	if got != "The value ½ here" {
		t.Errorf("got %q", got)
	}
}

func TestStreamSpanWithheldUntilClosed(t *testing.T) {
	r := NewStreamRenderer()
	if got := r.Feed(`$\alpha + `); got != "" {
		t.Errorf("open span leaked %q before close", got)
	}
	if got := r.Feed(`\beta$`); got != "α + β" {
		t.Errorf("got %q on close", got)
	}
}

func TestStreamDisplaySpanSplitDelimiter(t *testing.T) {
	// The "$$" delimiters arrive split across chunk boundaries.
	r := NewStreamRenderer()
	got := feedAll(t, r, "$", "$", `x \to \infty`, "$", "$")
	if got != "\nx → ∞\n" {
		t.Errorf("got %q", got)
	}
}

func TestStreamLoneDollarInsideDisplay(t *testing.T) {
	r := NewStreamRenderer()
	got := feedAll(t, r, `$$cost: $5 + x$$`)
	if got != "\ncost: $5 + x\n" {
		t.Errorf("got %q", got)
	}
}

func TestStreamAdjacentSpans(t *testing.T) {
	r := NewStreamRenderer()
	got := feedAll(t, r, `$\alpha$$\beta$`)
	// First span closes, the next '$' opens a new one immediately.
	if got != "αβ" {
		t.Errorf("got %q", got)
	}
}

func TestStreamUnterminatedSpanFlushedRaw(t *testing.T) {
	cases := []struct {
		chunks []string
		want   string
	}{
		{[]string{`partial $\frac{1}{`}, `partial $\frac{1}{`},
		{[]string{`$$e^x + `}, `$$e^x + `},
		{[]string{`ends with $`}, `ends with $`},
		{[]string{`$$almost$`}, `$$almost$`},
	}
	for _, c := range cases {
		r := NewStreamRenderer()
		if got := feedAll(t, r, c.chunks...); got != c.want {
			t.Errorf("chunks %q: got %q, want %q", c.chunks, got, c.want)
		}
	}
}

func TestStreamEscapedDollar(t *testing.T) {
	r := NewStreamRenderer()
	got := feedAll(t, r, `costs \$5 total`)
	if got != "costs $5 total" {
		t.Errorf("got %q", got)
	}
}

func TestStreamEscapeSplitAcrossChunks(t *testing.T) {
	r := NewStreamRenderer()
	got := feedAll(t, r, `costs \`, `$5`)
	if got != "costs $5" {
		t.Errorf("got %q", got)
	}
}

func TestStreamBackslashNotBeforeDollar(t *testing.T) {
	r := NewStreamRenderer()
	got := feedAll(t, r, `path \n done`)
	if got != `path \n done` {
		t.Errorf("got %q", got)
	}
}

func TestStreamResetBetweenTurns(t *testing.T) {
	r := NewStreamRenderer()
	r.Feed(`$unfinished`)
	r.Reset()
	got := feedAll(t, r, `fresh $x^2$ turn`)
	if got != "fresh x² turn" {
		t.Errorf("buffered state leaked across Reset: %q", got)
	}
}
