package level

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"child", Child},
		{"normal", Normal},
		{"academic", Academic},
		{"CHILD", Child},
		{"  Academic ", Academic},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "expert", "norma", "phd"} {
		got, err := Parse(in)
		if !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("Parse(%q): err = %v, want ErrInvalidLevel", in, err)
		}
		// Callers that ignore the error still get a safe default.
		if got != Default {
			t.Errorf("Parse(%q) = %v, want Default", in, got)
		}
	}
}

func TestSystemPromptDistinctNonEmpty(t *testing.T) {
	seen := make(map[string]Level)
	for _, l := range All() {
		p := SystemPrompt(l)
		if p == "" {
			t.Fatalf("SystemPrompt(%v) is empty", l)
		}
		if prev, dup := seen[p]; dup {
			t.Fatalf("SystemPrompt(%v) identical to SystemPrompt(%v)", l, prev)
		}
		seen[p] = l
	}
}

func TestSystemPromptContainsLevelMarker(t *testing.T) {
	cases := map[Level]string{
		Child:    "CHILD MODE",
		Normal:   "NORMAL MODE",
		Academic: "ACADEMIC MODE",
	}
	for l, marker := range cases {
		if p := SystemPrompt(l); !strings.Contains(p, marker) {
			t.Errorf("SystemPrompt(%v) missing %q", l, marker)
		}
	}
}

func TestGreetingDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for _, l := range All() {
		g := Greeting(l)
		if g == "" {
			t.Fatalf("Greeting(%v) is empty", l)
		}
		if seen[g] {
			t.Fatalf("Greeting(%v) duplicates another level", l)
		}
		seen[g] = true
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, l := range All() {
		got, err := Parse(l.String())
		if err != nil {
			t.Fatalf("Parse(%v.String()): %v", l, err)
		}
		if got != l {
			t.Errorf("Parse(%q) = %v, want %v", l.String(), got, l)
		}
	}
}
