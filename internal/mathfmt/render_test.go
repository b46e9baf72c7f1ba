package mathfmt

import "testing"

func TestRenderNoMarkupPassthrough(t *testing.T) {
	in := "Solve x^2" // no delimiters: not a math span, untouched
	if got := Render(in); got != in {
		t.Errorf("Render(%q) = %q, want unchanged", in, got)
	}
}

func TestRenderInline(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`$x^2$`, "x²"},
		{`$f(x) = x^2$`, "f(x) = x²"},
		{`$a_1 + a_2$`, "a₁ + a₂"},
		{`$\alpha + \beta$`, "α + β"},
		{`$\pi \approx 3.14$`, "π ≈ 3.14"},
		{`$x \to \infty$`, "x → ∞"},
		{`$\frac{1}{2}$`, "½"},
		{`$\frac{dy}{dx}$`, "(dy)/(dx)"},
		{`$\sqrt{2}$`, "√(2)"},
		{`$\sqrt[3]{8}$`, "∛(8)"},
		{`$\mathbb{R}$`, "ℝ"},
		{`$\lim_{x \to 0} x$`, "lim[x → 0] x"},
		{`$\left( a \right)$`, "( a )"},
		{`$\text{area} = \pi r^2$`, "area = π r²"},
	}
	for _, c := range cases {
		if got := Render(c.in); got != c.want {
			t.Errorf("Render(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRenderDisplayOwnLines(t *testing.T) {
	got := Render(`The identity $$e^{i\pi} + 1 = 0$$ holds.`)
	want := "The identity \neⁱπ + 1 = 0\n holds."
	if got != want {
		t.Errorf("Render display = %q, want %q", got, want)
	}
}

func TestRenderEquationEnvironment(t *testing.T) {
	got := Render("\\begin{equation}a \\neq b\\end{equation}")
	want := "\na ≠ b\n"
	if got != want {
		t.Errorf("Render equation = %q, want %q", got, want)
	}
}

func TestRenderMixedTextAndSpans(t *testing.T) {
	got := Render(`Note $\theta$ and $\phi$ differ.`)
	want := "Note θ and φ differ."
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestExprUnknownCommandVerbatim(t *testing.T) {
	// No Unicode mapping: soft failure, original markup preserved.
	if got := Expr(`\oiiint f`); got != `\oiiint f` {
		t.Errorf("Expr = %q, want verbatim", got)
	}
}

func TestExprDerivativeNotation(t *testing.T) {
	got := Expr(`\frac{d}{dx} x^3 = 3x^2`)
	want := "(d)/(dx) x³ = 3x²"
	if got != want {
		t.Errorf("Expr = %q, want %q", got, want)
	}
}

func TestExprCommandPrefixes(t *testing.T) {
	// \in must not swallow the opening of \int or \infty.
	cases := []struct{ in, want string }{
		{`\int_0^1 f`, "∫₀¹ f"},
		{`x \in \mathbb{N}`, "x ∈ ℕ"},
		{`\infty`, "∞"},
		{`\sup_{n} a_n`, "sup[n] aₙ"},
	}
	for _, c := range cases {
		if got := Expr(c.in); got != c.want {
			t.Errorf("Expr(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExprBracedScripts(t *testing.T) {
	if got := Expr(`x^{10} + y_{ij}`); got != "x¹⁰ + yᵢⱼ" {
		t.Errorf("Expr = %q", got)
	}
}
