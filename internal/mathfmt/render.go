// Package mathfmt converts LaTeX-style math markup to Unicode for terminal
// display. Render handles a complete text; StreamRenderer handles model
// output incrementally as it streams in.
//
// 渲染是尽力而为的：不认识的命令原样输出，绝不报错，
// 数学排版问题永远不能阻塞对话本身。
package mathfmt

import (
	"regexp"
	"strings"
)

// greek maps LaTeX command names (without backslash) to Greek letters.
var greek = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ε",
	"zeta": "ζ", "eta": "η", "theta": "θ", "iota": "ι", "kappa": "κ",
	"lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ", "pi": "π",
	"rho": "ρ", "sigma": "σ", "tau": "τ", "upsilon": "υ", "phi": "φ",
	"chi": "χ", "psi": "ψ", "omega": "ω",
	"Alpha": "Α", "Beta": "Β", "Gamma": "Γ", "Delta": "Δ", "Epsilon": "Ε",
	"Zeta": "Ζ", "Eta": "Η", "Theta": "Θ", "Iota": "Ι", "Kappa": "Κ",
	"Lambda": "Λ", "Mu": "Μ", "Nu": "Ν", "Xi": "Ξ", "Pi": "Π",
	"Rho": "Ρ", "Sigma": "Σ", "Tau": "Τ", "Upsilon": "Υ", "Phi": "Φ",
	"Chi": "Χ", "Psi": "Ψ", "Omega": "Ω",
}

// operators maps LaTeX command names to mathematical operator symbols.
var operators = map[string]string{
	"pm": "±", "mp": "∓", "times": "×", "div": "÷", "cdot": "·",
	"neq": "≠", "leq": "≤", "geq": "≥", "ll": "≪", "gg": "≫",
	"approx": "≈", "equiv": "≡", "propto": "∝", "sim": "∼",
	"simeq": "≃", "cong": "≅", "neg": "¬",
	"partial": "∂", "nabla": "∇", "infty": "∞",
	"int": "∫", "iint": "∬", "iiint": "∭", "oint": "∮",
	"sum": "∑", "prod": "∏", "coprod": "∐",
	"angle": "∠", "measuredangle": "∡", "sphericalangle": "∢",
	"perp": "⊥", "parallel": "∥", "nparallel": "∦",
	"in": "∈", "notin": "∉", "ni": "∋",
	"subset": "⊂", "supset": "⊃", "subseteq": "⊆", "supseteq": "⊇",
	"subsetneq": "⊊", "supsetneq": "⊋", "cup": "∪", "cap": "∩",
	"setminus": "∖", "emptyset": "∅", "varnothing": "∅",
	"forall": "∀", "exists": "∃", "nexists": "∄",
	"therefore": "∴", "because": "∵",
	"wedge": "∧", "vee": "∨", "oplus": "⊕", "ominus": "⊖",
	"otimes": "⊗", "oslash": "⊘", "odot": "⊙",
	"to": "→", "rightarrow": "→", "leftarrow": "←",
	"leftrightarrow": "↔", "uparrow": "↑", "downarrow": "↓",
	"Rightarrow": "⇒", "Leftarrow": "⇐", "Leftrightarrow": "⇔",
	"mapsto": "↦", "longmapsto": "⟼",
	"deg": "°", "prime": "′", "dprime": "″", "tprime": "‴",
}

// blackboard maps the single letter in \mathbb{X} to its double-struck form.
var blackboard = map[string]string{
	"N": "ℕ", "Z": "ℤ", "Q": "ℚ", "R": "ℝ", "C": "ℂ",
	"H": "ℍ", "P": "ℙ", "E": "𝔼",
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴', '5': '⁵',
	'6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹', '+': '⁺', '-': '⁻',
	'=': '⁼', '(': '⁽', ')': '⁾', 'n': 'ⁿ', 'i': 'ⁱ', 'x': 'ˣ',
}

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄', '5': '₅',
	'6': '₆', '7': '₇', '8': '₈', '9': '₉', '+': '₊', '-': '₋',
	'=': '₌', '(': '₍', ')': '₎', 'a': 'ₐ', 'e': 'ₑ', 'h': 'ₕ',
	'i': 'ᵢ', 'j': 'ⱼ', 'k': 'ₖ', 'l': 'ₗ', 'm': 'ₘ', 'n': 'ₙ',
	'o': 'ₒ', 'p': 'ₚ', 'r': 'ᵣ', 's': 'ₛ', 't': 'ₜ', 'u': 'ᵤ',
	'v': 'ᵥ', 'x': 'ₓ',
}

// vulgar maps simple numerator/denominator pairs to vulgar fraction glyphs.
var vulgar = map[[2]string]string{
	{"1", "2"}: "½", {"1", "3"}: "⅓", {"2", "3"}: "⅔",
	{"1", "4"}: "¼", {"3", "4"}: "¾", {"1", "5"}: "⅕",
	{"2", "5"}: "⅖", {"3", "5"}: "⅗", {"4", "5"}: "⅘",
	{"1", "6"}: "⅙", {"5", "6"}: "⅚", {"1", "7"}: "⅐",
	{"1", "8"}: "⅛", {"3", "8"}: "⅜", {"5", "8"}: "⅝",
	{"7", "8"}: "⅞", {"1", "9"}: "⅑", {"1", "10"}: "⅒",
}

var (
	fracRe     = regexp.MustCompile(`\\frac\{([^}]+)\}\{([^}]+)\}`)
	sqrtRe     = regexp.MustCompile(`\\sqrt\{([^}]+)\}`)
	nrootRe    = regexp.MustCompile(`\\sqrt\[([^\]]+)\]\{([^}]+)\}`)
	limRe      = regexp.MustCompile(`\\(lim|max|min|sup|inf)_\{([^}]+)\}`)
	mathbbRe   = regexp.MustCompile(`\\mathbb\{([A-Z])\}`)
	supRe      = regexp.MustCompile(`\^\{([^}]+)\}|\^(.)`)
	subRe      = regexp.MustCompile(`_\{([^}]+)\}|_(.)`)
	textRe     = regexp.MustCompile(`\\(?:text|mathrm|mathit|mathbf)\{([^}]+)\}`)
	commandRe  = regexp.MustCompile(`\\([a-zA-Z]+)`)
	displayRe  = regexp.MustCompile(`\$\$([^$]+)\$\$`)
	inlineRe   = regexp.MustCompile(`\$([^$]+)\$`)
	equationRe = regexp.MustCompile(`(?s)\\begin\{equation\}(.*?)\\end\{equation\}`)
)

// cleanups are literal rewrites applied before the final command pass.
var cleanups = [][2]string{
	{`\left(`, "("}, {`\right)`, ")"},
	{`\left[`, "["}, {`\right]`, "]"},
	{`\left\{`, "{"}, {`\right\}`, "}"},
	{`\left|`, "|"}, {`\right|`, "|"},
	{`\,`, " "}, {`\;`, "  "},
	{`\quad`, "    "}, {`\qquad`, "        "},
}

// Render converts all recognized math spans in text to Unicode.
// Display spans ($$...$$ and equation environments) are set on their own
// lines; inline spans ($...$) are replaced in place. Text outside spans is
// untouched.
func Render(text string) string {
	if text == "" {
		return text
	}
	text = equationRe.ReplaceAllStringFunc(text, func(m string) string {
		inner := equationRe.FindStringSubmatch(m)[1]
		return "\n" + Expr(inner) + "\n"
	})
	text = displayRe.ReplaceAllStringFunc(text, func(m string) string {
		inner := displayRe.FindStringSubmatch(m)[1]
		return "\n" + Expr(inner) + "\n"
	})
	text = inlineRe.ReplaceAllStringFunc(text, func(m string) string {
		inner := inlineRe.FindStringSubmatch(m)[1]
		return Expr(inner)
	})
	return text
}

// Expr converts one math expression (span contents, without delimiters).
// The pipeline mirrors classic LaTeX-to-text rules: structural constructs
// first (they consume braces), then a single symbol pass, where any command
// without a mapping is left verbatim.
func Expr(expr string) string {
	expr = strings.TrimSpace(expr)
	expr = convertFractions(expr)
	expr = convertRoots(expr)
	expr = convertLimits(expr)
	expr = mathbbRe.ReplaceAllStringFunc(expr, func(m string) string {
		letter := mathbbRe.FindStringSubmatch(m)[1]
		if u, ok := blackboard[letter]; ok {
			return u
		}
		return m
	})
	expr = convertScripts(expr)
	expr = textRe.ReplaceAllString(expr, "$1")
	for _, c := range cleanups {
		expr = strings.ReplaceAll(expr, c[0], c[1])
	}
	expr = convertSymbols(expr)
	return expr
}

func convertFractions(expr string) string {
	return fracRe.ReplaceAllStringFunc(expr, func(m string) string {
		parts := fracRe.FindStringSubmatch(m)
		num, den := parts[1], parts[2]
		if v, ok := vulgar[[2]string{num, den}]; ok {
			return v
		}
		return "(" + num + ")/(" + den + ")"
	})
}

func convertRoots(expr string) string {
	// Nth roots first so \sqrt[3]{x} is not half-eaten by the plain rule.
	expr = nrootRe.ReplaceAllStringFunc(expr, func(m string) string {
		parts := nrootRe.FindStringSubmatch(m)
		n, content := parts[1], parts[2]
		switch n {
		case "3":
			return "∛(" + content + ")"
		case "4":
			return "∜(" + content + ")"
		default:
			return "ⁿ√(" + content + ")"
		}
	})
	return sqrtRe.ReplaceAllString(expr, "√($1)")
}

func convertLimits(expr string) string {
	return limRe.ReplaceAllStringFunc(expr, func(m string) string {
		parts := limRe.FindStringSubmatch(m)
		name, bound := parts[1], parts[2]
		bound = strings.ReplaceAll(bound, `\to`, "→")
		return name + "[" + bound + "]"
	})
}

func convertScripts(expr string) string {
	// Symbol commands inside the script body (e.g. e^{i\pi}) are resolved
	// first so the per-rune translation never splits a \command.
	expr = supRe.ReplaceAllStringFunc(expr, func(m string) string {
		return translateScript(convertSymbols(scriptContent(supRe, m)), superscripts)
	})
	expr = subRe.ReplaceAllStringFunc(expr, func(m string) string {
		return translateScript(convertSymbols(scriptContent(subRe, m)), subscripts)
	})
	return expr
}

// scriptContent extracts the script body from either the braced or the
// single-character alternative of a script regexp match.
func scriptContent(re *regexp.Regexp, m string) string {
	parts := re.FindStringSubmatch(m)
	if parts[1] != "" {
		return parts[1]
	}
	return parts[2]
}

func translateScript(content string, table map[rune]rune) string {
	var b strings.Builder
	for _, r := range content {
		if t, ok := table[r]; ok {
			b.WriteRune(t)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// convertSymbols replaces every \command whose name is a known Greek letter
// or operator; unknown commands are emitted verbatim (soft failure).
func convertSymbols(expr string) string {
	return commandRe.ReplaceAllStringFunc(expr, func(m string) string {
		name := m[1:]
		if u, ok := greek[name]; ok {
			return u
		}
		if u, ok := operators[name]; ok {
			return u
		}
		return m
	})
}
