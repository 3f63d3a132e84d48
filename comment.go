package texpp

import "strings"

// commentState is the state of the comment-stripping pass (C2).
type commentState int

const (
	cPlain commentState = iota
	cLine1               // inside a comment, discarding through the newline
	cLine2               // just past the comment's newline, eating leading whitespace
)

// Preprocess removes "%"-introduced line comments from text and returns the
// result. An unescaped "%" begins a comment that runs through (and
// including) the newline that terminates it; on the following line, leading
// spaces and tabs are also discarded, so indentation used to keep a
// commented-out line visually aligned with code doesn't reappear as stray
// whitespace in the output.
//
// Escape tracking mirrors the expansion engine's: "\\" toggles back to an
// unescaped state and "\%" protects the percent sign, so a literal "%"
// survives both this pass and the later expansion pass.
//
// Preprocess never fails; an unterminated comment at end of input is simply
// dropped.
func Preprocess(text string) string {
	var out strings.Builder
	out.Grow(len(text))

	state := cPlain
	escaped := false

	for _, c := range text {
		switch state {
		case cPlain:
			switch {
			case c == '%' && !escaped:
				state = cLine1
			case c == '\\':
				escaped = !escaped
				out.WriteRune(c)
			default:
				out.WriteRune(c)
			}
		case cLine1:
			if c == '\n' {
				state = cLine2
			}
		case cLine2:
			switch c {
			case ' ', '\t':
				// keep eating leading whitespace
			default:
				state = cPlain
				out.WriteRune(c)
			}
		}

		// The escape flag is recomputed after every consumed scalar,
		// uniformly across states: only a non-backslash clears it.
		if c != '\\' {
			escaped = false
		}
	}

	return out.String()
}
