package texpp

import (
	"testing"

	"kr.dev/diff"
)

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"identity with no percent", "hello world", "hello world"},
		{"line comment stripped", "A % comment\nB", "A B"},
		{
			// Only line-two's leading whitespace is elided; the space
			// preceding the '%' itself belongs to line one and is copied
			// before the comment is even recognized, so it survives.
			"leading whitespace elided on continuation",
			"A % comment\n  B",
			"A B",
		},
		{"comment at start of line", "% whole line\nkeep", "keep"},
		{"escaped percent survives", `A \% B`, `A \% B`},
		{"escaped backslash then percent starts a comment", `A \\% gone` + "\nB", `A \\B`},
		{"unterminated comment at EOF is dropped", "keep % trailing", "keep "},
		{"multiple comments", "A % c1\nB % c2\nC", "A B C"},
		{"tabs elided on continuation too", "A %c\n\t\tB", "A B"},
		{
			// The blank line's own newline is seen while eating leading
			// whitespace, finds neither a space nor a tab, and returns to
			// Plain - which emits that newline like any other character.
			"blank continuation line keeps eating whitespace only",
			"A %c\n   \nB",
			"A \nB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Preprocess(tt.in)
			diff.Test(t, t.Errorf, got, tt.want)
		})
	}
}

func TestPreprocessCommentTransparency(t *testing.T) {
	// Universal invariant: for input containing neither '%' nor '\',
	// Preprocess is the identity.
	samples := []string{
		"",
		"plain text",
		"line one\nline two\nline three",
		"unicode: café, 日本語",
	}
	for _, s := range samples {
		if got := Preprocess(s); got != s {
			t.Errorf("Preprocess(%q) = %q, want identity", s, got)
		}
	}
}

func FuzzPreprocess(f *testing.F) {
	f.Add("A % comment\n  B")
	f.Add(`A \% B`)
	f.Add("% whole line\nkeep")
	f.Add("no comments here")
	f.Fuzz(func(t *testing.T, s string) {
		// Preprocess must never panic and must never grow the input: every
		// output rune came from the input, either copied or as a leftover
		// from incomplete escape bookkeeping.
		out := Preprocess(s)
		if len(out) > len(s) {
			t.Errorf("Preprocess(%q) = %q, longer than input", s, out)
		}
	})
}
