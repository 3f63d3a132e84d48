package main

import (
	"fmt"
	"strings"
	"unicode"
)

// lintMode mirrors the expansion engine's mode enum (texpp/engine.go), but
// the linter never substitutes a macro body or pushes anything back for
// rescanning: group contents are only ever brace-balanced and discarded.
// That is what makes this a syntax-only dry run rather than a second
// expansion engine, and it is also what makes recursion through \include or
// \expandafter impossible to trigger here — there is nothing to recurse
// into.
type lintMode int

const (
	lPlain lintMode = iota
	lCallMacro
	lDefMacroName
	lDefArg
	lCustomMacroArg
	lUndef
	lInclude
	lExpandAfterArg1
	lExpandAfterArg2
	lIfCond
	lIfDefCond
	lThen
	lElse
)

// linter accumulates every problem found in one forward pass instead of
// stopping at the first one.
type linter struct {
	defs  map[string]bool
	diags []string

	mode       lintMode
	prevMode   lintMode
	braceDepth int
	name       strings.Builder
	escaped    bool
}

func newLinter() *linter {
	return &linter{defs: make(map[string]bool)}
}

func isAlnum(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c)
}

func dispatch(name string) lintMode {
	switch name {
	case "def":
		return lDefMacroName
	case "undef":
		return lUndef
	case "include":
		return lInclude
	case "expandafter":
		return lExpandAfterArg1
	case "if":
		return lIfCond
	case "ifdef":
		return lIfDefCond
	default:
		return lCustomMacroArg
	}
}

// lint runs the syntax-only pass over a single already-comment-stripped
// document and returns every diagnostic found.
func lint(text string) []string {
	l := newLinter()
	for _, c := range text {
		l.step(c)
	}
	l.finish()
	return l.diags
}

func (l *linter) errorf(format string, args ...any) {
	l.diags = append(l.diags, fmt.Sprintf(format, args...))
}

func (l *linter) finish() {
	if l.mode == lPlain && l.braceDepth == 0 {
		return
	}
	if l.mode == lCallMacro && l.escaped {
		return
	}
	l.errorf("incomplete macro at end of input")
}

func (l *linter) step(c rune) {
	escaped := l.escaped
	holdPrev := false

	switch l.mode {
	case lPlain:
		if c == '\\' && !escaped {
			l.prevMode, l.mode = l.mode, lCallMacro
			holdPrev = true
		}

	case lCallMacro:
		l.stepCallMacro(c, escaped, &holdPrev)

	case lDefMacroName:
		l.stepDefMacroName(c, &holdPrev)

	case lDefArg:
		l.stepGroup(c, escaped, &holdPrev, lDefMacroName, func() {
			name := l.name.String()
			if l.defs[name] {
				l.errorf("macro %q already defined", name)
			} else {
				l.defs[name] = true
			}
			l.name.Reset()
		})

	case lCustomMacroArg:
		l.stepGroup(c, escaped, &holdPrev, -1, func() {
			name := l.name.String()
			if !l.defs[name] {
				l.errorf("macro %q not defined", name)
			}
			l.name.Reset()
		})

	case lUndef:
		l.stepUndef(c, escaped, &holdPrev)

	case lInclude:
		l.stepGroup(c, escaped, &holdPrev, -1, func() {})

	case lExpandAfterArg1:
		l.stepGroup(c, escaped, &holdPrev, -1, func() {
			l.prevMode, l.mode = l.mode, lExpandAfterArg2
			holdPrev = true
		})

	case lExpandAfterArg2:
		l.stepGroup(c, escaped, &holdPrev, lExpandAfterArg1, func() {})

	case lIfCond:
		l.stepGroup(c, escaped, &holdPrev, -1, func() {
			l.prevMode, l.mode = l.mode, lThen
			holdPrev = true
		})

	case lIfDefCond:
		// Unlike undef or a macro call, referencing a name ifdef doesn't
		// know about is not an error: that is the whole point of ifdef.
		l.stepGroup(c, escaped, &holdPrev, -1, func() {
			l.name.Reset()
			l.prevMode, l.mode = l.mode, lThen
			holdPrev = true
		})

	case lThen:
		fromCond := lIfCond
		if l.prevMode == lIfDefCond {
			fromCond = lIfDefCond
		}
		l.stepBranch(c, escaped, &holdPrev, fromCond, lElse)

	case lElse:
		l.stepBranch(c, escaped, &holdPrev, lThen, lPlain)
	}

	if c == '\\' && !escaped {
		l.escaped = true
	} else {
		l.escaped = false
	}
	if !holdPrev {
		l.prevMode = l.mode
	}
}

func (l *linter) stepCallMacro(c rune, escaped bool, holdPrev *bool) {
	if escaped {
		switch {
		case isEscapeChar(c), !isAlnum(c):
			l.prevMode, l.mode = l.mode, lPlain
			*holdPrev = true
		default:
			if l.prevMode == lPlain {
				l.name.WriteRune(c)
			}
		}
		return
	}

	switch {
	case c == '{':
		l.braceDepth++
		l.prevMode = l.mode
		*holdPrev = true
		l.mode = dispatch(l.name.String())
		if l.mode != lCustomMacroArg {
			l.name.Reset()
		}
	case isAlnum(c):
		l.name.WriteRune(c)
	default:
		l.errorf("non-alphanumeric character in macro name")
	}
}

func isEscapeChar(c rune) bool {
	switch c {
	case '\\', '#', '%', '{', '}':
		return true
	default:
		return false
	}
}

func (l *linter) stepDefMacroName(c rune, holdPrev *bool) {
	if c == '}' {
		l.braceDepth--
		l.prevMode, l.mode = l.mode, lDefArg
		*holdPrev = true
		return
	}
	if !isAlnum(c) {
		l.errorf("non-alphanumeric character in macro name")
		return
	}
	l.name.WriteRune(c)
}

func (l *linter) stepUndef(c rune, escaped bool, holdPrev *bool) {
	if c == '}' && !escaped {
		l.braceDepth--
		name := l.name.String()
		if !l.defs[name] {
			l.errorf("macro %q not defined", name)
		} else {
			delete(l.defs, name)
		}
		l.name.Reset()
		l.prevMode, l.mode = l.mode, lPlain
		*holdPrev = true
		return
	}
	if !isAlnum(c) {
		l.errorf("non-alphanumeric character in macro name")
		return
	}
	l.name.WriteRune(c)
}

// stepGroup tracks a single "{ ... }" argument whose content the linter
// never needs to keep: it only cares that braces balance. delimiterFrom, if
// not -1, names the mode that the group's own opening brace immediately
// follows, so that brace is not mistaken for a nested one. name is not
// touched here: def's name and a call's name are captured before their
// groups open, and ifdef's name is discarded like any other content.
func (l *linter) stepGroup(c rune, escaped bool, holdPrev *bool, delimiterFrom lintMode, onClose func()) {
	switch {
	case c == '}' && !escaped:
		l.braceDepth--
		if l.braceDepth != 0 {
			return
		}
		onClose()
		if *holdPrev {
			return // onClose already transitioned the mode
		}
		l.prevMode, l.mode = l.mode, lPlain
		*holdPrev = true
	case c == '{' && !escaped:
		l.braceDepth++
		if delimiterFrom != -1 && l.prevMode == delimiterFrom {
			return
		}
	default:
		// Every group's content is discarded: a call's argument body, an
		// include's path, ifdef's name (ifdef doesn't require the name to
		// be bound — that's the point of it), and a call's own name was
		// already captured before this group opened.
	}
}

// stepBranch tracks a Then or Else group. Since nothing is retained for
// rescanning, both branches are treated identically: only brace balance and
// the mandatory-group check matter.
func (l *linter) stepBranch(c rune, escaped bool, holdPrev *bool, fromCond, next lintMode) {
	switch {
	case c == '}' && !escaped:
		l.braceDepth--
		if l.braceDepth == 0 {
			l.prevMode, l.mode = l.mode, next
			*holdPrev = true
		}
	case c == '{' && !escaped:
		l.braceDepth++
	default:
		if l.prevMode == fromCond {
			l.errorf("incomplete conditional: missing branch")
		}
	}
}
