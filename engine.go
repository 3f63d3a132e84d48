package texpp

import (
	"errors"
	"io/fs"
	"strings"
	"unicode"
)

// mode is one state of the expansion engine's character-driven automaton.
type mode int

const (
	mPlain mode = iota
	mCallMacro
	mDefMacroName
	mDefArg
	mCustomMacroArg
	mUndef
	mInclude
	mExpandAfterArg1
	mExpandAfterArg2
	mIfCond
	mIfDefCond
	mThen
	mElse
)

// engine is the Expansion Engine (C3): a single mutable automaton that
// consumes runes from an [inputStack] and writes completed text to output.
// Directives never recurse into a fresh automaton except \expandafter,
// whose second group must be expanded to completion before the first is
// rescanned; every other nested directive (including \if inside a Then or
// Else branch) is handled for free by the rescan model — the branch not
// yet chosen is captured as opaque, brace-balanced text and only
// interpreted later, if and when it is pushed back for rescanning.
type engine struct {
	fsys   fs.FS
	macros macroTable
	stack  *inputStack
	output strings.Builder

	mode       mode
	prevMode   mode
	braceDepth int

	// name and arg are scratch buffers reused across modes: name holds a
	// macro/def/undef/ifdef name, \expandafter's raw first group, or a
	// retained if/ifdef branch; arg holds a def body, a macro call's
	// argument, an include path, or \expandafter's second group.
	name strings.Builder
	arg  strings.Builder

	condEmpty bool
	condCount int

	escaped bool
}

func newEngine(fsys fs.FS) *engine {
	return &engine{fsys: fsys, macros: make(macroTable)}
}

// run drives the automaton over source to completion and returns the fully
// expanded document.
func (e *engine) run(source string) (string, error) {
	e.stack = newInputStack(source)
	for {
		c, ok := e.stack.next()
		if !ok {
			break
		}
		if err := e.step(c); err != nil {
			return "", err
		}
	}
	return e.finish()
}

// finish applies the termination rule: a document is only complete in
// Plain mode at brace depth zero, or in CallMacro mode with a trailing
// unescaped backslash that gets flushed literally.
func (e *engine) finish() (string, error) {
	if e.mode == mPlain && e.braceDepth == 0 {
		return e.output.String(), nil
	}
	if e.mode == mCallMacro && e.escaped {
		// A trailing unescaped lone backslash flushes literally.
		e.output.WriteByte('\\')
		return e.output.String(), nil
	}
	return "", &Error{Kind: KindSyntax, Msg: "Incomplete macro"}
}

// isEscapeChar reports whether c is one of the scalars whose literal form
// requires a leading backslash.
func isEscapeChar(c rune) bool {
	switch c {
	case '\\', '#', '%', '{', '}':
		return true
	default:
		return false
	}
}

func isAlnum(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c)
}

// step consumes one rune, advancing the automaton by exactly one
// transition. escaped is recomputed uniformly after every consumed rune,
// regardless of mode.
func (e *engine) step(c rune) error {
	escaped := e.escaped
	holdPrev := false
	var err error

	switch e.mode {
	case mPlain:
		if c == '\\' && !escaped {
			e.prevMode = e.mode
			e.mode = mCallMacro
			holdPrev = true
		} else {
			e.output.WriteRune(c)
		}

	case mCallMacro:
		err = e.stepCallMacro(c, escaped, &holdPrev)

	case mDefMacroName:
		err = e.stepDefMacroName(c, &holdPrev)

	case mDefArg:
		err = e.stepDefArg(c, escaped, &holdPrev)

	case mCustomMacroArg:
		err = e.stepCustomMacroArg(c, escaped, &holdPrev)

	case mUndef:
		err = e.stepUndef(c, escaped, &holdPrev)

	case mInclude:
		err = e.stepInclude(c, escaped, &holdPrev)

	case mExpandAfterArg1:
		err = e.stepExpandAfterArg1(c, escaped, &holdPrev)

	case mExpandAfterArg2:
		err = e.stepExpandAfterArg2(c, escaped, &holdPrev)

	case mIfCond:
		err = e.stepIfCond(c, escaped, &holdPrev)

	case mIfDefCond:
		err = e.stepIfDefCond(c, escaped, &holdPrev)

	case mThen:
		err = e.stepThen(c, escaped, &holdPrev)

	case mElse:
		err = e.stepElse(c, escaped, &holdPrev)
	}

	if c == '\\' && !escaped {
		e.escaped = true
	} else {
		e.escaped = false
	}
	if !holdPrev {
		e.prevMode = e.mode
	}
	return err
}

func (e *engine) stepCallMacro(c rune, escaped bool, holdPrev *bool) error {
	if escaped {
		switch {
		case isEscapeChar(c):
			e.output.WriteRune(c)
			e.prevMode, e.mode = e.mode, mPlain
			*holdPrev = true
		case !isAlnum(c):
			e.output.WriteByte('\\')
			e.output.WriteRune(c)
			e.prevMode, e.mode = e.mode, mPlain
			*holdPrev = true
		default:
			if e.prevMode == mPlain {
				e.name.WriteRune(c)
			}
		}
		return nil
	}

	switch {
	case c == '{':
		e.braceDepth++
		e.prevMode = e.mode
		*holdPrev = true
		e.mode = e.dispatch(e.name.String())
		switch e.mode {
		case mDefMacroName, mUndef, mInclude, mExpandAfterArg1, mIfCond, mIfDefCond:
			e.name.Reset()
		}
	case isAlnum(c):
		e.name.WriteRune(c)
	default:
		return &Error{Kind: KindSyntax, Msg: "non-alphanumeric character in macro name"}
	}
	return nil
}

// dispatch returns the mode a \name{ call enters.
func (e *engine) dispatch(name string) mode {
	switch name {
	case "def":
		return mDefMacroName
	case "undef":
		return mUndef
	case "include":
		return mInclude
	case "expandafter":
		return mExpandAfterArg1
	case "if":
		return mIfCond
	case "ifdef":
		return mIfDefCond
	default:
		return mCustomMacroArg
	}
}

func (e *engine) stepDefMacroName(c rune, holdPrev *bool) error {
	if c == '}' {
		e.braceDepth--
		e.prevMode, e.mode = e.mode, mDefArg
		*holdPrev = true
		return nil
	}
	if !isAlnum(c) {
		return &Error{Kind: KindSyntax, Msg: "non-alphanumeric character in macro name"}
	}
	e.name.WriteRune(c)
	return nil
}

func (e *engine) stepDefArg(c rune, escaped bool, holdPrev *bool) error {
	switch {
	case c == '}' && !escaped:
		e.braceDepth--
		if e.braceDepth != 0 {
			e.arg.WriteRune(c)
			return nil
		}
		if err := e.macros.define(e.name.String(), e.arg.String()); err != nil {
			return err
		}
		e.name.Reset()
		e.arg.Reset()
		e.prevMode, e.mode = e.mode, mPlain
		*holdPrev = true
	case c == '{' && !escaped:
		e.braceDepth++
		if e.prevMode != mDefMacroName {
			e.arg.WriteRune(c)
		}
	default:
		if e.prevMode == mDefMacroName {
			return &Error{Kind: KindSyntax, Msg: "Incomplete macro"}
		}
		e.arg.WriteRune(c)
	}
	return nil
}

func (e *engine) stepCustomMacroArg(c rune, escaped bool, holdPrev *bool) error {
	switch {
	case c == '}' && !escaped:
		e.braceDepth--
		if e.braceDepth != 0 {
			e.arg.WriteRune(c)
			return nil
		}
		body, ok := e.macros[e.name.String()]
		if !ok {
			return &Error{Kind: KindSemantic, Msg: "Macro not defined"}
		}
		e.stack.push(substitute(body, e.arg.String()))
		e.name.Reset()
		e.arg.Reset()
		e.prevMode, e.mode = e.mode, mPlain
		*holdPrev = true
	case c == '{' && !escaped:
		e.braceDepth++
		e.arg.WriteRune(c)
	default:
		e.arg.WriteRune(c)
	}
	return nil
}

func (e *engine) stepUndef(c rune, escaped bool, holdPrev *bool) error {
	if c == '}' && !escaped {
		e.braceDepth--
		if e.braceDepth != 0 {
			return &Error{Kind: KindSyntax, Msg: "Incomplete macro"}
		}
		if err := e.macros.undef(e.name.String()); err != nil {
			return err
		}
		e.name.Reset()
		e.prevMode, e.mode = e.mode, mPlain
		*holdPrev = true
		return nil
	}
	if !isAlnum(c) {
		return &Error{Kind: KindSyntax, Msg: "non-alphanumeric character in macro name"}
	}
	e.name.WriteRune(c)
	return nil
}

func (e *engine) stepInclude(c rune, escaped bool, holdPrev *bool) error {
	switch {
	case c == '}' && !escaped:
		e.braceDepth--
		if e.braceDepth != 0 {
			e.arg.WriteRune(c)
			return nil
		}
		text, err := e.readInclude(e.arg.String())
		if err != nil {
			return err
		}
		e.stack.push(Preprocess(text))
		e.arg.Reset()
		e.prevMode, e.mode = e.mode, mPlain
		*holdPrev = true
	case c == '{' && !escaped:
		e.braceDepth++
	default:
		e.arg.WriteRune(c)
	}
	return nil
}

func (e *engine) readInclude(path string) (string, error) {
	if e.fsys == nil {
		return "", &Error{Kind: KindIO, Msg: "Include error", Err: errors.New("no filesystem configured for includes")}
	}
	data, err := fs.ReadFile(e.fsys, path)
	if err != nil {
		return "", &Error{Kind: KindIO, Msg: "Include error", Err: err}
	}
	return string(data), nil
}

func (e *engine) stepExpandAfterArg1(c rune, escaped bool, holdPrev *bool) error {
	switch {
	case c == '}' && !escaped:
		e.braceDepth--
		if e.braceDepth != 0 {
			e.name.WriteRune(c)
			return nil
		}
		e.prevMode, e.mode = e.mode, mExpandAfterArg2
		*holdPrev = true
	case c == '{' && !escaped:
		e.braceDepth++
		e.name.WriteRune(c)
	default:
		e.name.WriteRune(c)
	}
	return nil
}

func (e *engine) stepExpandAfterArg2(c rune, escaped bool, holdPrev *bool) error {
	switch {
	case c == '}' && !escaped:
		e.braceDepth--
		if e.braceDepth != 0 {
			e.arg.WriteRune(c)
			return nil
		}
		expandedB, err := e.expandNested(e.arg.String())
		if err != nil {
			return err
		}
		rawA := e.name.String()
		e.arg.Reset()
		e.name.Reset()
		// Re-entered in this order: A first, then the already-expanded B.
		e.stack.push(expandedB)
		e.stack.push(rawA)
		e.prevMode, e.mode = e.mode, mPlain
		*holdPrev = true
	case c == '{' && !escaped:
		e.braceDepth++
		if e.prevMode != mExpandAfterArg1 {
			e.arg.WriteRune(c)
		}
	default:
		e.arg.WriteRune(c)
	}
	return nil
}

// expandNested fully expands text using a fresh automaton that shares this
// engine's macro table, for \expandafter's mandatory eager expansion of its
// second group.
func (e *engine) expandNested(text string) (string, error) {
	sub := newEngine(e.fsys)
	sub.macros = e.macros
	return sub.run(text)
}

func (e *engine) stepIfCond(c rune, escaped bool, holdPrev *bool) error {
	switch {
	case c == '}' && !escaped:
		e.braceDepth--
		if e.braceDepth != 0 {
			e.condCount++
			return nil
		}
		e.condEmpty = e.condCount == 0
		e.condCount = 0
		e.prevMode, e.mode = e.mode, mThen
		*holdPrev = true
	case c == '{' && !escaped:
		e.braceDepth++
		e.condCount++
	default:
		// Raw scalar count, including escaped braces. Unescaped interior
		// braces are counted by the two cases above, so `\if{{}}{T}{E}`
		// is non-empty (true).
		e.condCount++
	}
	return nil
}

func (e *engine) stepIfDefCond(c rune, escaped bool, holdPrev *bool) error {
	switch {
	case c == '}' && !escaped:
		e.braceDepth--
		if e.braceDepth != 0 {
			// A nested, non-terminal '}' is dropped rather than appended, an
			// asymmetry relative to the '{' case just below; preserved as-is.
			return nil
		}
		_, defined := e.macros[e.name.String()]
		e.condEmpty = !defined
		e.name.Reset()
		e.prevMode, e.mode = e.mode, mThen
		*holdPrev = true
	case c == '{' && !escaped:
		e.braceDepth++
		e.name.WriteRune(c)
	default:
		e.name.WriteRune(c)
	}
	return nil
}

func (e *engine) stepThen(c rune, escaped bool, holdPrev *bool) error {
	switch {
	case c == '}' && !escaped:
		e.braceDepth--
		if e.braceDepth == 0 {
			e.prevMode, e.mode = e.mode, mElse
			*holdPrev = true
			return nil
		}
		if !e.condEmpty {
			e.name.WriteRune(c)
		}
	case c == '{' && !escaped:
		e.braceDepth++
		if !e.condEmpty && e.prevMode != mIfCond && e.prevMode != mIfDefCond {
			e.name.WriteRune(c)
		}
	default:
		if e.prevMode == mIfCond || e.prevMode == mIfDefCond {
			return &Error{Kind: KindSyntax, Msg: "Incomplete macro"}
		}
		if !e.condEmpty {
			e.name.WriteRune(c)
		}
	}
	return nil
}

func (e *engine) stepElse(c rune, escaped bool, holdPrev *bool) error {
	switch {
	case c == '}' && !escaped:
		e.braceDepth--
		if e.braceDepth == 0 {
			e.stack.push(e.name.String())
			e.name.Reset()
			e.prevMode, e.mode = e.mode, mPlain
			*holdPrev = true
			return nil
		}
		if e.condEmpty {
			e.name.WriteRune(c)
		}
	case c == '{' && !escaped:
		e.braceDepth++
		if e.condEmpty && e.prevMode != mThen {
			e.name.WriteRune(c)
		}
	default:
		if e.prevMode == mThen {
			return &Error{Kind: KindSyntax, Msg: "Incomplete macro"}
		}
		if e.condEmpty {
			e.name.WriteRune(c)
		}
	}
	return nil
}
