// Package texpp implements a TeX-like textual macro preprocessor.
//
// A texpp document is a sequence of characters. Most characters pass
// straight through to the output. A backslash introduces a directive or a
// user-defined macro call:
//
//	\def{greet}{Hello, #!}
//	\greet{world}
//
// The above expands to "Hello, world!". Macros always take exactly one
// braced argument; the argument replaces every unescaped "#" in the macro's
// body, and the result is rescanned, so macro calls inside a macro body are
// themselves expanded:
//
//	\def{a}{A}
//	\def{b}{\a{}}
//	\b{}          % expands to "A"
//
// # Directives
//
// Six directive names are built in; every other backslash-introduced name is
// a user macro call.
//
//	\def{name}{body}                define name, bound to body
//	\undef{name}                    remove a binding
//	\include{path}                  splice in another file, comment-stripped
//	\expandafter{A}{B}              expand B first, then rescan A followed by it
//	\if{cond}{then}{else}           then if cond is non-empty, else otherwise
//	\ifdef{name}{then}{else}        then if name is currently bound
//
// # Escapes
//
// A backslash followed by one of "\ # % { }" produces that character
// literally. A backslash followed by any other non-alphanumeric character
// produces both characters literally. A backslash followed by an
// alphanumeric character begins a directive or macro name.
//
// # Comments
//
// Before expansion, [Preprocess] strips "%"-introduced line comments.
// Unescaped "%" begins a comment that runs through the end of the line;
// leading spaces and tabs on the following line are also discarded, which
// lets indented macro bodies read naturally without injecting whitespace:
//
//	\def{greet}{
//		Hello, #!      % the greeting
//		  more text
//	}
//
// # Includes
//
// \include{path} reads path from the [io/fs.FS] passed to [Expand], applies
// [Preprocess] to its contents, and splices the result in for rescanning.
// The path is used exactly as captured; it is never macro-expanded.
package texpp

import (
	"io/fs"
)

// Expand runs the comment-free preprocessed text source through the
// expansion engine and returns the fully expanded document. fsys resolves
// \include paths; pass nil if the document has no includes (an \include
// directive will then fail with a [Kind] of [KindIO]).
//
// Expand does not strip comments itself; callers assembling a document from
// one or more files should run each file's contents through [Preprocess]
// before concatenating them, so that comment continuation rules don't leak
// across file boundaries. See cmd/texpp for the reference driver.
func Expand(source string, fsys fs.FS) (string, error) {
	e := newEngine(fsys)
	return e.run(source)
}
