// Command texpp expands a TeX-like macro document and writes the result to
// standard output.
//
// Usage:
//
//	texpp [file ...]
//
// With no arguments, texpp reads a single document from standard input.
// With one or more arguments, it reads each file in order, applies the
// comment preprocessor to each individually, and concatenates the results
// before expansion, so that a comment's continuation rule never crosses a
// file boundary. No flags are recognized.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"texpp.dev/texpp"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	source, dir, err := assemble(args, stdin)
	if err != nil {
		report(stderr, err)
		return 1
	}

	out, err := texpp.Expand(source, os.DirFS(dir))
	if err != nil {
		report(stderr, err)
		return 1
	}

	if _, err := io.WriteString(stdout, out); err != nil {
		report(stderr, err)
		return 1
	}
	return 0
}

// assemble implements the Input Assembler: with no file arguments it reads
// standard input as a single document; with one or more, it reads and
// comment-preprocesses each in turn and concatenates the results. It also
// returns the directory \include paths are resolved against: the first
// argument's directory, or the current directory when reading from stdin.
func assemble(args []string, stdin io.Reader) (source, dir string, err error) {
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", err
		}
		return texpp.Preprocess(string(data)), ".", nil
	}

	var b strings.Builder
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", "", err
		}
		b.WriteString(texpp.Preprocess(string(data)))
	}
	return b.String(), filepath.Dir(args[0]), nil
}

// report writes a single-line diagnostic: program name, a colon, the
// error's message, on stderr, with no partial output already written to
// stdout.
func report(stderr io.Writer, err error) {
	fmt.Fprintf(stderr, "texpp: %v\n", err)
}
