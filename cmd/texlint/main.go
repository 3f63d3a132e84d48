// Command texlint checks a TeX-like macro document for structural problems
// without expanding it: unbalanced groups, non-alphanumeric directive
// names, redefining a bound macro, undefining or calling one that was
// never bound, and a conditional missing a branch.
//
// Usage:
//
//	texlint [file ...]
//
// With no arguments, texlint reads a single document from standard input,
// reported as "<stdin>". Each positional argument is linted independently,
// as its own document; texlint does not follow \include (the whole point
// of this tool is to check one document without running anything that
// reads the filesystem).
package main

import (
	"fmt"
	"io"
	"os"

	"texpp.dev/texpp"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	docs, err := gather(args, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "texlint: %v\n", err)
		return 1
	}

	found := false
	for _, doc := range docs {
		for _, msg := range lint(texpp.Preprocess(doc.text)) {
			fmt.Fprintf(stdout, "%s: %s\n", doc.name, msg)
			found = true
		}
	}
	if found {
		return 1
	}
	return 0
}

type document struct {
	name string
	text string
}

func gather(args []string, stdin io.Reader) ([]document, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		return []document{{name: "<stdin>", text: string(data)}}, nil
	}

	docs := make([]document, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, document{name: path, text: string(data)})
	}
	return docs, nil
}
