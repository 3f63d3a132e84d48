package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunCleanDocument(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(nil, strings.NewReader(`\def{greet}{Hello, #!}\greet{world}`), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run: exit code %d, stdout %q", code, stdout.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want no diagnostics", stdout.String())
	}
}

func TestRunFindsProblems(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(nil, strings.NewReader(`\def{a}{1}\def{a}{2}`), &stdout, &stderr)
	if code == 0 {
		t.Fatal("expected a nonzero exit code")
	}
	if !strings.Contains(stdout.String(), `already defined`) {
		t.Errorf("stdout = %q, want a mention of the duplicate definition", stdout.String())
	}
}

func TestRunUndefOfUnboundName(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(nil, strings.NewReader(`\undef{z}`), &stdout, &stderr)
	if code == 0 {
		t.Fatal("expected a nonzero exit code")
	}
	if !strings.Contains(stdout.String(), `not defined`) {
		t.Errorf("stdout = %q, want a mention of the unbound name", stdout.String())
	}
}

func TestRunDoesNotExpand(t *testing.T) {
	// texlint never calls Expand: a syntactically valid \include of a
	// missing file is accepted, since nothing tries to read the filesystem
	// for it.
	var stdout, stderr bytes.Buffer
	code := run(nil, strings.NewReader(`\include{/no/such/file}`), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run: exit code %d (want 0: a syntactically valid include is not a lint error), stdout %q", code, stdout.String())
	}
}
