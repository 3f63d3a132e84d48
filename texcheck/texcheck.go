// Package texcheck provides assertion helpers for macro-expanded output: a
// generic string comparison, a JSON value lookup by RFC 6901 pointer, and a
// CSS-selector lookup into an HTML fragment. All three return an empty
// string on success and a human-readable failure message otherwise, so
// tests can write:
//
//	if msg := texcheck.HTML(got, "ul>li", "count", "3"); msg != "" {
//		t.Error(msg)
//	}
package texcheck

import (
	"bytes"
	"encoding/json/jsontext"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ericchiang/css"
	"golang.org/x/net/html"
)

// Text compares got against want using op and returns a failure message
// when the comparison does not hold; an empty string means the check
// passed.
//
// Supported operators: "==", "!=", "~" (regexp match), "!~" (regexp
// non-match), "contains", "!contains".
func Text(what, op, got, want string) string {
	switch op {
	case "~", "!~":
		if _, err := regexp.Compile(want); err != nil {
			return fmt.Sprintf("error compiling regexp %#q: %v", want, err)
		}
	default:
		if want == "" {
			return "non-regexp comparison requires a non-empty want value"
		}
	}

	switch op {
	case "==":
		if got != want {
			return fmt.Sprintf("%s = %#q, want %#q", what, got, want)
		}
	case "!=":
		if got == want {
			return fmt.Sprintf("%s == %#q (but should not)", what, want)
		}
	case "~":
		ok, err := regexp.MatchString(want, got)
		if err != nil {
			return fmt.Sprintf("error matching regexp %#q: %v", want, err)
		}
		if !ok {
			return fmt.Sprintf("%s does not match %#q (but should)\t%s", what, want, indent(got))
		}
	case "!~":
		ok, err := regexp.MatchString(want, got)
		if err != nil {
			return fmt.Sprintf("error matching regexp %#q: %v", want, err)
		}
		if ok {
			return fmt.Sprintf("%s matches %#q (but should not)\t%s", what, want, indent(got))
		}
	case "contains":
		if !strings.Contains(got, want) {
			return fmt.Sprintf("%s does not contain %#q (but should)\t%s", what, want, indent(got))
		}
	case "!contains":
		if strings.Contains(got, want) {
			return fmt.Sprintf("%s contains %#q (but should not)\t%s", what, want, indent(got))
		}
	default:
		return fmt.Sprintf("unknown operator %q", op)
	}
	return ""
}

// JSON looks up pointer (an RFC 6901 pointer) within a JSON document and
// compares the value found there against want using op, the same operator
// set as [Text]. A pointer with no corresponding value compares against
// the literal text "undefined", so tests can assert a key's absence with
// `/missing == undefined`.
func JSON(body, pointer, op, want string) string {
	got, err := jsonFind(body, jsontext.Pointer(pointer))
	if err != nil {
		return err.Error()
	}
	return Text(pointer, op, got, want)
}

func jsonFind(body string, target jsontext.Pointer) (string, error) {
	dec := jsontext.NewDecoder(strings.NewReader(body))
	readValue := func() (string, error) {
		v, err := dec.ReadValue()
		return strings.TrimSpace(v.String()), err
	}

	if target == "" || target == "/" {
		return readValue()
	}

	for {
		tok, err := dec.ReadToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "undefined", nil
			}
			return "", err
		}
		if dec.StackPointer() == target {
			k, _ := dec.StackIndex(dec.StackDepth())
			if k == '{' {
				return readValue()
			}
			if tok.Kind() == '"' {
				b, err := jsontext.AppendQuote(nil, tok.String())
				return string(b), err
			}
			return tok.String(), nil
		}
	}
}

// HTML selects elements of an HTML fragment using a CSS selector and
// compares the first match's inner HTML against want using op, the same
// operator set as [Text]. An additional "count" operator compares the
// number of matched elements against want instead.
func HTML(body, selector, op, want string) string {
	sel, err := css.Parse(selector)
	if err != nil {
		return fmt.Sprintf("error parsing selector %q: %v", selector, err)
	}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return fmt.Sprintf("error parsing HTML: %v", err)
	}

	matches := sel.Select(doc)

	if op == "count" {
		if want == "" {
			return "count operator requires a non-empty want value"
		}
		return Text(selector, "==", strconv.Itoa(len(matches)), want)
	}

	if len(matches) == 0 {
		return fmt.Sprintf("no elements match selector %q", selector)
	}
	return Text(selector, op, innerHTML(matches[0]), want)
}

func innerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		html.Render(&buf, c)
	}
	return buf.String()
}

func indent(text string) string {
	if text == "" {
		return "(empty)"
	}
	if text == "\n" {
		return "(blank line)"
	}
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return "(blank lines)"
	}
	return strings.ReplaceAll(text, "\n", "\n\t")
}
