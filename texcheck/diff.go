package texcheck

import (
	"testing"

	"kr.dev/diff"
)

// Diff reports got against want using [kr.dev/diff], failing t with a
// structured diff when they don't match. It is a thin wrapper so callers
// comparing two expansions don't need to import kr.dev/diff themselves.
func Diff(t testing.TB, got, want any) {
	t.Helper()
	diff.Test(t, t.Errorf, got, want)
}
