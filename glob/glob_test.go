package glob

import (
	"strings"
	"testing"
)

func TestMatchSegmentLiteral(t *testing.T) {
	if r := MatchSegment(0, "hello", "hello"); r != Success {
		t.Errorf("literal match = %v, want success", r)
	}
	if r := MatchSegment(0, "hello", "world"); r != Failure {
		t.Errorf("literal mismatch = %v, want failure", r)
	}
	if r := MatchSegment(0, "", ""); r != Success {
		t.Errorf("empty vs empty = %v, want success", r)
	}
	if r := MatchSegment(0, "x", ""); r != Failure {
		t.Errorf("leftover path = %v, want failure", r)
	}
}

func TestMatchSegmentStar(t *testing.T) {
	cases := []struct {
		path, pattern string
		want          Result
	}{
		{"file.txt", "*.txt", Success},
		{"file.txt", "*", Success},
		{"", "*", Success},
		{"file.txt", "*.go", Failure},
		{"abc", "a*c", Success},
		{"ac", "a*c", Success},
		{"axyzc", "a*c", Success},
	}
	for _, c := range cases {
		if got := MatchSegment(0, c.path, c.pattern); got != c.want {
			t.Errorf("MatchSegment(%q, %q) = %v, want %v", c.path, c.pattern, got, c.want)
		}
	}
}

func TestMatchSegmentStarDoesNotCrossSeparator(t *testing.T) {
	if r := MatchSegment(0, "a/b", "*"); r != Failure {
		t.Errorf("star crossed separator: %v", r)
	}
	if r := MatchSegment(0, "dir/file.txt", "*.txt"); r != Failure {
		t.Errorf("star crossed separator: %v", r)
	}
	// The separator itself must come from the pattern.
	if r := MatchSegment(0, "a/b", "*/b"); r != Success {
		t.Errorf("star with explicit separator = %v, want success", r)
	}
	if r := MatchPath("/axx/b", "/a*b"); r != Failure {
		t.Errorf("MatchPath(/axx/b, /a*b) = %v, want failure", r)
	}
	if r := MatchPath("/axxb", "/a*b"); r != Success {
		t.Errorf("MatchPath(/axxb, /a*b) = %v, want success", r)
	}
}

func TestMatchSegmentQuestion(t *testing.T) {
	// '?' matches at most one byte: it may also match nothing.
	if r := MatchSegment(0, "ab", "a?b"); r != Success {
		t.Errorf("? consuming = %v, want success", r)
	}
	if r := MatchSegment(0, "axb", "a?b"); r != Success {
		t.Errorf("? skipping = %v, want success", r)
	}
	if r := MatchSegment(0, "axxb", "a?b"); r != Failure {
		t.Errorf("? two bytes = %v, want failure", r)
	}
	if r := MatchSegment(0, "a/b", "a?b"); r != Failure {
		t.Errorf("? crossed separator: %v", r)
	}
}

func TestMatchSegmentBracketReserved(t *testing.T) {
	if r := MatchSegment(0, "a", "[a]"); r != Failure {
		t.Errorf("bracket = %v, want failure", r)
	}
	if r := MatchSegment(0, "[a]", "[a]"); r != Failure {
		t.Errorf("bracket literal = %v, want failure", r)
	}
}

func TestMatchSegmentPartial(t *testing.T) {
	// Path exhausted at a directory boundary while the pattern continues.
	if r := MatchSegment(0, "sub", "sub/file"); r != Partial {
		t.Errorf("prefix at boundary = %v, want partial", r)
	}
	if r := MatchSegment(0, "su", "sub/file"); r != Failure {
		t.Errorf("prefix inside component = %v, want failure", r)
	}
}

func TestMatchSegmentOverflow(t *testing.T) {
	pattern := strings.Repeat("*", MatchDepthLimit+12) + ".txt"
	if r := MatchSegment(0, "file.txt", pattern); r != Overflow {
		t.Errorf("wildcard run = %v, want overflow", r)
	}
	// At the limit the matcher refuses before looking at anything.
	if r := MatchSegment(MatchDepthLimit, "x", "x"); r != Overflow {
		t.Errorf("at depth limit = %v, want overflow", r)
	}
}

func TestMatchSegmentAlternativeEnd(t *testing.T) {
	// '|' terminates the current alternative; remaining path bytes must
	// still be consumed literally for the alternative to fail cleanly.
	if r := MatchSegment(0, "a", "a|b"); r != Success {
		t.Errorf("first alternative = %v, want success", r)
	}
	if r := MatchSegment(0, "ax", "a|b"); r != Failure {
		t.Errorf("trailing bytes = %v, want failure", r)
	}
}

func TestMatchPathUnanchored(t *testing.T) {
	cases := []struct {
		path, pattern string
		want          Result
	}{
		{"/file.txt", "*.txt", Success},
		{"/sub/file.txt", "*.txt", Success},
		{"/sub/deep/file.txt", "*.txt", Success},
		{"/file.go", "*.txt", Failure},
		{"/sub", "sub/file.txt", Partial},
	}
	for _, c := range cases {
		if got := MatchPath(c.path, c.pattern); got != c.want {
			t.Errorf("MatchPath(%q, %q) = %v, want %v", c.path, c.pattern, got, c.want)
		}
	}
}

func TestMatchPathAnchored(t *testing.T) {
	if r := MatchPath("/sub/file.txt", "/sub/*.txt"); r != Success {
		t.Errorf("anchored = %v, want success", r)
	}
	// An anchored alternative consumes the boundary separator itself,
	// so it also matches where a deeper suffix starts with it. Pruning
	// to the root alone is the walker's job: the pattern yields no
	// Partial for unrelated directories.
	if r := MatchPath("/deep/sub/file.txt", "/sub/*.txt"); r != Success {
		t.Errorf("anchored at deeper boundary = %v, want success", r)
	}
	if r := MatchPath("/deep", "/sub/*.txt"); r != Failure {
		t.Errorf("unrelated directory = %v, want failure", r)
	}
	if r := MatchPath("/sub", "/sub/*.txt"); r != Partial {
		t.Errorf("anchored prefix = %v, want partial", r)
	}
}

func TestMatchPathAlternation(t *testing.T) {
	if r := MatchPath("/notes.md", "*.txt|*.md"); r != Success {
		t.Errorf("second alternative = %v, want success", r)
	}
	if r := MatchPath("/notes.md", "*.txt|*.go"); r != Failure {
		t.Errorf("no alternative = %v, want failure", r)
	}
	// Anchored and unanchored alternatives mix freely.
	if r := MatchPath("/sub/a.txt", "/other/*|a.txt"); r != Success {
		t.Errorf("mixed alternatives = %v, want success", r)
	}
}

func TestMatchPathTotality(t *testing.T) {
	paths := []string{"/", "/a", "/a/b", "/a/b/c.txt", "/.hidden"}
	patterns := []string{"", "*", "?", "|", "a|", "|a", "[x]", "/", "//", "*/*", "a?b*c"}
	for _, p := range paths {
		for _, pat := range patterns {
			got := MatchPath(p, pat)
			switch got {
			case Failure, Partial, Success, Overflow:
			default:
				t.Errorf("MatchPath(%q, %q) = %v, not a valid result", p, pat, got)
			}
		}
	}
}

func TestIsPattern(t *testing.T) {
	cases := []struct {
		p    string
		want bool
	}{
		{"/etc/hostname", false},
		{"/a/b/c", false},
		{"hostname", true},  // unanchored
		{"/etc/*", true},    // wildcard
		{"/a|/b", true},     // alternation
		{"/a?c", true},      // wildcard
		{"/name[1]", false}, // brackets are inert
	}
	for _, c := range cases {
		if got := IsPattern(c.p); got != c.want {
			t.Errorf("IsPattern(%q) = %v, want %v", c.p, got, c.want)
		}
	}
}

func TestIsRecursive(t *testing.T) {
	cases := []struct {
		p    string
		want bool
	}{
		{"*.txt", true},
		{"/sub/*.txt", false},
		{"/a|/b", false},
		{"/a|b", true},
		{"a|/b", true},
		{"/", false},
	}
	for _, c := range cases {
		if got := IsRecursive(c.p); got != c.want {
			t.Errorf("IsRecursive(%q) = %v, want %v", c.p, got, c.want)
		}
	}
}
