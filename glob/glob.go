// Package glob implements the pattern grammar used by scour searches.
//
// A pattern is a byte string using '/' as the component separator. '*'
// matches zero or more non-separator bytes, '?' matches at most one
// non-separator byte, and '|' separates whole alternative sub-patterns.
// A pattern starting with '/' is anchored: it must match from the search
// root rather than at any descendant boundary. '[' is reserved for
// collating sets and always fails to match; callers must not expect
// bracket expressions to work.
package glob

import "strings"

// Result classifies the outcome of matching a candidate path against a
// pattern.
type Result int

const (
	// Failure means no match; the branch is dead.
	Failure Result = iota
	// Partial means the candidate ended exactly at a directory boundary
	// while the pattern continues. The prefix is consistent with the
	// pattern and descending further may produce a full match.
	Partial
	// Success is a full match.
	Success
	// Overflow means the matcher recursion bound was exceeded. Callers
	// treat it like Failure for the branch but can use it to detect
	// pathological patterns.
	Overflow
)

func (r Result) String() string {
	switch r {
	case Failure:
		return "failure"
	case Partial:
		return "partial"
	case Success:
		return "success"
	case Overflow:
		return "overflow"
	}
	return "unknown"
}

// MatchDepthLimit bounds the matcher's backtracking recursion. Each '*'
// or '?' attempt costs one level, so a run of more than MatchDepthLimit
// wildcard tokens resolves to Overflow instead of exploring an
// exponential search space.
const MatchDepthLimit = 8

// MatchSegment matches path against pattern starting at the given
// recursion depth. It is total: every input yields exactly one Result.
func MatchSegment(depth int, path, pattern string) Result {
	if depth >= MatchDepthLimit {
		return Overflow
	}
	for {
		if len(pattern) == 0 {
			if len(path) == 0 {
				return Success
			}
			return Failure
		}
		switch pattern[0] {
		case '*':
			// Try the empty match first, then grow one byte at a
			// time. The star never crosses a separator.
			for i := 0; ; i++ {
				if r := MatchSegment(depth+1, path[i:], pattern[1:]); r != Failure {
					return r
				}
				if i >= len(path) || path[i] == '/' {
					break
				}
			}
			return Failure
		case '?':
			if len(path) > 0 && path[0] != '/' {
				if r := MatchSegment(depth+1, path[1:], pattern[1:]); r != Failure {
					return r
				}
			}
			// '?' consumed nothing; keep going with the rest of
			// the pattern.
		case '[':
			return Failure
		case '|':
			// End of this alternative.
			if len(path) == 0 {
				return Success
			}
			if path[0] != pattern[0] {
				return Failure
			}
			path = path[1:]
		case '/':
			if len(path) == 0 {
				// Pattern continues past this directory level.
				return Partial
			}
			if path[0] != pattern[0] {
				return Failure
			}
			path = path[1:]
		default:
			if len(path) == 0 || path[0] != pattern[0] {
				return Failure
			}
			path = path[1:]
		}
		pattern = pattern[1:]
	}
}

// MatchPath matches a candidate path against a full pattern. Every
// '|'-separated alternative is tried against every '/'-delimited suffix
// of the candidate, because alternatives may be unanchored. An anchored
// alternative (leading '/') is matched at the boundary itself; an
// unanchored one is matched past it. The first non-Failure result wins.
func MatchPath(path, pattern string) Result {
	status := Failure
	for i := 0; ; {
		for j := 0; ; {
			alt := pattern[j:]
			sub := path[i:]
			if !strings.HasPrefix(alt, "/") && len(sub) > 0 {
				sub = sub[1:]
			}
			status = MatchSegment(0, sub, alt)
			if status != Failure {
				return status
			}
			if j+1 >= len(pattern) {
				break
			}
			k := strings.IndexByte(pattern[j+1:], '|')
			if k < 0 {
				break
			}
			j += 1 + k + 1
		}
		if i+1 >= len(path) {
			break
		}
		k := strings.IndexByte(path[i+1:], '/')
		if k < 0 {
			break
		}
		i += 1 + k
	}
	return status
}

// IsPattern reports whether p requires a tree search. A string is a
// pattern unless it is anchored and free of wildcard and alternation
// characters; everything else can be resolved by direct lookup.
func IsPattern(p string) bool {
	if !strings.HasPrefix(p, "/") {
		return true
	}
	return strings.ContainsAny(p, "*?|")
}

// IsRecursive reports whether any alternative of p is unanchored, in
// which case the search must descend into every directory rather than
// only those consistent with the pattern so far.
func IsRecursive(p string) bool {
	for {
		if !strings.HasPrefix(p, "/") {
			return true
		}
		if len(p) < 2 {
			return false
		}
		k := strings.IndexByte(p[1:], '|')
		if k < 0 {
			return false
		}
		p = p[1+k+1:]
	}
}
