package types

import "strings"

// Flags is the bit set of search options.
type Flags int

const (
	// StopAtFirst halts the entire search after the first match.
	StopAtFirst Flags = 1 << iota
	// IncludeMetadata computes and emits stat-like metadata per match.
	IncludeMetadata
	// IncludeRoot reports full paths instead of paths relative to the
	// matched root.
	IncludeRoot
	// Period, ReadOK, WriteOK and ExecOK are accepted for wire
	// compatibility but are not consulted by the matching logic.
	// Callers must not rely on them having any effect.
	Period
	ReadOK
	WriteOK
	ExecOK
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

func (f Flags) String() string {
	names := []struct {
		bit  Flags
		name string
	}{
		{StopAtFirst, "first"},
		{IncludeMetadata, "metadata"},
		{IncludeRoot, "root"},
		{Period, "period"},
		{ReadOK, "r_ok"},
		{WriteOK, "w_ok"},
		{ExecOK, "x_ok"},
	}
	var set []string
	for _, n := range names {
		if f.Has(n.bit) {
			set = append(set, n.name)
		}
	}
	if len(set) == 0 {
		return "none"
	}
	return strings.Join(set, "|")
}
