package types

import (
	"bytes"
	"fmt"
	"strings"
)

// ResultBuffer serializes search results into a caller-supplied byte
// buffer using the record format
//
//	0|<path>|<metadata-or-empty>|
//
// Records are written back to back, each followed by two NUL
// terminators. A later record overwrites the terminators of the one
// before it, so only the final record's terminators survive; Finalize
// then replaces the last record's trailing '|' with the closing NUL
// pair, leaving the buffer a clean '|'-joined sequence ending in two
// NULs. Accounting is exact: a record that does not fit, terminators
// included, is rejected whole and nothing is written.
type ResultBuffer struct {
	buf []byte
	n   int // committed record bytes, terminators excluded
}

// NewResultBuffer wraps buf as the output for one search invocation.
func NewResultBuffer(buf []byte) *ResultBuffer {
	return &ResultBuffer{buf: buf}
}

// Remaining returns the unused capacity in bytes.
func (b *ResultBuffer) Remaining() int { return len(b.buf) - b.n }

// Len returns the committed record bytes, final terminators excluded.
func (b *ResultBuffer) Len() int { return b.n }

// Bytes returns the underlying buffer.
func (b *ResultBuffer) Bytes() []byte { return b.buf }

// Emit appends one record for path. meta may be nil, in which case the
// metadata field is left empty.
func (b *ResultBuffer) Emit(path string, meta *Metadata) error {
	if meta == nil {
		return b.EmitEncoded(path, "")
	}
	return b.EmitEncoded(path, meta.String())
}

// EmitEncoded appends one record whose metadata field is already in
// wire form. Native search providers that receive records from a remote
// peer use this to pass them through untouched.
func (b *ResultBuffer) EmitEncoded(path, meta string) error {
	rec := "0|" + path + "|" + meta + "|"
	if len(rec)+2 > b.Remaining() {
		return fmt.Errorf("%w: need %d bytes, %d remaining",
			ErrBufferTooSmall, len(rec)+2, b.Remaining())
	}
	copy(b.buf[b.n:], rec)
	b.buf[b.n+len(rec)] = 0
	b.buf[b.n+len(rec)+1] = 0
	b.n += len(rec)
	return nil
}

// Finalize strips the trailing alternation separator of the last record
// and writes the final double terminator in its place. It returns the
// total number of meaningful bytes in the buffer, zero when nothing was
// emitted.
func (b *ResultBuffer) Finalize() int {
	if b.n == 0 {
		return 0
	}
	b.buf[b.n-1] = 0
	b.buf[b.n] = 0
	return b.n + 1
}

// Record is one decoded search result.
type Record struct {
	Path string
	Meta string
}

// ParseRecords decodes a finalized result buffer. The end of the data
// is located by scanning for the double-NUL terminator first; only then
// is the record text tokenized. Paths containing '|' are outside the
// format's contract.
func ParseRecords(buf []byte) ([]Record, error) {
	end := bytes.Index(buf, []byte{0, 0})
	if end < 0 {
		if len(buf) == 0 || buf[0] == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("scour: result buffer missing terminator")
	}
	if end == 0 {
		return nil, nil
	}
	tokens := strings.Split(string(buf[:end]), "|")
	if len(tokens)%3 != 0 {
		return nil, fmt.Errorf("scour: malformed result buffer: %d tokens", len(tokens))
	}
	recs := make([]Record, 0, len(tokens)/3)
	for i := 0; i < len(tokens); i += 3 {
		if tokens[i] != "0" {
			return nil, fmt.Errorf("scour: malformed record tag %q", tokens[i])
		}
		recs = append(recs, Record{Path: tokens[i+1], Meta: tokens[i+2]})
	}
	return recs, nil
}
