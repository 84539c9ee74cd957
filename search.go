package scour

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackfish212/scour/glob"
)

const (
	// TreeDepthLimit caps traversal depth. Reaching it silently stops
	// descending; it is a safety cap, not an error.
	TreeDepthLimit = 16
	// MaxPathLen caps the shared path-construction buffer.
	MaxPathLen = 4096
	// ListScratchLimit caps one directory listing, counted the way the
	// wire format would store it: name plus type tag and framing.
	ListScratchLimit = MaxPathLen << 4
)

// walkFrame is the per-depth scratch state of the tree walker. One
// frame exists per recursion level and is reused across invocations;
// sibling entries at the same level overwrite each other's listing.
type walkFrame struct {
	entries []Entry
	cursor  int
	dirLen  int // saved path-buffer length for this level
}

// searchSession is the state of one Search invocation. It owns the
// shared path buffer and the frame arena exclusively for the duration
// of the call; nothing here is safe for concurrent use.
type searchSession struct {
	vfs     *VirtualFS
	pattern string
	flags   Flags
	out     *ResultBuffer

	recursive bool
	path      []byte
	base      int
	baseSet   bool
	frames    [TreeDepthLimit]walkFrame
	results   int
}

// Search walks every root in roots (a '|'-joined list) for pattern and
// serializes matches into buf. It returns the match count and the
// number of meaningful bytes in buf. On error the buffer contents are
// undefined. Anchored, wildcard-free patterns are resolved by direct
// lookup per root instead of a tree walk.
func (v *VirtualFS) Search(ctx context.Context, roots, pattern string, flags Flags, buf []byte) (int, int, error) {
	s := &searchSession{
		vfs:       v,
		flags:     flags,
		out:       NewResultBuffer(buf),
		recursive: glob.IsRecursive(pattern),
		path:      make([]byte, 0, MaxPathLen),
	}

	pat := pattern
	literal := !glob.IsPattern(pat)
	if literal {
		pat = strings.TrimLeft(pat, "/")
	}
	s.pattern = pat

	slog.Debug("scour: search", "roots", roots, "pattern", pattern, "flags", flags.String(), "capacity", len(buf))

	for _, root := range strings.Split(roots, "|") {
		if root == "" {
			continue
		}
		var err error
		if literal {
			err = s.lookupLiteral(ctx, root)
		} else {
			// Each root restarts the pattern-relative base.
			s.base, s.baseSet = 0, false
			if err = s.setPath(root); err == nil {
				err = s.walk(ctx, 0)
			}
		}
		if err != nil {
			return 0, 0, err
		}
		if s.results > 0 && flags.Has(StopAtFirst) {
			break
		}
	}

	n := s.out.Finalize()
	slog.Debug("scour: search done", "matches", s.results, "bytes", n)
	return s.results, n, nil
}

func (s *searchSession) setPath(p string) error {
	if len(p) > MaxPathLen {
		return fmt.Errorf("%w: %d bytes", ErrPathTooLong, len(p))
	}
	s.path = append(s.path[:0], p...)
	return nil
}

// appendComponent grows the shared path buffer by one '/'-prefixed
// component, rejecting growth past MaxPathLen before it happens.
func (s *searchSession) appendComponent(name string) error {
	if len(s.path)+1+len(name) > MaxPathLen {
		return fmt.Errorf("%w: %s/%s", ErrPathTooLong, s.path, name)
	}
	s.path = append(s.path, '/')
	s.path = append(s.path, name...)
	return nil
}

// walk searches the directory at the session's current path. depth
// indexes the frame arena; past TreeDepthLimit the walker stops
// descending without error.
func (s *searchSession) walk(ctx context.Context, depth int) error {
	if depth >= TreeDepthLimit {
		return nil
	}
	cur := string(s.path)

	entry, err := s.vfs.Stat(ctx, cur)
	if err != nil {
		if IsSkippable(err) {
			// Vanished or unreadable branch; keep searching
			// siblings and other roots.
			return nil
		}
		return err
	}
	if !entry.IsDir {
		return fmt.Errorf("%w: %s", ErrNotDir, cur)
	}

	canon, err := s.vfs.Resolve(ctx, cur, true)
	if err != nil {
		if IsSkippable(err) {
			return nil
		}
		return err
	}
	if canon == "/" {
		// Keep the buffer free of a doubled separator when entries
		// are appended below the filesystem root.
		canon = ""
	}
	if err := s.setPath(canon); err != nil {
		return err
	}
	if !s.baseSet {
		s.base = len(s.path)
		s.baseSet = true
	}

	if p, mountPath, inner, rerr := s.vfs.mounts.ResolveMount(cur); rerr == nil {
		if ns, ok := p.(NativeSearcher); ok {
			slog.Debug("scour: native delegation", "mount", mountPath, "rel", inner)
			n, nerr := ns.NativeSearch(ctx, mountPath, inner, s.pattern, s.flags, s.out)
			s.results += n
			return nerr
		}
	}

	frame := &s.frames[depth]
	frame.dirLen = len(s.path)
	if err := s.listFrame(ctx, cur, frame); err != nil {
		return err
	}

	for frame.cursor = 0; frame.cursor < len(frame.entries); frame.cursor++ {
		e := frame.entries[frame.cursor]

		if err := s.appendComponent(e.Name); err != nil {
			return err
		}

		how := glob.MatchPath(string(s.path[s.base:]), s.pattern)
		if how == glob.Success {
			if err := s.emit(ctx, e.Name); err != nil {
				return err
			}
			if s.flags.Has(StopAtFirst) {
				s.path = s.path[:frame.dirLen]
				return nil
			}
		}
		if e.IsDir && e.Name != "." && e.Name != ".." && (how == glob.Partial || s.recursive) {
			if err := s.walk(ctx, depth+1); err != nil {
				return err
			}
			if s.results > 0 && s.flags.Has(StopAtFirst) {
				s.path = s.path[:frame.dirLen]
				return nil
			}
		}

		// Sibling isolation: no entry's expansion leaks into the
		// next.
		s.path = s.path[:frame.dirLen]
	}
	return nil
}

// listFrame fills the frame's scratch listing for the directory at cur,
// reusing the frame's backing storage and enforcing the scratch bound.
func (s *searchSession) listFrame(ctx context.Context, cur string, frame *walkFrame) error {
	entries, err := s.vfs.List(ctx, cur, ListOpts{})
	if err != nil {
		return err
	}
	size := 0
	for i := range entries {
		size += len(entries[i].Name) + 3
		if size > ListScratchLimit {
			return fmt.Errorf("%w: %s", ErrListingTooLarge, cur)
		}
	}
	frame.entries = append(frame.entries[:0], entries...)
	return nil
}

// emit serializes one match at the session's current path. Without
// IncludeRoot the reported path is just the entry name, as the wire
// format's consumers expect.
func (s *searchSession) emit(ctx context.Context, name string) error {
	var meta *Metadata
	if s.flags.Has(IncludeMetadata) {
		m, err := s.vfs.Metadata(ctx, string(s.path))
		if err != nil {
			return err
		}
		meta = m
	}
	report := name
	if s.flags.Has(IncludeRoot) {
		report = string(s.path)
	}
	if err := s.out.Emit(report, meta); err != nil {
		return err
	}
	s.results++
	return nil
}

// lookupLiteral is the direct two-step resolution used when the pattern
// has no wildcard or alternation syntax: resolve the root, then resolve
// the pattern relative to it. A missing root or target skips to the
// next root rather than failing the call.
func (s *searchSession) lookupLiteral(ctx context.Context, root string) error {
	canon, err := s.vfs.Resolve(ctx, root, true)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if _, err := s.vfs.Stat(ctx, canon); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if canon == "/" {
		canon = ""
	}
	base := len(canon)
	target := canon + "/" + s.pattern
	if len(target) > MaxPathLen {
		return fmt.Errorf("%w: %s", ErrPathTooLong, target)
	}

	if _, err := s.vfs.Stat(ctx, target); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	var meta *Metadata
	if s.flags.Has(IncludeMetadata) {
		m, err := s.vfs.Metadata(ctx, target)
		if err != nil {
			return err
		}
		meta = m
	}
	report := target[base:]
	if s.flags.Has(IncludeRoot) {
		report = target
	}
	if err := s.out.Emit(report, meta); err != nil {
		return err
	}
	s.results++
	return nil
}
