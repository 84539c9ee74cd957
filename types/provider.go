package types

import "context"

// Provider is the minimal interface that every mountable data source
// implements: navigation (Stat + List). That is all the generic tree
// walker needs.
//
// Additional capabilities are expressed as optional interfaces that a
// Provider may also implement:
//   - Resolver       — canonical/symlink-aware path resolution
//   - Metadatar      — full stat-like metadata for result records
//   - NativeSearcher — perform the search of a subtree natively
//
// scour detects these capabilities at runtime via type assertion, so
// providers only implement what they actually support.
type Provider interface {
	Stat(ctx context.Context, path string) (*Entry, error)
	List(ctx context.Context, path string, opts ListOpts) ([]Entry, error)
}

// Resolver is implemented by providers that can canonicalize a path,
// optionally following symlinks. The returned path is still relative to
// the provider's mount.
type Resolver interface {
	Resolve(ctx context.Context, path string, followLinks bool) (string, error)
}

// Metadatar is implemented by providers that can produce the full
// stat-like Metadata record for an entry. Providers without it get a
// synthetic record derived from Stat.
type Metadatar interface {
	Metadata(ctx context.Context, path string) (*Metadata, error)
}

// NativeSearcher is implemented by providers that can search a subtree
// themselves, e.g. against an index, bypassing generic traversal. The
// walker hands over the mount point, the mount-relative base of the
// subtree, the pattern and flags, and the shared output buffer; the
// provider's match count and error are adopted verbatim.
type NativeSearcher interface {
	NativeSearch(ctx context.Context, mountPath, relPath, pattern string, flags Flags, out *ResultBuffer) (int, error)
}

// MountInfoProvider is implemented by providers that can describe
// themselves.
type MountInfoProvider interface {
	MountInfo() (name, extra string)
}
