package types

import "errors"

var (
	ErrNotFound        = errors.New("scour: not found")
	ErrNotReadable     = errors.New("scour: permission denied: not readable")
	ErrNoDevice        = errors.New("scour: no such device")
	ErrNotDir          = errors.New("scour: not a directory")
	ErrAlreadyMounted  = errors.New("scour: path already mounted")
	ErrMountUnderMount = errors.New("scour: mount under existing mount point")
	ErrParentNotExist  = errors.New("scour: parent directory does not exist")
	ErrNotSupported    = errors.New("scour: operation not supported")

	// ErrBufferTooSmall means a single result record cannot fit in the
	// remaining output capacity. It aborts the whole search: partial
	// results with no truncation signal would be ambiguous.
	ErrBufferTooSmall = errors.New("scour: output buffer too small")
	// ErrListingTooLarge means one directory's listing exceeded the
	// per-level scratch capacity.
	ErrListingTooLarge = errors.New("scour: directory listing too large")
	// ErrPathTooLong means a candidate path outgrew the shared path
	// buffer.
	ErrPathTooLong = errors.New("scour: path too long")
)

// IsSkippable reports whether err belongs to the set of open failures
// that prune a branch during recursive descent instead of aborting the
// search: missing paths, unreadable directories and vanished devices.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrNotReadable) ||
		errors.Is(err, ErrNoDevice)
}
