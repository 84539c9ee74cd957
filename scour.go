package scour

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// VirtualFS is the top-level filesystem the search engine runs over. It
// owns the mount table and provides unified operations that
// transparently handle virtual directories, mount merging and
// capability detection.
type VirtualFS struct {
	mounts *MountTable
}

// New creates a new VirtualFS instance.
func New() *VirtualFS {
	return &VirtualFS{mounts: NewMountTable()}
}

// Mount registers a Provider at the given path.
func (v *VirtualFS) Mount(mountPath string, p Provider) error {
	mountPath = CleanPath(mountPath)

	if mountPath == "/" {
		return v.mounts.Mount(mountPath, p)
	}

	if _, inner, err := v.mounts.Resolve(mountPath); err == nil && inner == "" {
		return fmt.Errorf("%w: %s is already a mount point", ErrAlreadyMounted, mountPath)
	}

	parent := CleanPath(path.Dir(mountPath))

	if _, _, err := v.mounts.Resolve(parent); err != nil {
		// Parent exists nowhere; it may still be a virtual parent
		// implied by other mounts.
		if children := v.mounts.ChildMounts(parent); len(children) == 0 {
			if parent == "/" && len(v.mounts.All()) == 0 {
				return v.mounts.Mount(mountPath, p)
			}
			return fmt.Errorf("%w: %s", ErrParentNotExist, parent)
		}
	}

	return v.mounts.Mount(mountPath, p)
}

// Unmount removes the mount at the given path.
func (v *VirtualFS) Unmount(path string) error {
	return v.mounts.Unmount(path)
}

// MountTable returns the underlying mount table for inspection.
func (v *VirtualFS) MountTable() *MountTable {
	return v.mounts
}

// Stat returns entry metadata.
func (v *VirtualFS) Stat(ctx context.Context, fullPath string) (*Entry, error) {
	fullPath = CleanPath(fullPath)

	var statErr error
	if p, inner, err := v.mounts.Resolve(fullPath); err == nil {
		if inner == "" {
			// Mount points are always directories.
			return &Entry{Name: baseName(fullPath), Path: fullPath, IsDir: true, Perm: PermRX}, nil
		}
		entry, err := p.Stat(ctx, inner)
		if err == nil {
			entry.Path = fullPath
			return entry, nil
		}
		if !IsSkippable(err) {
			return nil, err
		}
		statErr = err
	}

	if children := v.mounts.ChildMounts(fullPath); len(children) > 0 {
		return &Entry{Name: baseName(fullPath), Path: fullPath, IsDir: true, Perm: PermRX}, nil
	}

	// Keep the provider's classification; NotReadable and NoDevice are
	// not the same condition as a missing entry.
	if statErr != nil {
		return nil, statErr
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, fullPath)
}

// List returns entries at a path, merging provider entries with virtual
// directories implied by child mounts.
func (v *VirtualFS) List(ctx context.Context, fullPath string, opts ListOpts) ([]Entry, error) {
	fullPath = CleanPath(fullPath)

	var entries []Entry
	seen := make(map[string]bool)
	resolved := false

	if p, inner, err := v.mounts.Resolve(fullPath); err == nil {
		resolved = true
		provEntries, listErr := p.List(ctx, inner, opts)
		if listErr != nil && !IsSkippable(listErr) {
			return nil, listErr
		}
		for _, e := range provEntries {
			if !strings.HasPrefix(e.Path, "/") {
				e.Path = CleanPath(fullPath + "/" + e.Name)
			}
			entries = append(entries, e)
			seen[e.Name] = true
		}
	}

	for _, child := range v.mounts.ChildMounts(fullPath) {
		if !seen[child.Name] {
			entries = append(entries, child)
			seen[child.Name] = true
		}
	}

	if !resolved && len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, fullPath)
	}

	return entries, nil
}

// Resolve canonicalizes a path, delegating symlink resolution to the
// provider when it is capable of it. Relative components are cleaned
// away in either case.
func (v *VirtualFS) Resolve(ctx context.Context, fullPath string, followLinks bool) (string, error) {
	fullPath = CleanPath(fullPath)

	p, mountPath, inner, err := v.mounts.ResolveMount(fullPath)
	if err != nil {
		if len(v.mounts.ChildMounts(fullPath)) > 0 || fullPath == "/" {
			return fullPath, nil
		}
		return "", err
	}
	r, ok := p.(Resolver)
	if !ok || inner == "" {
		return fullPath, nil
	}
	canon, err := r.Resolve(ctx, inner, followLinks)
	if err != nil {
		return "", err
	}
	if canon == "" {
		return mountPath, nil
	}
	return CleanPath(mountPath + "/" + canon), nil
}

// Metadata returns the full stat-like record for a path, using the
// provider's Metadatar capability when present and synthesizing one
// from Stat otherwise.
func (v *VirtualFS) Metadata(ctx context.Context, fullPath string) (*Metadata, error) {
	fullPath = CleanPath(fullPath)

	if p, inner, err := v.mounts.Resolve(fullPath); err == nil && inner != "" {
		if m, ok := p.(Metadatar); ok {
			return m.Metadata(ctx, inner)
		}
	}

	entry, err := v.Stat(ctx, fullPath)
	if err != nil {
		return nil, err
	}
	return SynthesizeMetadata(entry), nil
}

// SynthesizeMetadata derives a metadata record from an Entry for
// providers without real stat support. Identity fields are zero; mode,
// size and times carry what the entry knows.
func SynthesizeMetadata(e *Entry) *Metadata {
	const (
		modeDir = 0o040000
		modeReg = 0o100000
	)
	m := &Metadata{Nlink: 1, Blksize: 4096}
	var perm uint32
	if e.Perm.CanRead() {
		perm |= 0o444
	}
	if e.Perm.CanWrite() {
		perm |= 0o200
	}
	if e.Perm.CanExec() {
		perm |= 0o111
	}
	if e.IsDir {
		m.Mode = modeDir | perm
	} else {
		m.Mode = modeReg | perm
		m.Size = e.Size
		m.Blocks = (e.Size + 511) / 512
	}
	if !e.Modified.IsZero() {
		t := e.Modified.Unix()
		m.Atime, m.Mtime, m.Ctime = t, t, t
	}
	return m
}
