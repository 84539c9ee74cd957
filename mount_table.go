package scour

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

type mountRecord struct {
	path     string
	provider Provider
}

// MountInfo holds detailed information about a mount point.
type MountInfo struct {
	Path     string
	Provider Provider
	// Capabilities is a short letter code: r = resolver, m = metadata,
	// s = native search.
	Capabilities string
}

// MountTable manages all mount points and resolves arbitrary paths to
// the correct Provider plus the remaining inner path.
type MountTable struct {
	mu      sync.RWMutex
	records []mountRecord
	rcache  resolveCache
}

type resolveCache struct {
	mu    sync.RWMutex
	items map[string]resolveEntry
}

type resolveEntry struct {
	provider Provider
	mount    string
	inner    string
}

func (c *resolveCache) get(path string) (resolveEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.items == nil {
		return resolveEntry{}, false
	}
	e, ok := c.items[path]
	return e, ok
}

func (c *resolveCache) put(path string, e resolveEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = make(map[string]resolveEntry)
	}
	c.items[path] = e
}

func (c *resolveCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// NewMountTable creates an empty mount table.
func NewMountTable() *MountTable {
	return &MountTable{}
}

// Mount registers a Provider at the given path.
func (t *MountTable) Mount(mountPath string, p Provider) error {
	mountPath = CleanPath(mountPath)

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, r := range t.records {
		if r.path == mountPath {
			return fmt.Errorf("%w: %s", ErrAlreadyMounted, mountPath)
		}
	}

	for _, r := range t.records {
		if strings.HasPrefix(r.path, mountPath+"/") {
			return fmt.Errorf("%w: %s is ancestor of existing mount %s", ErrMountUnderMount, mountPath, r.path)
		}
	}

	t.records = append(t.records, mountRecord{path: mountPath, provider: p})

	// Longest mount path first, so deeper mounts shadow their parents.
	sort.Slice(t.records, func(i, j int) bool {
		return len(t.records[i].path) > len(t.records[j].path)
	})

	t.rcache.invalidate()
	return nil
}

// Unmount removes the mount at the given path.
func (t *MountTable) Unmount(mountPath string) error {
	mountPath = CleanPath(mountPath)

	t.mu.Lock()
	defer t.mu.Unlock()

	for i, r := range t.records {
		if r.path == mountPath {
			t.records = append(t.records[:i], t.records[i+1:]...)
			t.rcache.invalidate()
			return nil
		}
	}
	return fmt.Errorf("%w: mount %s", ErrNotFound, mountPath)
}

// Resolve finds the provider and inner path for a given full path.
func (t *MountTable) Resolve(fullPath string) (Provider, string, error) {
	p, _, inner, err := t.ResolveMount(fullPath)
	return p, inner, err
}

// ResolveMount is Resolve plus the mount point the path landed on. The
// walker needs the mount point to hand a subtree to a native-searching
// provider together with its mount-relative base.
func (t *MountTable) ResolveMount(fullPath string) (Provider, string, string, error) {
	fullPath = CleanPath(fullPath)

	if e, ok := t.rcache.get(fullPath); ok {
		return e.provider, e.mount, e.inner, nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, r := range t.records {
		var inner string
		switch {
		case fullPath == r.path:
			inner = ""
		case r.path == "/":
			inner = fullPath[1:]
		case strings.HasPrefix(fullPath, r.path+"/"):
			inner = fullPath[len(r.path)+1:]
		default:
			continue
		}
		t.rcache.put(fullPath, resolveEntry{provider: r.provider, mount: r.path, inner: inner})
		return r.provider, r.path, inner, nil
	}
	return nil, "", "", fmt.Errorf("%w: no mount for %s", ErrNotFound, fullPath)
}

// ChildMounts returns virtual directory entries for mount points
// directly under dirPath.
func (t *MountTable) ChildMounts(dirPath string) []Entry {
	dirPath = CleanPath(dirPath)

	prefix := dirPath + "/"
	if dirPath == "/" {
		prefix = "/"
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	seen := make(map[string]bool)
	var entries []Entry

	for _, r := range t.records {
		var rest string
		if dirPath == "/" {
			rest = strings.TrimPrefix(r.path, "/")
		} else if strings.HasPrefix(r.path, prefix) {
			rest = r.path[len(prefix):]
		} else {
			continue
		}

		if rest == "" {
			continue
		}

		name := rest
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			name = rest[:idx]
		}

		if seen[name] {
			continue
		}
		seen[name] = true

		entries = append(entries, Entry{
			Name:  name,
			Path:  path.Join(dirPath, name),
			IsDir: true,
			Perm:  PermRX,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries
}

// All returns every registered mount path.
func (t *MountTable) All() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	paths := make([]string, len(t.records))
	for i, r := range t.records {
		paths[i] = r.path
	}
	return paths
}

// AllInfo returns detailed information about all mount points.
func (t *MountTable) AllInfo() []MountInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()

	infos := make([]MountInfo, len(t.records))
	for i, r := range t.records {
		caps := [3]byte{'-', '-', '-'}
		if _, ok := r.provider.(Resolver); ok {
			caps[0] = 'r'
		}
		if _, ok := r.provider.(Metadatar); ok {
			caps[1] = 'm'
		}
		if _, ok := r.provider.(NativeSearcher); ok {
			caps[2] = 's'
		}
		infos[i] = MountInfo{
			Path:         r.path,
			Provider:     r.provider,
			Capabilities: string(caps[:]),
		}
	}
	return infos
}
