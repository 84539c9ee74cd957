package mounts

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackfish212/scour/types"
)

var (
	_ types.Provider  = (*MemFS)(nil)
	_ types.Metadatar = (*MemFS)(nil)
)

// MemFS is an in-memory filesystem, used for fixtures and virtual
// roots. Directories exist explicitly via AddDir or implicitly as
// prefixes of deeper entries.
type MemFS struct {
	mu    sync.RWMutex
	files map[string]*memFile
	perm  types.Perm
}

type memFile struct {
	size     int64
	isDir    bool
	perm     types.Perm
	modified time.Time
}

// NewMemFS creates a new in-memory filesystem.
func NewMemFS(perm types.Perm) *MemFS {
	return &MemFS{files: make(map[string]*memFile), perm: perm}
}

// AddFile registers a file of the given size.
func (m *MemFS) AddFile(path string, size int64, perm types.Perm) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[normPath(path)] = &memFile{size: size, perm: perm, modified: time.Now()}
}

// AddDir registers an explicit directory.
func (m *MemFS) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[normPath(path)] = &memFile{isDir: true, perm: types.PermRX, modified: time.Now()}
}

func (m *MemFS) Stat(_ context.Context, path string) (*types.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path = normPath(path)
	if path == "" {
		return &types.Entry{Name: "/", Path: "", IsDir: true, Perm: m.perm}, nil
	}
	if f, ok := m.files[path]; ok {
		return f.toEntry(path), nil
	}
	// Implicit directory: some deeper entry uses this path as prefix.
	prefix := path + "/"
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			return &types.Entry{Name: baseName(path), Path: path, IsDir: true, Perm: m.perm}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", types.ErrNotFound, path)
}

func (m *MemFS) List(_ context.Context, path string, _ types.ListOpts) ([]types.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path = normPath(path)
	prefix := ""
	if path != "" {
		prefix = path + "/"
	}

	seen := make(map[string]bool)
	var entries []types.Entry
	found := path == ""

	for p, f := range m.files {
		if path != "" {
			if p == path {
				found = true
				continue
			}
			if !strings.HasPrefix(p, prefix) {
				continue
			}
		}
		rest := strings.TrimPrefix(p, prefix)
		name := rest
		implicitDir := false
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			name = rest[:idx]
			implicitDir = true
		} else {
			found = found || path == ""
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		childPath := prefix + name
		if implicitDir {
			entries = append(entries, types.Entry{Name: name, Path: childPath, IsDir: true, Perm: m.perm})
		} else {
			entries = append(entries, *f.toEntry(childPath))
		}
		found = true
	}

	if path != "" && !found {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, path)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Metadata synthesizes a stable record; the inode is a hash of the
// path so repeated searches agree.
func (m *MemFS) Metadata(ctx context.Context, path string) (*types.Metadata, error) {
	entry, err := m.Stat(ctx, path)
	if err != nil {
		return nil, err
	}
	var mode uint32
	if entry.IsDir {
		mode = 0o040555
	} else {
		mode = 0o100444
		if entry.Perm.CanWrite() {
			mode |= 0o200
		}
	}
	h := fnv.New64a()
	h.Write([]byte(normPath(path)))
	t := entry.Modified.Unix()
	if entry.Modified.IsZero() {
		t = 0
	}
	return &types.Metadata{
		Ino:     h.Sum64(),
		Mode:    mode,
		Nlink:   1,
		Size:    entry.Size,
		Atime:   t,
		Mtime:   t,
		Ctime:   t,
		Blksize: 4096,
		Blocks:  (entry.Size + 511) / 512,
	}, nil
}

func (f *memFile) toEntry(path string) *types.Entry {
	return &types.Entry{
		Name:     baseName(path),
		Path:     path,
		IsDir:    f.isDir,
		Perm:     f.perm,
		Size:     f.size,
		Modified: f.modified,
	}
}

func (m *MemFS) MountInfo() (string, string) { return "memfs", "" }
