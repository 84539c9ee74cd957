package mounts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jackfish212/scour/types"
)

var (
	_ types.Provider  = (*LocalFS)(nil)
	_ types.Resolver  = (*LocalFS)(nil)
	_ types.Metadatar = (*LocalFS)(nil)
)

// LocalFS mounts a host directory into scour.
type LocalFS struct {
	root string
	perm types.Perm
}

func NewLocalFS(root string, perm types.Perm) *LocalFS {
	return &LocalFS{root: filepath.Clean(root), perm: perm}
}

func (l *LocalFS) hostPath(scourPath string) string {
	if scourPath == "" {
		return l.root
	}
	return filepath.Join(l.root, filepath.FromSlash(scourPath))
}

// classify maps host errors onto the sentinel set the walker's skip
// logic understands.
func classify(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", types.ErrNotFound, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", types.ErrNotReadable, path)
	case errors.Is(err, syscall.ENODEV), errors.Is(err, syscall.ENXIO):
		return fmt.Errorf("%w: %s", types.ErrNoDevice, path)
	}
	return err
}

func (l *LocalFS) Stat(_ context.Context, path string) (*types.Entry, error) {
	hp := l.hostPath(path)
	info, err := os.Stat(hp)
	if err != nil {
		return nil, classify(path, err)
	}
	return l.infoToEntry(path, info), nil
}

func (l *LocalFS) List(_ context.Context, path string, _ types.ListOpts) ([]types.Entry, error) {
	hp := l.hostPath(path)
	dirEntries, err := os.ReadDir(hp)
	if err != nil {
		return nil, classify(path, err)
	}

	entries := make([]types.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		info, infoErr := de.Info()
		if infoErr != nil {
			continue
		}
		childPath := de.Name()
		if path != "" {
			childPath = path + "/" + de.Name()
		}
		entries = append(entries, *l.infoToEntry(childPath, info))
	}
	return entries, nil
}

// Resolve canonicalizes a mount-relative path. With followLinks the
// host symlink chain is resolved; a target escaping the mount root
// cannot be expressed as a mount-relative path and collapses to the
// cleaned input.
func (l *LocalFS) Resolve(_ context.Context, path string, followLinks bool) (string, error) {
	hp := l.hostPath(path)
	if !followLinks {
		if _, err := os.Lstat(hp); err != nil {
			return "", classify(path, err)
		}
		return normPath(path), nil
	}
	resolved, err := filepath.EvalSymlinks(hp)
	if err != nil {
		return "", classify(path, err)
	}
	rootResolved, err := filepath.EvalSymlinks(l.root)
	if err != nil {
		return "", classify(path, err)
	}
	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return normPath(path), nil
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

// Metadata returns the real host stat record for the entry.
func (l *LocalFS) Metadata(_ context.Context, path string) (*types.Metadata, error) {
	hp := l.hostPath(path)
	info, err := os.Stat(hp)
	if err != nil {
		return nil, classify(path, err)
	}
	return sysMetadata(info), nil
}

func (l *LocalFS) infoToEntry(scourPath string, info os.FileInfo) *types.Entry {
	perm := l.perm
	if info.IsDir() && perm.CanRead() {
		perm = perm | types.PermExec
	}
	return &types.Entry{
		Name: info.Name(), Path: scourPath, IsDir: info.IsDir(), Perm: perm,
		Size: info.Size(), Modified: info.ModTime(),
	}
}

func (l *LocalFS) MountInfo() (string, string) { return "localfs", l.root }
