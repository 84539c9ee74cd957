// Package mounts provides built-in Provider implementations for scour.
package mounts

import (
	"os"
	"strings"

	"github.com/jackfish212/scour/types"
)

// portableMetadata builds a metadata record from the portable subset of
// FileInfo. Identity fields the platform does not expose stay zero.
func portableMetadata(info os.FileInfo) *types.Metadata {
	var mode uint32
	if info.IsDir() {
		mode = 0o040000
	} else {
		mode = 0o100000
	}
	mode |= uint32(info.Mode().Perm())
	t := info.ModTime().Unix()
	return &types.Metadata{
		Mode:    mode,
		Nlink:   1,
		Size:    info.Size(),
		Atime:   t,
		Mtime:   t,
		Ctime:   t,
		Blksize: 4096,
		Blocks:  (info.Size() + 511) / 512,
	}
}

func normPath(p string) string {
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")
	return p
}

func baseName(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	idx := strings.LastIndexByte(p, '/')
	if idx < 0 {
		return p
	}
	return p[idx+1:]
}
