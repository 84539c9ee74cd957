//go:build linux

package mounts

import (
	"os"
	"syscall"

	"github.com/jackfish212/scour/types"
)

// sysMetadata fills a metadata record from the raw stat when the
// platform exposes one, falling back to what FileInfo carries.
func sysMetadata(info os.FileInfo) *types.Metadata {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return portableMetadata(info)
	}
	return &types.Metadata{
		Dev:     types.EncodeDev(devMajor(st.Dev), devMinor(st.Dev)),
		Ino:     st.Ino,
		Mode:    st.Mode,
		Nlink:   uint64(st.Nlink),
		UID:     st.Uid,
		GID:     st.Gid,
		Rdev:    types.EncodeDev(devMajor(st.Rdev), devMinor(st.Rdev)),
		Size:    st.Size,
		Atime:   st.Atim.Sec,
		Mtime:   st.Mtim.Sec,
		Ctime:   st.Ctim.Sec,
		Blksize: int64(st.Blksize),
		Blocks:  st.Blocks,
	}
}

// Linux dev_t layout: 12-bit major spread around a 20-bit minor.
func devMajor(dev uint64) uint32 {
	return uint32((dev >> 8) & 0xfff)
}

func devMinor(dev uint64) uint32 {
	return uint32(dev&0xff) | uint32((dev>>12)&0xffffff00)
}
