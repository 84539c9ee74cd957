package types

import "fmt"

// Metadata is the stat-like record attached to a match when
// IncludeMetadata is set. Timestamps are seconds since the epoch.
type Metadata struct {
	Dev     uint64
	Ino     uint64
	Mode    uint32
	Nlink   uint64
	UID     uint32
	GID     uint32
	Rdev    uint64
	Size    int64
	Atime   int64
	Mtime   int64
	Ctime   int64
	Blksize int64
	Blocks  int64
}

// String renders the fixed, ordered 13-field comma list used in result
// records: dev, ino, mode, nlink, uid, gid, rdev, size, atime, mtime,
// ctime, blksize, blocks.
func (m *Metadata) String() string {
	return fmt.Sprintf("%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d",
		m.Dev, m.Ino, m.Mode, m.Nlink, m.UID, m.GID, m.Rdev,
		m.Size, m.Atime, m.Mtime, m.Ctime, m.Blksize, m.Blocks)
}

// EncodeDev packs a major/minor pair into the canonical device-id
// encoding used on the wire: minor&0xff | major<<8 | (minor&^0xff)<<12.
func EncodeDev(major, minor uint32) uint64 {
	return uint64(minor&0xff) | uint64(major)<<8 | uint64(minor&^uint32(0xff))<<12
}
