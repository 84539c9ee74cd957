// Package types defines the core interfaces and types for the scour
// search engine. This package is intentionally kept minimal with no
// external dependencies.
package types

import (
	"fmt"
	"time"
)

// Perm represents simplified Unix-style permission bits (r/w/x).
type Perm uint8

const (
	PermRead  Perm = 1 << iota // r
	PermWrite                  // w
	PermExec                   // x
)

const (
	PermNone Perm = 0
	PermRO        = PermRead
	PermRW        = PermRead | PermWrite
	PermRX        = PermRead | PermExec
)

func (p Perm) CanRead() bool  { return p&PermRead != 0 }
func (p Perm) CanWrite() bool { return p&PermWrite != 0 }
func (p Perm) CanExec() bool  { return p&PermExec != 0 }

func (p Perm) String() string {
	s := [3]byte{'-', '-', '-'}
	if p.CanRead() {
		s[0] = 'r'
	}
	if p.CanWrite() {
		s[1] = 'w'
	}
	if p.CanExec() {
		s[2] = 'x'
	}
	return string(s[:])
}

// Entry represents a file or directory in the virtual filesystem.
type Entry struct {
	Name     string    // base name
	Path     string    // full path within scour
	IsDir    bool      // true if directory
	Perm     Perm      // permission bits
	Size     int64     // size in bytes (0 for dirs)
	Modified time.Time // last modification time
}

// String returns a formatted ls-style line for this entry.
func (e Entry) String() string {
	dirFlag := "-"
	name := e.Name
	if e.IsDir {
		dirFlag = "d"
		name += "/"
	}
	return fmt.Sprintf("%s%s  %s", dirFlag, e.Perm, name)
}

// ListOpts controls listing behaviour.
type ListOpts struct {
	// FollowLinks asks the provider to report symlink targets rather
	// than the links themselves where the distinction exists.
	FollowLinks bool
}
