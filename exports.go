// Package scour implements a single-pass, recursive pattern-based
// search engine over a virtual filesystem assembled from mount points.
//
// The key abstraction is Provider: a minimal interface (Stat + List)
// that every data source implements. Additional capabilities (Resolver,
// Metadatar, NativeSearcher) are detected at runtime via type
// assertions; a provider that implements NativeSearcher is handed whole
// subtrees to search itself instead of being traversed generically.
package scour

import "github.com/jackfish212/scour/types"

type (
	Perm              = types.Perm
	Entry             = types.Entry
	ListOpts          = types.ListOpts
	Flags             = types.Flags
	Metadata          = types.Metadata
	ResultBuffer      = types.ResultBuffer
	Record            = types.Record
	Provider          = types.Provider
	Resolver          = types.Resolver
	Metadatar         = types.Metadatar
	NativeSearcher    = types.NativeSearcher
	MountInfoProvider = types.MountInfoProvider
)

const (
	PermNone  = types.PermNone
	PermRead  = types.PermRead
	PermWrite = types.PermWrite
	PermExec  = types.PermExec
	PermRO    = types.PermRO
	PermRW    = types.PermRW
	PermRX    = types.PermRX
)

const (
	StopAtFirst     = types.StopAtFirst
	IncludeMetadata = types.IncludeMetadata
	IncludeRoot     = types.IncludeRoot
	Period          = types.Period
	ReadOK          = types.ReadOK
	WriteOK         = types.WriteOK
	ExecOK          = types.ExecOK
)

var (
	NewResultBuffer = types.NewResultBuffer
	ParseRecords    = types.ParseRecords
	EncodeDev       = types.EncodeDev
	IsSkippable     = types.IsSkippable
)

var (
	ErrNotFound        = types.ErrNotFound
	ErrNotReadable     = types.ErrNotReadable
	ErrNoDevice        = types.ErrNoDevice
	ErrNotDir          = types.ErrNotDir
	ErrAlreadyMounted  = types.ErrAlreadyMounted
	ErrMountUnderMount = types.ErrMountUnderMount
	ErrParentNotExist  = types.ErrParentNotExist
	ErrNotSupported    = types.ErrNotSupported
	ErrBufferTooSmall  = types.ErrBufferTooSmall
	ErrListingTooLarge = types.ErrListingTooLarge
	ErrPathTooLong     = types.ErrPathTooLong
)
