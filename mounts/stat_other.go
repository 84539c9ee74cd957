//go:build !linux

package mounts

import (
	"os"

	"github.com/jackfish212/scour/types"
)

func sysMetadata(info os.FileInfo) *types.Metadata {
	return portableMetadata(info)
}
