package scour

import (
	"fmt"
	"runtime"
	"time"
)

var (
	version   = "dev"
	buildDate = ""
	gitCommit = ""
)

type VersionInfo struct {
	Version   string
	BuildDate string
	GitCommit string
	GoVersion string
	Platform  string
}

func GetVersionInfo() VersionInfo {
	bd := buildDate
	if bd == "" {
		bd = time.Now().Format("2006-01-02")
	}
	return VersionInfo{
		Version:   version,
		BuildDate: bd,
		GitCommit: gitCommit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
