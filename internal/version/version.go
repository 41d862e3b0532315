package version

import (
	"runtime/debug"
)

// Version information for dsrefs
const (
	// Version is the current semantic version of dsrefs
	Version = "0.3.0"
)

// Set during build time (use -ldflags "-X .../version.GitCommit=...")
var (
	BuildDate = "development"
	GitCommit = "unknown"
)

// Info returns version information as a string
func Info() string {
	return Version
}

// FullInfo returns detailed version information
func FullInfo() string {
	return "dsrefs " + Version + " (commit: " + commit() + ", built: " + BuildDate + ")"
}

// commit falls back to the VCS revision stamped by the Go toolchain
func commit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return GitCommit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return GitCommit
}
