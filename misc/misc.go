// Package misc provides program identity used in logging, reporting and
// generated artifacts.
package misc

import "runtime/debug"

// Set at build time via -ldflags.
var (
	appName = "tfg"
	version = "dev"
	gitHash = ""
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns VCS revision embedded at link time or, when absent,
// whatever build info the Go toolchain recorded.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
