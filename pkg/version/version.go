// Package version reports the build version of carelist.
package version

import "fmt"

// Set at build time with -ldflags "-X github.com/rshade/carelist/pkg/version.version=...".
//
//nolint:gochecknoglobals // Overwritten by the linker.
var (
	version   = "0.0.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// GetVersion returns the semantic version of this build.
func GetVersion() string {
	return version
}

// GetGitCommit returns the commit this build was made from.
func GetGitCommit() string {
	return gitCommit
}

// GetBuildDate returns when this build was made.
func GetBuildDate() string {
	return buildDate
}

// String returns the version line shown by --version.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, gitCommit, buildDate)
}
