// Package build exposes build-time metadata injected via ldflags.
package build

import "fmt"

// Version, Commit, and Branch are set at build time by:
//
//	-ldflags "-X github.com/edify-labs/edify/internal/build.Version=... ..."
var (
	Version = "dev"
	Commit  = "unknown"
	Branch  = "unknown"
)

// String renders the build metadata for the version command and the health endpoint.
func String() string {
	return fmt.Sprintf("edify %s (commit %s, branch %s)", Version, Commit, Branch)
}
