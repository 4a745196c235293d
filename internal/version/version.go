// Package version carries build metadata stamped in at link time:
//
//	go build -ldflags "\
//	  -X github.com/featherkey/swipekit/internal/version.Version=v0.3.0 \
//	  -X github.com/featherkey/swipekit/internal/version.GitSHA=$(git rev-parse --short HEAD) \
//	  -X github.com/featherkey/swipekit/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import "fmt"

var (
	// Version is the release tag, or "dev" for unstamped local builds.
	Version = "dev"
	// GitSHA is the commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// String renders the one-line form printed by the version subcommand.
func String() string {
	return fmt.Sprintf("swipekit %s (%s) built %s", Version, GitSHA, BuildTime)
}
