package version

import "fmt"

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X github.com/windloads/segpress/internal/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	Version   = "0.3.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns the one line version banner
func String() string {
	return fmt.Sprintf("segpress v%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
