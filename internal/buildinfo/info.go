// Package buildinfo carries release metadata stamped in at link time:
//
//	go build -ldflags "-X github.com/arung-agamani/yuuka/internal/buildinfo.Version=v0.3.0 \
//	  -X github.com/arung-agamani/yuuka/internal/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

import "fmt"

var (
	// Version will be set via ldflags during build.
	Version = "dev"
	// Commit will be set via ldflags during build.
	Commit = "none"
	// Date will be set via ldflags during build.
	Date = "unknown"
)

// String formats the metadata for `yuuka --version`.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
