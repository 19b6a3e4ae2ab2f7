// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -o release-stats-csv -ldflags "-X github.com/matzehuels/releasestats/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/releasestats/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/releasestats/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/release-stats-csv
package buildinfo

import "fmt"

var (
	// Version is the semantic version (e.g., "v1.2.3").
	// Set via ldflags: -X github.com/matzehuels/releasestats/pkg/buildinfo.Version=...
	Version = "dev"

	// Commit is the git commit SHA.
	// Set via ldflags: -X github.com/matzehuels/releasestats/pkg/buildinfo.Commit=...
	Commit = "none"

	// Date is the build timestamp.
	// Set via ldflags: -X github.com/matzehuels/releasestats/pkg/buildinfo.Date=...
	Date = "unknown"
)

// Template returns the version template string for cobra, e.g.
// "release-stats-csv version v1.0.0".
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
