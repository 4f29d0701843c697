package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/arthur-debert/dodex/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/arthur-debert/dodex/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/arthur-debert/dodex/internal/version.Date={{.Date}}
)

// Info returns the one line shown by the version command.
func Info() string {
	return fmt.Sprintf("dodex %s (commit %s, built %s)", Version, Commit, Date)
}
