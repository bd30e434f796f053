// Package buildinfo holds the piggybank release identifiers stamped in at link time.
package buildinfo

import "fmt"

// Set with -ldflags "-X github.com/piggybank-dev/piggybank/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the version line shown by `piggybank --version`.
func String() string {
	if Commit == "none" && Date == "unknown" {
		return Version
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
