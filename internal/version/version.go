package version

import "fmt"

// Build information, set with -ldflags at release time, for example
// -X github.com/timbertson/daglink/internal/version.Version=1.2.0
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String describes the build on one line
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
