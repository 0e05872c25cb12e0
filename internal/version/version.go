// Package version provides build-time version information.
package version

import "fmt"

// AppName is the user-facing application name.
const AppName = "Magic Eraser"

// These variables are set at build time using -ldflags
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the version for logs and the about dialog.
func String() string {
	return fmt.Sprintf("%s %s (%s, built %s)", AppName, Version, GitCommit, BuildTime)
}
