// Package version provides build and version information for checkenv.
package version

import (
	"fmt"
	"runtime"
)

// Name is the program name used in version output and the MCP handshake.
const Name = "checkenv"

// Build information, set via ldflags:
//
//	-X github.com/Aman-CERP/checkenv/pkg/version.Version=v1.2.3
//	-X github.com/Aman-CERP/checkenv/pkg/version.Commit=abc1234
//	-X github.com/Aman-CERP/checkenv/pkg/version.Date=2026-01-01T00:00:00Z
var (
	// Version is "dev" for builds without ldflags.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "unknown"

	// Date is the build date in RFC3339 format.
	Date = "unknown"

	// GoVersion is the Go version used to build the binary.
	GoVersion = runtime.Version()
)

// BuildInfo is structured version information for JSON output.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// String returns a formatted version string with all build info.
func String() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s)",
		Name, Version, Commit, Date, GoVersion)
}

// Short returns just the version string.
func Short() string {
	return Version
}

// GetInfo returns structured version information.
func GetInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}
