package version

import "runtime"

// These variables will be set at build time via -ldflags
var (
	// Version represents the application version (from git tags)
	Version = "dev"
	// CommitID is the git commit hash
	CommitID = "unknown"
)

// Info returns structured version information for display.
func Info() map[string]string {
	return map[string]string{
		"Version":   Version,
		"GitCommit": CommitID,
		"GoVersion": runtime.Version(),
		"OS":        runtime.GOOS,
		"Arch":      runtime.GOARCH,
	}
}
