// Package version exposes build metadata injected at link time.
package version

// Set with -ldflags "-X github.com/sydlexius/songscape/internal/version.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
)
