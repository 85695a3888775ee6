// Package version holds build metadata injected at link time.
package version

// Set via -ldflags at release time; defaults identify a source build.
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
