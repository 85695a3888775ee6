package config

import (
	"fmt"
	"runtime"
	"strings"
)

// BuildProfile selects the toolchain flag set and output subdirectory.
type BuildProfile string

const (
	ProfileDebug   BuildProfile = "debug"
	ProfileRelease BuildProfile = "release"
	// ProfileRelWithDebInfo builds with release flags but keeps its own label
	// so downstream tooling can tell the two apart.
	ProfileRelWithDebInfo BuildProfile = "relwithdebinfo"
)

// ParseProfile normalizes and validates a build-type string.
func ParseProfile(s string) (BuildProfile, error) {
	switch BuildProfile(strings.ToLower(s)) {
	case ProfileDebug:
		return ProfileDebug, nil
	case ProfileRelease:
		return ProfileRelease, nil
	case ProfileRelWithDebInfo:
		return ProfileRelWithDebInfo, nil
	}
	return "", fmt.Errorf("invalid build type: %q (expected debug, release or relwithdebinfo)", s)
}

// Optimized reports whether the profile builds with release flags.
func (p BuildProfile) Optimized() bool {
	return p == ProfileRelease || p == ProfileRelWithDebInfo
}

// DirName returns the subdirectory cargo writes this profile's output to.
// Both optimized profiles share cargo's release directory.
func (p BuildProfile) DirName() string {
	if p.Optimized() {
		return "release"
	}
	return "debug"
}

// Platform identifies the operating system the artifacts are built for,
// which drives library naming and linker metadata.
type Platform string

const (
	PlatformDarwin  Platform = "darwin"
	PlatformLinux   Platform = "linux"
	PlatformWindows Platform = "windows"
)

// HostPlatform returns the platform of the machine running the build.
func HostPlatform() Platform {
	switch runtime.GOOS {
	case "darwin":
		return PlatformDarwin
	case "windows":
		return PlatformWindows
	default:
		return PlatformLinux
	}
}

// PlatformForTriple maps a cross-compilation target triple to the platform
// its artifacts are built for. An empty triple means the host platform.
// Unrecognized triples follow ELF conventions, which covers the remaining
// targets cargo supports.
func PlatformForTriple(triple string) Platform {
	if triple == "" {
		return HostPlatform()
	}
	switch {
	case strings.Contains(triple, "darwin"), strings.Contains(triple, "apple-ios"):
		return PlatformDarwin
	case strings.Contains(triple, "windows"):
		return PlatformWindows
	default:
		return PlatformLinux
	}
}
