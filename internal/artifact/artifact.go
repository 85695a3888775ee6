// Package artifact computes library artifact names and finalizes raw
// toolchain outputs into their platform-conventional forms.
package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/carton-build/carton/internal/config"
	"github.com/carton-build/carton/internal/semver"
)

// Set tracks one build's raw and finalized artifact paths together with the
// public header directory and package version. It is produced once per build
// invocation and overwritten on each rebuild.
type Set struct {
	RawShared   string
	RawStatic   string
	FinalShared string
	FinalStatic string
	IncludeDir  string
	Version     semver.Version
}

// New computes the artifact set for one build invocation. outputDir is the
// profile directory the toolchain writes into; finalized artifacts are placed
// beside the raw ones. The toolchain mangles dashes to underscores in the
// crate name for its raw outputs, while finalized names carry the public
// library name.
func New(platform config.Platform, crateName, libName, outputDir, includeDir string, version semver.Version) *Set {
	mangled := strings.ReplaceAll(crateName, "-", "_")

	return &Set{
		RawShared:   filepath.Join(outputDir, SharedLibraryName(platform, mangled)),
		RawStatic:   filepath.Join(outputDir, StaticLibraryName(platform, mangled)),
		FinalShared: filepath.Join(outputDir, SharedLibraryName(platform, libName)),
		FinalStatic: filepath.Join(outputDir, StaticLibraryName(platform, libName)),
		IncludeDir:  includeDir,
		Version:     version,
	}
}

// PublicName derives the public library name from a crate name when no
// explicit name is configured. Implementation-crate suffixes are stripped so
// the finalized artifact carries the product name.
func PublicName(crateName string) string {
	for _, suffix := range []string{"-core", "-sys", "-ffi"} {
		if trimmed, ok := strings.CutSuffix(crateName, suffix); ok && trimmed != "" {
			return trimmed
		}
	}
	return crateName
}

// SharedLibraryName returns the platform-conventional shared library
// filename for a base name.
func SharedLibraryName(platform config.Platform, name string) string {
	switch platform {
	case config.PlatformDarwin:
		return "lib" + name + ".dylib"
	case config.PlatformWindows:
		return name + ".dll"
	default:
		return "lib" + name + ".so"
	}
}

// StaticLibraryName returns the platform-conventional static library
// filename for a base name.
func StaticLibraryName(platform config.Platform, name string) string {
	if platform == config.PlatformWindows {
		return name + ".lib"
	}
	return "lib" + name + ".a"
}

// LinkerIdentityArgs returns the rustc arguments that set the shared
// artifact's embedded self-identifier to the finalized name. They must be
// passed to the build invocation, so the finalized name has to be known
// before the toolchain runs; otherwise consumers linking against the
// finalized name would fail at load time because the artifact claims its raw
// toolchain-default identity.
func LinkerIdentityArgs(platform config.Platform, finalSharedName string) []string {
	switch platform {
	case config.PlatformDarwin:
		return []string{"-C", "link-arg=-Wl,-install_name,@rpath/" + finalSharedName}
	case config.PlatformWindows:
		return nil
	default:
		return []string{"-C", "link-arg=-Wl,-soname," + finalSharedName}
	}
}

// Finalize copies both raw artifacts to their finalized names. The raw files
// stay in place, so repeating the call yields byte-identical results.
func (s *Set) Finalize() error {
	if err := finalizeOne(s.RawShared, s.FinalShared); err != nil {
		return fmt.Errorf("failed to finalize shared library: %w", err)
	}
	if err := finalizeOne(s.RawStatic, s.FinalStatic); err != nil {
		return fmt.Errorf("failed to finalize static library: %w", err)
	}
	return nil
}

func finalizeOne(raw, final string) error {
	if _, err := os.Stat(raw); err != nil {
		return fmt.Errorf("raw artifact %s not found: %w", raw, err)
	}

	// Raw and finalized names coincide when the crate name needs no mangling
	if raw == final {
		return nil
	}

	return CopyFile(raw, final)
}

// CopyFile copies a file from src to dst, preserving permissions
func CopyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}

	defer srcFile.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	return os.Chmod(dst, srcInfo.Mode())
}
