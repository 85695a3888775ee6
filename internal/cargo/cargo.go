// Package cargo locates the Rust toolchain and drives library builds.
package cargo

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"
)

// Commander interface for testing
type Commander interface {
	Run() error
	Output() ([]byte, error)
}

// NotFoundError reports that no cargo executable could be located.
type NotFoundError struct {
	Searched []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf(
		"cargo executable not found (searched %s): install the Rust toolchain from https://rustup.rs",
		strings.Join(e.Searched, ", "),
	)
}

// TooOldError reports a toolchain older than the supported minimum.
type TooOldError struct {
	Found   string
	Minimum string
}

func (e *TooOldError) Error() string {
	return fmt.Sprintf(
		"cargo %s is older than the minimum supported version %s: update the toolchain with `rustup update`",
		e.Found, e.Minimum,
	)
}

// Toolchain is a located cargo executable.
type Toolchain struct {
	// Path to the executable
	Path string
	// Version reported by the executable, populated by DetectVersion
	Version string

	execCommand func(name string, args ...string) Commander
}

func newToolchain(path string) *Toolchain {
	return &Toolchain{
		Path: path,
		execCommand: func(name string, args ...string) Commander {
			return exec.Command(name, args...)
		},
	}
}

// Locate finds the cargo executable. An explicit path from configuration
// wins; otherwise PATH is searched, then the conventional rustup install
// locations. Absence is fatal, not retried.
func Locate(explicit string) (*Toolchain, error) {
	if explicit != "" {
		if info, err := os.Stat(explicit); err != nil || info.IsDir() {
			return nil, &NotFoundError{Searched: []string{explicit}}
		}
		return newToolchain(explicit), nil
	}

	if path, err := exec.LookPath("cargo"); err == nil {
		return newToolchain(path), nil
	}

	searched := []string{"PATH"}
	for _, dir := range fallbackDirs() {
		candidate := filepath.Join(dir, exeName("cargo"))
		searched = append(searched, candidate)

		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return newToolchain(candidate), nil
		}
	}

	return nil, &NotFoundError{Searched: searched}
}

func fallbackDirs() []string {
	var dirs []string
	if cargoHome := os.Getenv("CARGO_HOME"); cargoHome != "" {
		dirs = append(dirs, filepath.Join(cargoHome, "bin"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".cargo", "bin"))
	}
	return dirs
}

func exeName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

var versionPattern = regexp.MustCompile(`\d+\.\d+\.\d+`)

// DetectVersion asks the toolchain for its version and records the first
// X.Y.Z triple found in the report. A report that cannot be parsed is an
// error, never assumed compatible.
func (t *Toolchain) DetectVersion() error {
	out, err := t.execCommand(t.Path, "--version").Output()
	if err != nil {
		return fmt.Errorf("failed to run %s --version: %w", t.Path, err)
	}

	match := versionPattern.FindString(string(out))
	if match == "" {
		return fmt.Errorf("could not parse toolchain version from %q", strings.TrimSpace(string(out)))
	}

	t.Version = match
	return nil
}

// CheckVersion compares the detected version against minimum numerically,
// component by component.
func (t *Toolchain) CheckVersion(minimum string) error {
	found := "v" + t.Version
	floor := "v" + minimum

	if !semver.IsValid(found) {
		return fmt.Errorf("invalid toolchain version %q", t.Version)
	}
	if !semver.IsValid(floor) {
		return fmt.Errorf("invalid minimum toolchain version %q", minimum)
	}

	if semver.Compare(found, floor) < 0 {
		return &TooOldError{Found: t.Version, Minimum: minimum}
	}

	return nil
}
