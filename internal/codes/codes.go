// Package codes maps carton errors to process exit codes.
package codes

import (
	"errors"

	"github.com/carton-build/carton/internal/archive"
	"github.com/carton-build/carton/internal/cargo"
	"github.com/carton-build/carton/internal/manifest"
	"github.com/carton-build/carton/internal/target"
)

const (
	// OK indicates success
	OK = 0
	// Failure indicates a runtime or toolchain build failure
	Failure = 1
	// ConfigError indicates a configuration problem the user must correct:
	// an unparseable manifest, version-control metadata inside a vendored
	// archive, or a conflicting alias resolution
	ConfigError = 2
	// EnvError indicates a problem with the build environment: the
	// toolchain is missing or too old
	EnvError = 3
)

// ExitCodeFor classifies an error into the exit-code taxonomy.
func ExitCodeFor(err error) int {
	if err == nil {
		return OK
	}

	var (
		parseErr     *manifest.ParseError
		integrityErr *archive.IntegrityError
		conflictErr  *target.AliasConflictError
		notFoundErr  *cargo.NotFoundError
		tooOldErr    *cargo.TooOldError
	)

	switch {
	case errors.As(err, &parseErr),
		errors.As(err, &integrityErr),
		errors.As(err, &conflictErr):
		return ConfigError

	case errors.As(err, &notFoundErr),
		errors.As(err, &tooOldErr):
		return EnvError
	}

	return Failure
}
