package codes

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carton-build/carton/internal/archive"
	"github.com/carton-build/carton/internal/cargo"
	"github.com/carton-build/carton/internal/manifest"
	"github.com/carton-build/carton/internal/target"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, OK},
		{"manifest parse error", &manifest.ParseError{Path: "Cargo.toml", Reason: "no version"}, ConfigError},
		{"archive integrity error", &archive.IntegrityError{Archive: "data.tar.gz", Found: ".git"}, ConfigError},
		{"alias conflict", &target.AliasConflictError{Name: "mylib"}, ConfigError},
		{"toolchain not found", &cargo.NotFoundError{Searched: []string{"PATH"}}, EnvError},
		{"toolchain too old", &cargo.TooOldError{Found: "1.52.9", Minimum: "1.53.0"}, EnvError},
		{"build failure", &cargo.BuildError{ExitCode: 101}, Failure},
		{"plain error", errors.New("boom"), Failure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeFor(tt.err))
		})
	}
}

func TestExitCodeFor_Wrapped(t *testing.T) {
	err := fmt.Errorf("during vendor: %w", &archive.IntegrityError{Archive: "a.zip", Found: ".svn"})
	assert.Equal(t, ConfigError, ExitCodeFor(err))

	err = fmt.Errorf("during build: %w", &cargo.TooOldError{Found: "1.40.0", Minimum: "1.53.0"})
	assert.Equal(t, EnvError, ExitCodeFor(err))
}
