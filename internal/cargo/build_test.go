package cargo

import (
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carton-build/carton/internal/config"
)

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name string
		inv  Invocation
		want []string
	}{
		{
			name: "debug host build",
			inv:  Invocation{Profile: config.ProfileDebug},
			want: []string{"rustc"},
		},
		{
			name: "release build",
			inv:  Invocation{Profile: config.ProfileRelease},
			want: []string{"rustc", "--release"},
		},
		{
			name: "relwithdebinfo uses release flags",
			inv:  Invocation{Profile: config.ProfileRelWithDebInfo},
			want: []string{"rustc", "--release"},
		},
		{
			name: "cross-compilation target",
			inv:  Invocation{Profile: config.ProfileDebug, Target: "aarch64-apple-darwin"},
			want: []string{"rustc", "--target", "aarch64-apple-darwin"},
		},
		{
			name: "features are comma joined",
			inv:  Invocation{Profile: config.ProfileDebug, Features: []string{"serialization", "extra"}},
			want: []string{"rustc", "--features", "serialization,extra"},
		},
		{
			name: "linker args go after the separator",
			inv: Invocation{
				Profile:    config.ProfileDebug,
				LinkerArgs: []string{"-C", "link-arg=-Wl,-soname,libmylib.so"},
			},
			want: []string{"rustc", "--", "-C", "link-arg=-Wl,-soname,libmylib.so"},
		},
		{
			name: "all options combined",
			inv: Invocation{
				Profile:    config.ProfileRelease,
				Target:     "x86_64-unknown-linux-gnu",
				Features:   []string{"serialization"},
				LinkerArgs: []string{"-C", "link-arg=-Wl,-soname,libmylib.so"},
			},
			want: []string{
				"rustc", "--release",
				"--target", "x86_64-unknown-linux-gnu",
				"--features", "serialization",
				"--", "-C", "link-arg=-Wl,-soname,libmylib.so",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildArgs(tt.inv))
		})
	}
}

func TestToolchain_Build_Success(t *testing.T) {
	var gotArgs []string

	tc := &Toolchain{
		Path: "cargo",
		execCommand: func(name string, args ...string) Commander {
			gotArgs = args
			return &mockCommander{
				runFunc: func() error { return nil },
			}
		},
	}

	err := tc.Build(Invocation{Dir: t.TempDir(), Profile: config.ProfileRelease})

	require.NoError(t, err)
	assert.Equal(t, []string{"rustc", "--release"}, gotArgs)
}

func TestToolchain_Build_FailureSurfacesStderr(t *testing.T) {
	tc := &Toolchain{
		Path: "cargo",
		execCommand: func(name string, args ...string) Commander {
			return exec.Command("sh", "-c", `echo "error: linking with cc failed" >&2; exit 101`)
		},
	}

	err := tc.Build(Invocation{Dir: t.TempDir(), Profile: config.ProfileDebug})

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, 101, buildErr.ExitCode)
	assert.Contains(t, buildErr.Stderr, "linking with cc failed")
	assert.Contains(t, err.Error(), "linking with cc failed")
}

func TestToolchain_Build_NonExitError(t *testing.T) {
	tc := &Toolchain{
		Path: "cargo",
		execCommand: func(name string, args ...string) Commander {
			return &mockCommander{
				runFunc: func() error { return fmt.Errorf("command not found") },
			}
		},
	}

	err := tc.Build(Invocation{Dir: t.TempDir(), Profile: config.ProfileDebug})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "command not found")
}
