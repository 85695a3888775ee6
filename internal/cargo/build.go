package cargo

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/carton-build/carton/internal/config"
)

// Invocation describes one toolchain build.
type Invocation struct {
	// Project root containing Cargo.toml, used as the working directory
	Dir string

	Profile  config.BuildProfile
	Target   string
	Features []string

	// Raw rustc linker arguments appended after the -- separator
	LinkerArgs []string

	// Forwarded as MACOSX_DEPLOYMENT_TARGET when non-empty
	DeploymentTarget string

	Verbose bool
}

// BuildError reports a toolchain build failure. Diagnostics are carried
// verbatim from the subprocess.
type BuildError struct {
	ExitCode int
	Stderr   string
}

func (e *BuildError) Error() string {
	msg := fmt.Sprintf("cargo exited with code %d", e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\n" + s
	}
	return msg
}

// BuildArgs assembles the cargo argument list for an invocation. The order
// is fixed so identical configurations produce identical command lines.
func BuildArgs(inv Invocation) []string {
	args := []string{"rustc"}

	if inv.Profile.Optimized() {
		args = append(args, "--release")
	}

	if inv.Target != "" {
		args = append(args, "--target", inv.Target)
	}

	if len(inv.Features) > 0 {
		args = append(args, "--features", strings.Join(inv.Features, ","))
	}

	if len(inv.LinkerArgs) > 0 {
		args = append(args, "--")
		args = append(args, inv.LinkerArgs...)
	}

	return args
}

// Build runs the toolchain for inv and waits for completion. Progress output
// streams through unmodified; stderr is additionally captured so a failure
// surfaces the diagnostics in the returned error. A non-zero exit is fatal
// and never retried.
func (t *Toolchain) Build(inv Invocation) error {
	args := BuildArgs(inv)

	if inv.Verbose {
		fmt.Printf("Running: %s %s\n", t.Path, strings.Join(args, " "))
	}

	var stderr bytes.Buffer

	c := t.execCommand(t.Path, args...)
	if cmd, ok := c.(*exec.Cmd); ok {
		cmd.Dir = inv.Dir
		cmd.Stdout = os.Stdout
		cmd.Stderr = io.MultiWriter(os.Stderr, &stderr)

		if inv.DeploymentTarget != "" {
			cmd.Env = append(os.Environ(), "MACOSX_DEPLOYMENT_TARGET="+inv.DeploymentTarget)
		}
	}

	err := c.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &BuildError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return fmt.Errorf("failed to run cargo: %w", err)
	}

	return nil
}
