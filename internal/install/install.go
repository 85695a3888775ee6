// Package install copies finalized build outputs into an install prefix and
// records what was installed.
package install

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/carton-build/carton/internal/artifact"
	"github.com/carton-build/carton/internal/cmake"
	"github.com/carton-build/carton/internal/config"
)

// Result reports one completed installation.
type Result struct {
	// Prefix the files were installed under
	Prefix string
	// Installed lists every installed file as an absolute path
	Installed []string
	// ManifestPath is the install manifest written into the state directory
	ManifestPath string
}

// Run installs the public headers, both finalized libraries and the package
// descriptor files under cfg.Prefix, then writes an install manifest listing
// every installed path into the state directory. Every step is a plain copy
// or rewrite, so re-running after a partial failure converges on the same
// layout.
func Run(cfg *config.Config, name string, set *artifact.Set) (*Result, error) {
	r := &Result{Prefix: cfg.Prefix}

	if err := installHeaders(set.IncludeDir, filepath.Join(cfg.Prefix, "include", name), r); err != nil {
		return nil, err
	}

	if err := installLibraries(set, filepath.Join(cfg.Prefix, "lib"), r); err != nil {
		return nil, err
	}

	if err := installDescriptors(cfg, name, set, r); err != nil {
		return nil, err
	}

	if err := writeManifest(cfg.StateDir, r); err != nil {
		return nil, err
	}

	return r, nil
}

// installHeaders mirrors the public header tree into destDir.
func installHeaders(includeDir, destDir string, r *Result) error {
	info, err := os.Stat(includeDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("public header directory %s not found", includeDir)
	}

	return filepath.WalkDir(includeDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(includeDir, path)
		if err != nil {
			return err
		}

		dest := filepath.Join(destDir, rel)
		if err := artifact.CopyFile(path, dest); err != nil {
			return fmt.Errorf("failed to install header %s: %w", rel, err)
		}

		r.Installed = append(r.Installed, dest)
		return nil
	})
}

// installLibraries copies both finalized libraries into libDir.
func installLibraries(set *artifact.Set, libDir string, r *Result) error {
	for _, src := range []string{set.FinalShared, set.FinalStatic} {
		dest := filepath.Join(libDir, filepath.Base(src))
		if err := artifact.CopyFile(src, dest); err != nil {
			return fmt.Errorf("failed to install library %s: %w", filepath.Base(src), err)
		}
		r.Installed = append(r.Installed, dest)
	}

	return nil
}

// installDescriptors regenerates the package descriptor and compatibility
// predicate under <prefix>/lib/cmake/<name>/.
func installDescriptors(cfg *config.Config, name string, set *artifact.Set, r *Result) error {
	dir := filepath.Join(cfg.Prefix, "lib", "cmake", name)

	d := cmake.Descriptor{
		Name:        name,
		Version:     set.Version,
		SharedLib:   filepath.Base(set.FinalShared),
		StaticLib:   filepath.Base(set.FinalStatic),
		AliasShared: cfg.BuildShared,
	}
	if err := cmake.WriteFiles(dir, d); err != nil {
		return err
	}

	r.Installed = append(r.Installed,
		filepath.Join(dir, cmake.ConfigFileName(name)),
		filepath.Join(dir, cmake.VersionFileName(name)),
	)
	return nil
}

// writeManifest records every installed path, one per line, in the state
// directory. The manifest is regenerated wholesale on each install.
func writeManifest(stateDir string, r *Result) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	r.ManifestPath = filepath.Join(stateDir, "install_manifest.txt")

	content := strings.Join(r.Installed, "\n") + "\n"
	if err := os.WriteFile(r.ManifestPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write install manifest: %w", err)
	}

	return nil
}
