package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Default configuration values
const (
	DefaultBuildType        = "debug"
	DefaultMinimumToolchain = "1.53.0"
	DefaultPrefix           = "dist"
	DefaultShared           = true
)

// Config holds one build configuration. It is constructed once per run and
// never mutated afterward; every component receives it explicitly.
type Config struct {
	// Directory containing the Cargo manifest
	ProjectDir string
	// Path to Cargo.toml inside ProjectDir
	ManifestPath string

	// Build profile (debug, release, relwithdebinfo)
	BuildType BuildProfile
	// Cross-compilation target triple; empty means host
	Target string
	// Cargo feature flags
	Features []string
	// Platform the artifacts are built for, derived from Target
	Platform Platform

	// Alias link target resolves to the shared library when true,
	// the static library when false
	BuildShared bool

	// Install prefix for headers, libraries and package descriptors
	Prefix string

	// Explicit path to the cargo executable; empty means search
	CargoPath string
	// Minimum acceptable toolchain version
	MinToolchain string
	// Forwarded to the toolchain environment on macOS builds
	DeploymentTarget string

	// Cargo output directory (ProjectDir/target)
	TargetDir string
	// Carton state directory holding the fingerprint database and
	// install manifest (TargetDir/carton)
	StateDir string
	// Archive cache directory (StateDir/vendor)
	VendorDir string

	// Skip the fingerprint check and always rebuild
	Force bool
	// Echo toolchain invocations
	Verbose bool
	// Suppress status output
	Quiet bool
}

// Load builds a Config from the current viper state and the project
// directory argument.
func Load(projectDir string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("invalid project directory: %w", err)
	}

	profile, err := ParseProfile(viper.GetString("build_type"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ProjectDir:       abs,
		ManifestPath:     filepath.Join(abs, "Cargo.toml"),
		BuildType:        profile,
		Target:           viper.GetString("target"),
		Features:         viper.GetStringSlice("features"),
		BuildShared:      viper.GetBool("shared"),
		Prefix:           viper.GetString("prefix"),
		CargoPath:        viper.GetString("cargo_path"),
		MinToolchain:     viper.GetString("min_toolchain"),
		DeploymentTarget: viper.GetString("deployment_target"),
		Force:            viper.GetBool("force"),
		Verbose:          viper.GetBool("verbose"),
		Quiet:            viper.GetBool("quiet"),
	}

	cfg.Platform = PlatformForTriple(cfg.Target)
	cfg.TargetDir = filepath.Join(abs, "target")
	cfg.StateDir = filepath.Join(cfg.TargetDir, "carton")
	cfg.VendorDir = filepath.Join(cfg.StateDir, "vendor")

	if cfg.DeploymentTarget == "" {
		cfg.DeploymentTarget = os.Getenv("MACOSX_DEPLOYMENT_TARGET")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MinToolchain == "" {
		c.MinToolchain = DefaultMinimumToolchain
	}

	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	if !filepath.IsAbs(c.Prefix) {
		c.Prefix = filepath.Join(c.ProjectDir, c.Prefix)
	}

	if c.CargoPath != "" {
		abs, err := filepath.Abs(c.CargoPath)
		if err != nil {
			return fmt.Errorf("invalid cargo path: %w", err)
		}
		c.CargoPath = abs
	}

	return nil
}

// ProfileOutputDir returns the directory cargo writes raw artifacts to for
// this configuration, honoring a cross-compilation triple when present.
func (c *Config) ProfileOutputDir() string {
	if c.Target != "" {
		return filepath.Join(c.TargetDir, c.Target, c.BuildType.DirName())
	}
	return filepath.Join(c.TargetDir, c.BuildType.DirName())
}
