package cmd

import (
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/carton-build/carton/internal/codes"
	"github.com/carton-build/carton/internal/config"
	"github.com/carton-build/carton/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "carton",
	Short: "Build and package a native library for C and C++ consumers",
	Long: `carton builds a Rust cdylib/staticlib crate with cargo, finalizes the
artifacts into platform-conventional library names, and installs headers,
libraries and CMake package descriptors so downstream builds can locate the
library by name and version.`,
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(codes.ExitCodeFor(err))
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Explicit config file, bypassing discovery")
	pf.StringP("build-type", "b", config.DefaultBuildType, "Build profile (debug, release, relwithdebinfo)")
	pf.StringP("target", "t", "", "Cross-compilation target triple")
	pf.StringSliceP("features", "F", []string{}, "Cargo feature flags")
	pf.Bool("shared", config.DefaultShared, "Resolve the alias target to the shared library")
	pf.Bool("static", false, "Resolve the alias target to the static library")
	pf.StringP("prefix", "p", "", "Install prefix")
	pf.String("cargo-path", "", "Explicit path to the cargo executable")
	pf.BoolP("force", "f", false, "Rebuild even when no build input changed")
	pf.BoolP("verbose", "v", false, "Echo toolchain invocations")
	pf.BoolP("quiet", "q", false, "Suppress status output")

	rootCmd.AddCommand(buildCmd, installCmd, vendorCmd, cleanCmd)

	viper.SetDefault("build_type", config.DefaultBuildType)
	viper.SetDefault("min_toolchain", config.DefaultMinimumToolchain)
	viper.SetDefault("prefix", config.DefaultPrefix)
	viper.SetDefault("shared", config.DefaultShared)
}

// loadConfig resolves the optional project-directory argument and builds the
// immutable configuration for this run.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	projectDir := "."
	if len(args) > 0 {
		projectDir = args[0]
	}

	return config.NewLoader().LoadForProject(cmd, projectDir)
}

// status prints a progress line unless the run is quiet.
func status(cfg *config.Config, format string, args ...any) {
	if cfg.Quiet {
		return
	}
	color.Info.Printf("=> "+format+"\n", args...)
}

// success prints a completion line unless the run is quiet.
func success(cfg *config.Config, format string, args ...any) {
	if cfg.Quiet {
		return
	}
	color.Success.Printf("=> "+format+"\n", args...)
}
