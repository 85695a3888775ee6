package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Loader handles configuration loading from various sources
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForProject loads configuration for a run against the given project
// directory. Precedence, lowest to highest: defaults, global config file,
// local config file found from the project directory upward, CARTON_*
// environment variables, command-line flags.
// An explicit --config file bypasses the global/local discovery entirely.
func (l *Loader) LoadForProject(cmd *cobra.Command, projectDir string) (*Config, error) {
	l.setupViperDefaults()

	explicit, _ := cmd.Flags().GetString("config")
	if explicit != "" {
		viper.SetConfigFile(explicit)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", explicit, err)
		}
	} else {
		l.loadGlobalConfig()
		l.loadLocalConfig(projectDir)
	}

	l.bindCommandFlags(cmd)

	return Load(projectDir)
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("build_type", DefaultBuildType)
	viper.SetDefault("min_toolchain", DefaultMinimumToolchain)
	viper.SetDefault("prefix", DefaultPrefix)
	viper.SetDefault("shared", DefaultShared)

	viper.SetEnvPrefix("CARTON")
	viper.AutomaticEnv()
}

// loadGlobalConfig loads global configuration from the user config directory
func (l *Loader) loadGlobalConfig() {
	globalDir := globalConfigDir()
	if globalDir == "" {
		return
	}

	for _, ext := range []string{"yml", "yaml", "json", "toml"} {
		globalPath := filepath.Join(globalDir, "config."+ext)

		if _, err := os.Stat(globalPath); err == nil {
			viper.SetConfigFile(globalPath)

			if err := viper.ReadInConfig(); err == nil {
				break
			}
		}
	}
}

// globalConfigDir resolves the per-user configuration directory, honoring
// XDG_CONFIG_HOME before the platform default
func globalConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "carton")
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "carton")
}

// loadLocalConfig loads project configuration found from projectDir upward
func (l *Loader) loadLocalConfig(projectDir string) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return // silently ignore, Load() will handle validation
	}

	localPath := FindLocalConfig(abs)
	if localPath != "" {
		viper.SetConfigFile(localPath)
		// Merge so project settings layer over global ones instead of
		// replacing them wholesale
		_ = viper.MergeInConfig()
	}
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	_ = viper.BindPFlag("build_type", cmd.Flags().Lookup("build-type"))
	_ = viper.BindPFlag("target", cmd.Flags().Lookup("target"))
	_ = viper.BindPFlag("features", cmd.Flags().Lookup("features"))
	_ = viper.BindPFlag("prefix", cmd.Flags().Lookup("prefix"))
	_ = viper.BindPFlag("cargo_path", cmd.Flags().Lookup("cargo-path"))
	_ = viper.BindPFlag("force", cmd.Flags().Lookup("force"))
	_ = viper.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", cmd.Flags().Lookup("quiet"))

	// --static is sugar for shared=false and wins over config files
	if f := cmd.Flags().Lookup("static"); f != nil && f.Changed {
		viper.Set("shared", false)
	} else {
		_ = viper.BindPFlag("shared", cmd.Flags().Lookup("shared"))
	}
}
