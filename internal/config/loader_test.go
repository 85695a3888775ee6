package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	assert.NotNil(t, loader)
}

func TestLoader_SetupViperDefaults(t *testing.T) {
	viper.Reset()
	loader := NewLoader()
	loader.setupViperDefaults()

	assert.Equal(t, DefaultBuildType, viper.GetString("build_type"))
	assert.Equal(t, DefaultMinimumToolchain, viper.GetString("min_toolchain"))
	assert.Equal(t, DefaultPrefix, viper.GetString("prefix"))
	assert.Equal(t, DefaultShared, viper.GetBool("shared"))
}

func TestLoader_LoadGlobalConfig(t *testing.T) {
	t.Run("loads yaml config", func(t *testing.T) {
		viper.Reset()

		tempDir := t.TempDir()
		cartonDir := filepath.Join(tempDir, "carton")
		require.NoError(t, os.Mkdir(cartonDir, 0o755))

		configPath := filepath.Join(cartonDir, "config.yml")
		configContent := `build_type: release
min_toolchain: "1.58.0"
verbose: true`
		require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

		t.Setenv("XDG_CONFIG_HOME", tempDir)

		loader := NewLoader()
		loader.loadGlobalConfig()

		assert.Equal(t, "release", viper.GetString("build_type"))
		assert.Equal(t, "1.58.0", viper.GetString("min_toolchain"))
		assert.Equal(t, true, viper.GetBool("verbose"))
	})

	t.Run("loads json config", func(t *testing.T) {
		viper.Reset()

		tempDir := t.TempDir()
		cartonDir := filepath.Join(tempDir, "carton")
		require.NoError(t, os.Mkdir(cartonDir, 0o755))

		configPath := filepath.Join(cartonDir, "config.json")
		configContent := `{
  "build_type": "relwithdebinfo",
  "prefix": "/opt/out"
}`
		require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

		t.Setenv("XDG_CONFIG_HOME", tempDir)

		loader := NewLoader()
		loader.loadGlobalConfig()

		assert.Equal(t, "relwithdebinfo", viper.GetString("build_type"))
		assert.Equal(t, "/opt/out", viper.GetString("prefix"))
	})

	t.Run("handles missing config dir gracefully", func(t *testing.T) {
		viper.Reset()

		t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "nope"))

		loader := NewLoader()
		assert.NotPanics(t, func() {
			loader.loadGlobalConfig()
		})
	})
}

func TestLoader_LoadLocalConfig(t *testing.T) {
	t.Run("loads project config from project directory", func(t *testing.T) {
		viper.Reset()

		tempDir := t.TempDir()
		configPath := filepath.Join(tempDir, ".carton.yml")
		configContent := `build_type: release
features:
  - serialization`
		require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

		loader := NewLoader()
		loader.loadLocalConfig(tempDir)

		assert.Equal(t, "release", viper.GetString("build_type"))
		assert.Equal(t, []string{"serialization"}, viper.GetStringSlice("features"))
	})

	t.Run("walks up directory tree to find config", func(t *testing.T) {
		viper.Reset()

		tempDir := t.TempDir()
		subDir := filepath.Join(tempDir, "crates", "core")
		require.NoError(t, os.MkdirAll(subDir, 0o755))

		configPath := filepath.Join(tempDir, ".carton.yml")
		require.NoError(t, os.WriteFile(configPath, []byte(`build_type: release`), 0o644))

		loader := NewLoader()
		loader.loadLocalConfig(subDir)

		assert.Equal(t, "release", viper.GetString("build_type"))
	})

	t.Run("handles missing config", func(t *testing.T) {
		viper.Reset()

		loader := NewLoader()
		assert.NotPanics(t, func() {
			loader.loadLocalConfig(t.TempDir())
		})
	})
}

func newTestCommand() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().StringP("build-type", "b", "", "Build profile")
	cmd.Flags().StringP("target", "t", "", "Target triple")
	cmd.Flags().StringSlice("features", []string{}, "Feature flags")
	cmd.Flags().String("prefix", "", "Install prefix")
	cmd.Flags().String("cargo-path", "", "Cargo executable")
	cmd.Flags().Bool("shared", true, "Alias resolves to the shared library")
	cmd.Flags().Bool("static", false, "Alias resolves to the static library")
	cmd.Flags().Bool("force", false, "Force rebuild")
	cmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	cmd.Flags().BoolP("quiet", "q", false, "Quiet output")
	return cmd
}

func TestLoader_BindCommandFlags(t *testing.T) {
	viper.Reset()

	cmd := newTestCommand()
	require.NoError(t, cmd.Flags().Set("build-type", "release"))
	require.NoError(t, cmd.Flags().Set("target", "aarch64-apple-darwin"))
	require.NoError(t, cmd.Flags().Set("features", "serialization,extra"))
	require.NoError(t, cmd.Flags().Set("verbose", "true"))

	loader := NewLoader()
	loader.bindCommandFlags(cmd)

	assert.Equal(t, "release", viper.GetString("build_type"))
	assert.Equal(t, "aarch64-apple-darwin", viper.GetString("target"))
	assert.Equal(t, true, viper.GetBool("verbose"))
	features := viper.GetStringSlice("features")
	assert.Contains(t, features, "serialization")
	assert.Contains(t, features, "extra")
}

func TestLoader_BindCommandFlags_StaticWins(t *testing.T) {
	viper.Reset()

	cmd := newTestCommand()
	require.NoError(t, cmd.Flags().Set("static", "true"))

	loader := NewLoader()
	loader.bindCommandFlags(cmd)

	assert.False(t, viper.GetBool("shared"))
}

func TestLoader_LoadForProject_Integration(t *testing.T) {
	t.Run("flags override local config which overrides global", func(t *testing.T) {
		viper.Reset()

		globalBase := t.TempDir()
		cartonDir := filepath.Join(globalBase, "carton")
		require.NoError(t, os.Mkdir(cartonDir, 0o755))

		globalContent := `build_type: debug
min_toolchain: "1.55.0"`
		require.NoError(t, os.WriteFile(filepath.Join(cartonDir, "config.yml"), []byte(globalContent), 0o644))

		projectDir := t.TempDir()
		localContent := `build_type: release
verbose: true`
		require.NoError(t, os.WriteFile(filepath.Join(projectDir, ".carton.yml"), []byte(localContent), 0o644))

		t.Setenv("XDG_CONFIG_HOME", globalBase)

		cmd := newTestCommand()
		require.NoError(t, cmd.Flags().Set("build-type", "relwithdebinfo"))

		loader := NewLoader()
		cfg, err := loader.LoadForProject(cmd, projectDir)
		require.NoError(t, err)

		// Flag value should win
		assert.Equal(t, ProfileRelWithDebInfo, cfg.BuildType)
		// Local config should override global
		assert.True(t, cfg.Verbose)
		// Global config should still contribute unshadowed keys
		assert.Equal(t, "1.55.0", cfg.MinToolchain)
	})
}
