package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carton-build/carton/internal/config"
	"github.com/carton-build/carton/internal/semver"
)

func TestNew_NameComputation(t *testing.T) {
	tests := []struct {
		name          string
		platform      config.Platform
		crateName     string
		libName       string
		wantRawShared string
		wantFinShared string
		wantRawStatic string
		wantFinStatic string
	}{
		{
			name:          "linux mangles crate dashes",
			platform:      config.PlatformLinux,
			crateName:     "mylib-core",
			libName:       "mylib",
			wantRawShared: "libmylib_core.so",
			wantFinShared: "libmylib.so",
			wantRawStatic: "libmylib_core.a",
			wantFinStatic: "libmylib.a",
		},
		{
			name:          "darwin uses dylib suffix",
			platform:      config.PlatformDarwin,
			crateName:     "mylib-core",
			libName:       "mylib",
			wantRawShared: "libmylib_core.dylib",
			wantFinShared: "libmylib.dylib",
			wantRawStatic: "libmylib_core.a",
			wantFinStatic: "libmylib.a",
		},
		{
			name:          "windows drops the lib prefix",
			platform:      config.PlatformWindows,
			crateName:     "mylib-core",
			libName:       "mylib",
			wantRawShared: "mylib_core.dll",
			wantFinShared: "mylib.dll",
			wantRawStatic: "mylib_core.lib",
			wantFinStatic: "mylib.lib",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outDir := filepath.Join("/proj", "target", "release")
			set := New(tt.platform, tt.crateName, tt.libName, outDir, "/proj/include", semver.MustParse("1.0.0"))

			assert.Equal(t, filepath.Join(outDir, tt.wantRawShared), set.RawShared)
			assert.Equal(t, filepath.Join(outDir, tt.wantFinShared), set.FinalShared)
			assert.Equal(t, filepath.Join(outDir, tt.wantRawStatic), set.RawStatic)
			assert.Equal(t, filepath.Join(outDir, tt.wantFinStatic), set.FinalStatic)
			assert.Equal(t, "/proj/include", set.IncludeDir)
		})
	}
}

func TestPublicName(t *testing.T) {
	tests := []struct {
		crate string
		want  string
	}{
		{"mylib-core", "mylib"},
		{"mylib-sys", "mylib"},
		{"mylib-ffi", "mylib"},
		{"mylib", "mylib"},
		{"core-utils", "core-utils"},
		{"-core", "-core"},
	}

	for _, tt := range tests {
		t.Run(tt.crate, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicName(tt.crate))
		})
	}
}

func TestLinkerIdentityArgs(t *testing.T) {
	tests := []struct {
		name     string
		platform config.Platform
		want     []string
	}{
		{
			name:     "darwin install name under rpath",
			platform: config.PlatformDarwin,
			want:     []string{"-C", "link-arg=-Wl,-install_name,@rpath/libmylib.dylib"},
		},
		{
			name:     "linux soname",
			platform: config.PlatformLinux,
			want:     []string{"-C", "link-arg=-Wl,-soname,libmylib.dylib"},
		},
		{
			name:     "windows needs no identity flag",
			platform: config.PlatformWindows,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LinkerIdentityArgs(tt.platform, "libmylib.dylib"))
		})
	}
}

func writeArtifact(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
}

func TestSet_Finalize(t *testing.T) {
	t.Run("copies raw artifacts to finalized names", func(t *testing.T) {
		dir := t.TempDir()
		set := New(config.PlatformLinux, "mylib-core", "mylib", dir, dir, semver.MustParse("1.0.0"))

		writeArtifact(t, set.RawShared, "shared-bytes")
		writeArtifact(t, set.RawStatic, "static-bytes")

		require.NoError(t, set.Finalize())

		shared, err := os.ReadFile(set.FinalShared)
		require.NoError(t, err)
		assert.Equal(t, "shared-bytes", string(shared))

		static, err := os.ReadFile(set.FinalStatic)
		require.NoError(t, err)
		assert.Equal(t, "static-bytes", string(static))

		// Raw artifacts are copied, never moved
		assert.FileExists(t, set.RawShared)
		assert.FileExists(t, set.RawStatic)

		// Permissions carry over
		info, err := os.Stat(set.FinalShared)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	})

	t.Run("is idempotent", func(t *testing.T) {
		dir := t.TempDir()
		set := New(config.PlatformLinux, "mylib-core", "mylib", dir, dir, semver.MustParse("1.0.0"))

		writeArtifact(t, set.RawShared, "shared-bytes")
		writeArtifact(t, set.RawStatic, "static-bytes")

		require.NoError(t, set.Finalize())
		first, err := os.ReadFile(set.FinalShared)
		require.NoError(t, err)

		require.NoError(t, set.Finalize())
		second, err := os.ReadFile(set.FinalShared)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("missing raw shared artifact names the expected path", func(t *testing.T) {
		dir := t.TempDir()
		set := New(config.PlatformLinux, "mylib-core", "mylib", dir, dir, semver.MustParse("1.0.0"))

		writeArtifact(t, set.RawStatic, "static-bytes")

		err := set.Finalize()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to finalize shared library")
		assert.Contains(t, err.Error(), set.RawShared)
	})

	t.Run("identical raw and finalized names are a no-op", func(t *testing.T) {
		dir := t.TempDir()
		set := New(config.PlatformLinux, "mylib", "mylib", dir, dir, semver.MustParse("1.0.0"))
		assert.Equal(t, set.RawShared, set.FinalShared)

		writeArtifact(t, set.RawShared, "shared-bytes")
		writeArtifact(t, set.RawStatic, "static-bytes")

		require.NoError(t, set.Finalize())

		content, err := os.ReadFile(set.FinalShared)
		require.NoError(t, err)
		assert.Equal(t, "shared-bytes", string(content))
	})
}
