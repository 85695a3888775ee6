// Package cmake generates the package descriptor files consumed by
// downstream CMake builds.
package cmake

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/carton-build/carton/internal/semver"
)

// Descriptor describes one installed package. Library fields are filenames
// under the install prefix's lib directory; the descriptor locates them
// relative to its own path so the installed tree stays relocatable.
type Descriptor struct {
	Name        string
	Version     semver.Version
	SharedLib   string
	StaticLib   string
	AliasShared bool
}

// ConfigFileName returns the descriptor filename downstream builds look up.
func ConfigFileName(name string) string {
	return name + "-config.cmake"
}

// VersionFileName returns the compatibility predicate filename.
func VersionFileName(name string) string {
	return name + "-config-version.cmake"
}

// GenerateConfig returns the package descriptor content: one imported target
// per library kind plus the unqualified target bound to the kind selected
// when the package was built.
func GenerateConfig(d Descriptor) string {
	prefixVar := upperVar(d.Name) + "_PREFIX"
	aliasTarget := d.Name + "::static"
	if d.AliasShared {
		aliasTarget = d.Name + "::shared"
	}

	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Imported targets for %s %s, generated by carton.\n\n", d.Name, d.Version))
	b.WriteString(fmt.Sprintf("if(TARGET %s::shared)\n    return()\nendif()\n\n", d.Name))

	// The descriptor lives in <prefix>/lib/cmake/<name>/
	b.WriteString(fmt.Sprintf(
		"get_filename_component(%s \"${CMAKE_CURRENT_LIST_DIR}/../../..\" ABSOLUTE)\n\n",
		prefixVar,
	))

	b.WriteString(fmt.Sprintf("add_library(%s::shared SHARED IMPORTED)\n", d.Name))
	b.WriteString(fmt.Sprintf("set_target_properties(%s::shared PROPERTIES\n", d.Name))
	b.WriteString(fmt.Sprintf("    IMPORTED_LOCATION \"${%s}/lib/%s\"\n", prefixVar, d.SharedLib))
	b.WriteString(fmt.Sprintf("    INTERFACE_INCLUDE_DIRECTORIES \"${%s}/include\"\n", prefixVar))
	b.WriteString(")\n\n")

	b.WriteString(fmt.Sprintf("add_library(%s::static STATIC IMPORTED)\n", d.Name))
	b.WriteString(fmt.Sprintf("set_target_properties(%s::static PROPERTIES\n", d.Name))
	b.WriteString(fmt.Sprintf("    IMPORTED_LOCATION \"${%s}/lib/%s\"\n", prefixVar, d.StaticLib))
	b.WriteString(fmt.Sprintf("    INTERFACE_INCLUDE_DIRECTORIES \"${%s}/include\"\n", prefixVar))
	b.WriteString(")\n\n")

	b.WriteString(fmt.Sprintf("add_library(%s INTERFACE IMPORTED)\n", d.Name))
	b.WriteString(fmt.Sprintf("set_target_properties(%s PROPERTIES\n", d.Name))
	b.WriteString(fmt.Sprintf("    INTERFACE_LINK_LIBRARIES \"%s\"\n", aliasTarget))
	b.WriteString(")\n")

	return b.String()
}

// GenerateVersionFile returns the compatibility predicate evaluated by
// downstream "find package by name and minimum version" queries: the
// requested major version must equal the installed one, and the installed
// version must not be older on minor and patch.
func GenerateVersionFile(name string, version semver.Version) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Version compatibility for %s: same major version, no older than requested.\n", name))
	b.WriteString(fmt.Sprintf("set(PACKAGE_VERSION \"%s\")\n\n", version))

	b.WriteString("if(PACKAGE_FIND_VERSION VERSION_EQUAL PACKAGE_VERSION)\n")
	b.WriteString("    set(PACKAGE_VERSION_EXACT TRUE)\n")
	b.WriteString("endif()\n\n")

	b.WriteString(fmt.Sprintf("if(PACKAGE_FIND_VERSION_MAJOR EQUAL \"%d\" AND PACKAGE_FIND_VERSION VERSION_LESS_EQUAL PACKAGE_VERSION)\n", version.Major))
	b.WriteString("    set(PACKAGE_VERSION_COMPATIBLE TRUE)\n")
	b.WriteString("else()\n")
	b.WriteString("    set(PACKAGE_VERSION_COMPATIBLE FALSE)\n")
	b.WriteString("endif()\n")

	return b.String()
}

// WriteFiles regenerates both descriptor files in dir. They are pure data
// derived from the descriptor and are rewritten on every install, never
// cached.
func WriteFiles(dir string, d Descriptor) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create descriptor directory: %w", err)
	}

	configPath := filepath.Join(dir, ConfigFileName(d.Name))
	if err := os.WriteFile(configPath, []byte(GenerateConfig(d)), 0o644); err != nil {
		return fmt.Errorf("failed to write package descriptor: %w", err)
	}

	versionPath := filepath.Join(dir, VersionFileName(d.Name))
	if err := os.WriteFile(versionPath, []byte(GenerateVersionFile(d.Name, d.Version)), 0o644); err != nil {
		return fmt.Errorf("failed to write version file: %w", err)
	}

	return nil
}

// upperVar turns a library name into a CMake variable stem.
func upperVar(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
