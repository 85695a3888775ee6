// Package semver parses and compares three-component version numbers.
package semver

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
)

var versionRegex = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)$`)

// Version is a parsed major.minor.patch triple.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse parses a strict "X.Y.Z" version string.
func Parse(s string) (Version, error) {
	match := versionRegex.FindStringSubmatch(s)
	if match == nil {
		return Version{}, fmt.Errorf("invalid version format: %q (expected X.Y.Z)", s)
	}

	// Errors ignored: regex guarantees these capture groups contain only digits
	major, _ := strconv.Atoi(match[1])
	minor, _ := strconv.Atoi(match[2])
	patch, _ := strconv.Atoi(match[3])

	return Version{Major: major, Minor: minor, Patch: patch}, nil
}

// MustParse parses a version string and panics on failure. For use with
// known-good literals in tests and table definitions.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the "X.Y.Z" representation.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1 if v < other, 0 if equal, 1 if v > other.
// Components compare numerically, major first.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return cmp.Compare(v.Major, other.Major)
	}
	if v.Minor != other.Minor {
		return cmp.Compare(v.Minor, other.Minor)
	}
	return cmp.Compare(v.Patch, other.Patch)
}

// Compatible reports whether an installed version v satisfies a request for
// the given version: the major components must match exactly, and v must not
// be older than the request on the remaining components.
func (v Version) Compatible(requested Version) bool {
	if v.Major != requested.Major {
		return false
	}
	return v.Compare(requested) >= 0
}
