// Package manifest extracts package identity from a Cargo manifest file.
package manifest

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/carton-build/carton/internal/semver"
)

// ParseError reports a manifest without a usable package declaration.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse manifest %s: %s", e.Path, e.Reason)
}

// Manifest holds the package fields read from Cargo.toml.
type Manifest struct {
	Path    string
	Name    string
	Version semver.Version
}

// Parse reads the manifest at path and extracts the package name and version.
//
// The scan is line oriented and first-match-wins: the first line of the form
// `name = "<string>"` and the first line of the form `version = "X.Y.Z"` are
// authoritative. Manifests carry many version-like strings in dependency
// blocks further down; those are never consulted because the package section
// comes first. Lines whose value does not fit the expected shape do not count
// as a match.
func Parse(path string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Manifest{}, &ParseError{Path: path, Reason: err.Error()}
	}
	defer f.Close()

	m := Manifest{Path: path}
	haveVersion := false

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[") {
			continue
		}

		key, rest, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		value, ok := quotedValue(rest)
		if !ok {
			continue
		}

		switch strings.TrimSpace(key) {
		case "name":
			if m.Name == "" {
				m.Name = value
			}
		case "version":
			if haveVersion {
				continue
			}
			v, err := semver.Parse(value)
			if err != nil {
				continue
			}
			m.Version = v
			haveVersion = true
		}

		if m.Name != "" && haveVersion {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return Manifest{}, &ParseError{Path: path, Reason: err.Error()}
	}

	if m.Name == "" {
		return Manifest{}, &ParseError{Path: path, Reason: `no name = "<string>" line found`}
	}
	if !haveVersion {
		return Manifest{}, &ParseError{Path: path, Reason: `no version = "X.Y.Z" line found`}
	}

	return m, nil
}

// quotedValue extracts the content of the first double-quoted string in s.
// Anything after the closing quote, such as a trailing comment, is ignored.
func quotedValue(s string) (string, bool) {
	open := strings.Index(s, `"`)
	if open < 0 {
		return "", false
	}
	end := strings.Index(s[open+1:], `"`)
	if end < 0 {
		return "", false
	}
	return s[open+1 : open+1+end], true
}
