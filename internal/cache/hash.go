package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Fingerprint digests the declared build inputs: every file under srcDir
// (walked in lexical order so the result is stable), the manifest file, and
// the feature selection. Feature flags change the compiled output without
// touching any source file, so they count as an input.
func Fingerprint(srcDir, manifestPath string, features []string) (string, error) {
	h := sha256.New()

	manifestDigest, err := HashFile(manifestPath)
	if err != nil {
		return "", fmt.Errorf("failed to hash manifest: %w", err)
	}
	fmt.Fprintf(h, "manifest\x00%s\x00", manifestDigest)

	err = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		digest, err := HashFile(path)
		if err != nil {
			return err
		}

		// Relative paths keep the fingerprint independent of where the
		// project is checked out
		fmt.Fprintf(h, "%s\x00%s\x00", filepath.ToSlash(rel), digest)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to hash source tree: %w", err)
	}

	sorted := make([]string, len(features))
	copy(sorted, features)
	sort.Strings(sorted)
	fmt.Fprintf(h, "features\x00%s\x00", strings.Join(sorted, "|"))

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFile creates a hash of a file's content
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
