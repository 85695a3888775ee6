// Package archive maintains a content-addressed cache of extracted source
// archives for the test harness.
package archive

import (
	"archive/tar"
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// IntegrityError reports version-control metadata inside an extracted tree.
type IntegrityError struct {
	Archive string
	Found   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf(
		"extracted archive %s contains version-control metadata at %s: remove it from the source archive",
		e.Archive, e.Found,
	)
}

// vcsDirs are metadata directories that must never ship inside an archive.
var vcsDirs = map[string]bool{".git": true, ".hg": true, ".svn": true}

// Ensure guarantees an up-to-date extraction of archivePath under vendorDir
// and returns the extraction directory.
//
// A zero-byte stamp file named after the SHA-256 of the archive bytes is the
// sole witness that the directory matches the archive: a missing stamp wipes
// the directory and re-extracts, and an interrupted extraction leaves no
// stamp, so the next run redoes it. The hash is recomputed on every call, so
// replacing the archive on disk invalidates the cache without a manual
// clear.
func Ensure(archivePath, vendorDir string) (string, error) {
	hash, err := hashFile(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to hash archive: %w", err)
	}

	extractedDir := filepath.Join(vendorDir, baseName(archivePath))
	stampFile := filepath.Join(extractedDir, hash)

	if _, err := os.Stat(stampFile); err != nil {
		if err := os.RemoveAll(extractedDir); err != nil {
			return "", fmt.Errorf("failed to clear stale extraction: %w", err)
		}
		if err := extract(archivePath, extractedDir); err != nil {
			return "", fmt.Errorf("failed to extract %s: %w", archivePath, err)
		}
		if err := os.WriteFile(stampFile, nil, 0o644); err != nil {
			return "", fmt.Errorf("failed to write stamp file: %w", err)
		}
	}

	// Checked on every call, even when the stamp already matched
	if err := rejectVCSMetadata(archivePath, extractedDir); err != nil {
		return "", err
	}

	return extractedDir, nil
}

// baseName strips the archive extensions from the filename, so
// "data-1.0.tar.gz" extracts into "data-1.0".
func baseName(archivePath string) string {
	name := filepath.Base(archivePath)
	for _, suffix := range []string{".tar.gz", ".tar.xz", ".tgz", ".tar", ".zip"} {
		if trimmed, ok := strings.CutSuffix(name, suffix); ok {
			return trimmed
		}
	}
	return name
}

func hashFile(path string) (string, error) {
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

func extract(archivePath, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create extraction directory: %w", err)
	}

	name := strings.ToLower(filepath.Base(archivePath))
	switch {
	case strings.HasSuffix(name, ".zip"):
		return extractZip(archivePath, dir)

	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		f, err := os.Open(archivePath)
		if err != nil {
			return err
		}
		defer f.Close()

		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()

		return extractTar(gz, dir)

	case strings.HasSuffix(name, ".tar.xz"):
		f, err := os.Open(archivePath)
		if err != nil {
			return err
		}
		defer f.Close()

		xzr, err := xz.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create xz reader: %w", err)
		}

		return extractTar(xzr, dir)

	case strings.HasSuffix(name, ".tar"):
		f, err := os.Open(archivePath)
		if err != nil {
			return err
		}
		defer f.Close()

		return extractTar(f, dir)

	default:
		return fmt.Errorf("unsupported archive format: %s", filepath.Base(archivePath))
	}
}

func extractTar(r io.Reader, dir string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error reading tar: %w", err)
		}

		target, err := entryPath(dir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)); err != nil {
				return fmt.Errorf("failed to create dir %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("failed to create parent dir: %w", err)
			}
			outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return fmt.Errorf("failed to create file %s: %w", target, err)
			}
			if _, err := io.Copy(outFile, tr); err != nil {
				outFile.Close()
				return fmt.Errorf("failed to write file %s: %w", target, err)
			}
			outFile.Close()
		case tar.TypeSymlink:
			if err := os.Symlink(hdr.Linkname, target); err != nil && !os.IsExist(err) {
				return fmt.Errorf("failed to create symlink %s -> %s: %w", target, hdr.Linkname, err)
			}
		}
	}
	return nil
}

func extractZip(archivePath, dir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open zip: %w", err)
	}
	defer zr.Close()

	for _, entry := range zr.File {
		target, err := entryPath(dir, entry.Name)
		if err != nil {
			return err
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create dir %s: %w", target, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create parent dir: %w", err)
		}

		rc, err := entry.Open()
		if err != nil {
			return fmt.Errorf("failed to open zip entry %s: %w", entry.Name, err)
		}

		outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, entry.Mode())
		if err != nil {
			rc.Close()
			return fmt.Errorf("failed to create file %s: %w", target, err)
		}

		_, err = io.Copy(outFile, rc)
		outFile.Close()
		rc.Close()
		if err != nil {
			return fmt.Errorf("failed to write file %s: %w", target, err)
		}
	}
	return nil
}

// entryPath resolves an archive entry name under dir, rejecting entries
// that would escape the extraction directory.
func entryPath(dir, name string) (string, error) {
	target := filepath.Join(dir, name)

	clean := filepath.Clean(dir)
	if target != clean && !strings.HasPrefix(target, clean+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes the extraction directory", name)
	}

	return target, nil
}

// rejectVCSMetadata fails when the extracted tree carries version-control
// metadata. The remediation is to strip it from the source archive; it is
// never silently removed here.
func rejectVCSMetadata(archivePath, dir string) error {
	var found string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && vcsDirs[d.Name()] {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan extraction: %w", err)
	}

	if found != "" {
		return &IntegrityError{Archive: archivePath, Found: found}
	}

	return nil
}
