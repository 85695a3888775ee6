package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest lists the source archives a project's test harness depends on.
type Manifest struct {
	Archives []Entry `yaml:"archives"`
}

// Entry references one archive. Relative paths are resolved against the
// manifest's own directory.
type Entry struct {
	Path string `yaml:"path"`
}

// LoadManifest reads a vendor manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vendor manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse vendor manifest %s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	for i, entry := range m.Archives {
		if entry.Path == "" {
			return nil, fmt.Errorf("vendor manifest %s: entry %d has no path", path, i+1)
		}
		if !filepath.IsAbs(entry.Path) {
			m.Archives[i].Path = filepath.Join(baseDir, entry.Path)
		}
	}

	return &m, nil
}
