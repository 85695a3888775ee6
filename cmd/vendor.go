package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/carton-build/carton/internal/archive"
)

var vendorCmd = &cobra.Command{
	Use:   "vendor [archive...]",
	Short: "Ensure extracted copies of vendored source archives",
	Long: `Ensure each named source archive has an up-to-date extraction in the
vendor cache, keyed by content hash. With no arguments, every archive listed
in the project's vendor.yaml manifest is ensured.`,
	RunE:         runVendor,
	SilenceUsage: true,
}

func runVendor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		m, err := archive.LoadManifest(filepath.Join(cfg.ProjectDir, "vendor.yaml"))
		if err != nil {
			return err
		}
		for _, entry := range m.Archives {
			paths = append(paths, entry.Path)
		}
		if len(paths) == 0 {
			return fmt.Errorf("vendor manifest lists no archives")
		}
	}

	for _, path := range paths {
		dir, err := archive.Ensure(path, cfg.VendorDir)
		if err != nil {
			return err
		}
		status(cfg, "%s -> %s", filepath.Base(path), dir)
	}

	return nil
}
