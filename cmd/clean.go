package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [project-dir]",
	Short: "Remove the build state and vendor cache",
	Long: `Remove the carton state directory: the fingerprint database, the install
manifest and the vendor cache. The next build starts from a clean slate.`,
	RunE:         runClean,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	// The vendor cache lives inside the state directory, so one removal
	// covers both
	if err := os.RemoveAll(cfg.StateDir); err != nil {
		return fmt.Errorf("failed to remove state directory: %w", err)
	}

	success(cfg, "removed %s", cfg.StateDir)
	return nil
}
