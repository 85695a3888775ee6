package cmd

import (
	"github.com/spf13/cobra"

	"github.com/carton-build/carton/internal/install"
)

var installCmd = &cobra.Command{
	Use:   "install [project-dir]",
	Short: "Build the library and install it into the prefix",
	Long: `Run the build pipeline, then install the public headers, both finalized
libraries and the CMake package descriptor files into the install prefix.`,
	RunE:         runInstall,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
}

func runInstall(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	res, err := runPipeline(cfg)
	if err != nil {
		return err
	}

	r, err := install.Run(cfg, res.Name, res.Set)
	if err != nil {
		return err
	}

	success(cfg, "installed %d files under %s", len(r.Installed), r.Prefix)
	return nil
}
