package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/carton-build/carton/internal/artifact"
	"github.com/carton-build/carton/internal/cache"
	"github.com/carton-build/carton/internal/cargo"
	"github.com/carton-build/carton/internal/config"
	"github.com/carton-build/carton/internal/manifest"
	"github.com/carton-build/carton/internal/target"
)

var buildCmd = &cobra.Command{
	Use:   "build [project-dir]",
	Short: "Build and finalize the library artifacts",
	Long: `Build the library with cargo and finalize the resulting shared and static
artifacts into their platform-conventional names. The build is skipped when
no declared input (sources, manifest, features) changed since the last run.`,
	RunE:         runBuild,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	res, err := runPipeline(cfg)
	if err != nil {
		return err
	}

	success(cfg, "finalized %s", res.Set.FinalShared)
	success(cfg, "finalized %s", res.Set.FinalStatic)
	return nil
}

// buildResult carries the outputs of one pipeline run to the caller.
type buildResult struct {
	Manifest manifest.Manifest
	Name     string
	Set      *artifact.Set
	Registry *target.Registry
}

// runPipeline executes the full build pipeline: resolve the manifest, gate on
// the toolchain version, build (or skip on an unchanged fingerprint),
// finalize the artifacts and register the link targets.
func runPipeline(cfg *config.Config) (*buildResult, error) {
	m, err := manifest.Parse(cfg.ManifestPath)
	if err != nil {
		return nil, err
	}

	tc, err := cargo.Locate(cfg.CargoPath)
	if err != nil {
		return nil, err
	}
	if err := tc.DetectVersion(); err != nil {
		return nil, err
	}
	if err := tc.CheckVersion(cfg.MinToolchain); err != nil {
		return nil, err
	}

	name := artifact.PublicName(m.Name)
	includeDir := filepath.Join(cfg.ProjectDir, "include")
	set := artifact.New(cfg.Platform, m.Name, name, cfg.ProfileOutputDir(), includeDir, m.Version)

	// The shared artifact's embedded identity must be the finalized name, so
	// the linker arguments are computed here, before cargo runs.
	linkerArgs := artifact.LinkerIdentityArgs(cfg.Platform, filepath.Base(set.FinalShared))

	if err := runBuildStep(cfg, tc, m, set, linkerArgs); err != nil {
		return nil, err
	}

	if err := set.Finalize(); err != nil {
		return nil, err
	}

	reg := target.NewRegistry(name)
	reg.RegisterShared(set)
	reg.RegisterStatic(set)
	if _, err := reg.ResolveAlias(cfg.BuildShared); err != nil {
		return nil, err
	}

	return &buildResult{Manifest: m, Name: name, Set: set, Registry: reg}, nil
}

// runBuildStep invokes cargo unless the input fingerprint is unchanged and
// the raw outputs are still present.
func runBuildStep(cfg *config.Config, tc *cargo.Toolchain, m manifest.Manifest, set *artifact.Set, linkerArgs []string) error {
	srcDir := filepath.Join(cfg.ProjectDir, "src")
	fingerprint, err := cache.Fingerprint(srcDir, cfg.ManifestPath, cfg.Features)
	if err != nil {
		return err
	}

	store, err := cache.Open(cfg.StateDir)
	if err != nil {
		return err
	}
	defer store.Close()

	key := cache.Key(string(cfg.BuildType), cfg.Target)
	entry, err := store.Get(key)
	if err != nil {
		return err
	}

	if !cfg.Force && entry != nil && entry.Fingerprint == fingerprint && rawOutputsPresent(set) {
		status(cfg, "%s %s is up to date", m.Name, cfg.BuildType)
		return nil
	}

	status(cfg, "building %s %s (%s) with cargo %s", m.Name, m.Version, cfg.BuildType, tc.Version)

	inv := cargo.Invocation{
		Dir:              cfg.ProjectDir,
		Profile:          cfg.BuildType,
		Target:           cfg.Target,
		Features:         cfg.Features,
		LinkerArgs:       linkerArgs,
		DeploymentTarget: cfg.DeploymentTarget,
		Verbose:          cfg.Verbose,
	}
	if err := tc.Build(inv); err != nil {
		return err
	}

	return store.Put(cache.Entry{
		Key:              key,
		Fingerprint:      fingerprint,
		ToolchainVersion: tc.Version,
	})
}

func rawOutputsPresent(set *artifact.Set) bool {
	for _, path := range []string{set.RawShared, set.RawStatic} {
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}
