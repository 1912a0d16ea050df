package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/robertgumeny/testgen/internal/artifact"
	"github.com/robertgumeny/testgen/internal/build"
	"github.com/robertgumeny/testgen/internal/config"
	"github.com/robertgumeny/testgen/internal/discovery"
	"github.com/robertgumeny/testgen/internal/llm"
	"github.com/robertgumeny/testgen/internal/log"
	"github.com/robertgumeny/testgen/internal/metrics"
	"github.com/robertgumeny/testgen/internal/orchestrator"
	"github.com/robertgumeny/testgen/internal/state"
)

// runFlags holds CLI flag values that override testgen.yaml config settings.
// Only flags explicitly changed by the user are applied (checked via cmd.Flags().Changed).
var runFlags struct {
	project        string
	model          string
	maxRefinements int
	maxRetries     int
	skipCoverage   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate tests for every source file",
	Long:  "Generate, refine and build Google Test files for every C++ source file in the project.",
	RunE:  runGenerate,
}

func init() {
	runCmd.Flags().StringVar(&runFlags.project, "project", "", "project root (default: working directory)")
	runCmd.Flags().StringVar(&runFlags.model, "model", "", "override model from testgen.yaml")
	runCmd.Flags().IntVar(&runFlags.maxRefinements, "max-refinements", 0, "override max_refinements from testgen.yaml")
	runCmd.Flags().IntVar(&runFlags.maxRetries, "max-retries", 0, "override max_retries from testgen.yaml")
	runCmd.Flags().BoolVar(&runFlags.skipCoverage, "skip-coverage", false, "do not run lcov/genhtml after a successful build")
}

// runGenerate implements the "run" subcommand.
//
// Pre-loop sequence (any error exits non-zero before a unit is processed):
//  1. Resolve the project root; load testgen.yaml and apply CLI overrides.
//  2. Load the three instruction documents.
//  3. Read the API key from the environment variable named by api_key_env.
//  4. Construct the build and coverage systems; CheckDependencies and
//     EnsureProjectReady.
//  5. Discover source files.
//
// The loop itself never fails the command: per-unit failures are recorded in
// the run report, which is saved to logs/testgen-run.yaml.
func runGenerate(cmd *cobra.Command, args []string) error {
	projectRoot, err := resolveProject(runFlags.project)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(filepath.Join(projectRoot, config.FileName))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Apply CLI flag overrides — only when the user explicitly set the flag.
	if cmd.Flags().Changed("model") {
		cfg.Model = runFlags.model
	}
	if cmd.Flags().Changed("max-refinements") {
		cfg.MaxRefinements = runFlags.maxRefinements
	}
	if cmd.Flags().Changed("max-retries") {
		cfg.MaxRetries = runFlags.maxRetries
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runProject(ctx, projectRoot, cfg, runFlags.skipCoverage)
}

// runProject is the testable core of the run command.
func runProject(ctx context.Context, projectRoot string, cfg *config.Config, skipCoverage bool) error {
	instructions, err := config.LoadInstructionSet(projectRoot)
	if err != nil {
		return fmt.Errorf("load instructions: %w (run `testgen init` to create them)", err)
	}

	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return fmt.Errorf("environment variable %s is not set: it must hold the generation service API key", cfg.APIKeyEnv)
	}

	buildSys, err := build.NewCMakeBuildSystem(projectRoot, build.CMakeOptions{
		BuildDir:         cfg.BuildDir,
		ConfigureCommand: cfg.ConfigureCommand,
		CompileCommand:   cfg.CompileCommand,
	})
	if err != nil {
		return fmt.Errorf("build system: %w", err)
	}

	var coverage build.CoverageSystem
	if !skipCoverage {
		lcov, err := build.NewLcovCoverage(projectRoot, build.LcovOptions{
			BuildDir:       cfg.BuildDir,
			CoverageDir:    cfg.CoverageDir,
			LcovCommand:    cfg.LcovCommand,
			GenhtmlCommand: cfg.GenhtmlCommand,
		})
		if err != nil {
			return fmt.Errorf("coverage: %w", err)
		}
		coverage = lcov
	}

	if err := orchestrator.CheckDependencies(buildSys, coverage); err != nil {
		return fmt.Errorf("dependency check failed: %w", err)
	}
	if err := orchestrator.EnsureProjectReady(projectRoot, buildSys); err != nil {
		return fmt.Errorf("pre-flight check failed: %w", err)
	}

	units, err := discovery.Discover(projectRoot, discovery.Options{
		ExcludedDirs: cfg.ExcludedDirs,
		Extensions:   cfg.SourceExtensions,
	})
	if err != nil {
		return fmt.Errorf("discover source files: %w", err)
	}
	if len(units) == 0 {
		log.Warning(fmt.Sprintf("no source files with extensions %v found under %s", cfg.SourceExtensions, projectRoot))
		return nil
	}
	log.Info(fmt.Sprintf("found %d source file(s)", len(units)))
	warnCollisions(units)

	client, err := llm.NewClient(llm.ClientConfig{
		BaseURL:      cfg.APIURL,
		APIKey:       apiKey,
		Model:        cfg.Model,
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.InitialBackoff(),
		HTTPClient:   &http.Client{Timeout: cfg.RequestTimeout()},
	})
	if err != nil {
		return fmt.Errorf("generation client: %w", err)
	}

	orch, err := orchestrator.New(orchestrator.Deps{
		Generator:       client,
		Store:           artifact.NewStore(projectPath(projectRoot, cfg.TestsDir)),
		Build:           buildSys,
		Coverage:        coverage,
		Instructions:    instructions,
		MaxRefinements:  cfg.MaxRefinements,
		StripCodeFences: cfg.StripCodeFences,
	})
	if err != nil {
		return err
	}

	report := orch.Run(ctx, units)
	metrics.PrintRunSummary(report)

	// A report that cannot be saved is a warning; the artifacts are already on disk.
	reportPath := filepath.Join(projectRoot, filepath.FromSlash(state.RunReportPath))
	if err := state.SaveRunReport(reportPath, report); err != nil {
		log.Warning(fmt.Sprintf("could not save run report: %v", err))
	} else {
		log.Info(fmt.Sprintf("run report written to %s", reportPath))
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	return nil
}
