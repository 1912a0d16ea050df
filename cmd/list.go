package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/robertgumeny/testgen/internal/artifact"
	"github.com/robertgumeny/testgen/internal/config"
	"github.com/robertgumeny/testgen/internal/discovery"
	"github.com/robertgumeny/testgen/internal/log"
	"github.com/robertgumeny/testgen/internal/state"
	"github.com/robertgumeny/testgen/internal/types"
)

var listFlags struct {
	project string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the source files testgen would process",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listFlags.project, "project", "", "project root (default: working directory)")
}

func runList(cmd *cobra.Command, args []string) error {
	projectRoot, err := resolveProject(listFlags.project)
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfig(filepath.Join(projectRoot, config.FileName))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return listSources(cmd.OutOrStdout(), projectRoot, cfg)
}

// listSources writes one line per discovered source file: its relative path,
// the artifact it would be paired with, and its outcome in the last run when
// logs/testgen-run.yaml records one. Artifacts that already exist are marked.
func listSources(w io.Writer, projectRoot string, cfg *config.Config) error {
	units, err := discovery.Discover(projectRoot, discovery.Options{
		ExcludedDirs: cfg.ExcludedDirs,
		Extensions:   cfg.SourceExtensions,
	})
	if err != nil {
		return fmt.Errorf("discover source files: %w", err)
	}

	warnCollisions(units)
	last := lastOutcomes(projectRoot)

	store := artifact.NewStore(projectPath(projectRoot, cfg.TestsDir))
	for _, u := range units {
		marker := " "
		if _, err := os.Stat(store.Path(u)); err == nil {
			marker = "*"
		}
		rel := filepath.ToSlash(filepath.Join(cfg.TestsDir, artifact.Name(u)))
		line := fmt.Sprintf("%s %-40s -> %s", marker, u.Name, rel)
		if outcome, ok := last[u.Name]; ok {
			line = fmt.Sprintf("%-90s [%s]", line, outcome)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "\n%d source file(s); * marks an existing test file\n", len(units))
	return nil
}

// lastOutcomes maps each source recorded in the saved run report to its
// outcome. A missing report yields an empty map; an unreadable one is a warning.
func lastOutcomes(projectRoot string) map[string]types.Outcome {
	out := make(map[string]types.Outcome)
	report, err := state.LoadRunReport(filepath.Join(projectRoot, filepath.FromSlash(state.RunReportPath)))
	if err != nil {
		if !errors.Is(err, state.ErrNotFound) {
			log.Warning(fmt.Sprintf("ignoring run report: %v", err))
		}
		return out
	}
	for _, m := range report.Units {
		out[m.Source] = m.Outcome
	}
	return out
}
