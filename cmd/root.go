package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robertgumeny/testgen/internal/artifact"
	"github.com/robertgumeny/testgen/internal/log"
	"github.com/robertgumeny/testgen/internal/types"
)

var version = "v0.1.0"

var rootCmd = &cobra.Command{
	Use:   "testgen",
	Short: "testgen generates Google Test suites for C++ projects",
	Long: "testgen drives a text-generation service through a generate, refine, build\n" +
		"and debug loop for every C++ source file in a CMake project, then collects\n" +
		"lcov coverage for the tests that compile.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(listCmd)
}

// resolveProject returns the absolute project root: dir when set, otherwise
// the working directory.
func resolveProject(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("project directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project directory %s is not a directory", dir)
	}
	return filepath.Abs(dir)
}

// projectPath resolves a configured path against the project root.
func projectPath(projectRoot, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(projectRoot, p)
}

// collisionWarnings describes every group of units that share an artifact
// name, sorted by artifact name. The last unit of a group processed by run
// leaves its tests in the shared file.
func collisionWarnings(units []types.SourceUnit) []string {
	groups := artifact.Collisions(units)
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	warnings := make([]string, 0, len(names))
	for _, name := range names {
		sources := make([]string, 0, len(groups[name]))
		for _, u := range groups[name] {
			sources = append(sources, u.Name)
		}
		warnings = append(warnings, fmt.Sprintf("%s share the test file %s; each overwrites the previous one",
			strings.Join(sources, ", "), name))
	}
	return warnings
}

func warnCollisions(units []types.SourceUnit) {
	for _, w := range collisionWarnings(units) {
		log.Warning(w)
	}
}
