package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robertgumeny/testgen/internal/config"
	"github.com/robertgumeny/testgen/internal/log"
	"github.com/robertgumeny/testgen/internal/templates"
)

var initFlags struct {
	force   bool
	project string
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a project for testgen",
	Long:  "Scaffold testgen.yaml and the three instruction documents in a C++ project.",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initFlags.force, "force", false, "Overwrite existing files")
	initCmd.Flags().StringVar(&initFlags.project, "project", "", "project root (default: working directory)")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := resolveProject(initFlags.project)
	if err != nil {
		return err
	}
	return initProject(dir, initFlags.force)
}

// initProject is the testable core of the init command. It generates
// testgen.yaml and copies the embedded instruction documents into dir.
func initProject(dir string, force bool) error {
	// Guard: refuse to re-initialize an existing project unless --force is set.
	if !force {
		if _, statErr := os.Stat(filepath.Join(dir, config.FileName)); statErr == nil {
			return fmt.Errorf("%s already exists — project appears to be already initialized; use --force to overwrite", config.FileName)
		}
	}

	path := filepath.Join(dir, config.FileName)
	if err := os.WriteFile(path, []byte(testgenYAMLContent()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", config.FileName, err)
	}
	log.Success(fmt.Sprintf("created %s", config.FileName))

	if err := copyInitTemplates(dir, force); err != nil {
		return err
	}

	if _, err := os.Stat(filepath.Join(dir, "CMakeLists.txt")); err != nil {
		log.Warning("CMakeLists.txt not found — testgen run needs a CMake project that builds tests/test_*")
	}
	log.Info(fmt.Sprintf("project initialized — export %s, then run: testgen run", config.DefaultAPIKeyEnv))
	return nil
}

// copyInitTemplates walks the embedded init/ FS and copies every file to the
// project root, keeping its name.
func copyInitTemplates(dir string, force bool) error {
	return fs.WalkDir(templates.Init, "init", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel := strings.TrimPrefix(path, "init/")
		dst := filepath.Join(dir, filepath.FromSlash(rel))

		if !force {
			if _, statErr := os.Stat(dst); statErr == nil {
				log.Warning(fmt.Sprintf("%s already exists — skipping (use --force to overwrite)", rel))
				return nil
			}
		}

		if mkErr := os.MkdirAll(filepath.Dir(dst), 0o755); mkErr != nil {
			return fmt.Errorf("create directory for %s: %w", dst, mkErr)
		}

		data, readErr := templates.Init.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("read template %s: %w", path, readErr)
		}

		if writeErr := os.WriteFile(dst, data, 0o644); writeErr != nil {
			return fmt.Errorf("write %s: %w", dst, writeErr)
		}

		log.Success(fmt.Sprintf("created %s", rel))
		return nil
	})
}

// testgenYAMLContent returns the testgen.yaml file content with inline YAML
// comments and every setting at its default.
func testgenYAMLContent() string {
	return fmt.Sprintf(`# testgen.yaml — test generator configuration
api_url: %s   # OpenAI-compatible endpoint; /chat/completions is appended
model: %s
api_key_env: %s               # Environment variable holding the API key
max_refinements: %d                         # Refine/build iterations per source file
max_retries: %d                             # Attempts per call when rate limited (HTTP 429)
initial_backoff_seconds: %d                # Wait before the first retry; doubles each time
request_timeout_seconds: %d               # Per-request HTTP timeout
tests_dir: %s                             # Generated files: tests/test_<source>
build_dir: %s
coverage_dir: %s
configure_command: %s   # Run in build_dir with the source dir and coverage flags appended
compile_command: %s
lcov_command: %s
genhtml_command: %s
excluded_dirs: [%s]
source_extensions: [%s]
strip_code_fences: %t   # Keep only the first Markdown code block of each response
`,
		config.DefaultAPIURL,
		config.DefaultModel,
		config.DefaultAPIKeyEnv,
		config.DefaultMaxRefinements,
		config.DefaultMaxRetries,
		config.DefaultInitialBackoffSeconds,
		config.DefaultRequestTimeoutSeconds,
		config.DefaultTestsDir,
		config.DefaultBuildDir,
		config.DefaultCoverageDir,
		config.DefaultConfigureCommand,
		config.DefaultCompileCommand,
		config.DefaultLcovCommand,
		config.DefaultGenhtmlCommand,
		strings.Join(config.DefaultExcludedDirs, ", "),
		strings.Join(config.DefaultSourceExtensions, ", "),
		config.DefaultStripCodeFences,
	)
}
