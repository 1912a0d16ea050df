// Package build provides the BuildSystem and CoverageSystem interfaces and
// the CMake and lcov implementations used to compile generated tests and
// measure their coverage.
package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"

	"github.com/robertgumeny/testgen/internal/types"
)

// BuildSystem compiles the project with its current test artifacts.
type BuildSystem interface {
	// Build configures and compiles the project. A compiler or configure
	// failure is reported as a BuildResult with Success false; the error
	// return is reserved for failures to run the toolchain at all.
	Build(ctx context.Context) (types.BuildResult, error)

	// Tools returns the executables Build invokes.
	Tools() []string
}

// CoverageSystem runs compiled test executables and renders a coverage report.
type CoverageSystem interface {
	// Collect runs every test executable and produces a report. When no test
	// executables exist it returns a report with no Executables and a nil error.
	Collect(ctx context.Context) (*types.CoverageReport, error)

	// Tools returns the executables Collect invokes.
	Tools() []string
}

// runTool runs args with dir as the working directory and returns the combined
// stdout and stderr. A non-zero exit is reported through exitCode with a nil
// error; only failure to start the tool, or cancellation, is an error.
// All commands use exec.CommandContext with an explicit args slice, no shell eval.
func runTool(ctx context.Context, dir string, args []string) (output []byte, exitCode int, err error) {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, -1, ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out, exitErr.ExitCode(), nil
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return out, -1, &ToolNotFoundError{Tool: args[0], Err: err}
		}
		return out, -1, fmt.Errorf("run %s: %w", args[0], err)
	}
	return out, 0, nil
}
