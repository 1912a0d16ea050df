package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robertgumeny/testgen/internal/types"
)

// CoverageFlags are appended to the configure command so every target is
// compiled and linked with gcov instrumentation.
var CoverageFlags = []string{
	"-DCMAKE_CXX_FLAGS=-fprofile-arcs -ftest-coverage",
	"-DCMAKE_C_FLAGS=-fprofile-arcs -ftest-coverage",
	"-DCMAKE_EXE_LINKER_FLAGS=--coverage",
}

// CMakeOptions configures a CMakeBuildSystem.
type CMakeOptions struct {
	// BuildDir is the out-of-source build directory, relative to the project
	// root unless absolute.
	BuildDir string

	// ConfigureCommand is run in BuildDir with the source directory and
	// CoverageFlags appended, e.g. "cmake".
	ConfigureCommand string

	// CompileCommand is run in BuildDir after a successful configure, e.g. "make".
	CompileCommand string
}

// CMakeBuildSystem implements BuildSystem with a two-phase configure and
// compile in an out-of-source build directory.
type CMakeBuildSystem struct {
	projectRoot string
	buildDir    string
	configure   []string
	compile     []string
}

// NewCMakeBuildSystem creates a CMakeBuildSystem for the project at
// projectRoot. The build directory is not created until Build runs.
func NewCMakeBuildSystem(projectRoot string, opts CMakeOptions) (*CMakeBuildSystem, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	configure, err := parseCommand("configure", opts.ConfigureCommand)
	if err != nil {
		return nil, err
	}
	compile, err := parseCommand("compile", opts.CompileCommand)
	if err != nil {
		return nil, err
	}
	return &CMakeBuildSystem{
		projectRoot: root,
		buildDir:    resolveDir(root, opts.BuildDir),
		configure:   configure,
		compile:     compile,
	}, nil
}

// Tools returns the configure and compile executables.
func (c *CMakeBuildSystem) Tools() []string {
	return []string{c.configure[0], c.compile[0]}
}

// Build creates the build directory if needed, then runs configure followed by
// compile. When a phase exits non-zero the result carries that phase's combined
// output and later phases are not run.
func (c *CMakeBuildSystem) Build(ctx context.Context) (types.BuildResult, error) {
	if err := os.MkdirAll(c.buildDir, 0o755); err != nil {
		return types.BuildResult{}, fmt.Errorf("create build directory %s: %w", c.buildDir, err)
	}

	source, err := filepath.Rel(c.buildDir, c.projectRoot)
	if err != nil {
		source = c.projectRoot
	}
	configure := append(append(append([]string(nil), c.configure...), source), CoverageFlags...)

	for _, args := range [][]string{configure, c.compile} {
		out, code, err := runTool(ctx, c.buildDir, args)
		if err != nil {
			return types.BuildResult{}, err
		}
		if code != 0 {
			return types.BuildResult{Success: false, Diagnostics: string(out)}, nil
		}
	}
	return types.BuildResult{Success: true}, nil
}

// resolveDir returns dir joined to root unless it is already absolute.
func resolveDir(root, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}
