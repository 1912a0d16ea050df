package build

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/robertgumeny/testgen/internal/types"
)

// TestExecutablePrefix identifies compiled test binaries in the build directory.
const TestExecutablePrefix = "test_"

// Coverage output file names inside the coverage directory.
const (
	CoverageInfoFile   = "coverage.info"
	CoverageReportFile = "index.html"
)

// LcovOptions configures an LcovCoverage.
type LcovOptions struct {
	// BuildDir holds the compiled test executables and gcov data files.
	BuildDir string

	// CoverageDir receives coverage.info and the HTML report.
	CoverageDir string

	LcovCommand    string
	GenhtmlCommand string
}

// LcovCoverage implements CoverageSystem with lcov and genhtml.
type LcovCoverage struct {
	buildDir    string
	coverageDir string
	lcov        []string
	genhtml     []string
}

// NewLcovCoverage creates an LcovCoverage for the project at projectRoot.
func NewLcovCoverage(projectRoot string, opts LcovOptions) (*LcovCoverage, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	lcov, err := parseCommand("lcov", opts.LcovCommand)
	if err != nil {
		return nil, err
	}
	genhtml, err := parseCommand("genhtml", opts.GenhtmlCommand)
	if err != nil {
		return nil, err
	}
	return &LcovCoverage{
		buildDir:    resolveDir(root, opts.BuildDir),
		coverageDir: resolveDir(root, opts.CoverageDir),
		lcov:        lcov,
		genhtml:     genhtml,
	}, nil
}

// Tools returns the lcov and genhtml executables.
func (l *LcovCoverage) Tools() []string {
	return []string{l.lcov[0], l.genhtml[0]}
}

// Collect resets the gcov counters, runs every test executable, then captures
// and renders the coverage data. The first executable that exits non-zero
// aborts collection with a *CommandError.
func (l *LcovCoverage) Collect(ctx context.Context) (*types.CoverageReport, error) {
	if err := os.MkdirAll(l.coverageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create coverage directory %s: %w", l.coverageDir, err)
	}

	executables, err := FindTestExecutables(l.buildDir)
	if err != nil {
		return nil, err
	}
	report := &types.CoverageReport{Executables: executables}
	if len(executables) == 0 {
		return report, nil
	}

	info := filepath.Join(l.coverageDir, CoverageInfoFile)

	// Counters are reset before the executables run; resetting afterwards
	// would erase the .gcda data the capture reads.
	if err := l.step(ctx, l.command(l.lcov, "--directory", l.buildDir, "--zerocounters")); err != nil {
		return nil, err
	}
	for _, exe := range executables {
		if err := l.step(ctx, []string{exe}); err != nil {
			return nil, err
		}
	}
	if err := l.step(ctx, l.command(l.lcov, "--capture", "--directory", l.buildDir, "--output-file", info)); err != nil {
		return nil, err
	}
	if err := l.step(ctx, l.command(l.genhtml, info, "--output-directory", l.coverageDir)); err != nil {
		return nil, err
	}

	report.InfoPath = info
	report.ReportPath = filepath.Join(l.coverageDir, CoverageReportFile)
	return report, nil
}

// step runs one coverage command in the build directory.
func (l *LcovCoverage) step(ctx context.Context, args []string) error {
	out, code, err := runTool(ctx, l.buildDir, args)
	if err != nil {
		return err
	}
	if code != 0 {
		return &CommandError{Args: args, Output: string(out), ExitCode: code}
	}
	return nil
}

func (l *LcovCoverage) command(base []string, args ...string) []string {
	return append(append([]string(nil), base...), args...)
}

// FindTestExecutables returns the absolute paths of regular, executable files
// under buildDir whose names start with TestExecutablePrefix, sorted. CMake's
// own CMakeFiles tree is skipped. A missing buildDir yields no executables.
func FindTestExecutables(buildDir string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(buildDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == buildDir && os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if d.Name() == "CMakeFiles" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasPrefix(d.Name(), TestExecutablePrefix) || !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Mode().Perm()&0o111 == 0 {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		found = append(found, abs)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s for test executables: %w", buildDir, err)
	}
	sort.Strings(found)
	return found, nil
}
