package orchestrator_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/robertgumeny/testgen/internal/orchestrator"
	"github.com/robertgumeny/testgen/internal/types"
)

// ---------------------------------------------------------------------------
// Tool-listing fakes for startup tests
// ---------------------------------------------------------------------------

type toolsBuild struct{ tools []string }

func (b *toolsBuild) Build(context.Context) (types.BuildResult, error) {
	return types.BuildResult{Success: true}, nil
}
func (b *toolsBuild) Tools() []string { return b.tools }

type toolsCoverage struct{ tools []string }

func (c *toolsCoverage) Collect(context.Context) (*types.CoverageReport, error) {
	return &types.CoverageReport{}, nil
}
func (c *toolsCoverage) Tools() []string { return c.tools }

// presentBinary returns a binary name that is on PATH in any test environment.
func presentBinary(t *testing.T) string {
	t.Helper()
	for _, bin := range []string{"go", "sh", "cmd"} {
		if _, err := exec.LookPath(bin); err == nil {
			return bin
		}
	}
	t.Skip("no well-known binary on PATH")
	return ""
}

// ---------------------------------------------------------------------------
// CheckDependencies tests
// ---------------------------------------------------------------------------

func TestCheckDependencies_MissingBinary_ErrorContainsBinaryName(t *testing.T) {
	bs := &toolsBuild{tools: []string{"nonexistent-cmake-abc789", presentBinary(t)}}

	err := orchestrator.CheckDependencies(bs, nil)

	if err == nil {
		t.Fatal("expected non-nil error")
	}
	if !strings.Contains(err.Error(), "nonexistent-cmake-abc789") {
		t.Errorf("error should list missing binary, got: %q", err.Error())
	}
}

func TestCheckDependencies_MultipleMissing_ErrorListsAll(t *testing.T) {
	bs := &toolsBuild{tools: []string{"missing-cmake-111", "missing-make-222"}}

	err := orchestrator.CheckDependencies(bs, nil)

	if err == nil {
		t.Fatal("expected non-nil error")
	}
	for _, bin := range bs.tools {
		if !strings.Contains(err.Error(), bin) {
			t.Errorf("error should contain %q, got: %q", bin, err.Error())
		}
	}
}

func TestCheckDependencies_AllPresent_ReturnsNil(t *testing.T) {
	bin := presentBinary(t)
	bs := &toolsBuild{tools: []string{bin, bin}}

	if err := orchestrator.CheckDependencies(bs, nil); err != nil {
		t.Errorf("expected nil, got: %v", err)
	}
}

func TestCheckDependencies_MissingCoverageToolsOnlyWarn(t *testing.T) {
	bin := presentBinary(t)
	bs := &toolsBuild{tools: []string{bin, bin}}
	cov := &toolsCoverage{tools: []string{"missing-lcov-333", "missing-genhtml-444"}}

	if err := orchestrator.CheckDependencies(bs, cov); err != nil {
		t.Errorf("missing coverage tools must not be fatal, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// EnsureProjectReady tests
// ---------------------------------------------------------------------------

func TestEnsureProjectReady_CMakeWithoutListFile_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	bs := &toolsBuild{tools: []string{"cmake", "make"}}

	err := orchestrator.EnsureProjectReady(dir, bs)

	if err == nil {
		t.Fatal("expected error when CMakeLists.txt is missing")
	}
	if !strings.Contains(err.Error(), "CMakeLists.txt") {
		t.Errorf("error should name CMakeLists.txt, got: %q", err.Error())
	}
}

func TestEnsureProjectReady_CMakeWithListFile_ReturnsNil(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "CMakeLists.txt"), []byte("project(demo)\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	bs := &toolsBuild{tools: []string{"/usr/local/bin/cmake", "make"}}

	if err := orchestrator.EnsureProjectReady(dir, bs); err != nil {
		t.Errorf("expected nil, got: %v", err)
	}
}

func TestEnsureProjectReady_OtherConfigureTool_Skipped(t *testing.T) {
	bs := &toolsBuild{tools: []string{"meson", "ninja"}}

	if err := orchestrator.EnsureProjectReady(t.TempDir(), bs); err != nil {
		t.Errorf("non-cmake configure tools are not checked, got: %v", err)
	}
}
