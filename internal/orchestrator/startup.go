package orchestrator

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/robertgumeny/testgen/internal/build"
	"github.com/robertgumeny/testgen/internal/log"
)

// CheckDependencies verifies that the binaries the orchestrator invokes are
// available on PATH:
//   - The build toolchain (configure and compile commands) is required.
//   - The coverage toolchain (lcov, genhtml) is optional: a missing binary
//     only emits a warning, since coverage never affects a unit's outcome.
//
// coverage may be nil when coverage is disabled. Returns a descriptive error
// listing every missing required binary; nil if all are present.
func CheckDependencies(buildSys build.BuildSystem, coverage build.CoverageSystem) error {
	var missing []string
	for _, bin := range buildSys.Tools() {
		if _, err := exec.LookPath(bin); err != nil {
			missing = append(missing, bin)
		}
	}

	if coverage != nil {
		for _, bin := range coverage.Tools() {
			if _, err := exec.LookPath(bin); err != nil {
				log.Warning(fmt.Sprintf("%s not found on PATH; coverage reports will be skipped", bin))
			}
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required binaries on PATH: %s",
			strings.Join(missing, ", "))
	}
	return nil
}

// EnsureProjectReady verifies the project can be configured before the loop
// begins. When the configure tool is cmake, CMakeLists.txt must exist in the
// project root; other configure tools are not checked.
func EnsureProjectReady(projectRoot string, buildSys build.BuildSystem) error {
	tools := buildSys.Tools()
	if len(tools) == 0 || !isCMake(tools[0]) {
		return nil
	}

	listFile := filepath.Join(projectRoot, "CMakeLists.txt")
	if _, err := os.Stat(listFile); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s not found: testgen builds generated tests with CMake", listFile)
		}
		return fmt.Errorf("stat %s: %w", listFile, err)
	}
	return nil
}

func isCMake(tool string) bool {
	name := strings.TrimSuffix(filepath.Base(tool), ".exe")
	return name == "cmake"
}
