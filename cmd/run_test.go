package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/robertgumeny/testgen/internal/config"
)

const testKeyEnv = "TESTGEN_CMD_TEST_API_KEY"

// readyProject returns an initialized project whose toolchain commands point
// at the test binary, so dependency checks pass without cmake installed.
func readyProject(t *testing.T) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	if err := initProject(dir, false); err != nil {
		t.Fatal(err)
	}
	cfg := config.Defaults()
	cfg.APIKeyEnv = testKeyEnv
	cfg.ConfigureCommand = fmt.Sprintf("%q", os.Args[0])
	cfg.CompileCommand = fmt.Sprintf("%q", os.Args[0])
	return dir, &cfg
}

func TestRunProject_MissingInstructions(t *testing.T) {
	cfg := config.Defaults()
	err := runProject(context.Background(), t.TempDir(), &cfg, true)
	if !errors.Is(err, config.ErrInstructionNotFound) {
		t.Fatalf("expected ErrInstructionNotFound, got %v", err)
	}
}

func TestRunProject_MissingAPIKey(t *testing.T) {
	dir, cfg := readyProject(t)
	t.Setenv(testKeyEnv, "")

	err := runProject(context.Background(), dir, cfg, true)
	if err == nil || !strings.Contains(err.Error(), testKeyEnv) {
		t.Fatalf("expected error naming %s, got %v", testKeyEnv, err)
	}
}

func TestRunProject_MissingToolchain(t *testing.T) {
	dir, cfg := readyProject(t)
	t.Setenv(testKeyEnv, "sk-test")
	cfg.CompileCommand = "testgen-no-such-make-xyz"

	err := runProject(context.Background(), dir, cfg, true)
	if err == nil || !strings.Contains(err.Error(), "testgen-no-such-make-xyz") {
		t.Fatalf("expected missing binary error, got %v", err)
	}
}

func TestRunProject_NoSourcesIsNotAnError(t *testing.T) {
	dir, cfg := readyProject(t)
	t.Setenv(testKeyEnv, "sk-test")
	// The service URL is unreachable; reaching the service would fail the test
	// through the absence of a report below.
	cfg.APIURL = "http://127.0.0.1:1"

	if err := runProject(context.Background(), dir, cfg, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "logs")); !os.IsNotExist(err) {
		t.Error("no run report should be written when there is nothing to process")
	}
}
