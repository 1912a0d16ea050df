// Package state provides atomic load and save operations for the run report,
// logs/testgen-run.yaml.
//
// All writes are atomic: data is marshalled to a .tmp file in the same
// directory, then os.Rename replaces the target in a single kernel call.
// This prevents partial writes from corrupting the report.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/robertgumeny/testgen/internal/types"
)

// RunReportPath is the run report location relative to the project root.
const RunReportPath = "logs/testgen-run.yaml"

// ErrNotFound is returned by LoadRunReport when the report file does not exist.
var ErrNotFound = errors.New("run report not found")

// ParseError is returned when a report file exists but cannot be unmarshalled.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadRunReport reads the run report at path.
// Returns ErrNotFound if the file is absent, or *ParseError on malformed YAML.
func LoadRunReport(path string) (*types.RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var report types.RunReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &report, nil
}

// SaveRunReport atomically writes report to path, creating the parent
// directory if needed.
func SaveRunReport(path string, report *types.RunReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	return atomicWrite(path, data)
}

// atomicWrite writes data to path by first writing to path+".tmp",
// then calling os.Rename to replace the final target atomically.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup on rename failure
		return fmt.Errorf("rename %s -> %s: %w", tmp, path, err)
	}
	return nil
}
