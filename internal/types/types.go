// Package types defines the shared structs and typed constants used by the
// testgen orchestrator. YAML struct tags use snake_case field names to match
// the on-disk run report.
package types

import "time"

// ---------------------------------------------------------------------------
// Typed constants
// ---------------------------------------------------------------------------

// Outcome is the terminal classification of one SourceUnit.
type Outcome string

const (
	// OutcomeSucceeded means a refined artifact compiled.
	OutcomeSucceeded Outcome = "succeeded"

	// OutcomeExhausted means every refinement iteration ended in a failed build.
	OutcomeExhausted Outcome = "exhausted"

	// OutcomeFailed means processing aborted early: a service error, an
	// artifact I/O error, or a toolchain that could not be started.
	OutcomeFailed Outcome = "failed"
)

// Phase is a state of the per-unit generate/refine/build/debug machine.
type Phase string

const (
	PhaseGenerating Phase = "generating"
	PhaseRefining   Phase = "refining"
	PhaseBuilding   Phase = "building"
	PhaseDebugging  Phase = "debugging"
	PhaseSucceeded  Phase = "succeeded"
	PhaseExhausted  Phase = "exhausted"
	PhaseFailed     Phase = "failed"
)

// IsTerminal reports whether no further transition leaves p.
func (p Phase) IsTerminal() bool {
	return p == PhaseSucceeded || p == PhaseExhausted || p == PhaseFailed
}

// ---------------------------------------------------------------------------
// Discovery and build types
// ---------------------------------------------------------------------------

// SourceUnit is a discovered source file. It is immutable once discovered.
type SourceUnit struct {
	// Path is the absolute path to the source file.
	Path string

	// Name is Path relative to the project root, used for display.
	Name string
}

// BuildResult is produced once per build attempt. Diagnostics is empty on
// success; otherwise it holds the combined stdout/stderr of the failing phase.
type BuildResult struct {
	Success     bool
	Diagnostics string
}

// CoverageReport describes one coverage collection. A report with no
// Executables means nothing was run and no report was rendered.
type CoverageReport struct {
	Executables []string
	InfoPath    string
	ReportPath  string
}

// UnitResult records how processing of one SourceUnit ended.
//
// Phase is the phase in which processing stopped; for OutcomeFailed it names
// the phase whose step returned Err.
type UnitResult struct {
	Unit         SourceUnit
	Outcome      Outcome
	Phase        Phase
	Refinements  int
	Debugs       int
	Builds       int
	ArtifactPath string
	Coverage     *CoverageReport
	Err          error
	Duration     time.Duration
}

// ---------------------------------------------------------------------------
// logs/testgen-run.yaml types
// ---------------------------------------------------------------------------

// RunReport mirrors the structure of logs/testgen-run.yaml.
type RunReport struct {
	RunID       string       `yaml:"run_id"`
	StartedAt   string       `yaml:"started_at"`
	CompletedAt *string      `yaml:"completed_at"`
	Units       []UnitMetric `yaml:"units"`
	Totals      RunTotals    `yaml:"totals"`
}

// UnitMetric is the persisted form of a UnitResult.
type UnitMetric struct {
	Source          string  `yaml:"source"`
	Artifact        string  `yaml:"artifact"`
	Outcome         Outcome `yaml:"outcome"`
	Refinements     int     `yaml:"refinements"`
	Debugs          int     `yaml:"debugs"`
	Builds          int     `yaml:"builds"`
	DurationSeconds int     `yaml:"duration_seconds"`
	CoverageReport  string  `yaml:"coverage_report,omitempty"`
	Error           string  `yaml:"error,omitempty"`
	CompletedAt     string  `yaml:"completed_at"`
}

// RunTotals is the totals block of the run report.
type RunTotals struct {
	Units                int `yaml:"units"`
	Succeeded            int `yaml:"succeeded"`
	Exhausted            int `yaml:"exhausted"`
	Failed               int `yaml:"failed"`
	TotalDurationSeconds int `yaml:"total_duration_seconds"`
}
