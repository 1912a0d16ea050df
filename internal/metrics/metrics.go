// Package metrics provides per-unit metric recording and run summary
// reporting for the testgen orchestrator.
package metrics

import (
	"fmt"
	"time"

	"github.com/robertgumeny/testgen/internal/types"
)

// RecordUnitMetrics appends a UnitMetric for the finished unit to
// report.Units and calls UpdateTotals to refresh the totals.
func RecordUnitMetrics(report *types.RunReport, result types.UnitResult) {
	metric := types.UnitMetric{
		Source:          result.Unit.Name,
		Artifact:        result.ArtifactPath,
		Outcome:         result.Outcome,
		Refinements:     result.Refinements,
		Debugs:          result.Debugs,
		Builds:          result.Builds,
		DurationSeconds: int(result.Duration.Round(time.Second) / time.Second),
		CompletedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if result.Coverage != nil {
		metric.CoverageReport = result.Coverage.ReportPath
	}
	if result.Err != nil {
		metric.Error = result.Err.Error()
	}
	report.Units = append(report.Units, metric)
	UpdateTotals(report)
}

// UpdateTotals recalculates report.Totals from the full Units slice. It
// overwrites any previously stored totals, making it safe to call multiple times.
func UpdateTotals(report *types.RunReport) {
	totals := types.RunTotals{Units: len(report.Units)}
	for _, u := range report.Units {
		totals.TotalDurationSeconds += u.DurationSeconds
		switch u.Outcome {
		case types.OutcomeSucceeded:
			totals.Succeeded++
		case types.OutcomeExhausted:
			totals.Exhausted++
		case types.OutcomeFailed:
			totals.Failed++
		}
	}
	report.Totals = totals
}

// PrintRunSummary prints a box-draw table to stdout summarizing the run:
// unit counts by outcome, total wall time (formatted as h/m/s), and average
// time per unit.
func PrintRunSummary(report *types.RunReport) {
	totals := report.Totals

	avgSec := 0
	if totals.Units > 0 {
		avgSec = totals.TotalDurationSeconds / totals.Units
	}

	const line = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"
	fmt.Printf("\n%s\n", line)
	fmt.Println("RUN SUMMARY")
	fmt.Printf("%s\n", line)
	fmt.Printf("  %-22s %d\n", "Source Files:", totals.Units)
	fmt.Printf("  %-22s %d\n", "Succeeded:", totals.Succeeded)
	fmt.Printf("  %-22s %d\n", "Exhausted:", totals.Exhausted)
	fmt.Printf("  %-22s %d\n", "Failed:", totals.Failed)
	fmt.Printf("  %-22s %s\n", "Total Time:", formatDuration(totals.TotalDurationSeconds))
	fmt.Printf("  %-22s %s\n", "Average Time:", fmt.Sprintf("%ds per file", avgSec))
	fmt.Printf("%s\n\n", line)
}

// formatDuration converts a duration in seconds to a human-readable string.
// Examples: "0s", "45s", "3m 15s", "1h 2m 30s".
func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "0s"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
