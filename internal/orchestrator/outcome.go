package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robertgumeny/testgen/internal/build"
	"github.com/robertgumeny/testgen/internal/llm"
	"github.com/robertgumeny/testgen/internal/log"
	"github.com/robertgumeny/testgen/internal/types"
)

// finish handles the terminal phase of uc and builds its UnitResult.
//
//   - Succeeded: collect coverage (when configured). Coverage problems are
//     logged and never change the outcome.
//   - Exhausted: the artifact is left as last written.
//   - Failed: the error and the phase it came from are logged.
func (o *Orchestrator) finish(ctx context.Context, uc *unitContext) types.UnitResult {
	result := types.UnitResult{
		Unit:         uc.Unit,
		Outcome:      uc.outcome(),
		Phase:        uc.Phase,
		Refinements:  uc.Refinements,
		Debugs:       uc.Debugs,
		Builds:       uc.Builds,
		ArtifactPath: uc.ArtifactPath,
		Err:          uc.Err,
	}

	switch uc.Phase {
	case types.PhaseSucceeded:
		log.Success(fmt.Sprintf("%s: tests compile after %d refinement(s)", uc.Unit.Name, uc.Refinements))
		result.Coverage = o.collectCoverage(ctx)
	case types.PhaseExhausted:
		log.Warning(fmt.Sprintf("%s: build still failing after %d refinement(s); leaving %s as is",
			uc.Unit.Name, uc.Refinements, uc.ArtifactPath))
	case types.PhaseFailed:
		result.Phase = uc.FailedIn
		log.Error(fmt.Sprintf("%s: %s failed: %v", uc.Unit.Name, uc.FailedIn, uc.Err))
		if errors.Is(uc.Err, llm.ErrRateLimitExhausted) {
			log.Warning("the generation service kept rate limiting; consider raising max_retries or initial_backoff_seconds")
		}
	}

	result.Duration = time.Since(uc.StartTime)
	return result
}

// collectCoverage runs the coverage system, returning nil when it is not
// configured or fails.
func (o *Orchestrator) collectCoverage(ctx context.Context) *types.CoverageReport {
	if o.coverage == nil {
		return nil
	}

	log.Info("running tests for coverage")
	report, err := o.coverage.Collect(ctx)
	if err != nil {
		var notFound *build.ToolNotFoundError
		var cmdErr *build.CommandError
		switch {
		case errors.As(err, &notFound):
			log.Warning(fmt.Sprintf("coverage skipped: %v (install lcov and genhtml)", err))
		case errors.As(err, &cmdErr):
			log.Warning(fmt.Sprintf("coverage generation failed: %v", err))
			log.Detail("output", cmdErr.Output, diagnosticsTail)
		default:
			log.Warning(fmt.Sprintf("coverage generation failed: %v", err))
		}
		return nil
	}

	if len(report.Executables) == 0 {
		log.Warning("no test executables found to run for coverage")
		return report
	}
	log.Success(fmt.Sprintf("coverage report generated at %s", report.ReportPath))
	return report
}
