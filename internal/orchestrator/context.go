package orchestrator

import (
	"time"

	"github.com/robertgumeny/testgen/internal/types"
)

// unitContext carries all per-unit state for one pass through the phase
// machine. It is created by ProcessUnit and discarded once a terminal phase
// is reached; nothing in it outlives the unit.
type unitContext struct {
	Unit         types.SourceUnit
	ArtifactPath string

	// Current phase; the machine stops once it is terminal.
	Phase types.Phase

	// Completed step counts.
	Refinements int
	Debugs      int
	Builds      int

	// Diagnostics from the most recent failed build, consumed by Debugging.
	Diagnostics string

	// Set when Phase is PhaseFailed.
	FailedIn types.Phase
	Err      error

	StartTime time.Time
}

func newUnitContext(unit types.SourceUnit, artifactPath string) *unitContext {
	return &unitContext{
		Unit:         unit,
		ArtifactPath: artifactPath,
		Phase:        types.PhaseGenerating,
		StartTime:    time.Now(),
	}
}

// fail moves the unit to PhaseFailed, remembering the phase that failed.
func (uc *unitContext) fail(err error) {
	uc.FailedIn = uc.Phase
	uc.Err = err
	uc.Phase = types.PhaseFailed
}

// outcome maps the terminal phase to the recorded Outcome.
func (uc *unitContext) outcome() types.Outcome {
	switch uc.Phase {
	case types.PhaseSucceeded:
		return types.OutcomeSucceeded
	case types.PhaseExhausted:
		return types.OutcomeExhausted
	default:
		return types.OutcomeFailed
	}
}
