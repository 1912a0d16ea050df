// Package orchestrator drives each discovered source file through the
// generate, refine, build and debug cycle, and contains the startup checks
// the run command performs before the loop begins.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/robertgumeny/testgen/internal/artifact"
	"github.com/robertgumeny/testgen/internal/build"
	"github.com/robertgumeny/testgen/internal/config"
	"github.com/robertgumeny/testgen/internal/llm"
	"github.com/robertgumeny/testgen/internal/log"
	"github.com/robertgumeny/testgen/internal/metrics"
	"github.com/robertgumeny/testgen/internal/types"
)

// diagnosticsTail is the number of build output lines echoed to the terminal.
// The full output is always sent to the debugging call.
const diagnosticsTail = 30

// Deps are the collaborators an Orchestrator drives.
type Deps struct {
	Generator    llm.TextGenerator
	Store        *artifact.Store
	Build        build.BuildSystem
	Instructions *config.InstructionSet

	// Coverage is optional; nil skips coverage collection.
	Coverage build.CoverageSystem

	// MaxRefinements caps refinement iterations per unit.
	MaxRefinements int

	// StripCodeFences extracts the first Markdown code fence from generated
	// text before it is written.
	StripCodeFences bool
}

// Orchestrator processes SourceUnits one at a time. It is not safe for
// concurrent use: the build directory is shared by every unit.
type Orchestrator struct {
	generator       llm.TextGenerator
	store           *artifact.Store
	build           build.BuildSystem
	coverage        build.CoverageSystem
	instructions    *config.InstructionSet
	maxRefinements  int
	stripCodeFences bool
}

// New validates deps and returns an Orchestrator.
func New(deps Deps) (*Orchestrator, error) {
	switch {
	case deps.Generator == nil:
		return nil, errors.New("orchestrator: generator is required")
	case deps.Store == nil:
		return nil, errors.New("orchestrator: artifact store is required")
	case deps.Build == nil:
		return nil, errors.New("orchestrator: build system is required")
	case deps.Instructions == nil:
		return nil, errors.New("orchestrator: instruction set is required")
	case deps.MaxRefinements < 1:
		return nil, fmt.Errorf("orchestrator: max refinements must be at least 1, got %d", deps.MaxRefinements)
	}
	return &Orchestrator{
		generator:       deps.Generator,
		store:           deps.Store,
		build:           deps.Build,
		coverage:        deps.Coverage,
		instructions:    deps.Instructions,
		maxRefinements:  deps.MaxRefinements,
		stripCodeFences: deps.StripCodeFences,
	}, nil
}

// Run processes units in order and returns the run report. A unit that fails
// or exhausts its refinements never stops the run. If ctx is cancelled the
// remaining units are skipped and the report is returned with a nil
// CompletedAt.
func (o *Orchestrator) Run(ctx context.Context, units []types.SourceUnit) *types.RunReport {
	report := &types.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}

	for i, unit := range units {
		if ctx.Err() != nil {
			log.Warning(fmt.Sprintf("run interrupted: %d of %d source files not processed", len(units)-i, len(units)))
			return report
		}
		log.Section(fmt.Sprintf("[%d/%d] %s", i+1, len(units), unit.Name))
		metrics.RecordUnitMetrics(report, o.ProcessUnit(ctx, unit))
	}

	completed := time.Now().UTC().Format(time.RFC3339)
	report.CompletedAt = &completed
	return report
}

// ProcessUnit drives one SourceUnit from Generating to a terminal phase:
//
//	Generating -> Refining -> Building -> Succeeded
//	                 ^            |
//	                 +- Debugging <+ (build failed, refinements remain)
//
// A build that fails on the final refinement ends in Exhausted without a
// debugging call. Any error from the service, the artifact store or the
// toolchain ends in Failed.
func (o *Orchestrator) ProcessUnit(ctx context.Context, unit types.SourceUnit) types.UnitResult {
	uc := newUnitContext(unit, o.store.Path(unit))

	for !uc.Phase.IsTerminal() {
		var err error
		switch uc.Phase {
		case types.PhaseGenerating:
			err = o.generate(ctx, uc)
		case types.PhaseRefining:
			err = o.refine(ctx, uc)
		case types.PhaseBuilding:
			err = o.runBuild(ctx, uc)
		case types.PhaseDebugging:
			err = o.debug(ctx, uc)
		default:
			err = fmt.Errorf("unknown phase %q", uc.Phase)
		}
		if err != nil {
			uc.fail(err)
		}
	}

	return o.finish(ctx, uc)
}

func (o *Orchestrator) generate(ctx context.Context, uc *unitContext) error {
	source, err := os.ReadFile(uc.Unit.Path)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	log.Info("generating initial tests")
	conv := llm.NewConversation(o.instructions.Generation.Role, generationContent(string(source)))
	if err := o.complete(ctx, uc, conv); err != nil {
		return err
	}
	log.Success(fmt.Sprintf("generated %s", uc.ArtifactPath))

	uc.Phase = types.PhaseRefining
	return nil
}

func (o *Orchestrator) refine(ctx context.Context, uc *unitContext) error {
	current, err := o.store.Read(uc.Unit)
	if err != nil {
		return err
	}

	log.Info(fmt.Sprintf("refining tests (iteration %d/%d)", uc.Refinements+1, o.maxRefinements))
	conv := llm.NewConversation(o.instructions.Refinement.Role, refinementContent(current))
	if err := o.complete(ctx, uc, conv); err != nil {
		return err
	}
	uc.Refinements++

	uc.Phase = types.PhaseBuilding
	return nil
}

func (o *Orchestrator) runBuild(ctx context.Context, uc *unitContext) error {
	log.Info("building project")
	result, err := o.build.Build(ctx)
	uc.Builds++
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	if result.Success {
		log.Success("build succeeded")
		uc.Diagnostics = ""
		uc.Phase = types.PhaseSucceeded
		return nil
	}

	uc.Diagnostics = result.Diagnostics
	log.Warning("build failed")
	log.Detail("build output", result.Diagnostics, diagnosticsTail)

	if uc.Refinements >= o.maxRefinements {
		uc.Phase = types.PhaseExhausted
		return nil
	}
	uc.Phase = types.PhaseDebugging
	return nil
}

func (o *Orchestrator) debug(ctx context.Context, uc *unitContext) error {
	current, err := o.store.Read(uc.Unit)
	if err != nil {
		return err
	}

	log.Info("asking for a fix from the build output")
	conv := llm.NewConversation(o.instructions.Debugging.Role, debuggingContent(current, uc.Diagnostics))
	if err := o.complete(ctx, uc, conv); err != nil {
		return err
	}
	uc.Debugs++
	log.Info("applied candidate fix")

	uc.Phase = types.PhaseRefining
	return nil
}

// complete sends conv and overwrites the unit's artifact with the response.
func (o *Orchestrator) complete(ctx context.Context, uc *unitContext, conv llm.Conversation) error {
	text, err := o.generator.Complete(ctx, conv)
	if err != nil {
		return err
	}
	if o.stripCodeFences {
		text = artifact.ExtractCode(text)
	}
	if _, err := o.store.Write(uc.Unit, text); err != nil {
		return err
	}
	return nil
}
