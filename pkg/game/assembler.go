package game

import (
	"context"

	"github.com/toastmaster/toastmaster/pkg/scoring"
)

// Reviewer produces advisory feedback for a finished round. It must not
// fail; critique.Guard is the production implementation.
type Reviewer interface {
	Review(ctx context.Context, stats scoring.GameStats) scoring.Advisory
}

// Assembler builds the verdict at RESULT and optionally enriches it with a
// critique.
type Assembler struct {
	engine   *scoring.Engine
	reviewer Reviewer
}

// NewAssembler returns an assembler scoring with engine (canonical when
// nil). A nil reviewer disables enrichment.
func NewAssembler(engine *scoring.Engine, reviewer Reviewer) *Assembler {
	if engine == nil {
		engine = scoring.DefaultEngine()
	}
	return &Assembler{engine: engine, reviewer: reviewer}
}

// Engine returns the scoring engine in use.
func (a *Assembler) Engine() *scoring.Engine { return a.engine }

// Assemble scores stats. Stats arrive by value and are not retained.
func (a *Assembler) Assemble(stats scoring.GameStats) scoring.Verdict {
	return a.engine.ComputeVerdict(stats)
}

// Enrich requests a critique for m's finished round in the background.
// The returned channel yields the enriched verdict, or is closed without a
// value when there is nothing to enrich or the round moved on before the
// critique arrived.
func (a *Assembler) Enrich(ctx context.Context, m *Machine) <-chan scoring.Verdict {
	out := make(chan scoring.Verdict, 1)
	gen, stats, err := m.ticket()
	if err != nil || a.reviewer == nil {
		close(out)
		return out
	}
	go func() {
		defer close(out)
		adv := a.reviewer.Review(ctx, stats)
		if v, ok := m.ApplyCritique(gen, adv); ok {
			out <- v
		}
	}()
	return out
}
