package game

import (
	"fmt"
	"sync"

	"github.com/toastmaster/toastmaster/pkg/scoring"
	"github.com/toastmaster/toastmaster/pkg/stage"
)

// Machine drives one round through
// START → CUT → TOAST → BUTTER → (TOPPING) → RESULT and back to START on
// restart. It is the only writer of the round's stats. A Machine is safe
// for concurrent use.
type Machine struct {
	assembler *Assembler
	topping   bool

	mu         sync.Mutex
	phase      Phase
	stats      scoring.GameStats
	verdict    *scoring.Verdict
	generation uint64
}

// Option configures a Machine.
type Option func(*Machine)

// WithToppingStage inserts the optional topping stage before RESULT.
func WithToppingStage() Option {
	return func(m *Machine) { m.topping = true }
}

// WithToppingStageIf is WithToppingStage when enabled is true.
func WithToppingStageIf(enabled bool) Option {
	return func(m *Machine) { m.topping = enabled }
}

// WithAssembler sets the assembler used at RESULT.
func WithAssembler(a *Assembler) Option {
	return func(m *Machine) { m.assembler = a }
}

// NewMachine returns a machine at START.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{phase: PhaseStart}
	for _, o := range opts {
		o(m)
	}
	if m.assembler == nil {
		m.assembler = NewAssembler(nil, nil)
	}
	return m
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Stats returns a copy of the stats collected so far.
func (m *Machine) Stats() scoring.GameStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Generation counts restarts. Work issued for an older generation is
// discarded.
func (m *Machine) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// ToppingStage reports whether the round includes the topping stage.
func (m *Machine) ToppingStage() bool { return m.topping }

// Begin leaves START for the first stage.
func (m *Machine) Begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseStart {
		return fmt.Errorf("begin in %s: %w", m.phase, ErrWrongPhase)
	}
	m.phase = next(m.phase, m.topping)
	return nil
}

// Complete records the result of the current stage and advances. Entering
// RESULT scores the round.
func (m *Machine) Complete(r stage.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	want, ok := m.phase.Stage()
	if !ok {
		return fmt.Errorf("complete %s in %s: %w", r.Kind, m.phase, ErrWrongPhase)
	}
	if r.Kind != want {
		return fmt.Errorf("complete %s in %s: %w", r.Kind, m.phase, ErrStageMismatch)
	}

	switch r.Kind {
	case stage.KindCut:
		m.stats.SliceQuality = r.Value
	case stage.KindToast:
		m.stats.ToastLevel = r.Value
	case stage.KindButter:
		m.stats.ButterCoverage = r.Value
	case stage.KindTopping:
		m.stats.Topping = r.Topping
	}

	m.phase = next(m.phase, m.topping)
	if m.phase == PhaseResult {
		v := m.assembler.Assemble(m.stats)
		m.verdict = &v
	}
	return nil
}

// Verdict returns the round's verdict. It is only available at RESULT.
func (m *Machine) Verdict() (scoring.Verdict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseResult || m.verdict == nil {
		return scoring.Verdict{}, fmt.Errorf("verdict in %s: %w", m.phase, ErrNoVerdict)
	}
	return *m.verdict, nil
}

// Restart discards the verdict and stats and returns to START.
func (m *Machine) Restart() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseResult {
		return fmt.Errorf("restart in %s: %w", m.phase, ErrWrongPhase)
	}
	m.phase = PhaseStart
	m.stats = scoring.GameStats{}
	m.verdict = nil
	m.generation++
	return nil
}

// ticket returns what a critique request needs: the generation it is
// issued for and a copy of the final stats.
func (m *Machine) ticket() (uint64, scoring.GameStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseResult {
		return 0, scoring.GameStats{}, fmt.Errorf("critique in %s: %w", m.phase, ErrNoVerdict)
	}
	return m.generation, m.stats, nil
}

// ApplyCritique attaches a to the verdict if the round is still the one
// the critique was issued for. It reports whether a was applied.
func (m *Machine) ApplyCritique(generation uint64, a scoring.Advisory) (scoring.Verdict, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if generation != m.generation || m.phase != PhaseResult || m.verdict == nil {
		return scoring.Verdict{}, false
	}
	v := m.verdict.WithCritique(a)
	m.verdict = &v
	return v, true
}
