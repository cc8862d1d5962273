package game

import (
	"fmt"

	"github.com/toastmaster/toastmaster/pkg/scoring"
)

// Snapshot is the persistent form of a Machine.
type Snapshot struct {
	Phase        Phase             `json:"phase"`
	ToppingStage bool              `json:"topping_stage"`
	Stats        scoring.GameStats `json:"stats"`
	Generation   uint64            `json:"generation"`
	Verdict      *scoring.Verdict  `json:"verdict,omitempty"`
}

// Snapshot captures the machine's state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{
		Phase:        m.phase,
		ToppingStage: m.topping,
		Stats:        m.stats,
		Generation:   m.generation,
	}
	if m.verdict != nil {
		v := *m.verdict
		s.Verdict = &v
	}
	return s
}

// Restore rebuilds a machine from s. A RESULT snapshot without a verdict is
// rescored with the machine's assembler.
func Restore(s Snapshot, opts ...Option) (*Machine, error) {
	if !s.Phase.Valid() {
		return nil, fmt.Errorf("restore: unknown phase %q", s.Phase)
	}
	if s.Phase == PhaseTopping && !s.ToppingStage {
		return nil, fmt.Errorf("restore: phase %s without topping stage", s.Phase)
	}
	m := NewMachine(append([]Option{WithToppingStageIf(s.ToppingStage)}, opts...)...)
	m.phase = s.Phase
	m.stats = s.Stats
	m.generation = s.Generation
	if s.Phase == PhaseResult {
		v := m.assembler.Assemble(s.Stats)
		if s.Verdict != nil {
			v = *s.Verdict
		}
		m.verdict = &v
	}
	return m, nil
}
