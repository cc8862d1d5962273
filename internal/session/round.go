package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/toastmaster/toastmaster/pkg/game"
	"github.com/toastmaster/toastmaster/pkg/scoring"
	"github.com/toastmaster/toastmaster/pkg/stage"
)

// Round is a live round: the phase machine plus the controller for each
// stage. All fields except busy are guarded by mu.
type Round struct {
	ID string

	// busy counts background work in flight (a running toaster, a pending
	// critique). The cache never evicts a busy round.
	busy atomic.Int32

	mu          sync.Mutex
	evicted     bool
	machine     *game.Machine
	cutter      *stage.Cutter
	toaster     *stage.Toaster
	toastCancel context.CancelFunc
	grid        *stage.ButterGrid
	topping     *stage.ToppingStation
}

// View is the client-facing state of a round.
type View struct {
	ID           string            `json:"id"`
	Phase        game.Phase        `json:"phase"`
	Generation   uint64            `json:"generation"`
	ToppingStage bool              `json:"topping_stage"`
	Stats        scoring.GameStats `json:"stats"`
	Cuts         int               `json:"cuts"`
	ToastLevel   int               `json:"toast_level"`
	Toasting     bool              `json:"toasting"`
	Butter       []bool            `json:"butter"`
	Coverage     int               `json:"coverage"`
	Preference   string            `json:"preference,omitempty"`
	Suggestions  []string          `json:"suggestions,omitempty"`
	QuickPicks   []string          `json:"quick_picks,omitempty"`
	Verdict      *scoring.Verdict  `json:"verdict,omitempty"`
}

// resetStages replaces every stage controller. Caller holds mu.
func (r *Round) resetStages(cfg stage.Config, suggester stage.Suggester) {
	r.stopToasterLocked()
	r.cutter = stage.NewCutter(cfg)
	r.toaster = stage.NewToaster(cfg.ToastTick)
	r.grid = stage.NewButterGrid(cfg.GridSize)
	r.topping = stage.NewToppingStation(suggester)
}

// stopToasterLocked releases a running toaster timer without completing
// the stage. Caller holds mu.
func (r *Round) stopToasterLocked() {
	r.releaseToastLocked()
	if r.toaster != nil {
		r.toaster.Close()
	}
}

// releaseToastLocked cancels the context the toaster was started with.
// Caller holds mu.
func (r *Round) releaseToastLocked() {
	if r.toastCancel != nil {
		r.toastCancel()
		r.toastCancel = nil
		r.busy.Add(-1)
	}
}

func (r *Round) pinned() bool { return r.busy.Load() > 0 }

// shutdown is run when the round leaves the cache. Holders of the old
// pointer see evicted and look the round up again.
func (r *Round) shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evicted = true
	r.stopToasterLocked()
}

// snapshotLocked captures the round for the store. Caller holds mu.
func (r *Round) snapshotLocked() Snapshot {
	return Snapshot{
		ID:          r.ID,
		Game:        r.machine.Snapshot(),
		Cuts:        r.cutter.Cuts(),
		Butter:      r.grid.Cells(),
		Preference:  r.topping.Preference(),
		Suggestions: r.topping.Suggestions(),
		UpdatedAt:   time.Now().UTC(),
	}
}

// viewLocked builds the client view. Caller holds mu.
func (r *Round) viewLocked() View {
	snap := r.machine.Snapshot()
	v := View{
		ID:           r.ID,
		Phase:        snap.Phase,
		Generation:   snap.Generation,
		ToppingStage: snap.ToppingStage,
		Stats:        snap.Stats,
		Cuts:         r.cutter.Cuts(),
		ToastLevel:   r.toaster.Level(),
		Toasting:     r.toaster.Active(),
		Butter:       r.grid.Cells(),
		Coverage:     r.grid.Coverage(),
		Preference:   r.topping.Preference(),
		Suggestions:  r.topping.Suggestions(),
		Verdict:      snap.Verdict,
	}
	if snap.Phase == game.PhaseTopping && len(v.Suggestions) == 0 {
		v.QuickPicks = append([]string(nil), stage.QuickPicks...)
	}
	return v
}
