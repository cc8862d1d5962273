package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/toastmaster/toastmaster/pkg/critique"
	"github.com/toastmaster/toastmaster/pkg/game"
	"github.com/toastmaster/toastmaster/pkg/scoring"
	"github.com/toastmaster/toastmaster/pkg/stage"
)

// ErrInvalid marks a request the round cannot act on as given, such as a
// negative cut count or a cell off the grid.
var ErrInvalid = errors.New("invalid input")

// Config configures a Service.
type Config struct {
	Store     Store
	CacheSize int
	Stages    stage.Config
	Engine    *scoring.Engine
	// Critic answers topping and critique requests. When nil, suggestions
	// use the fixed fallback triple and verdicts are not enriched.
	Critic       *critique.Guard
	ToppingStage bool
	Logger       *log.Logger
}

// Service owns the live rounds. Every change is persisted to the store
// before the call returns; rounds evicted from the cache are rebuilt from
// their last snapshot on the next request.
type Service struct {
	store     Store
	cache     *RoundCache
	stages    stage.Config
	assembler *game.Assembler
	suggester stage.Suggester
	topping   bool
	logger    *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	loadMu sync.Mutex
}

// NewService returns a service backed by cfg.Store (in-memory when nil).
func NewService(cfg Config) (*Service, error) {
	if cfg.Stages == (stage.Config{}) {
		cfg.Stages = stage.DefaultConfig()
	}
	if err := cfg.Stages.Validate(); err != nil {
		return nil, fmt.Errorf("stages: %w", err)
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[session] ", log.LstdFlags)
	}

	var reviewer game.Reviewer
	suggester := critique.NewGuard(nil, critique.GuardConfig{Logger: cfg.Logger})
	if cfg.Critic != nil {
		reviewer = cfg.Critic
		suggester = cfg.Critic
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		store:     cfg.Store,
		stages:    cfg.Stages,
		assembler: game.NewAssembler(cfg.Engine, reviewer),
		suggester: suggester,
		topping:   cfg.ToppingStage,
		logger:    cfg.Logger,
		ctx:       ctx,
		cancel:    cancel,
	}
	s.cache = NewRoundCache(cfg.CacheSize, func(r *Round) { r.shutdown() })
	return s, nil
}

// Close stops every toaster and waits for background work to finish.
func (s *Service) Close() {
	s.cancel()
	s.cache.Drain()
	s.wg.Wait()
}

// Create starts a new round at START. A nil topping uses the service
// default.
func (s *Service) Create(ctx context.Context, topping *bool) (View, error) {
	enabled := s.topping
	if topping != nil {
		enabled = *topping
	}
	r := s.newRound(uuid.NewString(), game.NewMachine(
		game.WithAssembler(s.assembler),
		game.WithToppingStageIf(enabled),
	))

	r.mu.Lock()
	snap, v := r.snapshotLocked(), r.viewLocked()
	r.mu.Unlock()
	if err := s.store.Save(ctx, snap); err != nil {
		return View{}, fmt.Errorf("saving round: %w", err)
	}
	s.put(r)
	return v, nil
}

// Get returns the current view of a round.
func (s *Service) Get(ctx context.Context, id string) (View, error) {
	r, err := s.lock(ctx, id)
	if err != nil {
		return View{}, err
	}
	defer r.mu.Unlock()
	return r.viewLocked(), nil
}

// Delete forgets a round.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	s.cache.Remove(id)
	return s.store.Delete(ctx, id)
}

// Begin leaves START.
func (s *Service) Begin(ctx context.Context, id string) (View, error) {
	return s.update(ctx, id, func(r *Round) error {
		return r.machine.Begin()
	})
}

// Cut records cuts slices and completes the cutting stage.
func (s *Service) Cut(ctx context.Context, id string, cuts int) (View, error) {
	if cuts < 0 {
		return View{}, fmt.Errorf("cuts must not be negative, got %d: %w", cuts, ErrInvalid)
	}
	return s.update(ctx, id, func(r *Round) error {
		if err := requirePhase(r, game.PhaseCut); err != nil {
			return err
		}
		r.cutter.CutN(cuts)
		return s.complete(r, r.cutter.Finish())
	})
}

// ToastStart turns the toaster on. The stage completes when the player
// stops it or the level reaches the maximum.
func (s *Service) ToastStart(ctx context.Context, id string) (View, error) {
	return s.update(ctx, id, func(r *Round) error {
		if err := requirePhase(r, game.PhaseToast); err != nil {
			return err
		}
		tctx, cancel := context.WithCancel(s.ctx)
		toaster := r.toaster
		if err := toaster.Start(tctx); err != nil {
			cancel()
			return err
		}
		r.toastCancel = cancel
		r.busy.Add(1)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			select {
			case res := <-toaster.Done():
				s.finishToast(r, toaster, res)
			case <-tctx.Done():
			}
		}()
		return nil
	})
}

// ToastStop pops the toast and completes the toasting stage.
func (s *Service) ToastStop(ctx context.Context, id string) (View, error) {
	return s.update(ctx, id, func(r *Round) error {
		if err := requirePhase(r, game.PhaseToast); err != nil {
			return err
		}
		res, err := r.toaster.Stop()
		if err != nil {
			return err
		}
		r.releaseToastLocked()
		return s.complete(r, res)
	})
}

// finishToast completes the stage for a toaster that stopped on its own.
// It is a no-op if the stage was already completed by ToastStop or the
// toaster was replaced.
func (s *Service) finishToast(r *Round, toaster *stage.Toaster, res stage.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.evicted || r.toaster != toaster || r.machine.Phase() != game.PhaseToast {
		return
	}
	r.releaseToastLocked()
	if err := s.complete(r, res); err != nil {
		s.logger.Printf("round %s: completing toast: %v", r.ID, err)
		return
	}
	if err := s.store.Save(s.ctx, r.snapshotLocked()); err != nil {
		s.logger.Printf("round %s: saving: %v", r.ID, err)
	}
}

// Butter spreads butter on cells (row-major indexes) and completes the
// buttering stage.
func (s *Service) Butter(ctx context.Context, id string, cells []int) (View, error) {
	return s.update(ctx, id, func(r *Round) error {
		if err := requirePhase(r, game.PhaseButter); err != nil {
			return err
		}
		n := r.grid.Size() * r.grid.Size()
		for _, c := range cells {
			if c < 0 || c >= n {
				return fmt.Errorf("cell %d: %w: %w", c, ErrInvalid, stage.ErrOutOfBounds)
			}
		}
		for _, c := range cells {
			if _, err := r.grid.SpreadIndex(c); err != nil {
				return err
			}
		}
		return s.complete(r, r.grid.Finish())
	})
}

// SuggestToppings asks the critic for toppings matching preference.
func (s *Service) SuggestToppings(ctx context.Context, id, preference string) (View, error) {
	return s.update(ctx, id, func(r *Round) error {
		if err := requirePhase(r, game.PhaseTopping); err != nil {
			return err
		}
		if _, err := r.topping.Suggest(ctx, preference); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		return nil
	})
}

// ChooseTopping completes the topping stage with suggestion choice.
func (s *Service) ChooseTopping(ctx context.Context, id string, choice int) (View, error) {
	return s.update(ctx, id, func(r *Round) error {
		if err := requirePhase(r, game.PhaseTopping); err != nil {
			return err
		}
		res, err := r.topping.Choose(choice)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		return s.complete(r, res)
	})
}

// CustomTopping completes the topping stage with a typed topping.
func (s *Service) CustomTopping(ctx context.Context, id, name string) (View, error) {
	return s.update(ctx, id, func(r *Round) error {
		if err := requirePhase(r, game.PhaseTopping); err != nil {
			return err
		}
		res, err := r.topping.Custom(name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		return s.complete(r, res)
	})
}

// Verdict returns the verdict of a finished round.
func (s *Service) Verdict(ctx context.Context, id string) (scoring.Verdict, error) {
	r, err := s.lock(ctx, id)
	if err != nil {
		return scoring.Verdict{}, err
	}
	defer r.mu.Unlock()
	return r.machine.Verdict()
}

// Restart sends a finished round back to START with fresh stages.
func (s *Service) Restart(ctx context.Context, id string) (View, error) {
	return s.update(ctx, id, func(r *Round) error {
		if err := r.machine.Restart(); err != nil {
			return err
		}
		r.resetStages(s.stages, s.suggester)
		return nil
	})
}

// update runs fn on the round under its lock and persists the result.
func (s *Service) update(ctx context.Context, id string, fn func(*Round) error) (View, error) {
	r, err := s.lock(ctx, id)
	if err != nil {
		return View{}, err
	}
	defer r.mu.Unlock()

	if err := fn(r); err != nil {
		return View{}, err
	}
	if err := s.store.Save(ctx, r.snapshotLocked()); err != nil {
		return View{}, fmt.Errorf("saving round: %w", err)
	}
	return r.viewLocked(), nil
}

// complete hands a stage result to the machine. Reaching RESULT starts
// enrichment. Caller holds r.mu.
func (s *Service) complete(r *Round, res stage.Result) error {
	if err := r.machine.Complete(res); err != nil {
		return err
	}
	if r.machine.Phase() == game.PhaseResult {
		s.enrich(r)
	}
	return nil
}

func (s *Service) enrich(r *Round) {
	ch := s.assembler.Enrich(s.ctx, r.machine)
	r.busy.Add(1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer r.busy.Add(-1)
		if _, ok := <-ch; !ok {
			return
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.evicted {
			return
		}
		if err := s.store.Save(s.ctx, r.snapshotLocked()); err != nil {
			s.logger.Printf("round %s: saving critique: %v", r.ID, err)
		}
	}()
}

// round returns the live round for id, rebuilding it from the store on a
// cache miss.
func (s *Service) round(ctx context.Context, id string) (*Round, error) {
	if r := s.cache.Get(id); r != nil {
		return r, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if r := s.cache.Get(id); r != nil {
		return r, nil
	}

	snap, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	r, err := s.restore(snap)
	if err != nil {
		return nil, fmt.Errorf("restoring round %s: %w", id, err)
	}
	s.cache.Put(r)
	return r, nil
}

// lock returns the live round for id with r.mu held. A round evicted while
// the caller waited for its lock is looked up again.
func (s *Service) lock(ctx context.Context, id string) (*Round, error) {
	for {
		r, err := s.round(ctx, id)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		if !r.evicted {
			return r, nil
		}
		r.mu.Unlock()
	}
}

// put caches r. Evictions run under loadMu so a round is never rebuilt
// from the store while its evicted copy may still be writing.
func (s *Service) put(r *Round) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	s.cache.Put(r)
}

func (s *Service) restore(snap Snapshot) (*Round, error) {
	m, err := game.Restore(snap.Game, game.WithAssembler(s.assembler))
	if err != nil {
		return nil, err
	}
	r := s.newRound(snap.ID, m)
	r.cutter.CutN(snap.Cuts)
	for i, b := range snap.Butter {
		if !b {
			continue
		}
		if _, err := r.grid.SpreadIndex(i); err != nil {
			s.logger.Printf("round %s: dropping butter cell %d: %v", snap.ID, i, err)
		}
	}
	r.topping = stage.RestoreToppingStation(s.suggester, snap.Preference, snap.Suggestions)
	return r, nil
}

func (s *Service) newRound(id string, m *game.Machine) *Round {
	r := &Round{ID: id, machine: m}
	r.resetStages(s.stages, s.suggester)
	return r
}

func requirePhase(r *Round, want game.Phase) error {
	if got := r.machine.Phase(); got != want {
		return fmt.Errorf("round is in %s, not %s: %w", got, want, game.ErrWrongPhase)
	}
	return nil
}
