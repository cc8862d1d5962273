package session

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/toastmaster/toastmaster/pkg/critique"
	"github.com/toastmaster/toastmaster/pkg/game"
	"github.com/toastmaster/toastmaster/pkg/scoring"
	"github.com/toastmaster/toastmaster/pkg/stage"
)

var quiet = log.New(io.Discard, "", 0)

func newTestService(t *testing.T, mutate func(*Config)) *Service {
	t.Helper()
	stages := stage.DefaultConfig()
	stages.ToastTick = time.Hour
	cfg := Config{Stages: stages, Logger: quiet}
	if mutate != nil {
		mutate(&cfg)
	}
	svc, err := NewService(cfg)
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc
}

func allCells(n int) []int {
	cells := make([]int, n)
	for i := range cells {
		cells[i] = i
	}
	return cells
}

// must wraps a service call returning (View, error):
// must(t)(svc.Begin(ctx, id)).
func must(t *testing.T) func(View, error) View {
	t.Helper()
	return func(v View, err error) View {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return v
	}
}

func TestServiceFullRound(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	v := must(t)(svc.Create(ctx, nil))
	if v.Phase != game.PhaseStart || v.ID == "" {
		t.Fatalf("new round = %+v", v)
	}
	id := v.ID

	must(t)(svc.Begin(ctx, id))
	v = must(t)(svc.Cut(ctx, id, 10))
	if v.Phase != game.PhaseToast || v.Stats.SliceQuality != 100 {
		t.Fatalf("after cut: %+v", v)
	}

	v = must(t)(svc.ToastStart(ctx, id))
	if !v.Toasting {
		t.Error("expected toaster to be running")
	}
	v = must(t)(svc.ToastStop(ctx, id))
	if v.Phase != game.PhaseButter || v.Stats.ToastLevel != 0 {
		t.Fatalf("after toast: %+v", v)
	}

	v = must(t)(svc.Butter(ctx, id, allCells(25)))
	if v.Phase != game.PhaseResult || v.Coverage != 100 {
		t.Fatalf("after butter: %+v", v)
	}

	verdict, err := svc.Verdict(ctx, id)
	if err != nil {
		t.Fatalf("Verdict() error: %v", err)
	}
	if !verdict.Capped || verdict.FinalScore != 3 || verdict.CapReason != scoring.CapReasonRaw {
		t.Errorf("raw round verdict = %+v", verdict)
	}
}

func TestServiceToastStopsItself(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, func(c *Config) { c.Stages.ToastTick = time.Millisecond })

	id := must(t)(svc.Create(ctx, nil)).ID
	must(t)(svc.Begin(ctx, id))
	must(t)(svc.Cut(ctx, id, 10))
	must(t)(svc.ToastStart(ctx, id))

	if _, err := svc.ToastStart(ctx, id); !errors.Is(err, stage.ErrAlreadyToasting) {
		t.Errorf("second ToastStart error = %v, want ErrAlreadyToasting", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		v := must(t)(svc.Get(ctx, id))
		if v.Phase == game.PhaseButter {
			if v.Stats.ToastLevel != stage.MaxToastLevel {
				t.Errorf("toast level = %d, want %d", v.Stats.ToastLevel, stage.MaxToastLevel)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("toast never finished, phase %s level %d", v.Phase, v.ToastLevel)
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := svc.ToastStop(ctx, id); !errors.Is(err, game.ErrWrongPhase) {
		t.Errorf("ToastStop after finish error = %v, want ErrWrongPhase", err)
	}
}

func TestServiceRejectsMisuse(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	id := must(t)(svc.Create(ctx, nil)).ID

	if _, err := svc.Cut(ctx, id, 5); !errors.Is(err, game.ErrWrongPhase) {
		t.Errorf("Cut before Begin error = %v", err)
	}
	if _, err := svc.Verdict(ctx, id); !errors.Is(err, game.ErrNoVerdict) {
		t.Errorf("Verdict before RESULT error = %v", err)
	}
	if _, err := svc.Restart(ctx, id); !errors.Is(err, game.ErrWrongPhase) {
		t.Errorf("Restart at START error = %v", err)
	}

	must(t)(svc.Begin(ctx, id))
	if _, err := svc.Cut(ctx, id, -1); !errors.Is(err, ErrInvalid) {
		t.Errorf("negative cuts error = %v", err)
	}
	if _, err := svc.ToastStop(ctx, id); !errors.Is(err, game.ErrWrongPhase) {
		t.Errorf("ToastStop in CUT error = %v", err)
	}

	must(t)(svc.Cut(ctx, id, 3))
	if _, err := svc.ToastStop(ctx, id); !errors.Is(err, stage.ErrNotToasting) {
		t.Errorf("ToastStop before start error = %v", err)
	}
	must(t)(svc.ToastStart(ctx, id))
	must(t)(svc.ToastStop(ctx, id))

	if _, err := svc.Butter(ctx, id, []int{0, 99}); !errors.Is(err, ErrInvalid) {
		t.Errorf("out of bounds cell error = %v", err)
	}
	if _, err := svc.SuggestToppings(ctx, id, "Sweet"); !errors.Is(err, game.ErrWrongPhase) {
		t.Errorf("suggest without topping stage error = %v", err)
	}

	if _, err := svc.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown round error = %v", err)
	}
}

func TestServiceToppingStage(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	on := true
	v := must(t)(svc.Create(ctx, &on))
	if !v.ToppingStage {
		t.Fatal("expected topping stage to be enabled")
	}
	id := v.ID
	must(t)(svc.Begin(ctx, id))
	must(t)(svc.Cut(ctx, id, 10))
	must(t)(svc.ToastStart(ctx, id))
	must(t)(svc.ToastStop(ctx, id))
	v = must(t)(svc.Butter(ctx, id, []int{0}))
	if v.Phase != game.PhaseTopping {
		t.Fatalf("phase = %s, want TOPPING", v.Phase)
	}
	if len(v.QuickPicks) != len(stage.QuickPicks) {
		t.Errorf("quick picks = %v", v.QuickPicks)
	}

	if _, err := svc.SuggestToppings(ctx, id, "   "); !errors.Is(err, ErrInvalid) {
		t.Errorf("blank preference error = %v", err)
	}
	if _, err := svc.ChooseTopping(ctx, id, 0); !errors.Is(err, ErrInvalid) {
		t.Errorf("choose before suggest error = %v", err)
	}

	v = must(t)(svc.SuggestToppings(ctx, id, "Sweet"))
	want := critique.FallbackToppings()
	if len(v.Suggestions) != len(want) || v.Suggestions[0] != want[0] {
		t.Fatalf("suggestions = %v, want fallback %v", v.Suggestions, want)
	}
	if v.Preference != "Sweet" || len(v.QuickPicks) != 0 {
		t.Errorf("view after suggest = %+v", v)
	}

	v = must(t)(svc.ChooseTopping(ctx, id, 1))
	if v.Phase != game.PhaseResult || v.Stats.Topping != want[1] {
		t.Errorf("after choose: %+v", v)
	}
}

func TestServiceCustomTopping(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, func(c *Config) { c.ToppingStage = true })

	id := must(t)(svc.Create(ctx, nil)).ID
	must(t)(svc.Begin(ctx, id))
	must(t)(svc.Cut(ctx, id, 10))
	must(t)(svc.ToastStart(ctx, id))
	must(t)(svc.ToastStop(ctx, id))
	must(t)(svc.Butter(ctx, id, nil))

	if _, err := svc.CustomTopping(ctx, id, ""); !errors.Is(err, ErrInvalid) {
		t.Errorf("empty custom topping error = %v", err)
	}
	v := must(t)(svc.CustomTopping(ctx, id, "  Peanut Butter "))
	if v.Stats.Topping != "Peanut Butter" {
		t.Errorf("topping = %q", v.Stats.Topping)
	}
	verdict, err := svc.Verdict(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if verdict.Stats.Topping != "Peanut Butter" {
		t.Errorf("verdict topping = %q", verdict.Stats.Topping)
	}
}

func TestServiceRestart(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	id := must(t)(svc.Create(ctx, nil)).ID
	must(t)(svc.Begin(ctx, id))
	must(t)(svc.Cut(ctx, id, 10))
	must(t)(svc.ToastStart(ctx, id))
	must(t)(svc.ToastStop(ctx, id))
	must(t)(svc.Butter(ctx, id, []int{1, 2, 3}))

	v := must(t)(svc.Restart(ctx, id))
	if v.Phase != game.PhaseStart || v.Generation != 1 {
		t.Fatalf("after restart: %+v", v)
	}
	if v.Cuts != 0 || v.Coverage != 0 || v.ToastLevel != 0 || v.Verdict != nil {
		t.Errorf("stages not reset: %+v", v)
	}
	if v.Stats != (scoring.GameStats{}) {
		t.Errorf("stats not reset: %+v", v.Stats)
	}

	must(t)(svc.Begin(ctx, id))
	must(t)(svc.Cut(ctx, id, 10))
	if _, err := svc.ToastStart(ctx, id); err != nil {
		t.Errorf("toasting after restart: %v", err)
	}
}

func TestServiceRebuildsEvictedRound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := newTestService(t, func(c *Config) {
		c.Store = store
		c.CacheSize = 1
	})

	a := must(t)(svc.Create(ctx, nil)).ID
	must(t)(svc.Begin(ctx, a))
	must(t)(svc.Cut(ctx, a, 12))

	b := must(t)(svc.Create(ctx, nil)).ID
	if svc.cache.Get(a) != nil {
		t.Fatal("expected round a to be evicted")
	}
	if store.Len() != 2 {
		t.Errorf("store holds %d rounds, want 2", store.Len())
	}

	v := must(t)(svc.Get(ctx, a))
	if v.Phase != game.PhaseToast || v.Cuts != 12 || v.Stats.SliceQuality != 70 {
		t.Errorf("rebuilt round = %+v", v)
	}
	must(t)(svc.ToastStart(ctx, a))
	must(t)(svc.ToastStop(ctx, a))

	if err := svc.Delete(ctx, b); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := svc.Get(ctx, b); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted round error = %v", err)
	}
}

func TestServiceCutHugeCount(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	id := must(t)(svc.Create(ctx, nil)).ID
	must(t)(svc.Begin(ctx, id))
	v := must(t)(svc.Cut(ctx, id, 8608480567731124098))
	if v.Phase != game.PhaseToast || v.Stats.SliceQuality != 0 {
		t.Errorf("after huge cut: phase %s slice quality %d, want TOAST 0", v.Phase, v.Stats.SliceQuality)
	}
}

func TestServiceKeepsToastingRoundCached(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, func(c *Config) { c.CacheSize = 1 })

	a := must(t)(svc.Create(ctx, nil)).ID
	must(t)(svc.Begin(ctx, a))
	must(t)(svc.Cut(ctx, a, 10))
	must(t)(svc.ToastStart(ctx, a))

	b := must(t)(svc.Create(ctx, nil)).ID
	if svc.cache.Get(a) == nil {
		t.Fatal("toasting round was evicted")
	}
	if svc.cache.Get(b) == nil {
		t.Fatal("new round was not cached")
	}

	v := must(t)(svc.Get(ctx, a))
	if !v.Toasting {
		t.Fatalf("round stopped toasting: %+v", v)
	}
	v = must(t)(svc.ToastStop(ctx, a))
	if v.Phase != game.PhaseButter {
		t.Errorf("after stop: phase %s, want BUTTER", v.Phase)
	}

	// Idle again, so the next round pushes it out.
	must(t)(svc.Create(ctx, nil))
	if svc.cache.Get(a) != nil {
		t.Error("idle round stayed cached past capacity")
	}
	v = must(t)(svc.Get(ctx, a))
	if v.Phase != game.PhaseButter {
		t.Errorf("rebuilt round phase %s, want BUTTER", v.Phase)
	}
}

func TestServiceEvictedRoundIsLookedUpAgain(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, func(c *Config) { c.CacheSize = 1 })

	a := must(t)(svc.Create(ctx, nil)).ID
	stale := svc.cache.Get(a)
	must(t)(svc.Create(ctx, nil))

	stale.mu.Lock()
	evicted := stale.evicted
	stale.mu.Unlock()
	if !evicted {
		t.Fatal("evicted round not marked")
	}

	must(t)(svc.Begin(ctx, a))
	fresh := svc.cache.Get(a)
	if fresh == nil || fresh == stale {
		t.Fatal("expected a rebuilt round in the cache")
	}
	if stale.machine.Phase() != game.PhaseStart {
		t.Error("update reached the evicted copy")
	}
	if v := must(t)(svc.Get(ctx, a)); v.Phase != game.PhaseCut {
		t.Errorf("phase = %s, want CUT", v.Phase)
	}
}

func TestServiceEnrichesVerdict(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	critic := critique.NewGuard(critique.NewLocal(nil), critique.GuardConfig{Logger: quiet})
	svc := newTestService(t, func(c *Config) {
		c.Store = store
		c.Critic = critic
	})

	id := must(t)(svc.Create(ctx, nil)).ID
	must(t)(svc.Begin(ctx, id))
	must(t)(svc.Cut(ctx, id, 10))
	must(t)(svc.ToastStart(ctx, id))
	must(t)(svc.ToastStop(ctx, id))
	must(t)(svc.Butter(ctx, id, allCells(25)))

	deadline := time.Now().Add(5 * time.Second)
	for {
		v, err := svc.Verdict(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if v.Critique != nil {
			if v.Critique.Fallback {
				t.Errorf("local critic fell back: %+v", v.Critique)
			}
			if v.CommentSource != scoring.CommentCritic {
				t.Errorf("comment source = %s, want critic", v.CommentSource)
			}
			if v.FinalScore != 3 {
				t.Errorf("critique changed the score to %d", v.FinalScore)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("critique never arrived")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// The enriched verdict reaches the store.
	deadline = time.Now().Add(5 * time.Second)
	for {
		snap, err := store.Load(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if snap.Game.Verdict != nil && snap.Game.Verdict.Critique != nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("enriched verdict never persisted")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewServiceRejectsBadStages(t *testing.T) {
	_, err := NewService(Config{Stages: stage.Config{IdealCuts: 10, CutPenalty: 15, ToastTick: time.Second, GridSize: 99}})
	if err == nil {
		t.Fatal("expected grid size error")
	}
}
