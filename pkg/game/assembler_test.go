package game

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/toastmaster/toastmaster/pkg/critique"
	"github.com/toastmaster/toastmaster/pkg/scoring"
)

type fixedReviewer struct {
	advisory scoring.Advisory
	release  chan struct{}
}

func (f *fixedReviewer) Review(_ context.Context, _ scoring.GameStats) scoring.Advisory {
	if f.release != nil {
		<-f.release
	}
	return f.advisory
}

type failingProvider struct{}

func (failingProvider) SuggestToppings(context.Context, string) ([]string, error) {
	return nil, errors.New("connection refused")
}

func (failingProvider) Critique(context.Context, scoring.GameStats) (critique.Feedback, error) {
	return critique.Feedback{}, errors.New("connection refused")
}

func receive(t *testing.T, ch <-chan scoring.Verdict) (scoring.Verdict, bool) {
	t.Helper()
	select {
	case v, ok := <-ch:
		return v, ok
	case <-time.After(5 * time.Second):
		t.Fatal("enrichment never finished")
	}
	return scoring.Verdict{}, false
}

func TestAssemblerEnrich(t *testing.T) {
	a := NewAssembler(nil, &fixedReviewer{advisory: scoring.Advisory{Score: 2, Comment: "Bland."}})
	m := NewMachine(WithAssembler(a))
	playThrough(t, m, 100, 50, 100)

	v, ok := receive(t, a.Enrich(context.Background(), m))
	if !ok {
		t.Fatal("expected an enriched verdict")
	}
	if v.Comment != "Bland." || v.FinalScore != 10 {
		t.Errorf("enriched verdict: comment=%q score=%d", v.Comment, v.FinalScore)
	}
	stored, _ := m.Verdict()
	if stored.Critique == nil || stored.Critique.Score != 2 {
		t.Errorf("machine verdict not enriched: %+v", stored.Critique)
	}
}

func TestAssemblerDiscardsStaleCritique(t *testing.T) {
	rev := &fixedReviewer{advisory: scoring.Advisory{Score: 9, Comment: "Late."}, release: make(chan struct{})}
	a := NewAssembler(nil, rev)
	m := NewMachine(WithAssembler(a))
	playThrough(t, m, 100, 50, 100)

	ch := a.Enrich(context.Background(), m)
	if err := m.Restart(); err != nil {
		t.Fatalf("Restart() error: %v", err)
	}
	playThrough(t, m, 100, 20, 100)
	close(rev.release)

	if _, ok := receive(t, ch); ok {
		t.Error("stale critique was delivered")
	}
	v, _ := m.Verdict()
	if v.Critique != nil || v.Comment == "Late." {
		t.Errorf("stale critique reached the new round: %+v", v)
	}
}

func TestAssemblerEnrichOutsideResult(t *testing.T) {
	a := NewAssembler(nil, &fixedReviewer{})
	m := NewMachine(WithAssembler(a))
	if _, ok := receive(t, a.Enrich(context.Background(), m)); ok {
		t.Error("enrichment before RESULT produced a verdict")
	}

	plain := NewAssembler(nil, nil)
	m = NewMachine(WithAssembler(plain))
	playThrough(t, m, 100, 50, 100)
	if _, ok := receive(t, plain.Enrich(context.Background(), m)); ok {
		t.Error("assembler without reviewer produced a verdict")
	}
}

func TestCollaboratorFailureDoesNotBlockRound(t *testing.T) {
	guard := critique.NewGuard(failingProvider{}, critique.GuardConfig{
		Timeout: 50 * time.Millisecond,
		Logger:  log.New(io.Discard, "", 0),
	})
	a := NewAssembler(nil, guard)
	m := NewMachine(WithAssembler(a))
	playThrough(t, m, 100, 90, 100)

	before, err := m.Verdict()
	if err != nil {
		t.Fatalf("Verdict() error: %v", err)
	}

	v, ok := receive(t, a.Enrich(context.Background(), m))
	if !ok {
		t.Fatal("expected a fallback-enriched verdict")
	}
	if v.Critique == nil || !v.Critique.Fallback || v.Critique.Comment != critique.FallbackComment {
		t.Errorf("expected fallback advisory, got %+v", v.Critique)
	}
	if v.FinalScore != before.FinalScore || v.Comment != before.Comment {
		t.Errorf("fallback changed the verdict: %d/%q -> %d/%q", before.FinalScore, before.Comment, v.FinalScore, v.Comment)
	}
	if err := m.Restart(); err != nil {
		t.Errorf("Restart() after failed critique: %v", err)
	}
}
