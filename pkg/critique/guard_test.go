package critique

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/toastmaster/toastmaster/pkg/scoring"
)

type fakeProvider struct {
	names    []string
	feedback Feedback
	err      error
	block    bool
}

func (f *fakeProvider) SuggestToppings(ctx context.Context, _ string) ([]string, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.names, f.err
}

func (f *fakeProvider) Critique(ctx context.Context, _ scoring.GameStats) (Feedback, error) {
	if f.block {
		<-ctx.Done()
		return Feedback{}, ctx.Err()
	}
	return f.feedback, f.err
}

type memRecorder struct {
	mu        sync.Mutex
	exchanges []Exchange
	err       error
}

func (m *memRecorder) Record(_ context.Context, ex Exchange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exchanges = append(m.exchanges, ex)
	return m.err
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestGuardPassesThroughGoodAnswers(t *testing.T) {
	p := &fakeProvider{
		names:    []string{"Kaya Jam", "Pesto", "Nutella"},
		feedback: Feedback{Score: 9, Comment: "Superb."},
	}
	g := NewGuard(p, GuardConfig{Logger: quietLogger()})

	names, fallback := g.Suggest(context.Background(), "sweet")
	if fallback || !reflect.DeepEqual(names, p.names) {
		t.Errorf("Suggest() = %v, %v", names, fallback)
	}

	a := g.Review(context.Background(), scoring.GameStats{ToastLevel: 50})
	if a.Fallback || a.Score != 9 || a.Comment != "Superb." {
		t.Errorf("Review() = %+v", a)
	}
}

func TestGuardFallsBack(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
	}{
		{"nil provider", nil},
		{"transport error", &fakeProvider{err: &HTTPError{StatusCode: 500}}},
		{"two toppings and no comment", &fakeProvider{names: []string{"Jam", "Honey"}, feedback: Feedback{Score: 7}}},
		{"duplicates and bad score", &fakeProvider{names: []string{"Jam", "jam", "Honey"}, feedback: Feedback{Score: 0, Comment: "hm"}}},
		{"long name", &fakeProvider{names: []string{"a b c d e", "Jam", "Honey"}, feedback: Feedback{Score: 11, Comment: "hm"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			g := NewGuard(tc.provider, GuardConfig{Logger: log.New(&buf, "", 0)})

			names, err := g.SuggestToppings(context.Background(), "sweet")
			if err != nil {
				t.Fatalf("SuggestToppings() error: %v", err)
			}
			if !reflect.DeepEqual(names, FallbackToppings()) {
				t.Errorf("SuggestToppings() = %v, want fallback", names)
			}

			a := g.Review(context.Background(), scoring.GameStats{})
			if !a.Fallback || a.Score != FallbackScore || a.Comment != FallbackComment {
				t.Errorf("Review() = %+v, want fallback", a)
			}
			if !strings.Contains(buf.String(), "using fallback") {
				t.Errorf("expected failure to be logged, got %q", buf.String())
			}
		})
	}
}

func TestGuardTimesOut(t *testing.T) {
	g := NewGuard(&fakeProvider{block: true}, GuardConfig{Timeout: 20 * time.Millisecond, Logger: quietLogger()})

	start := time.Now()
	fb, err := g.Critique(context.Background(), scoring.GameStats{})
	if err != nil {
		t.Fatalf("Critique() error: %v", err)
	}
	if fb != FallbackFeedback() {
		t.Errorf("Critique() = %+v, want fallback", fb)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("guard blocked for %s", elapsed)
	}
}

func TestGuardRecordsExchanges(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	var buf bytes.Buffer
	g := NewGuard(&fakeProvider{err: errors.New("offline")}, GuardConfig{Logger: log.New(&buf, "", 0), Recorder: rec})

	g.Suggest(context.Background(), "savory")
	g.Review(context.Background(), scoring.GameStats{ToastLevel: 10})

	if len(rec.exchanges) != 2 {
		t.Fatalf("expected 2 exchanges, got %d", len(rec.exchanges))
	}
	first := rec.exchanges[0]
	if first.Kind != KindToppings || !first.Fallback || first.Error != "offline" || first.ID == "" {
		t.Errorf("unexpected toppings exchange: %+v", first)
	}
	if rec.exchanges[1].Kind != KindCritique {
		t.Errorf("expected critique exchange, got %s", rec.exchanges[1].Kind)
	}
	if !strings.Contains(buf.String(), "disk full") {
		t.Errorf("expected recorder failure to be logged, got %q", buf.String())
	}
}

func TestFallbackToppingsIsFresh(t *testing.T) {
	a := FallbackToppings()
	a[0] = "Mustard"
	if FallbackToppings()[0] != "Strawberry Jam" {
		t.Error("FallbackToppings shares its backing array")
	}
}

func TestFeedbackAdvisory(t *testing.T) {
	a := Feedback{Score: 4, Comment: "Meh."}.Advisory(true)
	if a != (scoring.Advisory{Score: 4, Comment: "Meh.", Fallback: true}) {
		t.Errorf("Advisory() = %+v", a)
	}
}
