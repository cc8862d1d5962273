package critique

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/toastmaster/toastmaster/pkg/scoring"
)

// DefaultTimeout bounds a single guarded collaborator call.
const DefaultTimeout = 8 * time.Second

// Exchange kinds.
const (
	KindToppings = "toppings"
	KindCritique = "critique"
)

// Exchange is one guarded call, as handed to a Recorder.
type Exchange struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Request    any       `json:"request"`
	Response   any       `json:"response"`
	Fallback   bool      `json:"fallback"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

// Recorder stores exchanges for later review.
type Recorder interface {
	Record(ctx context.Context, ex Exchange) error
}

// GuardConfig configures a Guard.
type GuardConfig struct {
	// Timeout bounds each call. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Logger receives failures. Defaults to stderr with a [critique] prefix.
	Logger *log.Logger
	// Recorder, if set, receives every exchange.
	Recorder Recorder
}

// Guard wraps a Provider so that every call returns promptly with a usable
// answer. Failures are logged and replaced with fallbacks; they never reach
// the caller as errors.
type Guard struct {
	provider Provider
	timeout  time.Duration
	logger   *log.Logger
	recorder Recorder
}

// NewGuard wraps p. A nil p always falls back.
func NewGuard(p Provider, cfg GuardConfig) *Guard {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[critique] ", log.LstdFlags)
	}
	return &Guard{provider: p, timeout: cfg.Timeout, logger: cfg.Logger, recorder: cfg.Recorder}
}

var errNoProvider = errors.New("no provider configured")

// SuggestToppings returns the provider's suggestions, or the fallback
// triple on any failure. The error is always nil.
func (g *Guard) SuggestToppings(ctx context.Context, preference string) ([]string, error) {
	names, _ := g.Suggest(ctx, preference)
	return names, nil
}

// Suggest is SuggestToppings that also reports whether the fallback was
// used.
func (g *Guard) Suggest(ctx context.Context, preference string) ([]string, bool) {
	start := time.Now()
	names, err := g.suggest(ctx, preference)
	fallback := err != nil
	if fallback {
		g.logger.Printf("suggest toppings for %q failed, using fallback: %v", preference, err)
		names = FallbackToppings()
	}
	g.record(ctx, KindToppings, map[string]string{"preference": preference}, names, fallback, err, start)
	return names, fallback
}

func (g *Guard) suggest(ctx context.Context, preference string) ([]string, error) {
	if g.provider == nil {
		return nil, errNoProvider
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	names, err := g.provider.SuggestToppings(ctx, preference)
	if err != nil {
		return nil, err
	}
	return NormalizeToppings(names)
}

// Critique satisfies Provider. The error is always nil.
func (g *Guard) Critique(ctx context.Context, stats scoring.GameStats) (Feedback, error) {
	a := g.Review(ctx, stats)
	return Feedback{Score: a.Score, Comment: a.Comment}, nil
}

// Review fetches a critique for stats and returns it as a verdict
// advisory. On failure the advisory carries the fallback feedback and
// Fallback is set.
func (g *Guard) Review(ctx context.Context, stats scoring.GameStats) scoring.Advisory {
	start := time.Now()
	fb, err := g.critique(ctx, stats)
	fallback := err != nil
	if fallback {
		g.logger.Printf("critique failed, using fallback: %v", err)
		fb = FallbackFeedback()
	}
	g.record(ctx, KindCritique, stats, fb, fallback, err, start)
	return fb.Advisory(fallback)
}

func (g *Guard) critique(ctx context.Context, stats scoring.GameStats) (Feedback, error) {
	if g.provider == nil {
		return Feedback{}, errNoProvider
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	fb, err := g.provider.Critique(ctx, stats)
	if err != nil {
		return Feedback{}, err
	}
	return normalizeFeedback(float64(fb.Score), fb.Comment)
}

func (g *Guard) record(ctx context.Context, kind string, req, resp any, fallback bool, err error, start time.Time) {
	if g.recorder == nil {
		return
	}
	ex := Exchange{
		ID:         uuid.NewString(),
		Kind:       kind,
		Request:    req,
		Response:   resp,
		Fallback:   fallback,
		StartedAt:  start.UTC(),
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		ex.Error = err.Error()
	}
	// The caller's context may already be done; recording is best effort
	// and gets its own deadline.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
	defer cancel()
	if rerr := g.recorder.Record(rctx, ex); rerr != nil {
		g.logger.Printf("record %s exchange %s: %v", kind, ex.ID, rerr)
	}
}
