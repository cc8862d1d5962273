package scoring

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Metric is the interface that all stage metrics implement.
type Metric interface {
	// Key returns the machine-readable metric identifier.
	Key() string
	// Name returns the human-readable stage name.
	Name() string
	// Evaluate normalizes the stage's stat into a weighted 0-100 sub-score.
	Evaluate(stats GameStats) MetricResult
}

// Engine runs the stage metrics and the critical-failure rules against a
// round's stats. An Engine is immutable and safe for concurrent use.
type Engine struct {
	cfg     Config
	metrics []Metric
}

// NewEngine creates a scoring engine for the given configuration.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	return &Engine{cfg: cfg, metrics: MetricsFor(cfg)}, nil
}

var canonical = &Engine{cfg: Defaults(), metrics: DefaultMetrics()}

// DefaultEngine returns the engine for the canonical configuration.
func DefaultEngine() *Engine { return canonical }

// ComputeVerdict scores stats with the canonical configuration.
func ComputeVerdict(stats GameStats) Verdict {
	return canonical.ComputeVerdict(stats)
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// ComputeVerdict evaluates all metrics and rules and produces a Verdict.
// It is a pure function of stats.
func (e *Engine) ComputeVerdict(stats GameStats) Verdict {
	clamped := GameStats{
		SliceQuality:   clampStat(stats.SliceQuality),
		ToastLevel:     clampStat(stats.ToastLevel),
		ButterCoverage: clampStat(stats.ButterCoverage),
		Topping:        stats.Topping,
	}

	v := Verdict{
		Weights:       e.cfg.Weights,
		Stats:         clamped,
		Status:        StatusWellDone,
		CommentSource: CommentLocal,
	}

	weighted := decimal.Zero
	for _, m := range e.metrics {
		mr := m.Evaluate(clamped)
		c := decimal.NewFromInt(int64(mr.Score)).Mul(decimal.NewFromFloat(mr.Weight))
		mr.Contribution = c.InexactFloat64()
		weighted = weighted.Add(c)
		v.Breakdown = append(v.Breakdown, mr)

		switch mr.Key {
		case "slice":
			v.Scores.Slice = mr.Score
		case "toast":
			v.Scores.Toast = mr.Score
		case "butter":
			v.Scores.Butter = mr.Score
		}
	}

	v.Weighted = weighted.InexactFloat64()
	v.FinalScore = rank(weighted)

	f, ok := e.firstFinding(clamped)
	if !ok {
		v.Comment = BandComment(v.FinalScore)
		return v
	}
	v.Comment = f.comment
	if f.caps {
		v.Capped = true
		v.CapReason = f.reason
		v.Status = f.status
		if v.FinalScore > e.cfg.Thresholds.CriticalCap {
			v.FinalScore = e.cfg.Thresholds.CriticalCap
		}
	}
	return v
}

// RankFromWeighted converts a 0-100 weighted score into the 1-10 rank
// before any critical cap.
func RankFromWeighted(weighted float64) int {
	return rank(decimal.NewFromFloat(weighted))
}

// rank is round(weighted/10) half-up, clamped to 0-10 and floored at 1.
func rank(weighted decimal.Decimal) int {
	raw := weighted.Div(decimal.NewFromInt(10)).Round(0).IntPart()
	if raw > MaxFinalScore {
		raw = MaxFinalScore
	}
	if raw < MinFinalScore {
		raw = MinFinalScore
	}
	return int(raw)
}
