package scoring

import (
	"fmt"
	"math"
)

// Canonical configuration. Toasting dominates: it is timed and cannot be
// undone, while slicing is forgiving and buttering only takes patience.
const (
	DefaultSliceWeight  = 0.2
	DefaultToastWeight  = 0.5
	DefaultButterWeight = 0.3

	IdealToastLevel    = 50
	ToastSlope         = 2  // sub-score points lost per unit away from ideal
	RawToastBelow      = 30 // toast level strictly below this is raw
	BurntToastAbove    = 80 // toast level strictly above this is burnt
	ScorchedToastAbove = 70 // critic prompt calls the toast burnt above this
	DryButterBelow     = 20 // coverage strictly below this is dry
	CriticalCap        = 3  // highest rank a raw or burnt round can show

	MinFinalScore = 1
	MaxFinalScore = 10
	MaxStat       = 100

	// WeightTolerance is the allowed drift of the weight sum from 1.0.
	WeightTolerance = 0.001
)

// Cap reasons reported on the verdict.
const (
	CapReasonRaw   = "Raw toast capped your score!"
	CapReasonBurnt = "Burnt toast capped your score!"
)

// Weights defines the relative importance of each stage.
// All weights must sum to 1.0 (±WeightTolerance).
type Weights struct {
	Slice  float64 `json:"slice"`
	Toast  float64 `json:"toast"`
	Butter float64 `json:"butter"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Slice + w.Toast + w.Butter
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{"slice": w.Slice, "toast": w.Toast, "butter": w.Butter} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("negative %s weight: %f", name, v)
		}
	}
	if math.Abs(w.Sum()-1.0) > WeightTolerance {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	return nil
}

// Thresholds holds the doneness and coverage limits used by the rules.
type Thresholds struct {
	IdealToast  int `json:"ideal_toast"`
	ToastSlope  int `json:"toast_slope"`
	RawBelow    int `json:"raw_below"`
	BurntAbove  int `json:"burnt_above"`
	DryBelow    int `json:"dry_below"`
	CriticalCap int `json:"critical_cap"`
	// ScorchedAbove only labels the toast for the critic prompt.
	ScorchedAbove int `json:"scorched_above"`
}

// Validate checks the thresholds describe a usable doneness scale.
func (t Thresholds) Validate() error {
	for name, v := range map[string]int{
		"ideal_toast":    t.IdealToast,
		"raw_below":      t.RawBelow,
		"burnt_above":    t.BurntAbove,
		"dry_below":      t.DryBelow,
		"scorched_above": t.ScorchedAbove,
	} {
		if v < 0 || v > MaxStat {
			return fmt.Errorf("%s must be within 0-%d, got %d", name, MaxStat, v)
		}
	}
	if !(t.RawBelow <= t.IdealToast && t.IdealToast <= t.BurntAbove) {
		return fmt.Errorf("thresholds out of order: raw_below=%d ideal=%d burnt_above=%d",
			t.RawBelow, t.IdealToast, t.BurntAbove)
	}
	if t.ScorchedAbove < t.IdealToast {
		return fmt.Errorf("scorched_above=%d must not be below ideal=%d", t.ScorchedAbove, t.IdealToast)
	}
	if t.ToastSlope <= 0 {
		return fmt.Errorf("toast_slope must be positive, got %d", t.ToastSlope)
	}
	if t.CriticalCap < MinFinalScore || t.CriticalCap > MaxFinalScore {
		return fmt.Errorf("critical_cap must be within %d-%d, got %d", MinFinalScore, MaxFinalScore, t.CriticalCap)
	}
	return nil
}

// Config is the full scoring configuration.
type Config struct {
	Weights    Weights    `json:"weights"`
	Thresholds Thresholds `json:"thresholds"`
}

// Defaults returns the canonical scoring configuration.
func Defaults() Config {
	return Config{
		Weights: Weights{
			Slice:  DefaultSliceWeight,
			Toast:  DefaultToastWeight,
			Butter: DefaultButterWeight,
		},
		Thresholds: Thresholds{
			IdealToast:    IdealToastLevel,
			ToastSlope:    ToastSlope,
			RawBelow:      RawToastBelow,
			BurntAbove:    BurntToastAbove,
			DryBelow:      DryButterBelow,
			CriticalCap:   CriticalCap,
			ScorchedAbove: ScorchedToastAbove,
		},
	}
}

// Validate checks weights and thresholds.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	return nil
}
