// Package stage implements the cooking stage controllers. Each controller
// tracks the minimum state for its stage and emits exactly one Result when
// the player finishes it.
package stage

import (
	"fmt"
	"time"
)

// Kind identifies a cooking stage.
type Kind string

const (
	KindCut     Kind = "cut"
	KindToast   Kind = "toast"
	KindButter  Kind = "butter"
	KindTopping Kind = "topping"
)

// Result is the completion value of a stage. Value carries the stage's
// 0-100 metric; Topping is only set for KindTopping.
type Result struct {
	Kind    Kind   `json:"kind"`
	Value   int    `json:"value"`
	Topping string `json:"topping,omitempty"`
}

func (r Result) String() string {
	if r.Kind == KindTopping {
		return fmt.Sprintf("%s=%q", r.Kind, r.Topping)
	}
	return fmt.Sprintf("%s=%d", r.Kind, r.Value)
}

const (
	DefaultIdealCuts  = 10
	DefaultCutPenalty = 15 // points lost per cut away from ideal
	DefaultToastTick  = 100 * time.Millisecond
	DefaultGridSize   = 5

	MaxToastLevel = 100
)

// Config tunes the stage controllers.
type Config struct {
	IdealCuts  int           `yaml:"ideal_cuts" json:"ideal_cuts"`
	CutPenalty int           `yaml:"cut_penalty" json:"cut_penalty"`
	ToastTick  time.Duration `yaml:"toast_tick" json:"toast_tick"`
	GridSize   int           `yaml:"grid_size" json:"grid_size"`
}

// DefaultConfig returns the stage settings the game ships with.
func DefaultConfig() Config {
	return Config{
		IdealCuts:  DefaultIdealCuts,
		CutPenalty: DefaultCutPenalty,
		ToastTick:  DefaultToastTick,
		GridSize:   DefaultGridSize,
	}
}

// Validate rejects settings the controllers cannot run with.
func (c Config) Validate() error {
	if c.IdealCuts < 1 {
		return fmt.Errorf("ideal_cuts must be at least 1, got %d", c.IdealCuts)
	}
	if c.CutPenalty < 0 {
		return fmt.Errorf("cut_penalty must not be negative, got %d", c.CutPenalty)
	}
	if c.ToastTick <= 0 {
		return fmt.Errorf("toast_tick must be positive, got %s", c.ToastTick)
	}
	if c.GridSize < 1 || c.GridSize > 20 {
		return fmt.Errorf("grid_size must be within 1-20, got %d", c.GridSize)
	}
	return nil
}
